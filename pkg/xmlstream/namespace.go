package xmlstream

import (
	"encoding/xml"

	"github.com/jacoelho/gdata/pkg/qname"
)

// Common XML namespaces.
const (
	XMLNamespace   = qname.XMLNamespace
	XMLNSNamespace = qname.XMLNSNamespace
)

type nsScope struct {
	prefixes   map[string]string
	defaultNS  string
	decls      []NamespaceDecl
	defaultSet bool
}

type nsStack struct {
	scopes []nsScope
}

func (s *nsStack) push(scope nsScope) int {
	s.scopes = append(s.scopes, scope)
	return len(s.scopes) - 1
}

func (s *nsStack) pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *nsStack) depth() int {
	return len(s.scopes)
}

func (s *nsStack) lookup(prefix string, depth int) (string, bool) {
	if prefix == qname.XMLPrefix {
		return XMLNamespace, true
	}
	if depth >= len(s.scopes) {
		depth = len(s.scopes) - 1
	}
	if prefix == "" {
		for i := depth; i >= 0; i-- {
			scope := s.scopes[i]
			if scope.defaultSet {
				return scope.defaultNS, true
			}
		}
		// no default namespace declared; use empty namespace.
		return "", true
	}
	for i := depth; i >= 0; i-- {
		scope := s.scopes[i]
		if ns, ok := scope.prefixes[prefix]; ok {
			return ns, true
		}
	}
	return "", false
}

// collectNamespaceScope extracts xmlns declarations from raw start element attributes.
func collectNamespaceScope(attrs []xml.Attr) (nsScope, error) {
	scope := nsScope{}
	for _, attr := range attrs {
		if isDefaultNamespaceDecl(attr.Name) {
			scope.defaultNS = attr.Value
			scope.defaultSet = true
			scope.decls = append(scope.decls, NamespaceDecl{Prefix: "", URI: attr.Value})
			continue
		}
		if !isPrefixedNamespaceDecl(attr.Name) {
			continue
		}
		prefix := attr.Name.Local
		if prefix == qname.XMLPrefix {
			if attr.Value != XMLNamespace {
				return nsScope{}, errXMLPrefixRebound
			}
			continue
		}
		if prefix == qname.XMLNSPrefix {
			return nsScope{}, errXMLNSPrefixDeclared
		}
		if attr.Value == "" {
			return nsScope{}, errEmptyPrefixBinding
		}
		if scope.prefixes == nil {
			scope.prefixes = make(map[string]string, 1)
		}
		scope.prefixes[prefix] = attr.Value
		scope.decls = append(scope.decls, NamespaceDecl{Prefix: prefix, URI: attr.Value})
	}
	return scope, nil
}

func isDefaultNamespaceDecl(name xml.Name) bool {
	return name.Space == "" && name.Local == qname.XMLNSPrefix
}

func isPrefixedNamespaceDecl(name xml.Name) bool {
	return name.Space == qname.XMLNSPrefix
}

func isNamespaceDecl(name xml.Name) bool {
	return isDefaultNamespaceDecl(name) || isPrefixedNamespaceDecl(name)
}
