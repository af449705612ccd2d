// Package qname provides namespace-qualified names and the namespaces used by
// the Atom and GData element families.
package qname

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// QName represents a qualified name with namespace URI and local part.
type QName struct {
	Space string
	Local string
}

// New returns a QName in the given namespace.
func New(space, local string) QName {
	return QName{Space: space, Local: local}
}

// Local returns an unqualified QName.
func Local(local string) QName {
	return QName{Local: local}
}

// String returns the QName in {namespace}local format, or just local if no namespace.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// IsZero returns true if the QName is the zero value.
func (q QName) IsZero() bool {
	return q.Space == "" && q.Local == ""
}

// Compare orders QNames by namespace, then local name.
func Compare(a, b QName) int {
	if c := cmp.Compare(a.Space, b.Space); c != 0 {
		return c
	}
	return cmp.Compare(a.Local, b.Local)
}

// SortedMapKeys returns the keys of m in Compare order.
func SortedMapKeys[V any](m map[QName]V) []QName {
	keys := make([]QName, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, Compare)
	return keys
}

// SortAndDedupe sorts names in place and drops duplicates.
func SortAndDedupe(names []QName) []QName {
	slices.SortFunc(names, Compare)
	return slices.Compact(names)
}

// Split splits a lexical prefix:local name without validation.
func Split(name string) (prefix, local string, hasPrefix bool) {
	prefix, local, hasPrefix = strings.Cut(name, ":")
	if !hasPrefix {
		return "", name, false
	}
	return prefix, local, true
}

// ParseValue resolves a lexical prefix:local name against a prefix to URI table.
// The xml prefix is always bound; an unprefixed name takes the "" entry if present.
func ParseValue(lexical string, nsContext map[string]string) (QName, error) {
	trimmed := strings.TrimSpace(lexical)
	if trimmed == "" {
		return QName{}, fmt.Errorf("invalid QName: empty string")
	}
	prefix, local, hasPrefix := Split(trimmed)
	if local == "" || strings.ContainsAny(local, ": \t\r\n") {
		return QName{}, fmt.Errorf("invalid QName '%s'", trimmed)
	}
	if !hasPrefix {
		return QName{Space: nsContext[""], Local: local}, nil
	}
	if prefix == XMLPrefix {
		if bound, ok := nsContext[prefix]; ok && bound != XMLNamespace {
			return QName{}, fmt.Errorf("prefix %s must be bound to %s", XMLPrefix, XMLNamespace)
		}
		return QName{Space: XMLNamespace, Local: local}, nil
	}
	space, ok := nsContext[prefix]
	if !ok {
		return QName{}, fmt.Errorf("prefix %s not found in namespace context", prefix)
	}
	return QName{Space: space, Local: local}, nil
}
