package qname

import "cmp"

// Namespace binds a namespace URI to its preferred prefix.
type Namespace struct {
	Prefix string
	URI    string
}

// Name returns a QName in this namespace.
func (n Namespace) Name(local string) QName {
	return QName{Space: n.URI, Local: local}
}

// CompareNamespaces orders namespaces by prefix, then URI.
func CompareNamespaces(a, b Namespace) int {
	if c := cmp.Compare(a.Prefix, b.Prefix); c != 0 {
		return c
	}
	return cmp.Compare(a.URI, b.URI)
}

const (
	// XMLPrefix is the reserved prefix for the XML namespace.
	XMLPrefix = "xml"
	// XMLNSPrefix is the reserved prefix for namespace declarations.
	XMLNSPrefix = "xmlns"
	// XMLNamespace is the XML namespace URI.
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
	// XMLNSNamespace is the XMLNS namespace URI.
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// Namespaces of the Atom and GData element families.
var (
	Atom = Namespace{Prefix: "atom", URI: "http://www.w3.org/2005/Atom"}
	// AtomPub is the standard Atom Publishing Protocol namespace.
	AtomPub = Namespace{Prefix: "app", URI: "http://www.w3.org/2007/app"}
	// AtomPubDraft is the pre-standard namespace used by version 1 services.
	AtomPubDraft = Namespace{Prefix: "app", URI: "http://purl.org/atom/app#"}
	GData        = Namespace{Prefix: "gd", URI: "http://schemas.google.com/g/2005"}
	Batch        = Namespace{Prefix: "batch", URI: "http://schemas.google.com/gdata/batch"}
	OpenSearch   = Namespace{Prefix: "openSearch", URI: "http://a9.com/-/spec/opensearch/1.1/"}
	ACL          = Namespace{Prefix: "gAcl", URI: "http://schemas.google.com/acl/2007"}
	YouTube      = Namespace{Prefix: "yt", URI: "http://gdata.youtube.com/schemas/2007"}
	Contacts     = Namespace{Prefix: "gContact", URI: "http://schemas.google.com/contact/2008"}
	// Config is the namespace of extension profile configuration documents.
	Config = Namespace{Prefix: "gdc", URI: "http://schemas.google.com/g/2005/config"}
	XML    = Namespace{Prefix: XMLPrefix, URI: XMLNamespace}
)
