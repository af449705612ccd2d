package xmlstream

import "github.com/jacoelho/gdata/pkg/qname"

// EventKind identifies the kind of streaming XML event.
type EventKind uint8

const (
	EventStartElement EventKind = iota
	EventEndElement
	EventCharData
)

func (k EventKind) String() string {
	switch k {
	case EventStartElement:
		return "start"
	case EventEndElement:
		return "end"
	case EventCharData:
		return "chardata"
	default:
		return "unknown"
	}
}

// RawName is a lexical name as written in the document.
type RawName struct {
	Prefix string
	Local  string
}

// String returns prefix:local, or local when unprefixed.
func (n RawName) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Attr is a resolved attribute. Namespace declarations are not reported as attributes.
type Attr struct {
	Name  qname.QName
	Raw   RawName
	Value string
}

// Event represents a single streaming XML token.
// Attrs is only valid until the next Next call.
type Event struct {
	Name       qname.QName
	Raw        RawName
	Attrs      []Attr
	Text       string
	Offset     int64
	Line       int
	Column     int
	ScopeDepth int
	Kind       EventKind
}

// NamespaceDecl reports a namespace declaration on the current element.
type NamespaceDecl struct {
	Prefix string
	URI    string
}
