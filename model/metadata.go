package model

import (
	"slices"
	"strings"
	"sync"

	"github.com/jacoelho/gdata/pkg/qname"
)

// Cardinality states how often an element may occur within its parent.
type Cardinality uint8

const (
	Single Cardinality = iota
	Multiple
	// Aggregate merges repeated occurrences into the first instance.
	Aggregate
)

func (c Cardinality) String() string {
	switch c {
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	case Aggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// AttributeMetadata is the resolved declaration of one attribute.
type AttributeMetadata struct {
	key          AttributeKey
	name         qname.QName
	defaultValue string
	enum         []string
	hasDefault   bool
	required     bool
	visible      bool
	ignoreCase   bool
	resolveBase  bool
}

func (m *AttributeMetadata) Key() AttributeKey { return m.key }
func (m *AttributeMetadata) Name() qname.QName { return m.name }
func (m *AttributeMetadata) Required() bool { return m.required }
func (m *AttributeMetadata) Visible() bool { return m.visible }
func (m *AttributeMetadata) Datatype() Datatype { return m.key.Datatype }

// ResolveBase reports whether the value is a URI reference resolved against
// the cumulative xml:base while parsing.
func (m *AttributeMetadata) ResolveBase() bool { return m.resolveBase }

// Enum returns the allowed lexical values, or nil when any value is allowed.
// ignoreCase reports whether values match regardless of case.
func (m *AttributeMetadata) Enum() (values []string, ignoreCase bool) {
	return m.enum, m.ignoreCase
}

// Allows reports whether lexical is one of the allowed values.
func (m *AttributeMetadata) Allows(lexical string) bool {
	if len(m.enum) == 0 {
		return true
	}
	if m.ignoreCase {
		return slices.ContainsFunc(m.enum, func(v string) bool { return strings.EqualFold(v, lexical) })
	}
	return slices.Contains(m.enum, lexical)
}

// Default returns the default lexical value, if one was declared.
func (m *AttributeMetadata) Default() (string, bool) {
	return m.defaultValue, m.hasDefault
}

// ElementMetadata is the resolved, immutable metadata of an element key
// under a parent and context.
type ElementMetadata struct {
	schema          *Schema
	names           map[qname.QName]ElementKey
	attrByName      map[qname.QName]*AttributeMetadata
	ctx             Context
	key             ElementKey
	parent          ElementKey
	name            qname.QName
	attrs           []*AttributeMetadata
	children        []ElementKey
	namespaces      []qname.Namespace
	namesOnce       sync.Once
	cardinality     Cardinality
	required        bool
	contentRequired bool
	arbitraryXML    bool
	mixed           bool
	fullText        bool
	visible         bool
	undeclared      bool
}

func (m *ElementMetadata) Key() ElementKey { return m.key }
func (m *ElementMetadata) Parent() ElementKey { return m.parent }
func (m *ElementMetadata) Context() Context { return m.ctx }
func (m *ElementMetadata) Schema() *Schema { return m.schema }
func (m *ElementMetadata) Datatype() Datatype { return m.key.Datatype }
func (m *ElementMetadata) Cardinality() Cardinality { return m.cardinality }
func (m *ElementMetadata) Required() bool { return m.required }
func (m *ElementMetadata) ContentRequired() bool { return m.contentRequired }
func (m *ElementMetadata) ArbitraryXML() bool { return m.arbitraryXML }
func (m *ElementMetadata) MixedContent() bool { return m.mixed }
func (m *ElementMetadata) FullTextIndex() bool { return m.fullText }
func (m *ElementMetadata) Visible() bool { return m.visible }

// Name returns the bound element name, after renames.
func (m *ElementMetadata) Name() qname.QName { return m.name }

// Undeclared reports whether nothing declares this key; such metadata
// passes content through as arbitrary XML.
func (m *ElementMetadata) Undeclared() bool { return m.undeclared }

// Namespaces returns the preferred aliases declared on this element.
func (m *ElementMetadata) Namespaces() []qname.Namespace { return m.namespaces }

// Attributes returns attribute metadata in declaration order.
func (m *ElementMetadata) Attributes() []*AttributeMetadata { return m.attrs }

// Attribute returns the metadata of key, or nil if undeclared.
func (m *ElementMetadata) Attribute(key AttributeKey) *AttributeMetadata {
	for _, a := range m.attrs {
		if a.key == key {
			return a
		}
	}
	return nil
}

// AttributeByName returns the attribute bound to name, or nil.
func (m *ElementMetadata) AttributeByName(name qname.QName) *AttributeMetadata {
	return m.attrByName[name]
}

// ChildKeys returns declared child keys in declaration order.
func (m *ElementMetadata) ChildKeys() []ElementKey { return m.children }

// AcceptsChild reports whether key matches a declared child.
func (m *ElementMetadata) AcceptsChild(key ElementKey) bool {
	for _, child := range m.children {
		if key.Matches(child) {
			return true
		}
	}
	return false
}

// ChildByName returns the declared child key bound to name. When several
// children bind to the same name the last declared one wins, so a derived
// kind can replace a child inherited from its parent kind.
func (m *ElementMetadata) ChildByName(name qname.QName) (ElementKey, bool) {
	m.namesOnce.Do(func() {
		m.names = make(map[qname.QName]ElementKey, len(m.children))
		for _, child := range m.children {
			bound := m.schema.Bind(m.key, child, m.ctx)
			m.names[bound.name] = child
		}
	})
	key, ok := m.names[name]
	return key, ok
}

// BindChild resolves the metadata of a child of this element.
func (m *ElementMetadata) BindChild(key ElementKey) *ElementMetadata {
	return m.schema.Bind(m.key, key, m.ctx)
}
