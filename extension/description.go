package extension

import (
	"cmp"
	"maps"
	"slices"

	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/pkg/qname"
)

// Description describes one extension element of an extension point.
type Description struct {
	Key        model.ElementKey
	Namespace  qname.Namespace
	Required   bool
	Repeatable bool
	Aggregate  bool
}

// Describe returns a description of key using ns as its preferred alias.
func Describe(key model.ElementKey, ns qname.Namespace) Description {
	return Description{Key: key, Namespace: ns}
}

// Name returns the element name of the extension.
func (d Description) Name() qname.QName {
	return d.Key.Name
}

// Cardinality maps the repeatable and aggregate flags onto a model cardinality.
func (d Description) Cardinality() model.Cardinality {
	switch {
	case d.Aggregate:
		return model.Aggregate
	case d.Repeatable:
		return model.Multiple
	default:
		return model.Single
	}
}

// Compare orders descriptions by namespace URI, then local name.
func (d Description) Compare(other Description) int {
	if c := cmp.Compare(d.Key.Name.Space, other.Key.Name.Space); c != 0 {
		return c
	}
	return cmp.Compare(d.Key.Name.Local, other.Key.Name.Local)
}

func (d Description) normalized() Description {
	if d.Namespace.URI == "" {
		d.Namespace.URI = d.Key.Name.Space
	}
	return d
}

// Manifest is the set of extensions supported by one extension point.
type Manifest struct {
	Extensions   map[qname.QName]Description
	ArbitraryXML bool
}

func newManifest() *Manifest {
	return &Manifest{Extensions: make(map[qname.QName]Description)}
}

func (m *Manifest) clone() *Manifest {
	return &Manifest{Extensions: maps.Clone(m.Extensions), ArbitraryXML: m.ArbitraryXML}
}

// Descriptions returns the declared extensions in Compare order.
func (m *Manifest) Descriptions() []Description {
	out := slices.Collect(maps.Values(m.Extensions))
	slices.SortFunc(out, Description.Compare)
	return out
}

// Lookup returns the description declared for name.
func (m *Manifest) Lookup(name qname.QName) (Description, bool) {
	d, ok := m.Extensions[name]
	return d, ok
}

// NamespaceDecls returns the namespaces of all declared extensions.
func (m *Manifest) NamespaceDecls() []qname.Namespace {
	var out []qname.Namespace
	for _, d := range m.Extensions {
		if d.Namespace.URI != "" && !slices.Contains(out, d.Namespace) {
			out = append(out, d.Namespace)
		}
	}
	slices.SortFunc(out, qname.CompareNamespaces)
	return out
}
