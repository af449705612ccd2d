package model

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/jacoelho/gdata/pkg/qname"
)

// Schema is an immutable snapshot of metadata declarations. Bind results
// are cached and safe to share between goroutines.
type Schema struct {
	decls      map[ElementKey][]*elementDecl
	cache      sync.Map // bindKey -> *ElementMetadata
	namespaces []qname.Namespace
}

type bindKey struct {
	parent ElementKey
	key    ElementKey
	ctx    string
}

func newSchema(decls map[ElementKey][]*elementDecl) *Schema {
	s := &Schema{decls: decls}
	var nss []qname.Namespace
	for _, list := range decls {
		for _, d := range list {
			nss = append(nss, d.namespaces...)
		}
	}
	slices.SortFunc(nss, qname.CompareNamespaces)
	s.namespaces = slices.Compact(nss)
	return s
}

// Namespaces returns the preferred aliases declared anywhere in the schema.
func (s *Schema) Namespaces() []qname.Namespace {
	return slices.Clone(s.namespaces)
}

// Declared reports whether any declaration exists for key.
func (s *Schema) Declared(key ElementKey) bool {
	_, ok := s.decls[key]
	return ok
}

// Keys returns every declared element key ordered by name.
func (s *Schema) Keys() []ElementKey {
	keys := make([]ElementKey, 0, len(s.decls))
	for k := range s.decls {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b ElementKey) int {
		if c := qname.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind.Name(), b.Kind.Name())
	})
	return keys
}

// Root binds a document root element.
func (s *Schema) Root(key ElementKey, ctx Context) *ElementMetadata {
	return s.Bind(ElementKey{}, key, ctx)
}

// Bind resolves the metadata of key as a child of parent in ctx. Use a zero
// parent for document roots. Declarations apply in order: the key and its
// kind ancestors (least derived first), the parent's child overrides, then
// matching context transforms by ascending specificity.
func (s *Schema) Bind(parent, key ElementKey, ctx Context) *ElementMetadata {
	id := bindKey{parent: parent, key: key, ctx: ctx.String()}
	if m, ok := s.cache.Load(id); ok {
		return m.(*ElementMetadata)
	}
	m := s.resolve(parent, key, ctx)
	actual, _ := s.cache.LoadOrStore(id, m)
	return actual.(*ElementMetadata)
}

// BindAttribute resolves attribute metadata of akey on an element bound
// under parent. It returns nil if the attribute is undeclared.
func (s *Schema) BindAttribute(parent, key ElementKey, akey AttributeKey, ctx Context) *AttributeMetadata {
	return s.Bind(parent, key, ctx).Attribute(akey)
}

type layer struct {
	element *elementDecl
	child   *childDecl
	rank    int
	seq     int
}

func (s *Schema) layers(parent, key ElementKey, ctx Context) (base, transforms []layer) {
	lineage := key.lineage()
	for _, k := range lineage {
		for _, d := range s.decls[k] {
			switch {
			case d.ctx.IsZero():
				base = append(base, layer{element: d, seq: d.seq})
			case d.ctx.Matches(ctx):
				transforms = append(transforms, layer{element: d, rank: d.ctx.Specificity(), seq: d.seq})
			}
		}
	}
	if !parent.IsZero() {
		for _, pk := range parent.lineage() {
			for _, d := range s.decls[pk] {
				for _, k := range lineage {
					ch, ok := d.children[k]
					if !ok {
						continue
					}
					switch {
					case d.ctx.IsZero():
						base = append(base, layer{child: ch, seq: d.seq})
					case d.ctx.Matches(ctx):
						transforms = append(transforms, layer{child: ch, rank: d.ctx.Specificity(), seq: d.seq})
					}
				}
			}
		}
	}
	slices.SortStableFunc(transforms, func(a, b layer) int {
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return base, transforms
}

func (s *Schema) resolve(parent, key ElementKey, ctx Context) *ElementMetadata {
	m := &ElementMetadata{
		schema:      s,
		ctx:         ctx,
		key:         key,
		parent:      parent,
		name:        key.Name,
		cardinality: Single,
		visible:     true,
	}
	base, transforms := s.layers(parent, key, ctx)
	if len(base) == 0 && len(transforms) == 0 {
		m.undeclared = true
		m.arbitraryXML = true
		m.cardinality = Multiple
		m.attrByName = map[qname.QName]*AttributeMetadata{}
		return m
	}

	attrs := make(map[AttributeKey]*AttributeMetadata)
	var attrOrder []AttributeKey
	childSeen := make(map[ElementKey]struct{})
	for _, l := range slices.Concat(base, transforms) {
		if l.child != nil {
			l.child.cardinality.apply(&m.cardinality)
			l.child.required.apply(&m.required)
			continue
		}
		d := l.element
		d.rename.apply(&m.name)
		d.cardinality.apply(&m.cardinality)
		d.required.apply(&m.required)
		d.contentRequired.apply(&m.contentRequired)
		d.arbitraryXML.apply(&m.arbitraryXML)
		d.mixed.apply(&m.mixed)
		d.fullText.apply(&m.fullText)
		d.visible.apply(&m.visible)
		for _, ns := range d.namespaces {
			if !slices.Contains(m.namespaces, ns) {
				m.namespaces = append(m.namespaces, ns)
			}
		}
		for _, ak := range d.attrOrder {
			am, ok := attrs[ak]
			if !ok {
				am = &AttributeMetadata{key: ak, name: ak.Name, visible: true}
				attrs[ak] = am
				attrOrder = append(attrOrder, ak)
			}
			ad := d.attrs[ak]
			ad.rename.apply(&am.name)
			ad.required.apply(&am.required)
			ad.visible.apply(&am.visible)
			ad.resolveBase.apply(&am.resolveBase)
			if ad.enum.set {
				am.enum = strings.Fields(ad.enum.value.values)
				am.ignoreCase = ad.enum.value.ignoreCase
			}
			if ad.defaultValue.set {
				am.defaultValue = ad.defaultValue.value
				am.hasDefault = true
			}
		}
		for _, ck := range d.childOrder {
			if _, ok := childSeen[ck]; !ok {
				childSeen[ck] = struct{}{}
				m.children = append(m.children, ck)
			}
		}
	}
	m.attrByName = make(map[qname.QName]*AttributeMetadata, len(attrOrder))
	for _, ak := range attrOrder {
		am := attrs[ak]
		m.attrs = append(m.attrs, am)
		if _, dup := m.attrByName[am.name]; !dup {
			m.attrByName[am.name] = am
		}
	}
	return m
}
