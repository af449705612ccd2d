package model

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/pkg/qname"
)

type setting[T comparable] struct {
	value T
	set   bool
}

func (s setting[T]) apply(dst *T) {
	if s.set {
		*dst = s.value
	}
}

type attributeDecl struct {
	required     setting[bool]
	visible      setting[bool]
	resolveBase  setting[bool]
	defaultValue setting[string]
	rename       setting[qname.QName]
	enum         setting[enumDecl]
}

// enumDecl holds the allowed values separated by spaces, so it stays
// comparable for conflict detection.
type enumDecl struct {
	values     string
	ignoreCase bool
}

type childDecl struct {
	cardinality setting[Cardinality]
	required    setting[bool]
}

type elementDecl struct {
	attrs           map[AttributeKey]*attributeDecl
	children        map[ElementKey]*childDecl
	ctx             Context
	attrOrder       []AttributeKey
	childOrder      []ElementKey
	namespaces      []qname.Namespace
	rename          setting[qname.QName]
	cardinality     setting[Cardinality]
	required        setting[bool]
	contentRequired setting[bool]
	arbitraryXML    setting[bool]
	mixed           setting[bool]
	fullText        setting[bool]
	visible         setting[bool]
	seq             int
}

func (d *elementDecl) clone() *elementDecl {
	out := *d
	out.attrs = make(map[AttributeKey]*attributeDecl, len(d.attrs))
	for k, v := range d.attrs {
		a := *v
		out.attrs[k] = &a
	}
	out.children = make(map[ElementKey]*childDecl, len(d.children))
	for k, v := range d.children {
		c := *v
		out.children[k] = &c
	}
	out.attrOrder = slices.Clone(d.attrOrder)
	out.childOrder = slices.Clone(d.childOrder)
	out.namespaces = slices.Clone(d.namespaces)
	return &out
}

type declKey struct {
	key ElementKey
	ctx string
}

// Builder collects metadata declarations. It is safe for concurrent use.
type Builder struct {
	decls     map[declKey]*elementDecl
	conflicts []gdataerrors.Conflict
	invalid   []string
	mu        sync.Mutex
	seq       int
	sealed    atomic.Bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{decls: make(map[declKey]*elementDecl)}
}

// Element declares metadata for key in every context.
func (b *Builder) Element(key ElementKey) *ElementCreator {
	return b.ElementIn(key, Context{})
}

// ElementIn declares a transform of key that applies only in matching contexts.
func (b *Builder) ElementIn(key ElementKey, ctx Context) *ElementCreator {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkSealed()
	if key.Name.Local == "" {
		b.invalid = append(b.invalid, fmt.Sprintf("element key %q has no local name", key))
	}
	b.declLocked(key, ctx)
	return &ElementCreator{b: b, id: declKey{key: key, ctx: ctx.String()}}
}

// Seal rejects further declarations. Declaring on a sealed builder panics.
func (b *Builder) Seal() {
	b.sealed.Store(true)
}

// Sealed reports whether the builder rejects declarations.
func (b *Builder) Sealed() bool {
	return b.sealed.Load()
}

// Clone copies all declarations into a new, unsealed builder.
func (b *Builder) Clone() *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := &Builder{
		decls:     make(map[declKey]*elementDecl, len(b.decls)),
		conflicts: slices.Clone(b.conflicts),
		invalid:   slices.Clone(b.invalid),
		seq:       b.seq,
	}
	for k, d := range b.decls {
		out.decls[k] = d.clone()
	}
	return out
}

// Build snapshots the declarations into a Schema. Conflicting declarations
// are reported together as a *errors.ConfigError.
func (b *Builder) Build() (*Schema, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.invalid) > 0 {
		return nil, gdataerrors.NewConfigf(gdataerrors.ErrInvalidDeclaration, "%s", b.invalid[0])
	}
	if len(b.conflicts) > 0 {
		return nil, &gdataerrors.ConfigError{
			Code:      gdataerrors.ErrConflictingMetadata,
			Message:   "conflicting metadata declarations",
			Conflicts: slices.Clone(b.conflicts),
		}
	}
	byKey := make(map[ElementKey][]*elementDecl)
	for id, d := range b.decls {
		byKey[id.key] = append(byKey[id.key], d.clone())
	}
	for _, list := range byKey {
		slices.SortFunc(list, func(a, b *elementDecl) int { return a.seq - b.seq })
	}
	return newSchema(byKey), nil
}

// MustBuild is Build that panics on configuration errors.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Keys returns every declared element key.
func (b *Builder) Keys() []ElementKey {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[ElementKey]struct{})
	for id := range b.decls {
		seen[id.key] = struct{}{}
	}
	keys := slices.Collect(maps.Keys(seen))
	slices.SortFunc(keys, func(a, b ElementKey) int {
		if c := qname.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind.Name(), b.Kind.Name())
	})
	return keys
}

func (b *Builder) checkSealed() {
	if b.sealed.Load() {
		panic("model: declaration on sealed builder")
	}
}

func (b *Builder) declLocked(key ElementKey, ctx Context) *elementDecl {
	id := declKey{key: key, ctx: ctx.String()}
	d, ok := b.decls[id]
	if !ok {
		b.seq++
		d = &elementDecl{
			ctx:      ctx,
			seq:      b.seq,
			attrs:    make(map[AttributeKey]*attributeDecl),
			children: make(map[ElementKey]*childDecl),
		}
		b.decls[id] = d
	}
	return d
}

func (b *Builder) update(id declKey, fn func(d *elementDecl)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkSealed()
	d := b.decls[id]
	fn(d)
}

func assign[T comparable](b *Builder, s *setting[T], value T, id declKey, subject, name string) {
	if s.set && s.value != value {
		b.conflicts = append(b.conflicts, gdataerrors.Conflict{
			Key:     subject,
			Context: id.ctx,
			Setting: name,
			Old:     fmt.Sprint(s.value),
			New:     fmt.Sprint(value),
		})
		return
	}
	s.value = value
	s.set = true
}

// ElementCreator declares element settings. Methods chain.
type ElementCreator struct {
	b  *Builder
	id declKey
}

func (c *ElementCreator) set(fn func(d *elementDecl, subject string)) *ElementCreator {
	c.b.update(c.id, func(d *elementDecl) { fn(d, c.id.key.String()) })
	return c
}

// Cardinality sets how often the element may occur.
func (c *ElementCreator) Cardinality(v Cardinality) *ElementCreator {
	return c.set(func(d *elementDecl, s string) { assign(c.b, &d.cardinality, v, c.id, s, "cardinality") })
}

// Required marks the element as required in its parent.
func (c *ElementCreator) Required(v bool) *ElementCreator {
	return c.set(func(d *elementDecl, s string) { assign(c.b, &d.required, v, c.id, s, "required") })
}

// ContentRequired marks text content as required.
func (c *ElementCreator) ContentRequired(v bool) *ElementCreator {
	return c.set(func(d *elementDecl, s string) { assign(c.b, &d.contentRequired, v, c.id, s, "content-required") })
}

// ArbitraryXML allows undeclared child markup, captured as a blob.
func (c *ElementCreator) ArbitraryXML(v bool) *ElementCreator {
	return c.set(func(d *elementDecl, s string) { assign(c.b, &d.arbitraryXML, v, c.id, s, "arbitrary-xml") })
}

// MixedContent allows text interleaved with child elements.
func (c *ElementCreator) MixedContent(v bool) *ElementCreator {
	return c.set(func(d *elementDecl, s string) { assign(c.b, &d.mixed, v, c.id, s, "mixed-content") })
}

// FullTextIndex enables full-text capture of blob content.
func (c *ElementCreator) FullTextIndex(v bool) *ElementCreator {
	return c.set(func(d *elementDecl, s string) { assign(c.b, &d.fullText, v, c.id, s, "full-text-index") })
}

// Rename binds the element to a different name.
func (c *ElementCreator) Rename(name qname.QName) *ElementCreator {
	return c.set(func(d *elementDecl, s string) { assign(c.b, &d.rename, name, c.id, s, "name") })
}

// Visible controls whether the element is written by the generator.
func (c *ElementCreator) Visible(v bool) *ElementCreator {
	return c.set(func(d *elementDecl, s string) { assign(c.b, &d.visible, v, c.id, s, "visible") })
}

// Namespace records a preferred alias for output.
func (c *ElementCreator) Namespace(ns qname.Namespace) *ElementCreator {
	return c.set(func(d *elementDecl, _ string) {
		if !slices.Contains(d.namespaces, ns) {
			d.namespaces = append(d.namespaces, ns)
		}
	})
}

// AddAttribute declares an attribute of the element.
func (c *ElementCreator) AddAttribute(key AttributeKey) *AttributeCreator {
	c.b.update(c.id, func(d *elementDecl) {
		if key.Name.Local == "" {
			c.b.invalid = append(c.b.invalid, fmt.Sprintf("attribute of %s has no local name", c.id.key))
		}
		if _, ok := d.attrs[key]; !ok {
			d.attrs[key] = &attributeDecl{}
			d.attrOrder = append(d.attrOrder, key)
		}
	})
	return &AttributeCreator{b: c.b, id: c.id, key: key}
}

// AddElement declares a child of the element and returns a creator for
// overrides that apply only within this parent.
func (c *ElementCreator) AddElement(key ElementKey) *ChildCreator {
	c.b.update(c.id, func(d *elementDecl) {
		if _, ok := d.children[key]; !ok {
			d.children[key] = &childDecl{}
			d.childOrder = append(d.childOrder, key)
		}
	})
	return &ChildCreator{b: c.b, id: c.id, key: key}
}

// AttributeCreator declares attribute settings. Methods chain.
type AttributeCreator struct {
	b   *Builder
	id  declKey
	key AttributeKey
}

func (c *AttributeCreator) set(fn func(a *attributeDecl, subject string)) *AttributeCreator {
	c.b.update(c.id, func(d *elementDecl) { fn(d.attrs[c.key], c.id.key.String()+"@"+c.key.String()) })
	return c
}

// Required marks the attribute as required.
func (c *AttributeCreator) Required(v bool) *AttributeCreator {
	return c.set(func(a *attributeDecl, s string) { assign(c.b, &a.required, v, c.id, s, "required") })
}

// Default sets the lexical value used when the attribute is absent.
func (c *AttributeCreator) Default(v string) *AttributeCreator {
	return c.set(func(a *attributeDecl, s string) { assign(c.b, &a.defaultValue, v, c.id, s, "default") })
}

// Rename binds the attribute to a different name.
func (c *AttributeCreator) Rename(name qname.QName) *AttributeCreator {
	return c.set(func(a *attributeDecl, s string) { assign(c.b, &a.rename, name, c.id, s, "name") })
}

// Visible controls whether the attribute is written by the generator.
func (c *AttributeCreator) Visible(v bool) *AttributeCreator {
	return c.set(func(a *attributeDecl, s string) { assign(c.b, &a.visible, v, c.id, s, "visible") })
}

// ResolveBase marks a URI attribute whose value is resolved against the
// cumulative xml:base while parsing. A relative value with no absolute base
// is a parse error.
func (c *AttributeCreator) ResolveBase(v bool) *AttributeCreator {
	return c.set(func(a *attributeDecl, s string) { assign(c.b, &a.resolveBase, v, c.id, s, "resolveBase") })
}

// Enum restricts the attribute to values. With ignoreCase a value matches
// regardless of case and is stored as declared here.
func (c *AttributeCreator) Enum(ignoreCase bool, values ...string) *AttributeCreator {
	if slices.ContainsFunc(values, func(v string) bool { return v == "" || strings.ContainsAny(v, " \t\n\r") }) {
		c.b.update(c.id, func(*elementDecl) {
			c.b.invalid = append(c.b.invalid, fmt.Sprintf("attribute %s of %s has an empty or spaced enum value", c.key, c.id.key))
		})
		return c
	}
	decl := enumDecl{values: strings.Join(values, " "), ignoreCase: ignoreCase}
	return c.set(func(a *attributeDecl, s string) { assign(c.b, &a.enum, decl, c.id, s, "enum") })
}

// ChildCreator declares child-in-parent overrides. Methods chain.
type ChildCreator struct {
	b   *Builder
	id  declKey
	key ElementKey
}

func (c *ChildCreator) set(fn func(ch *childDecl, subject string)) *ChildCreator {
	c.b.update(c.id, func(d *elementDecl) { fn(d.children[c.key], c.id.key.String()+"/"+c.key.String()) })
	return c
}

// Cardinality overrides the child's cardinality within this parent.
func (c *ChildCreator) Cardinality(v Cardinality) *ChildCreator {
	return c.set(func(ch *childDecl, s string) { assign(c.b, &ch.cardinality, v, c.id, s, "cardinality") })
}

// Required overrides the child's requiredness within this parent.
func (c *ChildCreator) Required(v bool) *ChildCreator {
	return c.set(func(ch *childDecl, s string) { assign(c.b, &ch.required, v, c.id, s, "required") })
}
