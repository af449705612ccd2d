package extension

import (
	"cmp"
	"reflect"
	"slices"
	"sync"

	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/pkg/qname"
)

// Adaptor declares the extensions of one kind. Adding the same adaptor type
// to a profile twice has no further effect.
type Adaptor interface {
	DeclareExtensions(p *Profile)
}

// Profile is the set of extensions legal within one document context.
// It is safe for concurrent use.
type Profile struct {
	feed       *model.Kind
	entry      *model.Kind
	manifests  map[*model.Kind]*Manifest
	declared   map[reflect.Type]struct{}
	feedLink   *Profile
	entryLink  *Profile
	schemas    map[*model.Builder]*model.Schema
	additional []qname.Namespace
	nsDecls    []qname.Namespace
	mu         sync.Mutex
	gen        uint64
	nsValid    bool
	autoExtend bool
}

// New returns an empty profile. feed and entry are the kinds extended by
// DeclareFeedExtension and DeclareEntryExtension.
func New(feed, entry *model.Kind) *Profile {
	return &Profile{
		feed:      feed,
		entry:     entry,
		manifests: make(map[*model.Kind]*Manifest),
		declared:  make(map[reflect.Type]struct{}),
		schemas:   make(map[*model.Builder]*model.Schema),
	}
}

// FeedKind returns the kind extended by DeclareFeedExtension.
func (p *Profile) FeedKind() *model.Kind { return p.feed }

// EntryKind returns the kind extended by DeclareEntryExtension.
func (p *Profile) EntryKind() *model.Kind { return p.entry }

// AddDeclarations runs adaptor unless an adaptor of the same concrete type
// was already added.
func (p *Profile) AddDeclarations(adaptor Adaptor) {
	t := reflect.TypeOf(adaptor)
	p.mu.Lock()
	if _, ok := p.declared[t]; ok {
		p.mu.Unlock()
		return
	}
	p.declared[t] = struct{}{}
	p.mu.Unlock()
	adaptor.DeclareExtensions(p)
}

// Declare allows desc inside elements of kind and of kinds extending it.
func (p *Profile) Declare(kind *model.Kind, desc Description) {
	if kind == nil {
		panic("extension: declare on nil kind")
	}
	if desc.Key.Name.Local == "" {
		panic("extension: description without a name")
	}
	desc = desc.normalized()
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.manifestLocked(kind)
	m.Extensions[desc.Name()] = desc
	p.invalidateLocked()
}

// DeclareFeedExtension declares desc on the feed kind.
func (p *Profile) DeclareFeedExtension(desc Description) {
	p.Declare(p.feed, desc)
}

// DeclareEntryExtension declares desc on the entry kind.
func (p *Profile) DeclareEntryExtension(desc Description) {
	p.Declare(p.entry, desc)
}

// DeclareArbitraryXML lets elements of kind carry undeclared markup.
func (p *Profile) DeclareArbitraryXML(kind *model.Kind) {
	if kind == nil {
		panic("extension: declare on nil kind")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.manifestLocked(kind).ArbitraryXML = true
	p.invalidateLocked()
}

// DeclareAdditionalNamespace adds a namespace declared on generated roots.
func (p *Profile) DeclareAdditionalNamespace(ns qname.Namespace) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.additional, ns) {
		p.additional = append(p.additional, ns)
	}
	p.invalidateLocked()
}

// AdditionalNamespaces returns namespaces added with DeclareAdditionalNamespace.
func (p *Profile) AdditionalNamespaces() []qname.Namespace {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.additional)
}

// DeclareFeedLinkProfile sets the profile of feeds nested in feed links.
func (p *Profile) DeclareFeedLinkProfile(nested *Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feedLink = nested
	p.invalidateLocked()
}

// FeedLinkProfile returns the profile of nested feeds, or nil.
func (p *Profile) FeedLinkProfile() *Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feedLink
}

// DeclareEntryLinkProfile sets the profile of entries nested in entry links.
func (p *Profile) DeclareEntryLinkProfile(nested *Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entryLink = nested
	p.invalidateLocked()
}

// EntryLinkProfile returns the profile of nested entries, or nil.
func (p *Profile) EntryLinkProfile() *Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entryLink
}

// SetAutoExtending makes every extension point accept undeclared extensions,
// which are then preserved as foreign markup.
func (p *Profile) SetAutoExtending(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoExtend = v
	p.invalidateLocked()
}

// AutoExtending reports whether undeclared extensions are accepted.
func (p *Profile) AutoExtending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.autoExtend
}

// Manifest returns the manifest of kind or of its nearest ancestor kind.
// The result is a copy.
func (p *Profile) Manifest(kind *model.Kind) (*Manifest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.lookupLocked(kind)
	if m == nil {
		return nil, false
	}
	return m.clone(), true
}

// Kinds returns the kinds with a manifest, ordered by name.
func (p *Profile) Kinds() []*model.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kindsLocked()
}

func (p *Profile) kindsLocked() []*model.Kind {
	kinds := make([]*model.Kind, 0, len(p.manifests))
	for k := range p.manifests {
		kinds = append(kinds, k)
	}
	slices.SortFunc(kinds, func(a, b *model.Kind) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return kinds
}

func (p *Profile) lookupLocked(kind *model.Kind) *Manifest {
	for k := kind; k != nil; k = k.Parent() {
		if m, ok := p.manifests[k]; ok {
			return m
		}
	}
	return nil
}

// manifestLocked returns the manifest owned by kind. A kind without one
// starts from a copy of its nearest ancestor's manifest.
func (p *Profile) manifestLocked(kind *model.Kind) *Manifest {
	if m, ok := p.manifests[kind]; ok {
		return m
	}
	m := newManifest()
	if inherited := p.lookupLocked(kind); inherited != nil {
		m = inherited.clone()
	}
	p.manifests[kind] = m
	return m
}

func (p *Profile) invalidateLocked() {
	p.gen++
	p.nsValid = false
	p.nsDecls = nil
	clear(p.schemas)
}

// NamespaceDecls returns every namespace used by the profile and its nested
// profiles. The result is computed on first use and cached until the
// profile changes.
func (p *Profile) NamespaceDecls() []qname.Namespace {
	p.mu.Lock()
	if p.nsValid {
		defer p.mu.Unlock()
		return slices.Clone(p.nsDecls)
	}
	gen := p.gen
	p.mu.Unlock()

	decls := p.computeNamespaceDecls(map[*Profile]struct{}{})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen == gen {
		p.nsDecls, p.nsValid = decls, true
	}
	return slices.Clone(decls)
}

func (p *Profile) computeNamespaceDecls(visited map[*Profile]struct{}) []qname.Namespace {
	if _, ok := visited[p]; ok {
		return nil
	}
	visited[p] = struct{}{}

	p.mu.Lock()
	out := slices.Clone(p.additional)
	for _, m := range p.manifests {
		out = append(out, m.NamespaceDecls()...)
	}
	nested := []*Profile{p.feedLink, p.entryLink}
	p.mu.Unlock()

	for _, n := range nested {
		if n != nil {
			out = append(out, n.computeNamespaceDecls(visited)...)
		}
	}
	slices.SortFunc(out, qname.CompareNamespaces)
	return slices.Compact(out)
}

// Schema compiles the profile on top of base, or of model.Default when base
// is nil. Each extension point kind accepts its declared extensions with
// their cardinality and required flags. The result is cached per base until
// the profile changes.
func (p *Profile) Schema(base *model.Builder) (*model.Schema, error) {
	if base == nil {
		base = model.Default()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.schemas[base]; ok {
		return s, nil
	}
	b := base.Clone()
	for _, kind := range p.kindsLocked() {
		m := p.manifests[kind]
		point := b.Element(kind.Key())
		if m.ArbitraryXML || p.autoExtend {
			point.ArbitraryXML(true)
		}
		for _, ns := range p.additional {
			point.Namespace(ns)
		}
		for _, d := range m.Descriptions() {
			point.AddElement(d.Key).Cardinality(d.Cardinality()).Required(d.Required)
			if d.Namespace.Prefix != "" {
				b.Element(d.Key).Namespace(d.Namespace)
			}
		}
	}
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	p.schemas[base] = s
	return s, nil
}
