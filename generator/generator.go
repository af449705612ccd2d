package generator

import (
	"errors"
	"fmt"
	"io"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/pkg/xmlwriter"
	"github.com/jacoelho/gdata/xmlblob"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

var errNilElement = errors.New("generator: nil element")

type generator struct {
	schema *model.Schema
	w      *xmlwriter.Writer
	cfg    config
	ctx    model.Context
}

// Generate writes element and its descendants to w. Metadata is bound from
// schema in ctx, so the same graph can be written for different contexts.
// A nil schema uses the metadata the elements were created with.
// Required attributes, elements and content are checked before anything is
// written; violations are returned as joined *errors.GenerateError values.
func Generate(w io.Writer, element *model.Element, schema *model.Schema, ctx model.Context, opts ...Option) error {
	if element == nil {
		return errNilElement
	}
	cfg := buildConfig(opts...)
	g := &generator{schema: schema, cfg: cfg, ctx: ctx}
	meta := g.rootMeta(element)

	if !cfg.skipChecks {
		var errs []error
		g.check(element, meta, "", &errs)
		if len(errs) > 0 {
			cfg.logger.Warn("generate failed", "element", meta.Name().String(), "errors", len(errs))
			return errors.Join(errs...)
		}
	}

	var aliases []qname.Namespace
	if schema != nil {
		aliases = schema.Namespaces()
	}
	aliases = append(aliases, meta.Namespaces()...)
	g.w = xmlwriter.New(w, xmlwriter.WithIndent(cfg.indent), xmlwriter.WithAliases(aliases...))

	if cfg.declaration {
		decl := xmlDeclaration
		if cfg.indent != "" {
			decl += "\n"
		}
		if err := g.w.WriteRaw(decl); err != nil {
			return err
		}
	}
	if err := g.write(element, meta, g.rootDecls(element, meta, aliases)); err != nil {
		return fmt.Errorf("generate %s: %w", meta.Name(), err)
	}
	return g.w.Flush()
}

func (g *generator) rootMeta(e *model.Element) *model.ElementMetadata {
	if g.schema == nil {
		return e.Metadata()
	}
	return g.schema.Root(e.Key(), g.ctx)
}

func (g *generator) childMeta(parent *model.ElementMetadata, child *model.Element) *model.ElementMetadata {
	if g.schema == nil {
		return child.Metadata()
	}
	return g.schema.Bind(parent.Key(), child.Key(), g.ctx)
}

// rootDecls hoists the namespaces of every visible element and attribute name
// to the root. The root namespace becomes the default namespace.
func (g *generator) rootDecls(root *model.Element, meta *model.ElementMetadata, aliases []qname.Namespace) []qname.Namespace {
	prefixes := make(map[string]string, len(aliases))
	for _, ns := range aliases {
		if _, ok := prefixes[ns.URI]; !ok && ns.Prefix != "" {
			prefixes[ns.URI] = ns.Prefix
		}
	}
	var blobNS []qname.Namespace
	if blob := root.Blob(); blob != nil {
		blobNS = blob.Namespaces
	}
	taken := func(prefix, uri string) bool {
		for _, ns := range blobNS {
			if ns.Prefix == prefix && ns.URI != uri {
				return true
			}
		}
		return false
	}

	var decls []qname.Namespace
	seen := make(map[string]struct{})
	add := func(uri string) {
		if uri == "" || uri == qname.XMLNamespace {
			return
		}
		if _, ok := seen[uri]; ok {
			return
		}
		seen[uri] = struct{}{}
		prefix, ok := prefixes[uri]
		if uri == meta.Name().Space {
			prefix, ok = "", true
		}
		if !ok || taken(prefix, uri) {
			return
		}
		decls = append(decls, qname.Namespace{Prefix: prefix, URI: uri})
	}
	g.walk(root, meta, func(e *model.Element, m *model.ElementMetadata) {
		add(m.Name().Space)
		for _, am := range m.Attributes() {
			if _, ok := e.AttributeValue(am.Key()); ok && am.Visible() {
				add(am.Name().Space)
			}
		}
	})
	return append(decls, blobNS...)
}

func (g *generator) walk(e *model.Element, m *model.ElementMetadata, fn func(*model.Element, *model.ElementMetadata)) {
	if !m.Visible() {
		return
	}
	fn(e, m)
	for _, c := range e.Children() {
		g.walk(c, g.childMeta(m, c), fn)
	}
}

func (g *generator) write(e *model.Element, m *model.ElementMetadata, decls []qname.Namespace) error {
	if !m.Visible() {
		return nil
	}
	var attrs []xmlwriter.Attr
	lang, base := e.Lang(), e.Base()
	blob := e.Blob()
	if blob != nil {
		if lang == "" {
			lang = blob.Lang
		}
		if base == "" {
			base = blob.Base
		}
		if decls == nil {
			decls = blob.Namespaces
		}
	}
	if lang != "" {
		attrs = append(attrs, xmlwriter.Attr{Name: qname.XML.Name("lang"), Value: lang})
	}
	if base != "" {
		attrs = append(attrs, xmlwriter.Attr{Name: qname.XML.Name("base"), Value: base})
	}
	for _, am := range m.Attributes() {
		if !am.Visible() {
			continue
		}
		v, ok := e.AttributeValue(am.Key())
		if !ok {
			continue
		}
		s, err := am.Datatype().Format(v)
		if err != nil {
			return err
		}
		attrs = append(attrs, xmlwriter.Attr{Name: am.Name(), Value: s})
	}

	if err := g.w.StartElement(m.Name(), attrs, decls); err != nil {
		return err
	}
	if _, ok := e.Text(); ok {
		if err := g.w.Characters(e.TextString()); err != nil {
			return err
		}
	}

	var segments []xmlblob.Segment
	if blob != nil {
		segments = blob.Segments
	}
	next := 0
	children := e.Children()
	for i, c := range children {
		for next < len(segments) && segments[next].Position <= i {
			if err := g.writeSegment(m, segments[next]); err != nil {
				return err
			}
			next++
		}
		if err := g.write(c, g.childMeta(m, c), nil); err != nil {
			return err
		}
	}
	for ; next < len(segments); next++ {
		if err := g.writeSegment(m, segments[next]); err != nil {
			return err
		}
	}
	return g.w.EndElement()
}

func (g *generator) writeSegment(m *model.ElementMetadata, seg xmlblob.Segment) error {
	if m.MixedContent() {
		return g.w.WriteRawText(seg.XML)
	}
	return g.w.WriteRaw(seg.XML)
}

func (g *generator) check(e *model.Element, m *model.ElementMetadata, parentPath string, errs *[]error) {
	if !m.Visible() {
		return
	}
	path := parentPath + "/" + m.Name().Local
	for _, am := range m.Attributes() {
		if !am.Required() || !am.Visible() {
			continue
		}
		if _, ok := e.AttributeValue(am.Key()); ok {
			continue
		}
		if _, ok := am.Default(); ok {
			continue
		}
		*errs = append(*errs, gdataerrors.NewGeneratef(gdataerrors.ErrMissingAttribute, path,
			"missing required attribute %s", am.Name()))
	}
	for _, key := range m.ChildKeys() {
		cm := m.BindChild(key)
		if !cm.Required() || !cm.Visible() {
			continue
		}
		found := false
		for _, c := range e.Children() {
			if c.Key().Matches(key) {
				found = true
				break
			}
		}
		if !found {
			*errs = append(*errs, gdataerrors.NewGeneratef(gdataerrors.ErrMissingElement, path,
				"missing required element %s", cm.Name()))
		}
	}
	if m.ContentRequired() && e.TextString() == "" {
		if b := e.Blob(); b == nil || len(b.Segments) == 0 {
			*errs = append(*errs, gdataerrors.NewGeneratef(gdataerrors.ErrMissingContent, path,
				"missing required text content"))
		}
	}
	for _, c := range e.Children() {
		g.check(c, g.childMeta(m, c), path, errs)
	}
}
