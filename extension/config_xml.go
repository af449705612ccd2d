package extension

import (
	"context"
	"io"
	"strconv"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/parser"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/pkg/xmlstream"
	"github.com/jacoelho/gdata/pkg/xmlwriter"
)

const (
	elemProfile     = "extensionProfile"
	elemNamespace   = "namespaceDescription"
	elemPoint       = "extensionPoint"
	elemDescription = "extensionDescription"
)

type profileHandler struct {
	parser.BaseHandler
	cfg     *Config
	catalog *Catalog
}

func (h *profileHandler) ChildHandler(name qname.QName, attrs []xmlstream.Attr) (parser.ElementHandler, error) {
	if name.Space == qname.Config.URI {
		switch name.Local {
		case elemNamespace:
			return &namespaceHandler{cfg: h.cfg}, nil
		case elemPoint:
			return &pointHandler{cfg: h.cfg, catalog: h.catalog}, nil
		}
	}
	return h.BaseHandler.ChildHandler(name, attrs)
}

type namespaceHandler struct {
	parser.BaseHandler
	cfg *Config
}

func (h *namespaceHandler) Attributes(attrs []xmlstream.Attr) error {
	ah := parser.NewAttributeHelper(attrs, nil)
	alias, _, err := ah.Consume("alias", true)
	if err != nil {
		return err
	}
	uri, _, err := ah.Consume("uri", true)
	if err != nil {
		return err
	}
	if err := ah.AssertAllConsumed(); err != nil {
		return err
	}
	h.cfg.Namespaces = append(h.cfg.Namespaces, NamespaceConfig{Alias: alias, URI: uri})
	return nil
}

type pointHandler struct {
	parser.BaseHandler
	cfg     *Config
	catalog *Catalog
	point   PointConfig
}

func (h *pointHandler) Attributes(attrs []xmlstream.Attr) error {
	ah := parser.NewAttributeHelper(attrs, nil)
	kind, _, err := ah.Consume("extendedClass", true)
	if err != nil {
		return err
	}
	if _, ok := h.catalog.Kind(kind); !ok {
		return gdataerrors.NewParsef(gdataerrors.ErrInvalidValue, "Unknown extension point kind: '%s'", kind)
	}
	arbitrary, err := ah.ConsumeBool("arbitraryXml", false, false)
	if err != nil {
		return err
	}
	h.point = PointConfig{Kind: kind, ArbitraryXML: arbitrary}
	return ah.AssertAllConsumed()
}

func (h *pointHandler) ChildHandler(name qname.QName, attrs []xmlstream.Attr) (parser.ElementHandler, error) {
	if name == qname.Config.Name(elemDescription) {
		return &descriptionHandler{point: h}, nil
	}
	return h.BaseHandler.ChildHandler(name, attrs)
}

func (h *pointHandler) End() error {
	if err := h.BaseHandler.End(); err != nil {
		return err
	}
	h.cfg.Points = append(h.cfg.Points, h.point)
	return nil
}

type descriptionHandler struct {
	parser.BaseHandler
	point *pointHandler
}

func (h *descriptionHandler) Attributes(attrs []xmlstream.Attr) error {
	ah := parser.NewAttributeHelper(attrs, nil)
	var ext ExtensionConfig
	var err error
	if ext.Namespace, _, err = ah.Consume("namespace", true); err != nil {
		return err
	}
	if ext.LocalName, _, err = ah.Consume("localName", true); err != nil {
		return err
	}
	if ext.Extension, _, err = ah.Consume("extensionClass", true); err != nil {
		return err
	}
	if ext.Required, err = ah.ConsumeBool("required", false, false); err != nil {
		return err
	}
	if ext.Repeatable, err = ah.ConsumeBool("repeatable", false, false); err != nil {
		return err
	}
	if ext.Aggregate, err = ah.ConsumeBool("aggregate", false, false); err != nil {
		return err
	}
	if err := ah.AssertAllConsumed(); err != nil {
		return err
	}
	if _, err := resolveDescription(h.point.cfg.Namespaces, ext, h.point.catalog); err != nil {
		return err
	}
	h.point.point.Extensions = append(h.point.point.Extensions, ext)
	return nil
}

// ParseConfig reads an extensionProfile document and applies its
// declarations. Kind and extension names are resolved through catalog, or
// the default catalog when nil.
func (p *Profile) ParseConfig(ctx context.Context, r io.Reader, catalog *Catalog, opts ...parser.Option) error {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	var cfg Config
	root := &profileHandler{cfg: &cfg, catalog: catalog}
	if err := parser.New(opts...).Parse(ctx, r, root, qname.Config.URI, elemProfile); err != nil {
		return err
	}
	return p.Apply(cfg, catalog)
}

// GenerateConfig writes the profile as an extensionProfile document.
func (p *Profile) GenerateConfig(w io.Writer, catalog *Catalog) error {
	cfg, err := p.Config(catalog)
	if err != nil {
		return err
	}
	xw := xmlwriter.New(w, xmlwriter.WithIndent("  "))
	cns := qname.Config
	if err := xw.StartElement(cns.Name(elemProfile), nil, []qname.Namespace{{URI: cns.URI}}); err != nil {
		return err
	}
	for _, ns := range cfg.Namespaces {
		attrs := []xmlwriter.Attr{
			{Name: qname.Local("alias"), Value: ns.Alias},
			{Name: qname.Local("uri"), Value: ns.URI},
		}
		if err := xw.SimpleElement(cns.Name(elemNamespace), attrs, ""); err != nil {
			return err
		}
	}
	for _, pc := range cfg.Points {
		attrs := []xmlwriter.Attr{
			{Name: qname.Local("extendedClass"), Value: pc.Kind},
			{Name: qname.Local("arbitraryXml"), Value: strconv.FormatBool(pc.ArbitraryXML)},
		}
		if err := xw.StartElement(cns.Name(elemPoint), attrs, nil); err != nil {
			return err
		}
		for _, ext := range pc.Extensions {
			attrs := []xmlwriter.Attr{
				{Name: qname.Local("namespace"), Value: ext.Namespace},
				{Name: qname.Local("localName"), Value: ext.LocalName},
				{Name: qname.Local("extensionClass"), Value: ext.Extension},
				{Name: qname.Local("required"), Value: strconv.FormatBool(ext.Required)},
				{Name: qname.Local("repeatable"), Value: strconv.FormatBool(ext.Repeatable)},
				{Name: qname.Local("aggregate"), Value: strconv.FormatBool(ext.Aggregate)},
			}
			if err := xw.SimpleElement(cns.Name(elemDescription), attrs, ""); err != nil {
				return err
			}
		}
		if err := xw.EndElement(); err != nil {
			return err
		}
	}
	if err := xw.EndElement(); err != nil {
		return err
	}
	return xw.Flush()
}
