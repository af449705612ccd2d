package extension

import (
	"slices"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/pkg/qname"
)

// Config is the serializable form of a profile. Kinds and extensions are
// referred to by their catalog names.
type Config struct {
	Namespaces []NamespaceConfig `yaml:"namespaces,omitempty"`
	Points     []PointConfig     `yaml:"extensionPoints,omitempty"`
}

// NamespaceConfig declares a namespace and its alias.
type NamespaceConfig struct {
	Alias string `yaml:"alias"`
	URI   string `yaml:"uri"`
}

// PointConfig lists the extensions of one extension point kind.
type PointConfig struct {
	Kind         string            `yaml:"kind"`
	Extensions   []ExtensionConfig `yaml:"extensions,omitempty"`
	ArbitraryXML bool              `yaml:"arbitraryXml,omitempty"`
}

// ExtensionConfig describes one extension. Namespace holds either the
// alias or the URI of a declared namespace.
type ExtensionConfig struct {
	Namespace  string `yaml:"namespace"`
	LocalName  string `yaml:"localName"`
	Extension  string `yaml:"extension"`
	Required   bool   `yaml:"required,omitempty"`
	Repeatable bool   `yaml:"repeatable,omitempty"`
	Aggregate  bool   `yaml:"aggregate,omitempty"`
}

func findNamespace(namespaces []NamespaceConfig, value string) (qname.Namespace, bool) {
	for _, ns := range namespaces {
		if ns.Alias == value || ns.URI == value {
			return qname.Namespace{Prefix: ns.Alias, URI: ns.URI}, true
		}
	}
	return qname.Namespace{}, false
}

func resolveDescription(namespaces []NamespaceConfig, ext ExtensionConfig, catalog *Catalog) (Description, error) {
	ns, ok := findNamespace(namespaces, ext.Namespace)
	if !ok {
		return Description{}, gdataerrors.NewParsef(gdataerrors.ErrInvalidValue,
			"No matching namespace description for %s", ext.Namespace)
	}
	if ext.LocalName == "" {
		return Description{}, gdataerrors.NewParsef(gdataerrors.ErrMissingAttribute, "Missing attribute: '%s'", "localName")
	}
	key, ok := catalog.Extension(ext.Extension)
	if !ok {
		return Description{}, gdataerrors.NewParsef(gdataerrors.ErrInvalidValue,
			"Unknown extension: '%s'", ext.Extension)
	}
	key.Name = ns.Name(ext.LocalName)
	return Description{
		Key:        key,
		Namespace:  ns,
		Required:   ext.Required,
		Repeatable: ext.Repeatable,
		Aggregate:  ext.Aggregate,
	}, nil
}

// Apply adds the declarations of cfg. Nothing is declared unless the whole
// configuration resolves against catalog.
func (p *Profile) Apply(cfg Config, catalog *Catalog) error {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	type point struct {
		config PointConfig
		descs  []Description
	}
	points := make([]point, 0, len(cfg.Points))
	for _, pc := range cfg.Points {
		if _, ok := catalog.Kind(pc.Kind); !ok {
			return gdataerrors.NewConfigf(gdataerrors.ErrInvalidDeclaration, "unknown extension point kind %q", pc.Kind)
		}
		pt := point{config: pc}
		for _, ext := range pc.Extensions {
			d, err := resolveDescription(cfg.Namespaces, ext, catalog)
			if err != nil {
				return gdataerrors.NewConfigf(gdataerrors.ErrInvalidDeclaration, "extension point %s: %s", pc.Kind, err.Error())
			}
			pt.descs = append(pt.descs, d)
		}
		points = append(points, pt)
	}

	for _, ns := range cfg.Namespaces {
		p.DeclareAdditionalNamespace(qname.Namespace{Prefix: ns.Alias, URI: ns.URI})
	}
	for _, pt := range points {
		kind, _ := catalog.Kind(pt.config.Kind)
		if pt.config.ArbitraryXML {
			p.DeclareArbitraryXML(kind)
		}
		for _, d := range pt.descs {
			p.Declare(kind, d)
		}
	}
	return nil
}

// Config returns the serializable form of the profile, with extension
// points ordered by kind name and extensions in Description order.
func (p *Profile) Config(catalog *Catalog) (Config, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	var cfg Config
	addNamespace := func(ns qname.Namespace) {
		if slices.ContainsFunc(cfg.Namespaces, func(n NamespaceConfig) bool { return n.URI == ns.URI }) {
			return
		}
		cfg.Namespaces = append(cfg.Namespaces, NamespaceConfig{Alias: ns.Prefix, URI: ns.URI})
	}
	for _, ns := range p.AdditionalNamespaces() {
		addNamespace(ns)
	}
	for _, kind := range p.Kinds() {
		if registered, ok := catalog.Kind(kind.Name()); !ok || registered != kind {
			return Config{}, gdataerrors.NewConfigf(gdataerrors.ErrInvalidDeclaration, "kind %q is not in the catalog", kind.Name())
		}
		m, _ := p.Manifest(kind)
		pc := PointConfig{Kind: kind.Name(), ArbitraryXML: m.ArbitraryXML}
		for _, d := range m.Descriptions() {
			name, ok := catalog.ExtensionName(d.Key)
			if !ok {
				return Config{}, gdataerrors.NewConfigf(gdataerrors.ErrInvalidDeclaration, "extension %s is not in the catalog", d.Key)
			}
			addNamespace(d.Namespace)
			pc.Extensions = append(pc.Extensions, ExtensionConfig{
				Namespace:  d.Namespace.URI,
				LocalName:  d.Key.Name.Local,
				Extension:  name,
				Required:   d.Required,
				Repeatable: d.Repeatable,
				Aggregate:  d.Aggregate,
			})
		}
		cfg.Points = append(cfg.Points, pc)
	}
	return cfg, nil
}
