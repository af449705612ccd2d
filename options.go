package gdata

import (
	"fmt"
	"log/slog"

	"github.com/jacoelho/gdata/bind"
	"github.com/jacoelho/gdata/extension"
	"github.com/jacoelho/gdata/generator"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/version"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

// ParseOptions configures parsing. The zero value parses with the default
// Atom schema in the default context.
type ParseOptions struct {
	logger   *slog.Logger
	profile  *extension.Profile
	context  model.Context
	maxDepth intOption
	maxAttrs intOption
	lock     bool
}

// GenerateOptions configures generation.
type GenerateOptions struct {
	logger         *slog.Logger
	profile        *extension.Profile
	context        model.Context
	indent         string
	declaration    bool
	skipValidation bool
}

type resolvedParseOptions struct {
	schema *model.Schema
	bind   []bind.Option
}

type resolvedGenerateOptions struct {
	schema    *model.Schema
	generator []generator.Option
}

// NewParseOptions returns a default, valid parse options value.
func NewParseOptions() ParseOptions {
	return ParseOptions{}
}

// NewGenerateOptions returns a default, valid generate options value.
func NewGenerateOptions() GenerateOptions {
	return GenerateOptions{}
}

// Validate validates parse options values.
func (o ParseOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// Validate validates generate options values.
func (o GenerateOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// Context returns the metadata context documents are bound in.
func (o ParseOptions) Context() model.Context {
	return o.context
}

// Profile returns the extension profile, or nil.
func (o ParseOptions) Profile() *extension.Profile {
	return o.profile
}

// WithContext sets the metadata context.
func (o ParseOptions) WithContext(ctx model.Context) ParseOptions {
	o.context = ctx
	return o
}

// WithVersion sets the protocol version of the metadata context.
func (o ParseOptions) WithVersion(v *version.Version) ParseOptions {
	o.context.Version = v
	return o
}

// WithProfile compiles documents against p instead of the default schema.
func (o ParseOptions) WithProfile(p *extension.Profile) ParseOptions {
	o.profile = p
	return o
}

// WithLogger sets the logger used for parse diagnostics.
func (o ParseOptions) WithLogger(logger *slog.Logger) ParseOptions {
	o.logger = logger
	return o
}

// WithLock controls whether parsed graphs are locked against mutation.
func (o ParseOptions) WithLock(value bool) ParseOptions {
	o.lock = value
	return o
}

// WithMaxDepth sets the XML max depth limit (0 uses default).
func (o ParseOptions) WithMaxDepth(value int) ParseOptions {
	o.maxDepth = intOption{value: value, set: true}
	return o
}

// WithMaxAttrs sets the XML max attributes limit (0 uses default).
func (o ParseOptions) WithMaxAttrs(value int) ParseOptions {
	o.maxAttrs = intOption{value: value, set: true}
	return o
}

// WithContext sets the metadata context output is bound in.
func (o GenerateOptions) WithContext(ctx model.Context) GenerateOptions {
	o.context = ctx
	return o
}

// WithVersion sets the protocol version of the metadata context.
func (o GenerateOptions) WithVersion(v *version.Version) GenerateOptions {
	o.context.Version = v
	return o
}

// WithProfile binds output metadata from p.
func (o GenerateOptions) WithProfile(p *extension.Profile) GenerateOptions {
	o.profile = p
	return o
}

// WithLogger sets the logger used for generate diagnostics.
func (o GenerateOptions) WithLogger(logger *slog.Logger) GenerateOptions {
	o.logger = logger
	return o
}

// WithIndent pretty prints output with indent per level.
func (o GenerateOptions) WithIndent(indent string) GenerateOptions {
	o.indent = indent
	return o
}

// WithXMLDeclaration controls whether an XML declaration is written.
func (o GenerateOptions) WithXMLDeclaration(value bool) GenerateOptions {
	o.declaration = value
	return o
}

// WithValidation controls the required element, attribute and content
// checks run before writing. They are on by default.
func (o GenerateOptions) WithValidation(value bool) GenerateOptions {
	o.skipValidation = !value
	return o
}

func schemaFor(p *extension.Profile) (*model.Schema, error) {
	if p == nil {
		return model.DefaultSchema(), nil
	}
	s, err := p.Schema(nil)
	if err != nil {
		return nil, fmt.Errorf("compile profile: %w", err)
	}
	return s, nil
}

func (o ParseOptions) withDefaults() (resolvedParseOptions, error) {
	limits, err := resolveXMLParseLimits(o.maxDepth.resolved(), o.maxAttrs.resolved())
	if err != nil {
		return resolvedParseOptions{}, fmt.Errorf("xml limits: %w", err)
	}
	schema, err := schemaFor(o.profile)
	if err != nil {
		return resolvedParseOptions{}, err
	}
	opts := []bind.Option{
		bind.WithContext(o.context),
		bind.WithLock(o.lock),
		bind.WithReaderOptions(limits.options()...),
	}
	if o.logger != nil {
		opts = append(opts, bind.WithLogger(o.logger))
	}
	return resolvedParseOptions{schema: schema, bind: opts}, nil
}

func (o GenerateOptions) withDefaults() (resolvedGenerateOptions, error) {
	schema, err := schemaFor(o.profile)
	if err != nil {
		return resolvedGenerateOptions{}, err
	}
	opts := []generator.Option{
		generator.WithIndent(o.indent),
		generator.WithXMLDeclaration(o.declaration),
	}
	if o.skipValidation {
		opts = append(opts, generator.WithoutValidation())
	}
	if o.logger != nil {
		opts = append(opts, generator.WithLogger(o.logger))
	}
	return resolvedGenerateOptions{schema: schema, generator: opts}, nil
}
