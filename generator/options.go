package generator

import (
	"io"
	"log/slog"
)

type config struct {
	logger      *slog.Logger
	indent      string
	declaration bool
	skipChecks  bool
}

// Option configures Generate.
type Option func(*config)

// WithIndent pretty prints with the given per-level indent.
func WithIndent(indent string) Option {
	return func(c *config) {
		c.indent = indent
	}
}

// WithXMLDeclaration writes an XML declaration before the root element.
func WithXMLDeclaration(enabled bool) Option {
	return func(c *config) {
		c.declaration = enabled
	}
}

// WithoutValidation skips the required attribute, element and content checks.
func WithoutValidation() Option {
	return func(c *config) {
		c.skipChecks = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func buildConfig(opts ...Option) config {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
