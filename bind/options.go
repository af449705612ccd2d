package bind

import (
	"io"
	"log/slog"

	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/parser"
	"github.com/jacoelho/gdata/pkg/xmlstream"
)

type config struct {
	logger     *slog.Logger
	readerOpts []xmlstream.Option
	context    model.Context
	lock       bool
}

// Option configures Parse.
type Option func(*config)

// WithContext binds metadata in ctx, selecting its context transforms.
func WithContext(ctx model.Context) Option {
	return func(c *config) {
		c.context = ctx
	}
}

// WithLogger sets the logger used by the parser and the binding handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReaderOptions passes limits to the underlying XML reader.
func WithReaderOptions(opts ...xmlstream.Option) Option {
	return func(c *config) {
		c.readerOpts = append(c.readerOpts, opts...)
	}
}

// WithLock locks the returned element graph.
func WithLock(lock bool) Option {
	return func(c *config) {
		c.lock = lock
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

func (c config) parserOptions() []parser.Option {
	return []parser.Option{
		parser.WithLogger(c.logger),
		parser.WithReaderOptions(c.readerOpts...),
	}
}
