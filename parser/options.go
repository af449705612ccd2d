package parser

import (
	"io"
	"log/slog"

	"github.com/jacoelho/gdata/pkg/xmlstream"
)

type config struct {
	logger     *slog.Logger
	readerOpts []xmlstream.Option
}

// Option configures a Parser.
type Option func(*config)

// WithLogger sets the logger. Parse failures are logged at warn level and
// foreign markup at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReaderOptions passes options to the underlying xmlstream reader.
func WithReaderOptions(opts ...xmlstream.Option) Option {
	return func(c *config) {
		c.readerOpts = append(c.readerOpts, opts...)
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
