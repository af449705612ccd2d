package xmlstream

import (
	"fmt"
	"io"
	"strings"
)

const (
	defaultMaxDepth = 256
	defaultMaxAttrs = 256
)

type config struct {
	charsetReader func(label string, input io.Reader) (io.Reader, error)
	maxDepth      int
	maxAttrs      int
}

// Option configures the xmlstream reader.
type Option func(*config)

// WithMaxDepth limits element nesting. Zero or negative disables the limit.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMaxAttrs limits the number of attributes on a single element,
// namespace declarations included. Zero or negative disables the limit.
func WithMaxAttrs(n int) Option {
	return func(c *config) {
		c.maxAttrs = n
	}
}

// WithCharsetReader installs a converter for non UTF-8 documents.
func WithCharsetReader(fn func(label string, input io.Reader) (io.Reader, error)) Option {
	return func(c *config) {
		c.charsetReader = fn
	}
}

func buildConfig(opts ...Option) config {
	cfg := config{
		maxDepth:      defaultMaxDepth,
		maxAttrs:      defaultMaxAttrs,
		charsetReader: defaultCharsetReader,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// defaultCharsetReader accepts the single-byte encodings feeds are
// commonly declared with besides UTF-8.
func defaultCharsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "us-ascii", "ascii":
		return input, nil
	case "iso-8859-1", "latin1", "latin-1":
		return &latin1Reader{r: input}, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}

type latin1Reader struct {
	r       io.Reader
	pending []byte
	buf     []byte
}

func (l *latin1Reader) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		if cap(l.buf) < len(p)/2+1 {
			l.buf = make([]byte, len(p)/2+1)
		}
		n, err := l.r.Read(l.buf[:len(p)/2+1])
		if n == 0 {
			return 0, err
		}
		for _, b := range l.buf[:n] {
			l.pending = append(l.pending, string(rune(b))...)
		}
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}
