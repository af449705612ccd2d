package gdata

import (
	"cmp"
	"fmt"

	"github.com/jacoelho/gdata/pkg/xmlstream"
)

const (
	defaultXMLMaxDepth = 256
	defaultXMLMaxAttrs = 256
)

type xmlParseLimits struct {
	maxDepth int
	maxAttrs int
}

func resolveXMLParseLimits(maxDepth, maxAttrs int) (xmlParseLimits, error) {
	if maxDepth < 0 {
		return xmlParseLimits{}, fmt.Errorf("xml max depth must be >= 0")
	}
	if maxAttrs < 0 {
		return xmlParseLimits{}, fmt.Errorf("xml max attrs must be >= 0")
	}
	return xmlParseLimits{
		maxDepth: defaultXMLLimit(maxDepth, defaultXMLMaxDepth),
		maxAttrs: defaultXMLLimit(maxAttrs, defaultXMLMaxAttrs),
	}, nil
}

func (l xmlParseLimits) options() []xmlstream.Option {
	return []xmlstream.Option{
		xmlstream.WithMaxDepth(l.maxDepth),
		xmlstream.WithMaxAttrs(l.maxAttrs),
	}
}

func defaultXMLLimit(value, fallback int) int {
	return cmp.Or(value, fallback)
}
