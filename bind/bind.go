package bind

import (
	"context"
	"fmt"
	"io"

	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/parser"
)

// Parse reads one document whose root is key and returns its element graph.
func Parse(ctx context.Context, r io.Reader, schema *model.Schema, key model.ElementKey, opts ...Option) (*model.Element, error) {
	if schema == nil {
		return nil, fmt.Errorf("bind: nil schema")
	}
	cfg := buildConfig(opts...)
	meta := schema.Root(key, cfg.context)
	root := model.NewElement(meta)
	h, err := NewHandler(root, cfg.logger)
	if err != nil {
		return nil, err
	}
	name := meta.Name()
	if err := parser.New(cfg.parserOptions()...).Parse(ctx, r, h, name.Space, name.Local); err != nil {
		return nil, err
	}
	if cfg.lock {
		root.Lock()
	}
	return root, nil
}
