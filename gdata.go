package gdata

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/gdata/atom"
	"github.com/jacoelho/gdata/bind"
	"github.com/jacoelho/gdata/extension"
	"github.com/jacoelho/gdata/generator"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/snapshot"
)

// NewProfile returns an extension profile over the Atom feed and entry kinds
// seeded with the OpenSearch, batch and quota extensions.
func NewProfile() *extension.Profile {
	return atom.NewProfile()
}

// Parse reads a document whose root element is key.
func Parse(ctx context.Context, r io.Reader, key model.ElementKey, opts ParseOptions) (*model.Element, error) {
	if r == nil {
		return nil, fmt.Errorf("parse %s: nil reader", key)
	}
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return bind.Parse(ctx, r, resolved.schema, key, resolved.bind...)
}

// ParseFeed reads a feed of the profile's feed kind, or an Atom feed.
func ParseFeed(ctx context.Context, r io.Reader, opts ParseOptions) (*model.Element, error) {
	kind := atom.Feed
	if p := opts.Profile(); p != nil {
		kind = p.FeedKind()
	}
	return Parse(ctx, r, kind.Key(), opts)
}

// ParseEntry reads an entry of the profile's entry kind, or an Atom entry.
func ParseEntry(ctx context.Context, r io.Reader, opts ParseOptions) (*model.Element, error) {
	kind := atom.Entry
	if p := opts.Profile(); p != nil {
		kind = p.EntryKind()
	}
	return Parse(ctx, r, kind.Key(), opts)
}

// ParseFile reads the document at path.
func ParseFile(ctx context.Context, path string, key model.ElementKey, opts ParseOptions) (e *model.Element, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close xml file %s: %w", path, closeErr)
		}
	}()
	return Parse(ctx, f, key, opts)
}

// Generate writes e to w.
func Generate(w io.Writer, e *model.Element, opts GenerateOptions) error {
	resolved, err := opts.withDefaults()
	if err != nil {
		return err
	}
	return generator.Generate(w, e, resolved.schema, opts.context, resolved.generator...)
}

// Snapshot encodes e in the binary snapshot format.
func Snapshot(e *model.Element) ([]byte, error) {
	return snapshot.Encode(e)
}

// Restore decodes a snapshot, binding it with the schema and context of opts.
func Restore(data []byte, opts ParseOptions) (*model.Element, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	e, err := snapshot.Decode(data, resolved.schema, opts.context)
	if err != nil {
		return nil, err
	}
	if opts.lock {
		e.Lock()
	}
	return e, nil
}
