// Package gdata binds GData Atom feeds and entries to metadata-driven element
// graphs and writes them back.
//
// The package is a thin facade over the model, bind, generator, extension
// and snapshot packages with the Atom declarations of the atom package
// preloaded. Options are immutable values:
//
//	opts := gdata.NewParseOptions().WithProfile(gdata.NewProfile()).WithVersion(atom.V2)
//	feed, err := gdata.ParseFeed(ctx, r, opts)
package gdata
