// Package parser implements a single-pass streaming XML parser driven by a
// stack of element handlers.
//
// Each recognized element gets an ElementHandler, returned by its parent's
// ChildHandler. Elements no handler recognizes are either rejected or, when
// the owning handler initialized a blob, copied verbatim into that blob
// together with the namespaces they use.
package parser
