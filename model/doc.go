// Package model holds the declarative element metadata and the generic
// element graph it describes.
//
// Declarations are made on a Builder: element and attribute keys, their
// cardinality and requiredness, child-in-parent overrides and per-context
// transforms. Build snapshots the declarations into an immutable Schema, whose
// Bind resolves the effective ElementMetadata of a key under a parent and a
// Context. The process-wide Default builder receives declarations from package
// init functions and is sealed when DefaultSchema is first built.
package model
