// Package bind parses XML into model.Element graphs using only the metadata
// of a model.Schema. It is the generic handler behind every declared element:
// attributes are coerced to their datatypes, children are matched by their
// bound names and cardinality is enforced as elements arrive.
package bind
