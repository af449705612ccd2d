// Package extension declares which extension elements may appear inside an
// extension point, such as an Atom feed or entry.
//
// A Profile collects those declarations, per kind, and compiles them into a
// model.Schema on top of a base builder. Profiles can also be read from and
// written to the XML configuration format or an equivalent YAML document,
// with kind and extension names resolved through a Catalog.
package extension
