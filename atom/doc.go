// Package atom declares the Atom syndication elements and the GData,
// AtomPub, batch, OpenSearch and ACL elements commonly used with them.
//
// Declarations are made on model.Default from init, and the kinds and
// extension keys are registered with extension.DefaultCatalog so that
// configuration documents can refer to them by name. Importing the package
// for side effects is enough to bind Atom documents:
//
//	import _ "github.com/jacoelho/gdata/atom"
//
// The typed helpers (Link, Operation, Scope, NewEntry) work on the generic
// model.Element graph produced by the bind package.
package atom
