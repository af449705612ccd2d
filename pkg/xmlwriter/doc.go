// Package xmlwriter writes namespace-aware XML to a stream.
//
// The writer tracks in-scope prefix bindings per element and picks a prefix
// for each namespace it meets: one already in scope, the preferred alias from
// the alias table, or a generated nsN prefix. Raw variants emit names exactly
// as given, which is how captured foreign markup is reproduced verbatim.
package xmlwriter
