// Package generator writes model.Element graphs as XML using the metadata
// bound for an output context. Captured foreign markup is written back at
// the child positions it was read from.
package generator
