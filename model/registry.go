package model

import "sync"

var (
	defaultBuilder = NewBuilder()
	defaultOnce    sync.Once
	defaultSchema  *Schema
)

// Default returns the process-wide builder. Packages declare their elements
// on it from init functions.
func Default() *Builder {
	return defaultBuilder
}

// DefaultSchema builds the process-wide schema on first use and seals the
// default builder. Conflicting declarations panic, since they are programming
// errors found at startup.
func DefaultSchema() *Schema {
	defaultOnce.Do(func() {
		defaultSchema = defaultBuilder.MustBuild()
		defaultBuilder.Seal()
	})
	return defaultSchema
}
