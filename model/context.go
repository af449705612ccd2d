package model

import (
	"strings"

	"github.com/jacoelho/gdata/version"
)

// Context selects context-specific metadata transforms: an alternate wire
// format, a projection, or a protocol version.
type Context struct {
	Version    *version.Version
	Format     string
	Projection string
}

// IsZero reports whether no field is set.
func (c Context) IsZero() bool {
	return c.Format == "" && c.Projection == "" && c.Version == nil
}

// Specificity is the number of fields set on a declared context.
func (c Context) Specificity() int {
	n := 0
	if c.Format != "" {
		n++
	}
	if c.Projection != "" {
		n++
	}
	if c.Version != nil {
		n++
	}
	return n
}

// Matches reports whether the declared context c applies to query: every
// field set on c must match query, versions by compatibility.
func (c Context) Matches(query Context) bool {
	if c.Format != "" && c.Format != query.Format {
		return false
	}
	if c.Projection != "" && c.Projection != query.Projection {
		return false
	}
	if c.Version != nil && !c.Version.IsCompatible(query.Version) {
		return false
	}
	return true
}

// String renders the set fields, or "" for the zero context.
func (c Context) String() string {
	var parts []string
	if c.Format != "" {
		parts = append(parts, "format="+c.Format)
	}
	if c.Projection != "" {
		parts = append(parts, "projection="+c.Projection)
	}
	if c.Version != nil {
		parts = append(parts, "version="+c.Version.String())
	}
	return strings.Join(parts, ",")
}
