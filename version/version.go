// Package version models service protocol versions and their compatibility.
package version

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Any matches every major or minor version.
const Any = -1

var descriptionPattern = regexp.MustCompile(`^([^\d]+-)?(\d+)(\.\d+)?$`)

// Version identifies a major/minor version of a service protocol.
// A version may imply others; it is compatible with anything an implied
// version is compatible with.
type Version struct {
	Service string
	implied []*Version
	Major   int
	Minor   int
}

// New creates a version. major and minor must be non-negative or Any.
func New(service string, major, minor int, implied ...*Version) (*Version, error) {
	if service == "" {
		return nil, fmt.Errorf("version: empty service")
	}
	if major < 0 && major != Any {
		return nil, fmt.Errorf("version: invalid major version: %d", major)
	}
	if minor < 0 && minor != Any {
		return nil, fmt.Errorf("version: invalid minor version: %d", minor)
	}
	v := &Version{Service: service, Major: major, Minor: minor}
	v.computeImplied(implied)
	return v, nil
}

// MustNew is New that panics on error, for package-level version tables.
func MustNew(service string, major, minor int, implied ...*Version) *Version {
	v, err := New(service, major, minor, implied...)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse reads a "[service-]major[.minor]" description. An omitted minor is Any.
// When service is empty the description's service prefix is used.
func Parse(service, description string, implied ...*Version) (*Version, error) {
	m := descriptionPattern.FindStringSubmatch(strings.TrimSpace(description))
	if m == nil {
		return nil, fmt.Errorf("version: description does not match [{service}-]{major}[.{minor}]: %q", description)
	}
	if service == "" {
		service = strings.TrimSuffix(m[1], "-")
	}
	major, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("version: major %q: %w", m[2], err)
	}
	minor := Any
	if m[3] != "" {
		minor, err = strconv.Atoi(m[3][1:])
		if err != nil {
			return nil, fmt.Errorf("version: minor %q: %w", m[3], err)
		}
	}
	return New(service, major, minor, implied...)
}

func (v *Version) computeImplied(list []*Version) {
	v.implied = append(v.implied, v)
	for _, iv := range list {
		v.addImplied(iv)
	}
}

func (v *Version) addImplied(iv *Version) {
	if iv == nil || slices.ContainsFunc(v.implied, iv.Equal) {
		return
	}
	v.implied = append(v.implied, iv)
	for _, transitive := range iv.implied {
		v.addImplied(transitive)
	}
}

// Implied returns this version followed by every version it implies.
func (v *Version) Implied() []*Version {
	if v == nil {
		return nil
	}
	return slices.Clone(v.implied)
}

// SameService reports whether both versions belong to the same service.
func (v *Version) SameService(other *Version) bool {
	return v != nil && other != nil && v.Service == other.Service
}

// IsCompatible reports whether other shares this service and major version,
// either side uses Any for major, or an implied version is compatible.
func (v *Version) IsCompatible(other *Version) bool {
	if v == nil || other == nil {
		return false
	}
	if v.SameService(other) && (v.Major == other.Major || v.Major == Any || other.Major == Any) {
		return true
	}
	for _, iv := range v.implied {
		if iv == v {
			continue
		}
		if iv.IsCompatible(other) {
			return true
		}
	}
	return false
}

// Equal compares service, major and minor.
func (v *Version) Equal(other *Version) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.SameService(other) && v.Major == other.Major && v.Minor == other.Minor
}

// VersionString renders "major[.minor]", omitting Any parts.
func (v *Version) VersionString() string {
	var sb strings.Builder
	if v.Major != Any {
		sb.WriteString(strconv.Itoa(v.Major))
	}
	if v.Minor != Any {
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(v.Minor))
	}
	return sb.String()
}

func (v *Version) String() string {
	if v == nil {
		return "<nil>"
	}
	return v.Service + ":" + v.VersionString()
}

// Registry holds the active version of each service.
type Registry struct {
	versions []*Version
	mu       sync.RWMutex
}

// NewRegistry creates a registry holding versions.
func NewRegistry(versions ...*Version) (*Registry, error) {
	r := &Registry{}
	if err := r.Merge(versions...); err != nil {
		return nil, err
	}
	return r, nil
}

// Merge adds versions for services not yet registered. A version that is
// incompatible with the registered one for its service fails the whole merge
// and leaves the registry unchanged.
func (r *Registry) Merge(versions ...*Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var added []*Version
	for _, v := range versions {
		if v == nil {
			continue
		}
		current := find(r.versions, v.Service)
		if current == nil {
			current = find(added, v.Service)
		}
		if current == nil {
			added = append(added, v)
			continue
		}
		if !current.IsCompatible(v) {
			return fmt.Errorf("version: conflicting versions: current %s, new %s", current, v)
		}
	}
	r.versions = append(r.versions, added...)
	return nil
}

// Get returns the registered version of service, or nil.
func (r *Registry) Get(service string) *Version {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return find(r.versions, service)
}

// Versions returns the registered versions in registration order.
func (r *Registry) Versions() []*Version {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.versions)
}

func find(versions []*Version, service string) *Version {
	for _, v := range versions {
		if v.Service == service {
			return v
		}
	}
	return nil
}
