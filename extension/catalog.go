package extension

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jacoelho/gdata/model"
)

// Catalog maps the kind and extension names used in configuration documents
// to the kinds and element keys compiled into the program.
type Catalog struct {
	kinds      map[string]*model.Kind
	extensions map[string]model.ElementKey
	mu         sync.RWMutex
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		kinds:      make(map[string]*model.Kind),
		extensions: make(map[string]model.ElementKey),
	}
}

var defaultCatalog = NewCatalog()

// DefaultCatalog returns the process-wide catalog that packages register
// their kinds and extensions with from init functions.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// RegisterKind adds kind under its name.
func (c *Catalog) RegisterKind(kind *model.Kind) error {
	if kind == nil || kind.Name() == "" {
		return fmt.Errorf("extension: kind without a name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.kinds[kind.Name()]; ok && existing != kind {
		return fmt.Errorf("extension: kind %q already registered", kind.Name())
	}
	c.kinds[kind.Name()] = kind
	return nil
}

// RegisterExtension adds key under name.
func (c *Catalog) RegisterExtension(name string, key model.ElementKey) error {
	if name == "" || key.Name.Local == "" {
		return fmt.Errorf("extension: extension %q without a name", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.extensions[name]; ok && existing != key {
		return fmt.Errorf("extension: extension %q already registered", name)
	}
	c.extensions[name] = key
	return nil
}

// MustRegister registers kinds and panics on conflicts.
func (c *Catalog) MustRegister(kinds ...*model.Kind) {
	for _, k := range kinds {
		if err := c.RegisterKind(k); err != nil {
			panic(err)
		}
	}
}

// Kind returns the kind registered under name.
func (c *Catalog) Kind(name string) (*model.Kind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.kinds[name]
	return k, ok
}

// Extension returns the element key registered under name.
func (c *Catalog) Extension(name string) (model.ElementKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.extensions[name]
	return k, ok
}

// ExtensionName returns the name of the extension key is an instance of.
// An exact match wins; otherwise a registered key with the same kind and
// datatype matches, since configuration may rename extensions.
func (c *Catalog) ExtensionName(key model.ElementKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.extensions))
	for name := range c.extensions {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if c.extensions[name] == key {
			return name, true
		}
	}
	if key.Kind == nil {
		return "", false
	}
	for _, name := range names {
		k := c.extensions[name]
		if k.Kind == key.Kind && k.Datatype == key.Datatype {
			return name, true
		}
	}
	return "", false
}

// KindNames returns the registered kind names in order.
func (c *Catalog) KindNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.kinds))
	for name := range c.kinds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
