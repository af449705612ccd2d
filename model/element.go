package model

import (
	"errors"
	"fmt"
	"slices"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/xmlblob"
)

type attrValue struct {
	value any
	key   AttributeKey
}

// Element is one node of a bound element graph. Attribute values and text
// hold the Go values of their datatypes.
type Element struct {
	meta     *ElementMetadata
	text     any
	blob     *xmlblob.Blob
	lang     string
	base     string
	attrs    []attrValue
	children []*Element
	hasText  bool
	locked   bool
}

// NewElement creates an empty element described by meta.
func NewElement(meta *ElementMetadata) *Element {
	return &Element{meta: meta}
}

// Metadata returns the bound metadata.
func (e *Element) Metadata() *ElementMetadata { return e.meta }

// Key returns the element key.
func (e *Element) Key() ElementKey { return e.meta.key }

// Name returns the bound element name.
func (e *Element) Name() qname.QName { return e.meta.name }

// SetAttribute stores value for key. value must be of the attribute's Go
// type; nil removes the attribute.
func (e *Element) SetAttribute(key AttributeKey, value any) error {
	if e.locked {
		return gdataerrors.ErrLocked
	}
	if value == nil {
		e.removeAttr(key)
		return nil
	}
	am := e.meta.Attribute(key)
	if am == nil {
		return fmt.Errorf("%w: attribute %s on %s", gdataerrors.ErrUndeclared, key, e.meta.name)
	}
	lexical, err := key.Datatype.Format(value)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", key, err)
	}
	if !am.Allows(lexical) {
		return fmt.Errorf("attribute %s: value %q is not one of %v", key, lexical, am.enum)
	}
	for i := range e.attrs {
		if e.attrs[i].key == key {
			e.attrs[i].value = value
			return nil
		}
	}
	e.attrs = append(e.attrs, attrValue{key: key, value: value})
	return nil
}

// AttributeValue returns the stored value of key.
func (e *Element) AttributeValue(key AttributeKey) (any, bool) {
	for _, a := range e.attrs {
		if a.key == key {
			return a.value, true
		}
	}
	return nil, false
}

// AttributeKeys returns the keys of stored attributes in insertion order.
func (e *Element) AttributeKeys() []AttributeKey {
	keys := make([]AttributeKey, len(e.attrs))
	for i, a := range e.attrs {
		keys[i] = a.key
	}
	return keys
}

// Attr returns the attribute value of key as T.
func Attr[T any](e *Element, key AttributeKey) (T, bool) {
	var zero T
	v, ok := e.AttributeValue(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// RemoveAttribute deletes the value of key.
func (e *Element) RemoveAttribute(key AttributeKey) error {
	if e.locked {
		return gdataerrors.ErrLocked
	}
	e.removeAttr(key)
	return nil
}

func (e *Element) removeAttr(key AttributeKey) {
	e.attrs = slices.DeleteFunc(e.attrs, func(a attrValue) bool { return a.key == key })
}

// AddElement appends child. The child's key must be declared by this
// element's metadata; a second single or aggregate child is rejected.
func (e *Element) AddElement(child *Element) error {
	if e.locked {
		return gdataerrors.ErrLocked
	}
	if child == nil {
		return fmt.Errorf("nil child of %s", e.meta.name)
	}
	key := child.Key()
	if !e.meta.AcceptsChild(key) {
		return fmt.Errorf("%w: child %s of %s", gdataerrors.ErrUndeclared, key, e.meta.name)
	}
	if child.meta.cardinality != Multiple && e.Element(key) != nil {
		return fmt.Errorf("element %s already has a %s child", e.meta.name, child.meta.name)
	}
	e.children = append(e.children, child)
	return nil
}

// Elements returns the children with key, in document order.
func (e *Element) Elements(key ElementKey) []*Element {
	var out []*Element
	for _, c := range e.children {
		if c.Key() == key {
			out = append(out, c)
		}
	}
	return out
}

// Element returns the first child with key, or nil.
func (e *Element) Element(key ElementKey) *Element {
	for _, c := range e.children {
		if c.Key() == key {
			return c
		}
	}
	return nil
}

// RemoveElement removes every child with key.
func (e *Element) RemoveElement(key ElementKey) error {
	if e.locked {
		return gdataerrors.ErrLocked
	}
	e.children = slices.DeleteFunc(e.children, func(c *Element) bool { return c.Key() == key })
	return nil
}

// Children returns all children in order.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// SetText stores the text value; nil clears it.
func (e *Element) SetText(value any) error {
	if e.locked {
		return gdataerrors.ErrLocked
	}
	if value == nil {
		e.text, e.hasText = nil, false
		return nil
	}
	dt := e.meta.key.Datatype
	if dt == Void {
		return fmt.Errorf("%w: text content on %s", gdataerrors.ErrUndeclared, e.meta.name)
	}
	if _, err := dt.Format(value); err != nil {
		return fmt.Errorf("text of %s: %w", e.meta.name, err)
	}
	e.text, e.hasText = value, true
	return nil
}

// Text returns the text value.
func (e *Element) Text() (any, bool) {
	return e.text, e.hasText
}

// TextString returns the lexical text value, or "" if unset.
func (e *Element) TextString() string {
	if !e.hasText {
		return ""
	}
	s, _ := e.meta.key.Datatype.Format(e.text)
	return s
}

// SetBlob stores captured foreign markup.
func (e *Element) SetBlob(b *xmlblob.Blob) error {
	if e.locked {
		return gdataerrors.ErrLocked
	}
	e.blob = b
	return nil
}

// Blob returns captured foreign markup, or nil. A locked element returns
// a copy.
func (e *Element) Blob() *xmlblob.Blob {
	if e.locked {
		return e.blob.Clone()
	}
	return e.blob
}

// SetLang stores the xml:lang written on this element; "" clears it.
func (e *Element) SetLang(lang string) error {
	if e.locked {
		return gdataerrors.ErrLocked
	}
	e.lang = lang
	return nil
}

// Lang returns the element's own xml:lang, not the inherited one.
func (e *Element) Lang() string { return e.lang }

// SetBase stores the xml:base written on this element as given; "" clears it.
func (e *Element) SetBase(base string) error {
	if e.locked {
		return gdataerrors.ErrLocked
	}
	e.base = base
	return nil
}

// Base returns the element's own xml:base, not the cumulative one.
func (e *Element) Base() string { return e.base }

// Lock freezes the element and its descendants.
func (e *Element) Lock() {
	e.locked = true
	for _, c := range e.children {
		c.Lock()
	}
}

// Locked reports whether the element rejects mutation.
func (e *Element) Locked() bool {
	return e.locked
}

// Equal compares key, xml:lang, xml:base, attributes, children in order,
// text and blob.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Key() != other.Key() || e.hasText != other.hasText {
		return false
	}
	if e.lang != other.lang || e.base != other.base {
		return false
	}
	if e.hasText && e.TextString() != other.TextString() {
		return false
	}
	if len(e.attrs) != len(other.attrs) {
		return false
	}
	for _, a := range e.attrs {
		v, ok := other.AttributeValue(a.key)
		if !ok {
			return false
		}
		left, _ := a.key.Datatype.Format(a.value)
		right, _ := a.key.Datatype.Format(v)
		if left != right {
			return false
		}
	}
	if len(e.children) != len(other.children) {
		return false
	}
	for i := range e.children {
		if !e.children[i].Equal(other.children[i]) {
			return false
		}
	}
	return e.blob.Equal(other.blob)
}

// Validate checks required attributes, children and content recursively.
// Violations are joined *errors.GenerateError values.
func (e *Element) Validate() error {
	var errs []error
	e.validate("", &errs)
	return errors.Join(errs...)
}

func (e *Element) validate(parentPath string, errs *[]error) {
	path := parentPath + "/" + e.meta.name.Local
	for _, am := range e.meta.attrs {
		if !am.required {
			continue
		}
		if _, ok := e.AttributeValue(am.key); ok {
			continue
		}
		if _, ok := am.Default(); ok {
			continue
		}
		*errs = append(*errs, gdataerrors.NewGeneratef(gdataerrors.ErrMissingAttribute, path,
			"missing required attribute %s", am.name))
	}
	for _, ck := range e.meta.children {
		cm := e.meta.BindChild(ck)
		if !cm.required {
			continue
		}
		if !slices.ContainsFunc(e.children, func(c *Element) bool { return c.Key().Matches(ck) }) {
			*errs = append(*errs, gdataerrors.NewGeneratef(gdataerrors.ErrMissingElement, path,
				"missing required element %s", cm.name))
		}
	}
	if e.meta.contentRequired && (!e.hasText || e.TextString() == "") {
		*errs = append(*errs, gdataerrors.NewGeneratef(gdataerrors.ErrMissingContent, path,
			"missing required text content"))
	}
	for _, c := range e.children {
		c.validate(path, errs)
	}
}
