package atom

import (
	"time"

	"github.com/google/uuid"

	"github.com/jacoelho/gdata/model"
)

// NewEntry creates an entry bound from schema in ctx, with a fresh
// urn:uuid id and the current time as updated. A nil schema uses
// model.DefaultSchema.
func NewEntry(schema *model.Schema, ctx model.Context) (*model.Element, error) {
	return newDocument(schema, ctx, Entry.Key())
}

// NewFeed creates a feed the same way NewEntry creates entries.
func NewFeed(schema *model.Schema, ctx model.Context) (*model.Element, error) {
	return newDocument(schema, ctx, Feed.Key())
}

func newDocument(schema *model.Schema, ctx model.Context, key model.ElementKey) (*model.Element, error) {
	if schema == nil {
		schema = model.DefaultSchema()
	}
	e := model.NewElement(schema.Root(key, ctx))
	if err := SetText(e, IDKey, NewID()); err != nil {
		return nil, err
	}
	if err := SetText(e, UpdatedKey, time.Now().UTC().Truncate(time.Second)); err != nil {
		return nil, err
	}
	return e, nil
}

// NewID returns a random urn:uuid identifier.
func NewID() string {
	return uuid.New().URN()
}

// SetText stores value as the text of the key child of parent, creating the
// child when it does not exist yet.
func SetText(parent *model.Element, key model.ElementKey, value any) error {
	child := parent.Element(key)
	if child == nil {
		child = model.NewElement(parent.Metadata().BindChild(key))
		if err := child.SetText(value); err != nil {
			return err
		}
		return parent.AddElement(child)
	}
	return child.SetText(value)
}

// Text returns the lexical text of the key child of parent, or "".
func Text(parent *model.Element, key model.ElementKey) string {
	if child := parent.Element(key); child != nil {
		return child.TextString()
	}
	return ""
}

// ID returns the atom:id of e.
func ID(e *model.Element) string {
	return Text(e, IDKey)
}

// Title returns the plain-text atom:title of e.
func Title(e *model.Element) string {
	return Text(e, TitleKey)
}

// Updated returns the atom:updated time of e.
func Updated(e *model.Element) (time.Time, bool) {
	child := e.Element(UpdatedKey)
	if child == nil {
		return time.Time{}, false
	}
	v, ok := child.Text()
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Entries returns the entries of a feed, whatever their kind.
func Entries(feed *model.Element) []*model.Element {
	var out []*model.Element
	for _, c := range feed.Children() {
		if k := c.Key().Kind; k != nil && k.Is(Entry) {
			out = append(out, c)
		}
	}
	return out
}
