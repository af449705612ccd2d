package atom

import (
	"github.com/jacoelho/gdata/model"
)

// Link relation values.
const (
	RelSelf      = "self"
	RelPrevious  = "previous"
	RelNext      = "next"
	RelAlternate = "alternate"
	RelRelated   = "related"
	RelEdit      = "edit"
	RelEditMedia = "edit-media"
	RelVia       = "via"
	RelFeed      = "http://schemas.google.com/g/2005#feed"
	RelPost      = "http://schemas.google.com/g/2005#post"
	RelBatch     = "http://schemas.google.com/g/2005#batch"
)

// Link media types.
const (
	TypeAtom = "application/atom+xml"
	TypeHTML = "text/html"
)

// Link is a view of an atom:link element.
type Link struct {
	*model.Element
}

// AsLink returns e as a Link when it is a link element.
func AsLink(e *model.Element) (Link, bool) {
	if e == nil || e.Key() != LinkKey {
		return Link{}, false
	}
	return Link{Element: e}, true
}

// NewLink creates a link bound as a child of parent. Empty rel and typ are
// left unset.
func NewLink(parent *model.Element, rel, typ, href string) (Link, error) {
	l := Link{Element: model.NewElement(parent.Metadata().BindChild(LinkKey))}
	for _, a := range []struct {
		key   model.AttributeKey
		value string
	}{{RelAttr, rel}, {TypeAttr, typ}, {HrefAttr, href}} {
		if a.value == "" {
			continue
		}
		if err := l.SetAttribute(a.key, a.value); err != nil {
			return Link{}, err
		}
	}
	return l, nil
}

// Rel returns the link relation; an absent rel means alternate.
func (l Link) Rel() string {
	if rel, ok := model.Attr[string](l.Element, RelAttr); ok {
		return rel
	}
	return RelAlternate
}

// Type returns the media type, or "".
func (l Link) Type() string {
	v, _ := model.Attr[string](l.Element, TypeAttr)
	return v
}

// Href returns the link target.
func (l Link) Href() string {
	v, _ := model.Attr[string](l.Element, HrefAttr)
	return v
}

// HrefLang returns the language of the target, or "".
func (l Link) HrefLang() string {
	v, _ := model.Attr[string](l.Element, HrefLangAttr)
	return v
}

// Title returns the link title, or "".
func (l Link) Title() string {
	v, _ := model.Attr[string](l.Element, TitleAttr)
	return v
}

// ETag returns the gd:etag of the target, or "".
func (l Link) ETag() string {
	v, _ := model.Attr[string](l.Element, ETagAttr)
	return v
}

// Length returns the advisory content length, or -1 when absent.
func (l Link) Length() int64 {
	if v, ok := model.Attr[int64](l.Element, LengthAttr); ok {
		return v
	}
	return -1
}

// Matches reports whether the link has the given rel and type. An empty
// argument matches any value.
func (l Link) Matches(rel, typ string) bool {
	return (rel == "" || rel == l.Rel()) && (typ == "" || typ == l.Type())
}

// Links returns the link children of e.
func Links(e *model.Element) []Link {
	children := e.Elements(LinkKey)
	out := make([]Link, len(children))
	for i, c := range children {
		out[i] = Link{Element: c}
	}
	return out
}

// FindLink returns the first link of e matching rel and typ.
func FindLink(e *model.Element, rel, typ string) (Link, bool) {
	for _, l := range Links(e) {
		if l.Matches(rel, typ) {
			return l, true
		}
	}
	return Link{}, false
}
