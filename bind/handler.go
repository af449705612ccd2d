package bind

import (
	"log/slog"
	"strings"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/parser"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/pkg/xmlstream"
	"github.com/jacoelho/gdata/xmlblob"
)

// Handler binds one element. It is exported so hand-written handlers can
// delegate to it for the parts of a document they do not model themselves.
type Handler struct {
	parser.BaseHandler
	element *model.Element
	meta    *model.ElementMetadata
	logger  *slog.Logger
	merged  bool
}

// NewHandler returns a handler that fills element according to its metadata.
func NewHandler(element *model.Element, logger *slog.Logger) (*Handler, error) {
	h := &Handler{element: element, meta: element.Metadata(), logger: logger}
	if err := h.initContent(); err != nil {
		return nil, err
	}
	return h, nil
}

// Element returns the element being filled.
func (h *Handler) Element() *model.Element {
	return h.element
}

// Merged reports whether the handler fills an aggregate element bound by an
// earlier occurrence.
func (h *Handler) Merged() bool {
	return h.merged
}

func (h *Handler) initContent() error {
	if h.meta.ArbitraryXML() {
		blob := h.element.Blob()
		if blob == nil {
			blob = &xmlblob.Blob{}
		}
		return h.InitBlob(blob, h.meta.MixedContent(), h.meta.FullTextIndex())
	}
	h.SetMixedContent(h.meta.MixedContent())
	return nil
}

// ChildHandler binds declared children by their bound name. Undeclared
// children fall back to blob capture or are rejected.
func (h *Handler) ChildHandler(name qname.QName, attrs []xmlstream.Attr) (parser.ElementHandler, error) {
	key, ok := h.meta.ChildByName(name)
	if !ok {
		return h.BaseHandler.ChildHandler(name, attrs)
	}
	meta := h.meta.BindChild(key)

	if existing := h.element.Element(key); existing != nil {
		switch meta.Cardinality() {
		case model.Single:
			return nil, gdataerrors.NewParsef(gdataerrors.ErrDuplicateElement,
				"Duplicate element in parent: '%s'", name.Local)
		case model.Aggregate:
			h.logger.Debug("merging repeated element", "element", name.String(), "parent", h.QName)
			child, err := NewHandler(existing, h.logger)
			if err != nil {
				return nil, err
			}
			child.merged = true
			return child, nil
		}
	}

	element := model.NewElement(meta)
	if err := h.element.AddElement(element); err != nil {
		return nil, gdataerrors.WrapParse(gdataerrors.ErrInvalidDeclaration, err, err.Error())
	}
	return NewHandler(element, h.logger)
}

// Attributes records xml:lang and xml:base, coerces declared attributes and
// rejects unknown ones unless the element accepts arbitrary XML.
func (h *Handler) Attributes(attrs []xmlstream.Attr) error {
	if err := h.setXMLAttributes(); err != nil {
		return err
	}
	helper := parser.NewAttributeHelper(attrs, nil)
	for _, am := range h.meta.Attributes() {
		_, hasDefault := am.Default()
		required := am.Required() && !hasDefault && !h.merged
		value, ok, err := h.consume(helper, am, required)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := h.element.SetAttribute(am.Key(), value); err != nil {
			return gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err, err.Error())
		}
	}
	if h.meta.ArbitraryXML() {
		return nil
	}
	return helper.AssertAllConsumed()
}

func (h *Handler) setXMLAttributes() error {
	if lang := h.OwnLang(); lang != "" {
		if err := h.element.SetLang(lang); err != nil {
			return err
		}
	}
	if base := h.OwnBase(); base != "" {
		if err := h.element.SetBase(base); err != nil {
			return err
		}
	}
	return nil
}

// consume reads one declared attribute. Enumerated values are matched
// against the declared ones and base-resolved URIs are made absolute.
func (h *Handler) consume(helper *parser.AttributeHelper, am *model.AttributeMetadata, required bool) (any, bool, error) {
	values, ignoreCase := am.Enum()
	if len(values) == 0 && !am.ResolveBase() {
		return helper.ConsumeValue(am.Name(), am.Datatype(), required)
	}
	var (
		lexical string
		ok      bool
		err     error
	)
	if len(values) > 0 {
		lexical, ok, err = helper.ConsumeEnumValue(am.Name(), required, values, ignoreCase)
	} else {
		lexical, ok, err = helper.ConsumeQName(am.Name(), required)
	}
	if err != nil || !ok {
		return nil, false, err
	}
	if am.ResolveBase() {
		if lexical, err = h.AbsoluteURI(strings.TrimSpace(lexical)); err != nil {
			return nil, false, err
		}
	}
	v, err := am.Datatype().Parse(lexical)
	if err != nil {
		return nil, false, gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err,
			"Invalid value for attribute: '"+am.Name().Local+"'")
	}
	return v, true, nil
}

// End stores the text content and checks required children and content.
func (h *Handler) End() error {
	if err := h.endText(); err != nil {
		return err
	}
	if blob := h.Blob(); blob != nil && !blob.Empty() {
		if err := h.element.SetBlob(blob); err != nil {
			return err
		}
	}
	if h.merged {
		return nil
	}
	for _, key := range h.meta.ChildKeys() {
		child := h.meta.BindChild(key)
		if child.Required() && h.element.Element(key) == nil {
			return gdataerrors.NewParsef(gdataerrors.ErrMissingElement,
				"Required element %s is missing.", child.Name().Local)
		}
	}
	return nil
}

func (h *Handler) endText() error {
	dt := h.meta.Datatype()
	// mixed text already lives in the blob
	if dt == model.Void || (h.MixedContent() && h.Blob() != nil) {
		if err := h.BaseHandler.End(); err != nil {
			return err
		}
		return h.checkContent()
	}
	if strings.TrimSpace(h.Value) == "" {
		return h.checkContent()
	}
	value, err := dt.Parse(h.Value)
	if err != nil {
		return gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err,
			"Invalid value for element '"+h.Name.Local+"': "+err.Error())
	}
	if err := h.element.SetText(value); err != nil {
		return gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err, err.Error())
	}
	return nil
}

func (h *Handler) checkContent() error {
	if !h.meta.ContentRequired() || h.merged {
		return nil
	}
	if _, ok := h.element.Text(); ok {
		return nil
	}
	return gdataerrors.NewParse(gdataerrors.ErrMissingContent, "Missing required text content")
}
