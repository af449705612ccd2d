package parser

import (
	"strings"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/pkg/xmlstream"
	"github.com/jacoelho/gdata/pkg/xmlwriter"
	"github.com/jacoelho/gdata/xmlblob"
)

// Phase is the lifecycle stage of a handler.
type Phase uint8

const (
	PhaseOpen Phase = iota
	PhaseClosing
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseClosing:
		return "closing"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ElementHandler processes one element. Implementations embed BaseHandler
// and override the callbacks they need.
type ElementHandler interface {
	// State returns the parser-maintained state of the element.
	State() *HandlerState
	// ChildHandler returns the handler of a child element. A nil handler with
	// a nil error marks the child as foreign markup.
	ChildHandler(name qname.QName, attrs []xmlstream.Attr) (ElementHandler, error)
	// Attributes is called once with all attributes of the start tag, after
	// xml:lang and xml:base were applied.
	Attributes(attrs []xmlstream.Attr) error
	// End is called when the element closes; Value holds its text.
	End() error
}

// Merger is implemented by handlers that fold a repeated occurrence into an
// element bound earlier. A merged child does not advance the position at
// which the parent's blob records foreign markup.
type Merger interface {
	Merged() bool
}

// HandlerState is the per-element state maintained by the parser. Name is
// the resolved element name and QName its lexical form. Value holds the
// element text once End is called. Lang and Base carry the inherited
// xml:lang and cumulative xml:base; OwnLang and OwnBase return the values
// written on the element itself.
type HandlerState struct {
	Parent         ElementHandler
	blob           *xmlblob.Blob
	blobWriter     *xmlwriter.Writer
	blobBuf        *strings.Builder
	blobNamespaces map[string]struct{}
	fullText       *strings.Builder
	Name           qname.QName
	QName          string
	Value          string
	Lang           string
	Base           string
	ownLang        string
	ownBase        string
	text           strings.Builder
	Line           int
	Column         int
	recognized     int
	phase          Phase
	mixed          bool
	blobLocked     bool
	hasText        bool
}

// State returns s; it lets handlers embedding HandlerState satisfy ElementHandler.
func (s *HandlerState) State() *HandlerState { return s }

// Phase returns the lifecycle stage.
func (s *HandlerState) Phase() Phase { return s.phase }

// RecognizedChildren returns the number of recognized children seen so far,
// not counting merged occurrences.
func (s *HandlerState) RecognizedChildren() int { return s.recognized }

// HasText reports whether any character data was seen.
func (s *HandlerState) HasText() bool { return s.hasText }

// OwnLang returns the xml:lang attribute of the element, or "".
func (s *HandlerState) OwnLang() string { return s.ownLang }

// OwnBase returns the xml:base attribute of the element as written, or "".
func (s *HandlerState) OwnBase() string { return s.ownBase }

// Blob returns the blob initialized by InitBlob, or nil.
func (s *HandlerState) Blob() *xmlblob.Blob { return s.blob }

// MixedContent reports whether text is accepted alongside children.
func (s *HandlerState) MixedContent() bool { return s.mixed }

// InitBlob directs foreign child markup into blob. It must be called before
// the start tag is fully processed: when the handler is created or from
// Attributes.
func (s *HandlerState) InitBlob(blob *xmlblob.Blob, mixed, fullText bool) error {
	if s.blobLocked {
		return gdataerrors.NewParse(gdataerrors.ErrInvalidDeclaration, "blob must be initialized before the start tag is processed")
	}
	s.blob = blob
	s.mixed = mixed
	s.blobBuf = &strings.Builder{}
	s.blobWriter = xmlwriter.New(s.blobBuf)
	s.blobNamespaces = make(map[string]struct{})
	if fullText {
		s.fullText = &strings.Builder{}
	}
	return nil
}

// SetMixedContent allows text interleaved with children without a blob.
func (s *HandlerState) SetMixedContent(mixed bool) {
	s.mixed = mixed
}

// AbsoluteURI resolves value against the element's cumulative xml:base.
func (s *HandlerState) AbsoluteURI(value string) (string, error) {
	abs, err := CumulativeBase(s.Base, value)
	if err != nil {
		return "", gdataerrors.WrapParse(gdataerrors.ErrInvalidURI, err, err.Error())
	}
	return abs, nil
}

// flushBlob moves captured markup into the blob at the current child position.
func (s *HandlerState) flushBlob() error {
	if s.blobWriter == nil {
		return nil
	}
	if err := s.blobWriter.Flush(); err != nil {
		return err
	}
	if s.blobBuf.Len() > 0 {
		s.blob.Append(s.recognized, s.blobBuf.String())
		s.blobBuf.Reset()
	}
	return nil
}

func (s *HandlerState) reset(parent ElementHandler, ev xmlstream.Event) {
	s.Parent = parent
	s.Name = ev.Name
	s.QName = ev.Raw.String()
	s.Line = ev.Line
	s.Column = ev.Column
	s.phase = PhaseOpen
	s.recognized = 0
	s.text.Reset()
	s.hasText = false
	s.Value = ""
	s.ownLang, s.ownBase = "", ""
	if parent != nil {
		ps := parent.State()
		s.Lang = ps.Lang
		s.Base = ps.Base
	}
}

// BaseHandler supplies default behavior: foreign children are an error unless
// a blob was initialized, attributes are ignored, and text is an error unless
// mixed content is enabled.
type BaseHandler struct {
	HandlerState
}

// ChildHandler rejects children unless a blob captures them.
func (h *BaseHandler) ChildHandler(name qname.QName, _ []xmlstream.Attr) (ElementHandler, error) {
	if h.blob == nil {
		return nil, gdataerrors.NewParsef(gdataerrors.ErrUnrecognizedElement, "Unrecognized element '%s'.", name.Local)
	}
	return nil, nil
}

// Attributes ignores attributes.
func (h *BaseHandler) Attributes([]xmlstream.Attr) error {
	return nil
}

// End rejects non-whitespace text unless mixed content is enabled.
func (h *BaseHandler) End() error {
	if strings.TrimSpace(h.Value) != "" && !h.mixed {
		return gdataerrors.NewParse(gdataerrors.ErrUnexpectedText, "This element must not have any text() data.")
	}
	return nil
}
