package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/internal/stack"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/pkg/xmlstream"
	"github.com/jacoelho/gdata/pkg/xmlwriter"
)

var errParserUsed = errors.New("parser: Parse called twice")

// Parser streams one document through a tree of element handlers.
// A Parser is single use and not safe for concurrent use.
type Parser struct {
	reader       *xmlstream.Reader
	logger       *slog.Logger
	handlers     stack.Stack[ElementHandler]
	cfg          config
	unrecognized int
	used         bool
}

// New returns a parser.
func New(opts ...Option) *Parser {
	cfg := buildConfig(opts...)
	return &Parser{cfg: cfg, logger: cfg.logger, handlers: stack.New[ElementHandler](16)}
}

// Parse reads r and dispatches its elements to root, which must handle the
// document element {rootNS}rootLocal. ctx is checked between tokens.
func (p *Parser) Parse(ctx context.Context, r io.Reader, root ElementHandler, rootNS, rootLocal string) error {
	if p.used {
		return errParserUsed
	}
	if root == nil {
		return errors.New("parser: nil root handler")
	}
	p.used = true
	reader, err := xmlstream.NewReader(r, p.cfg.readerOpts...)
	if err != nil {
		return err
	}
	p.reader = reader
	rootName := qname.New(rootNS, rootLocal)

	for {
		if err := ctx.Err(); err != nil {
			return p.fail(gdataerrors.WrapParse(gdataerrors.ErrCanceled, err, "parse canceled"))
		}
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return p.fail(syntaxError(err))
		}
		switch ev.Kind {
		case xmlstream.EventStartElement:
			err = p.start(ev, root, rootName)
		case xmlstream.EventEndElement:
			err = p.end()
		case xmlstream.EventCharData:
			err = p.characters(ev.Text)
		}
		if err != nil {
			return p.fail(err)
		}
	}
}

func (p *Parser) start(ev xmlstream.Event, root ElementHandler, rootName qname.QName) error {
	parent, hasParent := p.handlers.Peek()
	var handler ElementHandler
	switch {
	case !hasParent:
		if ev.Name != rootName {
			return gdataerrors.NewParsef(gdataerrors.ErrRootMismatch,
				"Root element must be %s, found %s", rootName, ev.Name)
		}
		handler = root
	case p.unrecognized == 0:
		child, err := parent.ChildHandler(ev.Name, ev.Attrs)
		if err != nil {
			return err
		}
		handler = child
	}

	if handler == nil {
		return p.startForeign(ev, parent)
	}

	state := handler.State()
	state.reset(parent, ev)
	if hasParent {
		ps := parent.State()
		// mixed text captured so far precedes this child
		if err := ps.flushBlob(); err != nil {
			return err
		}
		if m, ok := handler.(Merger); !ok || !m.Merged() {
			ps.recognized++
		}
	}
	p.handlers.Push(handler)

	for _, a := range ev.Attrs {
		if a.Name.Space != qname.XMLNamespace {
			continue
		}
		switch a.Name.Local {
		case "lang":
			state.Lang, state.ownLang = a.Value, a.Value
		case "base":
			base, err := CumulativeBase(state.Base, a.Value)
			if err != nil {
				return gdataerrors.WrapParse(gdataerrors.ErrInvalidURI, err, err.Error())
			}
			state.Base, state.ownBase = base, a.Value
		}
	}
	if err := handler.Attributes(ev.Attrs); err != nil {
		return err
	}
	state.blobLocked = true
	// the blob keeps the attributes as written so they can be re-emitted
	if state.blob != nil {
		state.blob.Lang = state.ownLang
		state.blob.Base = state.ownBase
	}
	return nil
}

func (p *Parser) startForeign(ev xmlstream.Event, owner ElementHandler) error {
	p.unrecognized++
	if owner == nil {
		return nil
	}
	s := owner.State()
	if s.blobWriter == nil {
		return nil
	}
	if p.unrecognized == 1 {
		p.logger.Debug("treating element as foreign XML", "element", ev.Raw.String(), "parent", s.QName)
	}
	decls := p.reader.NamespaceDecls()
	attrs := make([]xmlwriter.RawAttr, 0, len(decls)+len(ev.Attrs)+1)
	ownDefault := false
	for _, d := range decls {
		name := qname.XMLNSPrefix
		if d.Prefix != "" {
			name += ":" + d.Prefix
		} else {
			ownDefault = true
		}
		attrs = append(attrs, xmlwriter.RawAttr{Name: name, Value: d.URI})
	}
	if ev.Raw.Prefix == "" && !ownDefault {
		if _, inBlob := s.blobWriter.Namespace(""); !inBlob {
			// a default namespace other than the owner's is declared on the
			// fragment, so it cannot displace the owner's at output
			if uri, _ := p.reader.LookupNamespace(""); uri != s.Name.Space {
				attrs = append(attrs, xmlwriter.RawAttr{Name: qname.XMLNSPrefix, Value: uri})
			} else {
				p.ensureBlobNamespace(s, "", false)
			}
		}
	}
	for _, a := range ev.Attrs {
		p.ensureBlobNamespace(s, a.Raw.Prefix, true)
		attrs = append(attrs, xmlwriter.RawAttr{Name: a.Raw.String(), Value: a.Value})
		if s.fullText != nil {
			s.fullText.WriteString(a.Value)
			s.fullText.WriteString(" ")
		}
	}
	if ev.Raw.Prefix != "" {
		p.ensureBlobNamespace(s, ev.Raw.Prefix, false)
	}
	return s.blobWriter.StartElementRaw(ev.Raw.String(), attrs)
}

// ensureBlobNamespace records the namespace bound to prefix so the blob can
// be re-emitted outside its original scope.
func (p *Parser) ensureBlobNamespace(s *HandlerState, prefix string, attr bool) {
	if prefix == qname.XMLPrefix || (attr && prefix == "") {
		return
	}
	if _, seen := s.blobNamespaces[prefix]; seen {
		return
	}
	uri, ok := p.reader.LookupNamespace(prefix)
	if !ok || (prefix == "" && uri == "") {
		return
	}
	s.blobNamespaces[prefix] = struct{}{}
	s.blob.AddNamespace(qname.Namespace{Prefix: prefix, URI: uri})
}

func (p *Parser) end() error {
	if p.unrecognized > 0 {
		p.unrecognized--
		owner, ok := p.handlers.Peek()
		if !ok {
			return nil
		}
		s := owner.State()
		if s.blobWriter == nil {
			return nil
		}
		if err := s.blobWriter.EndElement(); err != nil {
			return err
		}
		if p.unrecognized == 0 {
			return s.flushBlob()
		}
		return nil
	}

	handler, ok := p.handlers.Peek()
	if !ok {
		return nil
	}
	s := handler.State()
	if err := s.flushBlob(); err != nil {
		return err
	}
	if s.fullText != nil && s.blob != nil {
		s.blob.FullText = s.fullText.String()
	}
	s.Value = s.text.String()
	s.phase = PhaseClosing
	if err := handler.End(); err != nil {
		return err
	}
	s.phase = PhaseClosed
	p.handlers.Pop()
	return nil
}

func (p *Parser) characters(text string) error {
	handler, ok := p.handlers.Peek()
	if !ok {
		return nil
	}
	s := handler.State()
	if p.unrecognized == 0 {
		s.text.WriteString(text)
		s.hasText = true
	}
	if s.blobWriter != nil && (s.mixed || p.unrecognized > 0) {
		if s.fullText != nil {
			s.fullText.WriteString(text)
			s.fullText.WriteString("\n")
		}
		return s.blobWriter.Characters(text)
	}
	return nil
}

// fail locates err at the current element and logs it.
func (p *Parser) fail(err error) error {
	pe, ok := gdataerrors.AsParseError(err)
	if !ok {
		pe = gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err, err.Error())
	}
	if !pe.Located() && p.reader != nil {
		pe.Line, pe.Column = p.reader.CurrentPos()
	}
	if pe.Element == "" {
		if h, ok := p.handlers.Peek(); ok {
			pe.Element = h.State().QName
		}
	}
	p.logger.Warn("parse failed", "line", pe.Line, "column", pe.Column, "element", pe.Element, "error", pe.Message)
	return pe
}

func syntaxError(err error) error {
	var syntax *xmlstream.SyntaxError
	if errors.As(err, &syntax) {
		pe := gdataerrors.WrapParse(gdataerrors.ErrXMLSyntax, err, fmt.Sprint(syntax.Err))
		pe.Line, pe.Column = syntax.Line, syntax.Column
		return pe
	}
	return gdataerrors.WrapParse(gdataerrors.ErrXMLSyntax, err, err.Error())
}
