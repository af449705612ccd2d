package xmlstream

import (
	"bufio"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/jacoelho/gdata/pkg/qname"
)

const readerBufferSize = 64 * 1024

// Reader provides a streaming XML event interface with namespace tracking.
type Reader struct {
	dec          *xml.Decoder
	ns           nsStack
	attrBuf      []Attr
	elemStack    []elemFrame
	cfg          config
	lastLine     int
	lastColumn   int
	pendingPop   bool
	lastWasStart bool
	rootSeen     bool
	done         bool
}

type elemFrame struct {
	name qname.QName
	raw  RawName
}

// NewReader creates a new streaming reader for r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	if r == nil {
		return nil, errNilReader
	}
	cfg := buildConfig(opts...)
	dec := xml.NewDecoder(bufio.NewReaderSize(r, readerBufferSize))
	dec.Strict = true
	dec.CharsetReader = cfg.charsetReader
	return &Reader{
		dec: dec,
		cfg: cfg,
	}, nil
}

// Next returns the next XML event. Comments, processing instructions and
// directives are skipped. io.EOF is returned once the root element closed.
func (r *Reader) Next() (Event, error) {
	if r == nil || r.dec == nil {
		return Event{}, errNilReader
	}
	if r.done {
		return Event{}, io.EOF
	}
	if r.pendingPop {
		r.ns.pop()
		r.pendingPop = false
	}
	r.lastWasStart = false

	for {
		line, column := r.dec.InputPos()
		offset := r.dec.InputOffset()
		tok, err := r.dec.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, r.eof(line, column)
			}
			return Event{}, r.syntaxError(line, column, err)
		}
		r.lastLine = line
		r.lastColumn = column

		switch t := tok.(type) {
		case xml.StartElement:
			return r.startEvent(t, line, column, offset)
		case xml.EndElement:
			return r.endEvent(t, line, column, offset)
		case xml.CharData:
			if len(r.elemStack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return Event{}, r.syntaxError(line, column, errContentOutsideRoot)
				}
				continue
			}
			return Event{
				Kind:       EventCharData,
				Text:       string(t),
				Line:       line,
				Column:     column,
				Offset:     offset,
				ScopeDepth: r.currentScopeDepth(),
			}, nil
		default:
			// comments, processing instructions and directives
			continue
		}
	}
}

func (r *Reader) eof(line, column int) error {
	if len(r.elemStack) > 0 {
		return r.syntaxError(line, column, errUnclosedElement)
	}
	if !r.rootSeen {
		return r.syntaxError(line, column, errNoRoot)
	}
	r.done = true
	return io.EOF
}

func (r *Reader) startEvent(tok xml.StartElement, line, column int, offset int64) (Event, error) {
	if len(r.elemStack) == 0 && r.rootSeen {
		return Event{}, r.syntaxError(line, column, errMultipleRoots)
	}
	if r.cfg.maxDepth > 0 && len(r.elemStack) >= r.cfg.maxDepth {
		return Event{}, r.syntaxError(line, column, errMaxDepth)
	}
	if r.cfg.maxAttrs > 0 && len(tok.Attr) > r.cfg.maxAttrs {
		return Event{}, r.syntaxError(line, column, errMaxAttrs)
	}
	if err := checkRawDuplicates(tok.Attr); err != nil {
		return Event{}, r.syntaxError(line, column, err)
	}
	scope, err := collectNamespaceScope(tok.Attr)
	if err != nil {
		return Event{}, r.syntaxError(line, column, err)
	}
	scopeDepth := r.ns.push(scope)
	raw := RawName{Prefix: tok.Name.Space, Local: tok.Name.Local}
	space, ok := r.ns.lookup(raw.Prefix, scopeDepth)
	if !ok {
		r.ns.pop()
		return Event{}, r.syntaxError(line, column, errUnboundPrefix)
	}
	name := qname.QName{Space: space, Local: raw.Local}

	r.attrBuf = r.attrBuf[:0]
	for _, attr := range tok.Attr {
		if isNamespaceDecl(attr.Name) {
			continue
		}
		attrRaw := RawName{Prefix: attr.Name.Space, Local: attr.Name.Local}
		// unprefixed attributes are in no namespace
		var attrSpace string
		if attrRaw.Prefix != "" {
			attrSpace, ok = r.ns.lookup(attrRaw.Prefix, scopeDepth)
			if !ok {
				r.ns.pop()
				return Event{}, r.syntaxError(line, column, errUnboundPrefix)
			}
		}
		attrName := qname.QName{Space: attrSpace, Local: attrRaw.Local}
		for _, prev := range r.attrBuf {
			if prev.Name == attrName {
				r.ns.pop()
				return Event{}, r.syntaxError(line, column, errDuplicateAttribute)
			}
		}
		r.attrBuf = append(r.attrBuf, Attr{Name: attrName, Raw: attrRaw, Value: attr.Value})
	}

	r.rootSeen = true
	r.elemStack = append(r.elemStack, elemFrame{name: name, raw: raw})
	r.lastWasStart = true
	return Event{
		Kind:       EventStartElement,
		Name:       name,
		Raw:        raw,
		Attrs:      r.attrBuf,
		Line:       line,
		Column:     column,
		Offset:     offset,
		ScopeDepth: scopeDepth,
	}, nil
}

func (r *Reader) endEvent(tok xml.EndElement, line, column int, offset int64) (Event, error) {
	if len(r.elemStack) == 0 {
		return Event{}, r.syntaxError(line, column, errUnexpectedEndTag)
	}
	top := r.elemStack[len(r.elemStack)-1]
	if top.raw.Prefix != tok.Name.Space || top.raw.Local != tok.Name.Local {
		return Event{}, r.syntaxError(line, column, errMismatchedEndTag)
	}
	r.elemStack = r.elemStack[:len(r.elemStack)-1]
	scopeDepth := r.ns.depth() - 1
	r.pendingPop = true
	return Event{
		Kind:       EventEndElement,
		Name:       top.name,
		Raw:        top.raw,
		Line:       line,
		Column:     column,
		Offset:     offset,
		ScopeDepth: scopeDepth,
	}, nil
}

// SkipSubtree skips the current element subtree after a StartElement event.
func (r *Reader) SkipSubtree() error {
	if r == nil || r.dec == nil {
		return errNilReader
	}
	if !r.lastWasStart {
		return errNoStartElement
	}
	depth := len(r.elemStack)
	for len(r.elemStack) >= depth {
		if _, err := r.Next(); err != nil {
			return err
		}
	}
	if r.pendingPop {
		r.ns.pop()
		r.pendingPop = false
	}
	r.lastWasStart = false
	return nil
}

// Depth returns the number of currently open elements.
func (r *Reader) Depth() int {
	if r == nil {
		return 0
	}
	return len(r.elemStack)
}

// CurrentPos returns the line and column of the most recent token.
func (r *Reader) CurrentPos() (line, column int) {
	if r == nil {
		return 0, 0
	}
	return r.lastLine, r.lastColumn
}

// InputOffset returns the current byte position in the input stream.
func (r *Reader) InputOffset() int64 {
	if r == nil || r.dec == nil {
		return 0
	}
	return r.dec.InputOffset()
}

// LookupNamespace resolves a prefix in the current scope.
func (r *Reader) LookupNamespace(prefix string) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.LookupNamespaceAt(prefix, r.ns.depth()-1)
}

// LookupNamespaceAt resolves a prefix at the given scope depth.
func (r *Reader) LookupNamespaceAt(prefix string, depth int) (string, bool) {
	if r == nil {
		return "", false
	}
	if depth < 0 {
		if prefix == qname.XMLPrefix {
			return XMLNamespace, true
		}
		return "", prefix == ""
	}
	return r.ns.lookup(prefix, depth)
}

// NamespaceDecls returns namespace declarations in the current scope.
// The returned slice is valid until the next call to Next.
func (r *Reader) NamespaceDecls() []NamespaceDecl {
	if r == nil {
		return nil
	}
	return r.NamespaceDeclsAt(r.ns.depth() - 1)
}

// NamespaceDeclsAt returns namespace declarations at the given scope depth.
func (r *Reader) NamespaceDeclsAt(depth int) []NamespaceDecl {
	if r == nil {
		return nil
	}
	if len(r.ns.scopes) == 0 || depth < 0 {
		return nil
	}
	if depth >= len(r.ns.scopes) {
		depth = len(r.ns.scopes) - 1
	}
	return r.ns.scopes[depth].decls
}

func (r *Reader) currentScopeDepth() int {
	depth := r.ns.depth() - 1
	if depth < 0 {
		return 0
	}
	return depth
}

func checkRawDuplicates(attrs []xml.Attr) error {
	for i := 1; i < len(attrs); i++ {
		for j := 0; j < i; j++ {
			if attrs[i].Name == attrs[j].Name {
				return errDuplicateAttribute
			}
		}
	}
	return nil
}
