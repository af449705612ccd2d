package xmlstream

import (
	"errors"
	"fmt"
)

var (
	errNilReader           = errors.New("nil XML reader")
	errNoStartElement      = errors.New("no start element to skip")
	errDuplicateAttribute  = errors.New("duplicate attribute")
	errUnboundPrefix       = errors.New("unbound namespace prefix")
	errXMLPrefixRebound    = errors.New("xml prefix bound to wrong namespace")
	errXMLNSPrefixDeclared = errors.New("xmlns prefix must not be declared")
	errEmptyPrefixBinding  = errors.New("prefixed namespace declaration must not be empty")
	errMismatchedEndTag    = errors.New("mismatched end tag")
	errUnexpectedEndTag    = errors.New("unexpected end tag")
	errMultipleRoots       = errors.New("multiple root elements")
	errContentOutsideRoot  = errors.New("content outside root element")
	errNoRoot              = errors.New("missing root element")
	errUnclosedElement     = errors.New("unexpected EOF inside element")
	errMaxDepth            = errors.New("element nesting exceeds maximum depth")
	errMaxAttrs            = errors.New("element attribute count exceeds maximum")
)

// SyntaxError reports a well-formedness failure with its position.
type SyntaxError struct {
	Err    error
	Offset int64
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	if e == nil {
		return "xml syntax error <nil>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("xml syntax error at line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("xml syntax error: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (r *Reader) syntaxError(line, column int, err error) error {
	if err == nil {
		return nil
	}
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		return err
	}
	return &SyntaxError{
		Offset: r.dec.InputOffset(),
		Line:   line,
		Column: column,
		Err:    err,
	}
}
