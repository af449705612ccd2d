// Package errors defines the error types reported by parsing, generation and
// metadata declaration.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a parse, generation or configuration failure.
type ErrorCode string

const (
	// ErrXMLSyntax indicates the document is not well-formed XML.
	ErrXMLSyntax ErrorCode = "xml-syntax"
	// ErrRootMismatch indicates the root element is not the expected one.
	ErrRootMismatch ErrorCode = "root-mismatch"
	// ErrUnrecognizedElement indicates a child element not accepted by its parent handler.
	ErrUnrecognizedElement ErrorCode = "unrecognized-element"
	// ErrUnexpectedText indicates text content where none is allowed.
	ErrUnexpectedText ErrorCode = "unexpected-text"
	// ErrMissingAttribute indicates a required attribute is absent.
	ErrMissingAttribute ErrorCode = "missing-attribute"
	// ErrUnknownAttribute indicates an attribute no handler consumed.
	ErrUnknownAttribute ErrorCode = "unknown-attribute"
	// ErrDuplicateAttribute indicates the same attribute local name appeared twice.
	ErrDuplicateAttribute ErrorCode = "duplicate-attribute"
	// ErrInvalidValue indicates a lexical value is invalid for its datatype.
	ErrInvalidValue ErrorCode = "invalid-value"
	// ErrInvalidEnum indicates a value outside an enumeration.
	ErrInvalidEnum ErrorCode = "invalid-enum"
	// ErrInvalidURI indicates a URI could not be parsed or resolved.
	ErrInvalidURI ErrorCode = "invalid-uri"
	// ErrMissingElement indicates a required child element is absent.
	ErrMissingElement ErrorCode = "missing-element"
	// ErrDuplicateElement indicates a repeated single-cardinality element.
	ErrDuplicateElement ErrorCode = "duplicate-element"
	// ErrMissingContent indicates required text content is absent.
	ErrMissingContent ErrorCode = "missing-content"
	// ErrCanceled indicates the caller canceled the parse.
	ErrCanceled ErrorCode = "canceled"

	// ErrConflictingMetadata indicates two declarations disagree for one key and context.
	ErrConflictingMetadata ErrorCode = "conflicting-metadata"
	// ErrInvalidDeclaration indicates a malformed metadata or extension declaration.
	ErrInvalidDeclaration ErrorCode = "invalid-declaration"
)

// ErrLocked is returned when mutating a locked element.
var ErrLocked = errors.New("element is locked")

// ErrUndeclared is returned when an element carries content its metadata does not declare.
var ErrUndeclared = errors.New("not declared in element metadata")

// ParseError describes a schema or content violation found while parsing,
// with the line/column and element where it was detected.
type ParseError struct {
	Err     error
	Code    ErrorCode
	Message string
	Element string
	Line    int
	Column  int
}

// Error formats the parse error with code, location and message.
func (e *ParseError) Error() string {
	if e == nil {
		return "parse error <nil>"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] ", e.Code))
	if e.Line > 0 && e.Column > 0 {
		b.WriteString(fmt.Sprintf("[Line %d, Column %d", e.Line, e.Column))
		if e.Element != "" {
			b.WriteString(", element " + e.Element)
		}
		b.WriteString("] ")
	} else if e.Element != "" {
		b.WriteString("[element " + e.Element + "] ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap exposes the underlying cause.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Located reports whether a location has been attached.
func (e *ParseError) Located() bool {
	return e != nil && e.Line > 0
}

// NewParse builds a ParseError without location.
func NewParse(code ErrorCode, msg string) *ParseError {
	return &ParseError{Code: code, Message: msg}
}

// NewParsef formats a message and builds a ParseError.
func NewParsef(code ErrorCode, format string, args ...any) *ParseError {
	return NewParse(code, fmt.Sprintf(format, args...))
}

// WrapParse builds a ParseError carrying cause.
func WrapParse(code ErrorCode, cause error, msg string) *ParseError {
	return &ParseError{Code: code, Message: msg, Err: cause}
}

// AsParseError extracts a ParseError from err.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) && pe != nil {
		return pe, true
	}
	return nil, false
}

// GenerateError reports an element graph that cannot be serialized.
type GenerateError struct {
	Code    ErrorCode
	Message string
	Path    string
}

// Error formats the generation error.
func (e *GenerateError) Error() string {
	if e == nil {
		return "generate error <nil>"
	}
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s at %s", e.Code, e.Message, e.Path)
}

// NewGeneratef formats a message and builds a GenerateError.
func NewGeneratef(code ErrorCode, path, format string, args ...any) *GenerateError {
	return &GenerateError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Conflict is one disagreeing metadata declaration.
type Conflict struct {
	Key     string
	Context string
	Setting string
	Old     string
	New     string
}

func (c Conflict) String() string {
	ctx := c.Context
	if ctx == "" {
		ctx = "default"
	}
	return fmt.Sprintf("%s (%s) %s: %s != %s", c.Key, ctx, c.Setting, c.Old, c.New)
}

// ConfigError reports invalid metadata or extension declarations.
// It is a startup failure, not a per-document one.
type ConfigError struct {
	Code      ErrorCode
	Message   string
	Conflicts []Conflict
}

// Error formats the configuration error.
func (e *ConfigError) Error() string {
	if e == nil {
		return "config error <nil>"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	switch len(e.Conflicts) {
	case 0:
	case 1:
		b.WriteString(": " + e.Conflicts[0].String())
	default:
		b.WriteString(fmt.Sprintf(": %s (and %d more)", e.Conflicts[0].String(), len(e.Conflicts)-1))
	}
	return b.String()
}

// NewConfigf formats a message and builds a ConfigError.
func NewConfigf(code ErrorCode, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorList is an error that wraps one or more parse errors.
type ErrorList []*ParseError //nolint:errname // mirrors ParseError naming.

// Error returns a compact summary of the errors.
func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no parse errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Unwrap exposes the list members to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	out := make([]error, 0, len(l))
	for _, e := range l {
		out = append(out, e)
	}
	return out
}
