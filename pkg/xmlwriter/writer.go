package xmlwriter

import (
	"bufio"
	"errors"
	"io"
	"slices"
	"strconv"

	"github.com/jacoelho/gdata/pkg/qname"
)

var (
	errNoOpenElement = errors.New("no open element")
	errEmptyName     = errors.New("empty element name")
)

// Attr is a namespace-qualified attribute to write.
type Attr struct {
	Name  qname.QName
	Value string
}

// RawAttr is an attribute written exactly as named, including xmlns declarations.
type RawAttr struct {
	Name  string
	Value string
}

type binding struct {
	prefix string
	uri    string
}

type frame struct {
	name     string
	bindings []binding
	hasChild bool
	hasText  bool
}

// Writer streams namespace-aware XML.
type Writer struct {
	out       *bufio.Writer
	err       error
	aliases   map[string]string
	indent    string
	open      []frame
	generated int
	startOpen bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithIndent enables pretty printing with the given per-level indent.
func WithIndent(indent string) Option {
	return func(w *Writer) {
		w.indent = indent
	}
}

// WithAliases sets preferred prefixes by namespace URI.
func WithAliases(namespaces ...qname.Namespace) Option {
	return func(w *Writer) {
		for _, ns := range namespaces {
			if ns.URI == "" {
				continue
			}
			if _, ok := w.aliases[ns.URI]; !ok {
				w.aliases[ns.URI] = ns.Prefix
			}
		}
	}
}

// New returns a Writer that writes to w.
func New(w io.Writer, opts ...Option) *Writer {
	out, ok := w.(*bufio.Writer)
	if !ok {
		out = bufio.NewWriter(w)
	}
	writer := &Writer{
		out:     out,
		aliases: map[string]string{qname.XMLNamespace: qname.XMLPrefix},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(writer)
		}
	}
	return writer
}

// Depth returns the number of open elements.
func (w *Writer) Depth() int {
	return len(w.open)
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}

// StartElement opens an element. decls are declared on this element in
// addition to any binding needed for the element or attribute names.
func (w *Writer) StartElement(name qname.QName, attrs []Attr, decls []qname.Namespace) error {
	if w.err != nil {
		return w.err
	}
	if name.Local == "" {
		return errEmptyName
	}
	w.beginChild()
	f := frame{}
	w.open = append(w.open, f)
	top := &w.open[len(w.open)-1]

	for _, ns := range decls {
		if ns.URI == qname.XMLNamespace {
			continue
		}
		if uri, ok := w.lookupURI(ns.Prefix); ok && uri == ns.URI {
			continue
		}
		if hasPrefix(top.bindings, ns.Prefix) {
			continue
		}
		top.bindings = append(top.bindings, binding{prefix: ns.Prefix, uri: ns.URI})
	}

	elemName := w.elementName(top, name)
	attrNames := make([]string, len(attrs))
	for i, attr := range attrs {
		attrNames[i] = w.attrName(top, attr.Name)
	}
	top.name = elemName

	w.writeString("<" + elemName)
	for _, b := range top.bindings {
		if b.prefix == "" {
			w.writeString(` xmlns="` + EscapeAttr(b.uri) + `"`)
		} else {
			w.writeString(" xmlns:" + b.prefix + `="` + EscapeAttr(b.uri) + `"`)
		}
	}
	for i, attr := range attrs {
		w.writeString(" " + attrNames[i] + `="` + EscapeAttr(attr.Value) + `"`)
	}
	w.startOpen = true
	return w.err
}

// StartElementRaw opens an element using the name and attributes as written.
// Namespace declarations among attrs are tracked for later prefix lookups.
func (w *Writer) StartElementRaw(name string, attrs []RawAttr) error {
	if w.err != nil {
		return w.err
	}
	if name == "" {
		return errEmptyName
	}
	w.beginChild()
	f := frame{name: name}
	for _, attr := range attrs {
		switch {
		case attr.Name == qname.XMLNSPrefix:
			f.bindings = append(f.bindings, binding{uri: attr.Value})
		case len(attr.Name) > len(qname.XMLNSPrefix)+1 && attr.Name[:len(qname.XMLNSPrefix)+1] == qname.XMLNSPrefix+":":
			f.bindings = append(f.bindings, binding{prefix: attr.Name[len(qname.XMLNSPrefix)+1:], uri: attr.Value})
		}
	}
	w.open = append(w.open, f)
	w.writeString("<" + name)
	for _, attr := range attrs {
		w.writeString(" " + attr.Name + `="` + EscapeAttr(attr.Value) + `"`)
	}
	w.startOpen = true
	return w.err
}

// EndElement closes the innermost open element.
func (w *Writer) EndElement() error {
	if w.err != nil {
		return w.err
	}
	if len(w.open) == 0 {
		return errNoOpenElement
	}
	top := w.open[len(w.open)-1]
	if w.startOpen {
		w.writeString("/>")
		w.startOpen = false
	} else {
		if top.hasChild && !top.hasText {
			w.newline(len(w.open) - 1)
		}
		w.writeString("</" + top.name + ">")
	}
	w.open = w.open[:len(w.open)-1]
	return w.err
}

// SimpleElement writes an element with text content and no children.
func (w *Writer) SimpleElement(name qname.QName, attrs []Attr, text string) error {
	if err := w.StartElement(name, attrs, nil); err != nil {
		return err
	}
	if text != "" {
		if err := w.Characters(text); err != nil {
			return err
		}
	}
	return w.EndElement()
}

// Characters writes escaped character data.
func (w *Writer) Characters(text string) error {
	if w.err != nil {
		return w.err
	}
	w.closeStart()
	if len(w.open) > 0 {
		w.open[len(w.open)-1].hasText = true
	}
	w.writeString(EscapeText(text))
	return w.err
}

// WriteRaw writes pre-serialized markup unchanged.
func (w *Writer) WriteRaw(xml string) error {
	if w.err != nil {
		return w.err
	}
	if xml == "" {
		return nil
	}
	w.beginChild()
	w.writeString(xml)
	return w.err
}

// WriteRawText writes pre-serialized mixed content. Like Characters, it
// suppresses indentation inside the enclosing element.
func (w *Writer) WriteRawText(xml string) error {
	if w.err != nil {
		return w.err
	}
	w.closeStart()
	if len(w.open) > 0 {
		w.open[len(w.open)-1].hasText = true
	}
	w.writeString(xml)
	return w.err
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.closeStart()
	if err := w.out.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

// Prefix returns the prefix bound to uri in the current scope.
func (w *Writer) Prefix(uri string) (string, bool) {
	return w.lookupPrefix(uri, true)
}

// Namespace returns the URI bound to prefix in the current scope. The
// empty prefix names the default namespace.
func (w *Writer) Namespace(prefix string) (string, bool) {
	return w.lookupURI(prefix)
}

func (w *Writer) elementName(top *frame, name qname.QName) string {
	if name.Space == "" {
		if uri, ok := w.lookupURI(""); ok && uri != "" {
			top.bindings = slices.DeleteFunc(top.bindings, func(b binding) bool { return b.prefix == "" })
			top.bindings = append(top.bindings, binding{prefix: "", uri: ""})
		}
		return name.Local
	}
	if prefix, ok := w.lookupPrefix(name.Space, true); ok {
		return qualified(prefix, name.Local)
	}
	prefix := w.choosePrefix(name.Space)
	top.bindings = append(top.bindings, binding{prefix: prefix, uri: name.Space})
	return qualified(prefix, name.Local)
}

// attrName never uses the default namespace; unprefixed attributes have none.
func (w *Writer) attrName(top *frame, name qname.QName) string {
	if name.Space == "" {
		return name.Local
	}
	if name.Space == qname.XMLNamespace {
		return qname.XMLPrefix + ":" + name.Local
	}
	if prefix, ok := w.lookupPrefix(name.Space, false); ok {
		return qualified(prefix, name.Local)
	}
	prefix := w.choosePrefix(name.Space)
	top.bindings = append(top.bindings, binding{prefix: prefix, uri: name.Space})
	return qualified(prefix, name.Local)
}

func (w *Writer) choosePrefix(uri string) string {
	if alias, ok := w.aliases[uri]; ok && alias != "" {
		if _, bound := w.lookupURI(alias); !bound {
			return alias
		}
	}
	for {
		prefix := "ns" + strconv.Itoa(w.generated)
		w.generated++
		if _, bound := w.lookupURI(prefix); !bound {
			return prefix
		}
	}
}

// lookupURI finds the innermost binding of prefix.
func (w *Writer) lookupURI(prefix string) (string, bool) {
	if prefix == qname.XMLPrefix {
		return qname.XMLNamespace, true
	}
	for i := len(w.open) - 1; i >= 0; i-- {
		bindings := w.open[i].bindings
		for j := len(bindings) - 1; j >= 0; j-- {
			if bindings[j].prefix == prefix {
				return bindings[j].uri, true
			}
		}
	}
	return "", false
}

// lookupPrefix finds an unshadowed prefix bound to uri.
func (w *Writer) lookupPrefix(uri string, allowDefault bool) (string, bool) {
	if uri == qname.XMLNamespace {
		return qname.XMLPrefix, true
	}
	for i := len(w.open) - 1; i >= 0; i-- {
		bindings := w.open[i].bindings
		for j := len(bindings) - 1; j >= 0; j-- {
			b := bindings[j]
			if b.uri != uri || (b.prefix == "" && !allowDefault) {
				continue
			}
			if current, ok := w.lookupURI(b.prefix); ok && current == uri {
				return b.prefix, true
			}
		}
	}
	return "", false
}

func (w *Writer) beginChild() {
	w.closeStart()
	if len(w.open) == 0 {
		return
	}
	parent := &w.open[len(w.open)-1]
	parent.hasChild = true
	if !parent.hasText {
		w.newline(len(w.open))
	}
}

func (w *Writer) closeStart() {
	if w.startOpen {
		w.writeString(">")
		w.startOpen = false
	}
}

func (w *Writer) newline(depth int) {
	if w.indent == "" {
		return
	}
	w.writeString("\n")
	for range depth {
		w.writeString(w.indent)
	}
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.out.WriteString(s); err != nil {
		w.err = err
	}
}

func hasPrefix(bindings []binding, prefix string) bool {
	for _, b := range bindings {
		if b.prefix == prefix {
			return true
		}
	}
	return false
}

func qualified(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
