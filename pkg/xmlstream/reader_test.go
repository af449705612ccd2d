package xmlstream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jacoelho/gdata/pkg/qname"
)

func collect(t *testing.T, doc string, opts ...Option) ([]Event, error) {
	t.Helper()
	r, err := NewReader(strings.NewReader(doc), opts...)
	if err != nil {
		t.Fatalf("NewReader error = %v", err)
	}
	var events []Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		ev.Attrs = append([]Attr(nil), ev.Attrs...)
		events = append(events, ev)
	}
}

func TestReaderResolvesNames(t *testing.T) {
	doc := `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005" gd:etag="W/1">
  <gd:quotaBytesUsed>42</gd:quotaBytesUsed>
</feed>`
	events, err := collect(t, doc)
	if err != nil {
		t.Fatalf("collect error = %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("no events")
	}
	root := events[0]
	if root.Kind != EventStartElement {
		t.Fatalf("first kind = %v, want start", root.Kind)
	}
	if want := qname.Atom.Name("feed"); root.Name != want {
		t.Fatalf("root name = %v, want %v", root.Name, want)
	}
	if len(root.Attrs) != 1 {
		t.Fatalf("root attrs = %d, want 1 (namespace declarations excluded)", len(root.Attrs))
	}
	attr := root.Attrs[0]
	if attr.Name != qname.GData.Name("etag") || attr.Raw.String() != "gd:etag" || attr.Value != "W/1" {
		t.Fatalf("attr = %+v", attr)
	}

	var quota Event
	for _, ev := range events {
		if ev.Kind == EventStartElement && ev.Name.Local == "quotaBytesUsed" {
			quota = ev
		}
	}
	if quota.Name.Space != qname.GData.URI || quota.Raw.Prefix != "gd" {
		t.Fatalf("quota = %+v", quota)
	}
	if quota.Line != 2 {
		t.Fatalf("quota line = %d, want 2", quota.Line)
	}
}

func TestReaderNamespaceDecls(t *testing.T) {
	r, err := NewReader(strings.NewReader(`<a xmlns="urn:a" xmlns:b="urn:b"><b:c/></a>`))
	if err != nil {
		t.Fatalf("NewReader error = %v", err)
	}
	if _, err = r.Next(); err != nil {
		t.Fatalf("Next error = %v", err)
	}
	decls := r.NamespaceDecls()
	if len(decls) != 2 {
		t.Fatalf("decls = %v, want 2", decls)
	}
	if decls[0] != (NamespaceDecl{Prefix: "", URI: "urn:a"}) || decls[1] != (NamespaceDecl{Prefix: "b", URI: "urn:b"}) {
		t.Fatalf("decls = %v", decls)
	}
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next error = %v", err)
	}
	if ev.Name != qname.New("urn:b", "c") {
		t.Fatalf("child = %v", ev.Name)
	}
	if got := r.NamespaceDecls(); len(got) != 0 {
		t.Fatalf("child decls = %v, want none", got)
	}
	if ns, ok := r.LookupNamespace("b"); !ok || ns != "urn:b" {
		t.Fatalf("LookupNamespace(b) = %q, %v", ns, ok)
	}
	if ns, ok := r.LookupNamespace("xml"); !ok || ns != XMLNamespace {
		t.Fatalf("LookupNamespace(xml) = %q, %v", ns, ok)
	}
}

func TestReaderScopesPopAfterEnd(t *testing.T) {
	r, err := NewReader(strings.NewReader(`<a><b xmlns:x="urn:x"/><c/></a>`))
	if err != nil {
		t.Fatalf("NewReader error = %v", err)
	}
	for range 3 {
		if _, err = r.Next(); err != nil {
			t.Fatalf("Next error = %v", err)
		}
	}
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next error = %v", err)
	}
	if ev.Name.Local != "c" {
		t.Fatalf("event = %v, want c", ev.Name)
	}
	if _, ok := r.LookupNamespace("x"); ok {
		t.Fatalf("prefix x still bound after its element closed")
	}
}

func TestReaderSkipsCommentsAndPIs(t *testing.T) {
	events, err := collect(t, `<?xml version="1.0"?><!-- c --><a><?pi x?><!-- d --><b/></a>`)
	if err != nil {
		t.Fatalf("collect error = %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("events = %d, want 4", len(events))
	}
}

func TestReaderSkipSubtree(t *testing.T) {
	r, err := NewReader(strings.NewReader(`<a><skip><x><y/></x></skip><keep/></a>`))
	if err != nil {
		t.Fatalf("NewReader error = %v", err)
	}
	if _, err = r.Next(); err != nil {
		t.Fatalf("Next error = %v", err)
	}
	if err = r.SkipSubtree(); err != nil {
		t.Fatalf("SkipSubtree root error = %v", err)
	}
	if _, err = r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next after root skip = %v, want EOF", err)
	}

	r, _ = NewReader(strings.NewReader(`<a><skip><x><y/></x></skip><keep/></a>`))
	_, _ = r.Next()
	if _, err = r.Next(); err != nil {
		t.Fatalf("Next error = %v", err)
	}
	if err = r.SkipSubtree(); err != nil {
		t.Fatalf("SkipSubtree error = %v", err)
	}
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next error = %v", err)
	}
	if ev.Name.Local != "keep" {
		t.Fatalf("after skip = %v, want keep", ev.Name)
	}
	if r.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", r.Depth())
	}
}

func TestReaderSkipSubtreeRequiresStart(t *testing.T) {
	r, _ := NewReader(strings.NewReader(`<a>text</a>`))
	_, _ = r.Next()
	_, _ = r.Next()
	if err := r.SkipSubtree(); !errors.Is(err, errNoStartElement) {
		t.Fatalf("SkipSubtree = %v, want %v", err, errNoStartElement)
	}
}

func TestReaderWellFormedness(t *testing.T) {
	tests := []struct {
		want error
		name string
		doc  string
		opts []Option
	}{
		{name: "mismatched end", doc: `<a><b></a></b>`, want: errMismatchedEndTag},
		{name: "unbound element prefix", doc: `<x:a/>`, want: errUnboundPrefix},
		{name: "unbound attribute prefix", doc: `<a x:b="1"/>`, want: errUnboundPrefix},
		{name: "duplicate raw attribute", doc: `<a b="1" b="2"/>`, want: errDuplicateAttribute},
		{name: "duplicate resolved attribute", doc: `<a xmlns:p="urn:x" xmlns:q="urn:x" p:b="1" q:b="2"/>`, want: errDuplicateAttribute},
		{name: "two roots", doc: `<a/><b/>`, want: errMultipleRoots},
		{name: "text after root", doc: `<a/>junk`, want: errContentOutsideRoot},
		{name: "unclosed", doc: `<a><b/>`, want: errUnclosedElement},
		{name: "empty", doc: `  `, want: errNoRoot},
		{name: "xmlns prefix declared", doc: `<a xmlns:xmlns="urn:x"/>`, want: errXMLNSPrefixDeclared},
		{name: "depth limit", doc: `<a><b><c/></b></a>`, opts: []Option{WithMaxDepth(2)}, want: errMaxDepth},
		{name: "attr limit", doc: `<a b="1" c="2"/>`, opts: []Option{WithMaxAttrs(1)}, want: errMaxAttrs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(t, tt.doc, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var syntax *SyntaxError
			if !errors.As(err, &syntax) {
				t.Fatalf("error type = %T, want *SyntaxError", err)
			}
		})
	}
}

func TestReaderSyntaxErrorPosition(t *testing.T) {
	_, err := collect(t, "<a>\n  <b></c>\n</a>")
	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("error type = %T, want *SyntaxError", err)
	}
	if syntax.Line != 2 {
		t.Fatalf("line = %d, want 2", syntax.Line)
	}
}

func TestReaderLatin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><a>caf\xe9</a>"
	events, err := collect(t, doc)
	if err != nil {
		t.Fatalf("collect error = %v", err)
	}
	if events[1].Text != "café" {
		t.Fatalf("text = %q, want café", events[1].Text)
	}
}

func TestNewReaderNil(t *testing.T) {
	if _, err := NewReader(nil); !errors.Is(err, errNilReader) {
		t.Fatalf("NewReader(nil) = %v", err)
	}
}
