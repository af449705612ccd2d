// Package xmlblob holds foreign XML captured verbatim while parsing so that
// it can be written back unchanged.
package xmlblob

import (
	"slices"
	"strings"

	"github.com/jacoelho/gdata/pkg/qname"
)

// Segment is one captured fragment. Position is the number of recognized
// children that preceded the fragment in its parent.
type Segment struct {
	XML      string
	Position int
}

// Blob is the unrecognized content of one element.
type Blob struct {
	Lang       string
	Base       string
	FullText   string
	Namespaces []qname.Namespace
	Segments   []Segment
}

// XML returns all captured fragments concatenated in document order.
func (b *Blob) XML() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, seg := range b.Segments {
		sb.WriteString(seg.XML)
	}
	return sb.String()
}

// Append records a fragment at the given child position.
// Adjacent fragments at the same position are merged.
func (b *Blob) Append(position int, xml string) {
	if xml == "" {
		return
	}
	if n := len(b.Segments); n > 0 && b.Segments[n-1].Position == position {
		b.Segments[n-1].XML += xml
		return
	}
	b.Segments = append(b.Segments, Segment{Position: position, XML: xml})
}

// SegmentsAt returns the fragments recorded at position.
func (b *Blob) SegmentsAt(position int) []Segment {
	if b == nil {
		return nil
	}
	var out []Segment
	for _, seg := range b.Segments {
		if seg.Position == position {
			out = append(out, seg)
		}
	}
	return out
}

// AddNamespace records a namespace used by the captured markup.
// A prefix already recorded keeps its first binding.
func (b *Blob) AddNamespace(ns qname.Namespace) {
	for _, existing := range b.Namespaces {
		if existing.Prefix == ns.Prefix {
			return
		}
	}
	b.Namespaces = append(b.Namespaces, ns)
}

// AppendFullText adds text to the full-text index.
func (b *Blob) AppendFullText(text string) {
	b.FullText += text
}

// Empty reports whether nothing was captured.
func (b *Blob) Empty() bool {
	return b == nil || (len(b.Segments) == 0 && b.Lang == "" && b.Base == "")
}

// Clone returns a deep copy.
func (b *Blob) Clone() *Blob {
	if b == nil {
		return nil
	}
	out := *b
	out.Namespaces = slices.Clone(b.Namespaces)
	out.Segments = slices.Clone(b.Segments)
	return &out
}

// Equal compares captured content. Namespace order is not significant.
func (b *Blob) Equal(other *Blob) bool {
	if b.Empty() || other.Empty() {
		return b.Empty() == other.Empty()
	}
	if b.Lang != other.Lang || b.Base != other.Base || b.FullText != other.FullText {
		return false
	}
	if !slices.Equal(b.Segments, other.Segments) {
		return false
	}
	left := slices.Clone(b.Namespaces)
	right := slices.Clone(other.Namespaces)
	slices.SortFunc(left, qname.CompareNamespaces)
	slices.SortFunc(right, qname.CompareNamespaces)
	return slices.Equal(left, right)
}
