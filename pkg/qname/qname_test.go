package qname

import (
	"slices"
	"testing"
)

func TestCompare(t *testing.T) {
	left := QName{Space: "urn:a", Local: "b"}
	right := QName{Space: "urn:b", Local: "a"}
	if got := Compare(left, right); got >= 0 {
		t.Fatalf("Compare() = %d, want < 0", got)
	}

	left = QName{Space: "urn:a", Local: "b"}
	right = QName{Space: "urn:a", Local: "c"}
	if got := Compare(left, right); got >= 0 {
		t.Fatalf("Compare() = %d, want < 0", got)
	}
}

func TestSortedMapKeys(t *testing.T) {
	in := map[QName]int{
		{Space: "urn:b", Local: "x"}: 1,
		{Space: "urn:a", Local: "z"}: 1,
		{Space: "urn:a", Local: "a"}: 1,
	}
	got := SortedMapKeys(in)
	want := []QName{
		{Space: "urn:a", Local: "a"},
		{Space: "urn:a", Local: "z"},
		{Space: "urn:b", Local: "x"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("SortedMapKeys() = %v, want %v", got, want)
	}
}

func TestSortAndDedupe(t *testing.T) {
	in := []QName{
		{Space: "urn:b", Local: "x"},
		{Space: "urn:a", Local: "a"},
		{Space: "urn:b", Local: "x"},
		{Space: "urn:a", Local: "z"},
	}
	got := SortAndDedupe(in)
	want := []QName{
		{Space: "urn:a", Local: "a"},
		{Space: "urn:a", Local: "z"},
		{Space: "urn:b", Local: "x"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("SortAndDedupe() = %v, want %v", got, want)
	}
}

func TestString(t *testing.T) {
	if got := New("urn:a", "b").String(); got != "{urn:a}b" {
		t.Fatalf("String() = %q, want {urn:a}b", got)
	}
	if got := Local("b").String(); got != "b" {
		t.Fatalf("String() = %q, want b", got)
	}
}

func TestParseValueWithPrefix(t *testing.T) {
	got, err := ParseValue("p:item", map[string]string{"p": "urn:test"})
	if err != nil {
		t.Fatalf("ParseValue() error = %v", err)
	}
	if got.Space != "urn:test" || got.Local != "item" {
		t.Fatalf("ParseValue() = %s, want {urn:test}item", got)
	}
}

func TestParseValueWithDefaultNamespace(t *testing.T) {
	got, err := ParseValue("item", map[string]string{"": "urn:default"})
	if err != nil {
		t.Fatalf("ParseValue() error = %v", err)
	}
	if got.Space != "urn:default" || got.Local != "item" {
		t.Fatalf("ParseValue() = %s, want {urn:default}item", got)
	}
}

func TestParseValueXMLPrefix(t *testing.T) {
	got, err := ParseValue("xml:lang", nil)
	if err != nil {
		t.Fatalf("ParseValue(xml:lang) error = %v", err)
	}
	if got.Space != XMLNamespace || got.Local != "lang" {
		t.Fatalf("ParseValue(xml:lang) = %s, want {%s}lang", got, XMLNamespace)
	}
	if _, err := ParseValue("xml:lang", map[string]string{"xml": "urn:wrong"}); err == nil {
		t.Fatal("ParseValue(xml:lang) with wrong binding error = nil, want error")
	}
}

func TestParseValueErrors(t *testing.T) {
	for _, in := range []string{"", "  ", "p:item", "p:", "a:b:c"} {
		if _, err := ParseValue(in, map[string]string{}); err == nil {
			t.Fatalf("ParseValue(%q) error = nil, want error", in)
		}
	}
}
