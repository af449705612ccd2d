package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/pkg/xmlstream"
)

type rel uint8

const (
	relAlternate rel = iota
	relSelf
)

func (r rel) String() string {
	if r == relSelf {
		return "SELF"
	}
	return "ALTERNATE"
}

func attr(space, local, value string) xmlstream.Attr {
	return xmlstream.Attr{Name: qname.New(space, local), Raw: xmlstream.RawName{Local: local}, Value: value}
}

func codeOf(t *testing.T, err error) gdataerrors.ErrorCode {
	t.Helper()
	pe, ok := gdataerrors.AsParseError(err)
	require.True(t, ok, "want ParseError, got %v", err)
	return pe.Code
}

func TestAttributeHelperConsume(t *testing.T) {
	h := NewAttributeHelper([]xmlstream.Attr{
		attr("", "href", "http://a"),
		attr("", "length", "42"),
		attr(qname.XMLNamespace, "lang", "en"),
	}, nil)

	v, ok, err := h.Consume("href", true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://a", v)

	_, _, err = h.Consume("rel", true)
	assert.Equal(t, gdataerrors.ErrMissingAttribute, codeOf(t, err))

	_, ok, err = h.Consume("rel", false)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := h.ConsumeLong("length", false, -1)
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)

	require.NoError(t, h.AssertAllConsumed(), "xml:lang is not reported")
}

func TestAttributeHelperNumbersAndBools(t *testing.T) {
	h := NewAttributeHelper([]xmlstream.Attr{
		attr("", "count", "x"),
		attr("", "flag", "1"),
		attr("", "other", "maybe"),
	}, nil)

	n, err := h.ConsumeInt("count", false, 7)
	assert.Equal(t, 7, n)
	assert.Equal(t, gdataerrors.ErrInvalidValue, codeOf(t, err))

	n, err = h.ConsumeInt("missing", false, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	b, err := h.ConsumeBool("flag", false, false)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = h.ConsumeBool("other", false, false)
	assert.Equal(t, gdataerrors.ErrInvalidValue, codeOf(t, err))
}

func TestAttributeHelperConsumeValue(t *testing.T) {
	h := NewAttributeHelper([]xmlstream.Attr{
		attr("urn:x", "when", "2009-01-02T03:04:05Z"),
		attr("", "size", "big"),
	}, nil)

	_, ok, err := h.ConsumeValue(qname.New("urn:other", "when"), model.DateTime, false)
	require.NoError(t, err)
	assert.False(t, ok, "namespace must match")

	v, ok, err := h.ConsumeValue(qname.New("urn:x", "when"), model.DateTime, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2009, v.(interface{ Year() int }).Year())

	_, _, err = h.ConsumeValue(qname.Local("size"), model.Long, true)
	assert.Equal(t, gdataerrors.ErrInvalidValue, codeOf(t, err))
}

func TestConsumeEnum(t *testing.T) {
	values := []rel{relAlternate, relSelf}

	h := NewAttributeHelper([]xmlstream.Attr{attr("", "rel", "self")}, nil)
	got, err := ConsumeEnum(h, "rel", true, values, relAlternate)
	require.NoError(t, err)
	assert.Equal(t, relSelf, got)

	h = NewAttributeHelper([]xmlstream.Attr{attr("", "rel", "self")}, nil)
	got, err = ConsumeEnumFunc(h, "rel", true, values, relAlternate, LowerCase[rel])
	require.NoError(t, err)
	assert.Equal(t, relSelf, got)

	h = NewAttributeHelper([]xmlstream.Attr{attr("", "rel", "SELF")}, nil)
	_, err = ConsumeEnumFunc(h, "rel", true, values, relAlternate, LowerCase[rel])
	assert.Equal(t, gdataerrors.ErrInvalidEnum, codeOf(t, err))

	h = NewAttributeHelper([]xmlstream.Attr{attr("", "rel", "edit")}, nil)
	_, err = ConsumeEnum(h, "rel", true, values, relAlternate)
	assert.Equal(t, gdataerrors.ErrInvalidEnum, codeOf(t, err))
}

func TestAssertAllConsumed(t *testing.T) {
	text := "  body  "
	h := NewAttributeHelper([]xmlstream.Attr{
		attr("", "b", "1"),
		attr("", "a", "1"),
		attr("urn:x", "a", "2"),
	}, &text)

	err := h.AssertAllConsumed()
	pe, ok := gdataerrors.AsParseError(err)
	require.True(t, ok)
	assert.Equal(t, gdataerrors.ErrDuplicateAttribute, pe.Code)
	assert.Equal(t, "Unknown attributes: 'a'  'b' Duplicate attribute: 'a' Unexpected text content", pe.Message)

	content, ok, err := h.ConsumeContent(true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "body", content)

	_, _, err = NewAttributeHelper(nil, nil).ConsumeContent(true)
	assert.Equal(t, gdataerrors.ErrMissingContent, codeOf(t, err))
}

func TestAttributeHelperSharedLocalName(t *testing.T) {
	orders := map[string][]xmlstream.Attr{
		"unqualified first": {attr("", "href", "x"), attr("urn:p", "href", "y")},
		"namespaced first":  {attr("urn:p", "href", "y"), attr("", "href", "x")},
	}
	for name, attrs := range orders {
		t.Run(name, func(t *testing.T) {
			h := NewAttributeHelper(attrs, nil)
			v, ok, err := h.ConsumeQName(qname.Local("href"), true)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "x", v, "the unqualified attribute is not overwritten")

			err = h.AssertAllConsumed()
			assert.Equal(t, gdataerrors.ErrDuplicateAttribute, codeOf(t, err))
			assert.Contains(t, err.Error(), "Duplicate attribute: 'href'")
		})
	}

	h := NewAttributeHelper([]xmlstream.Attr{attr("urn:p", "href", "y"), attr("", "href", "x")}, nil)
	v, _, err := h.Consume("href", true)
	require.NoError(t, err)
	assert.Equal(t, "x", v, "lookup by local name prefers the unqualified attribute")
	v, _, err = h.Consume("href", true)
	require.NoError(t, err)
	assert.Equal(t, "y", v)
}

func TestConsumeEnumValue(t *testing.T) {
	values := []string{"insert", "update"}
	h := NewAttributeHelper([]xmlstream.Attr{attr("", "type", "UPDATE")}, nil)
	v, ok, err := h.ConsumeEnumValue(qname.Local("type"), true, values, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "update", v)

	h = NewAttributeHelper([]xmlstream.Attr{attr("", "type", "UPDATE")}, nil)
	_, _, err = h.ConsumeEnumValue(qname.Local("type"), true, values, false)
	assert.Equal(t, gdataerrors.ErrInvalidEnum, codeOf(t, err))

	_, ok, err = NewAttributeHelper(nil, nil).ConsumeEnumValue(qname.Local("type"), false, values, true)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := MatchEnum("rel", "SELF", []rel{relAlternate, relSelf}, rel.String)
	require.NoError(t, err)
	assert.Equal(t, relSelf, got)
	_, err = MatchEnum("rel", "self", []rel{relAlternate, relSelf}, rel.String)
	assert.Equal(t, gdataerrors.ErrInvalidEnum, codeOf(t, err))
}

func TestBoolAttribute(t *testing.T) {
	tests := []struct {
		value       string
		want        bool
		wantPresent bool
		wantErr     bool
	}{
		{value: "TRUE", want: true, wantPresent: true},
		{value: "0", want: false, wantPresent: true},
		{value: "yes", wantPresent: true, wantErr: true},
	}
	for _, tt := range tests {
		got, present, err := BoolAttribute([]xmlstream.Attr{attr("", "inline", tt.value)}, "inline")
		if tt.wantErr {
			require.Error(t, err)
		} else {
			require.NoError(t, err)
		}
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.wantPresent, present)
	}

	_, present, err := BoolAttribute([]xmlstream.Attr{attr("urn:x", "inline", "true")}, "inline")
	require.NoError(t, err)
	assert.False(t, present)
}
