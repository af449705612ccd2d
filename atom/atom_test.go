package atom

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/gdata/bind"
	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/extension"
	"github.com/jacoelho/gdata/generator"
	"github.com/jacoelho/gdata/model"
)

func parse(t *testing.T, schema *model.Schema, key model.ElementKey, doc string, opts ...bind.Option) (*model.Element, error) {
	t.Helper()
	if schema == nil {
		schema = model.DefaultSchema()
	}
	return bind.Parse(context.Background(), strings.NewReader(doc), schema, key, opts...)
}

func generate(t *testing.T, e *model.Element, ctx model.Context) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, generator.Generate(&buf, e, model.DefaultSchema(), ctx))
	return buf.String()
}

func requireCode(t *testing.T, err error, code gdataerrors.ErrorCode) {
	t.Helper()
	pe, ok := gdataerrors.AsParseError(err)
	require.True(t, ok, "want ParseError, got %v", err)
	assert.Equal(t, code, pe.Code, pe.Message)
}

func TestEntryRoundTrip(t *testing.T) {
	doc := `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005" gd:etag="W/abc">` +
		`<id>urn:x</id><title type="text">Hello</title>` +
		`<link rel="self" href="http://example.com/e/1" length="12"/><link href="http://example.com/alt"/></entry>`
	entry, err := parse(t, nil, Entry.Key(), doc)
	require.NoError(t, err)

	assert.Equal(t, "urn:x", ID(entry))
	assert.Equal(t, "Hello", Title(entry))
	etag, _ := model.Attr[string](entry, ETagAttr)
	assert.Equal(t, "W/abc", etag)
	assert.Equal(t, doc, generate(t, entry, model.Context{}))
}

func TestFeedBinding(t *testing.T) {
	doc := `<feed xmlns="http://www.w3.org/2005/Atom">
  <id>urn:feed</id>
  <title type="xhtml"><div xmlns="http://www.w3.org/1999/xhtml">Hi <b>there</b></div></title>
  <updated>2008-05-01T10:00:00Z</updated>
  <author><name>Ann</name><email>ann@example.com</email></author>
  <category scheme="http://example.com/s" term="news" label="News"/>
  <generator uri="http://example.com/gen" version="1.0">gen</generator>
  <entry><id>urn:e1</id><content type="html">one &lt;b&gt;two&lt;/b&gt;</content></entry>
  <entry><id>urn:e2</id></entry>
</feed>`
	feed, err := parse(t, nil, Feed.Key(), doc)
	require.NoError(t, err)

	updated, ok := Updated(feed)
	require.True(t, ok)
	assert.Equal(t, time.Date(2008, 5, 1, 10, 0, 0, 0, time.UTC), updated)

	title := feed.Element(TitleKey)
	require.NotNil(t, title.Blob())
	assert.Equal(t, `<div xmlns="http://www.w3.org/1999/xhtml">Hi <b>there</b></div>`, title.Blob().XML())
	assert.Empty(t, Title(feed), "xhtml titles keep their markup in the blob")

	author := feed.Element(AuthorKey)
	assert.Equal(t, "Ann", Text(author, NameKey))
	assert.Equal(t, "ann@example.com", Text(author, EmailKey))

	term, _ := model.Attr[string](feed.Element(CategoryKey), TermAttr)
	assert.Equal(t, "news", term)
	version, _ := model.Attr[string](feed.Element(GeneratorKey), GeneratorVersionAttr)
	assert.Equal(t, "1.0", version)

	entries := Entries(feed)
	require.Len(t, entries, 2)
	assert.Equal(t, "urn:e2", ID(entries[1]))
	assert.Equal(t, "one &lt;b&gt;two&lt;/b&gt;", entries[0].Element(ContentKey).Blob().XML())
}

func TestRequiredAtomElements(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code gdataerrors.ErrorCode
	}{
		{
			name: "person without name",
			doc:  `<entry xmlns="http://www.w3.org/2005/Atom"><author><email>a@b</email></author></entry>`,
			code: gdataerrors.ErrMissingElement,
		},
		{
			name: "link without href",
			doc:  `<entry xmlns="http://www.w3.org/2005/Atom"><link rel="self"/></entry>`,
			code: gdataerrors.ErrMissingAttribute,
		},
		{
			name: "category without term",
			doc:  `<entry xmlns="http://www.w3.org/2005/Atom"><category label="x"/></entry>`,
			code: gdataerrors.ErrMissingAttribute,
		},
		{
			name: "empty id",
			doc:  `<entry xmlns="http://www.w3.org/2005/Atom"><id/></entry>`,
			code: gdataerrors.ErrMissingContent,
		},
		{
			name: "bad length",
			doc:  `<entry xmlns="http://www.w3.org/2005/Atom"><link href="/a" length="big"/></entry>`,
			code: gdataerrors.ErrInvalidValue,
		},
		{
			name: "two ids",
			doc:  `<entry xmlns="http://www.w3.org/2005/Atom"><id>a</id><id>b</id></entry>`,
			code: gdataerrors.ErrDuplicateElement,
		},
		{
			name: "extension without profile",
			doc:  `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:batch="http://schemas.google.com/gdata/batch"><batch:id>1</batch:id></entry>`,
			code: gdataerrors.ErrUnrecognizedElement,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, nil, Entry.Key(), tt.doc)
			requireCode(t, err, tt.code)
		})
	}
}

func TestLink(t *testing.T) {
	doc := `<entry xmlns="http://www.w3.org/2005/Atom">` +
		`<link href="http://example.com/alt" type="text/html"/>` +
		`<link rel="edit" type="application/atom+xml" href="http://example.com/edit" length="42" title="Edit"/></entry>`
	entry, err := parse(t, nil, Entry.Key(), doc)
	require.NoError(t, err)

	links := Links(entry)
	require.Len(t, links, 2)
	assert.Equal(t, RelAlternate, links[0].Rel())
	assert.Equal(t, int64(-1), links[0].Length())
	assert.True(t, links[0].Matches("", TypeHTML))
	assert.True(t, links[0].Matches(RelAlternate, ""))
	assert.False(t, links[0].Matches(RelEdit, ""))

	edit, ok := FindLink(entry, RelEdit, TypeAtom)
	require.True(t, ok)
	assert.Equal(t, "http://example.com/edit", edit.Href())
	assert.Equal(t, int64(42), edit.Length())
	assert.Equal(t, "Edit", edit.Title())

	_, ok = FindLink(entry, RelSelf, "")
	assert.False(t, ok)

	_, ok = AsLink(entry)
	assert.False(t, ok)
	l, ok := AsLink(entry.Children()[0])
	require.True(t, ok)
	assert.Equal(t, "text/html", l.Type())
}

func TestNewEntry(t *testing.T) {
	entry, err := NewEntry(nil, model.Context{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ID(entry), "urn:uuid:"), ID(entry))
	assert.Len(t, ID(entry), len("urn:uuid:")+36)
	updated, ok := Updated(entry)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), updated, time.Minute)

	other, err := NewEntry(nil, model.Context{})
	require.NoError(t, err)
	assert.NotEqual(t, ID(entry), ID(other))

	require.NoError(t, SetText(entry, TitleKey, "Hi"))
	require.NoError(t, SetText(entry, TitleKey, "Hello"))
	link, err := NewLink(entry, RelEdit, TypeAtom, "http://example.com/e")
	require.NoError(t, err)
	require.NoError(t, entry.AddElement(link.Element))
	require.NoError(t, entry.Validate())

	out := generate(t, entry, model.Context{})
	assert.Contains(t, out, "<title>Hello</title>")
	assert.Contains(t, out, `<link rel="edit" type="application/atom+xml" href="http://example.com/e"/>`)

	feed, err := NewFeed(nil, model.Context{})
	require.NoError(t, err)
	require.NoError(t, feed.AddElement(entry))
	assert.Len(t, Entries(feed), 1)
}

func TestAtomPubVersions(t *testing.T) {
	v1doc := `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:app="http://purl.org/atom/app#">` +
		`<id>urn:x</id><app:control><app:draft>yes</app:draft></app:control></entry>`
	entry, err := parse(t, nil, Entry.Key(), v1doc, bind.WithContext(model.Context{Version: V1}))
	require.NoError(t, err)
	control := entry.Element(ControlKey)
	require.NotNil(t, control)
	assert.Equal(t, "yes", Text(control, DraftKey))

	_, err = parse(t, nil, Entry.Key(), v1doc, bind.WithContext(model.Context{Version: V2}))
	requireCode(t, err, gdataerrors.ErrUnrecognizedElement)

	assert.Equal(t, `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:app="http://www.w3.org/2007/app">`+
		`<id>urn:x</id><app:control><app:draft>yes</app:draft></app:control></entry>`,
		generate(t, entry, model.Context{Version: V2}))
	assert.Equal(t, v1doc, generate(t, entry, model.Context{Version: V1}))
}

func TestBatchOperation(t *testing.T) {
	for _, tt := range []struct {
		value string
		want  OperationType
	}{
		{"insert", OperationInsert},
		{"UPDATE", OperationUpdate},
		{"Delete", OperationDelete},
		{"query", OperationQuery},
	} {
		op, err := ParseOperationType(tt.value)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, op)
	}
	_, err := ParseOperationType("merge")
	requireCode(t, err, gdataerrors.ErrInvalidEnum)

	schema, err := NewProfile().Schema(nil)
	require.NoError(t, err)
	doc := `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:batch="http://schemas.google.com/gdata/batch">` +
		`<batch:id>7</batch:id><batch:operation type="update"/><batch:status code="200" reason="Success"/></entry>`
	entry, err := parse(t, schema, Entry.Key(), doc)
	require.NoError(t, err)

	op, ok, err := Operation(entry)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OperationUpdate, op)

	status, ok := BatchStatus(entry)
	require.True(t, ok)
	assert.Equal(t, Status{Code: 200, Reason: "Success"}, status)

	require.NoError(t, SetOperation(entry, OperationDelete))
	typ, _ := model.Attr[string](entry.Element(BatchOperationKey), TypeAttr)
	assert.Equal(t, "delete", typ)
	assert.Len(t, entry.Elements(BatchOperationKey), 1)

	_, ok, err = Operation(model.NewElement(schema.Root(Entry.Key(), model.Context{})))
	require.NoError(t, err)
	assert.False(t, ok)

	upper := strings.Replace(doc, `type="update"`, `type="INSERT"`, 1)
	entry, err = parse(t, schema, Entry.Key(), upper)
	require.NoError(t, err)
	typ, _ = model.Attr[string](entry.Element(BatchOperationKey), TypeAttr)
	assert.Equal(t, "insert", typ, "operation types are stored in lower case")

	_, err = parse(t, schema, Entry.Key(), strings.Replace(doc, `type="update"`, `type="merge"`, 1))
	requireCode(t, err, gdataerrors.ErrInvalidEnum)
}

func TestProfileFeed(t *testing.T) {
	schema, err := NewProfile().Schema(nil)
	require.NoError(t, err)
	doc := `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:openSearch="http://a9.com/-/spec/opensearch/1.1/" xmlns:gd="http://schemas.google.com/g/2005">` +
		`<openSearch:totalResults>2</openSearch:totalResults><openSearch:startIndex>1</openSearch:startIndex>` +
		`<entry><id>urn:e1</id><gd:quotaBytesUsed>1024</gd:quotaBytesUsed></entry></feed>`
	feed, err := parse(t, schema, Feed.Key(), doc)
	require.NoError(t, err)

	total, _ := feed.Element(TotalResultsKey).Text()
	assert.Equal(t, 2, total)
	quota, _ := Entries(feed)[0].Element(QuotaBytesUsedKey).Text()
	assert.Equal(t, int64(1024), quota)

	var buf bytes.Buffer
	require.NoError(t, generator.Generate(&buf, feed, schema, model.Context{}))
	assert.Equal(t, `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:openSearch="http://a9.com/-/spec/opensearch/1.1/" xmlns:gd="http://schemas.google.com/g/2005">`+
		`<openSearch:totalResults>2</openSearch:totalResults><openSearch:startIndex>1</openSearch:startIndex>`+
		`<entry><id>urn:e1</id><gd:quotaBytesUsed>1024</gd:quotaBytesUsed></entry></feed>`, buf.String())
}

func TestAclFeed(t *testing.T) {
	doc := `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:gAcl="http://schemas.google.com/acl/2007">` +
		`<entry><gAcl:scope type="user" value="a@example.com"/><gAcl:role value="owner"/></entry>` +
		`<entry><gAcl:scope type="default"/><gAcl:role value="reader"/></entry></feed>`
	feed, err := parse(t, nil, AclFeed.Key(), doc)
	require.NoError(t, err)

	entries := Entries(feed)
	require.Len(t, entries, 2)
	assert.Equal(t, AclEntry, entries[0].Key().Kind)

	scope, err := AclScope(entries[0])
	require.NoError(t, err)
	assert.Equal(t, Scope{Type: ScopeUser, Value: "a@example.com"}, scope)
	assert.Equal(t, "owner", AclRole(entries[0]))

	scope, err = AclScope(entries[1])
	require.NoError(t, err)
	assert.Equal(t, Scope{Type: ScopeDefault}, scope)

	require.NoError(t, SetAclScope(entries[1], Scope{Type: ScopeDomain, Value: "example.com"}))
	typ, _ := model.Attr[string](entries[1].Element(ScopeKey), TypeAttr)
	assert.Equal(t, "domain", typ)

	err = SetAclScope(entries[1], Scope{Type: ScopeDefault, Value: "x"})
	requireCode(t, err, gdataerrors.ErrInvalidValue)
	err = SetAclScope(entries[1], Scope{Type: ScopeUser})
	requireCode(t, err, gdataerrors.ErrMissingAttribute)

	_, err = ParseScopeType("USER")
	requireCode(t, err, gdataerrors.ErrInvalidEnum)

	for _, typ := range []string{"USER", "bogus"} {
		_, err = parse(t, nil, AclFeed.Key(), strings.Replace(doc, `type="user"`, `type="`+typ+`"`, 1))
		requireCode(t, err, gdataerrors.ErrInvalidEnum)
	}
	require.Error(t, entries[0].Element(ScopeKey).SetAttribute(TypeAttr, "bogus"))

	_, err = parse(t, nil, AclFeed.Key(), `<feed xmlns="http://www.w3.org/2005/Atom"><entry><gAcl:scope xmlns:gAcl="http://schemas.google.com/acl/2007" type="user" value="a"/></entry></feed>`)
	requireCode(t, err, gdataerrors.ErrMissingElement)
}

func TestPartial(t *testing.T) {
	doc := `<gd:partial xmlns:gd="http://schemas.google.com/g/2005" xmlns="http://www.w3.org/2005/Atom" fields="title">` +
		`<entry><title>New</title></entry></gd:partial>`
	partial, err := parse(t, nil, PartialKey, doc)
	require.NoError(t, err)
	fields, _ := model.Attr[string](partial, FieldsAttr)
	assert.Equal(t, "title", fields)
	assert.Equal(t, "New", Title(partial.Element(Entry.Key())))

	_, err = parse(t, nil, PartialKey, `<gd:partial xmlns:gd="http://schemas.google.com/g/2005"/>`)
	requireCode(t, err, gdataerrors.ErrMissingElement)
}

func TestCatalogRegistration(t *testing.T) {
	c := extension.DefaultCatalog()
	for _, kind := range []*model.Kind{Feed, Entry, Source, AclFeed, AclEntry} {
		got, ok := c.Kind(kind.Name())
		require.True(t, ok, kind.Name())
		assert.Same(t, kind, got)
	}
	name, ok := c.ExtensionName(BatchIDKey)
	require.True(t, ok)
	assert.Equal(t, "batchId", name)

	var buf bytes.Buffer
	require.NoError(t, NewProfile().WriteYAML(&buf, c))
	assert.Contains(t, buf.String(), "extension: totalResults")
	assert.Contains(t, buf.String(), "extension: quotaBytesUsed")
}
