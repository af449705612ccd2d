package model

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/version"
	"github.com/jacoelho/gdata/xmlblob"
)

var (
	testNS     = qname.Namespace{Prefix: "t", URI: "urn:test"}
	rootKey    = Key(testNS.Name("root"), Void)
	itemKey    = Key(testNS.Name("item"), String)
	countKey   = Key(testNS.Name("count"), Long)
	hrefAttr   = AttrKey(qname.Local("href"), URI)
	sizeAttr   = AttrKey(qname.Local("size"), Int)
	legacyName = qname.New("urn:legacy", "item")
)

func testBuilder() *Builder {
	b := NewBuilder()
	root := b.Element(rootKey).Namespace(testNS)
	root.AddElement(itemKey).Cardinality(Multiple)
	root.AddElement(countKey).Required(true)
	b.Element(itemKey).ContentRequired(true)
	item := b.Element(itemKey)
	item.AddAttribute(hrefAttr).Required(true)
	item.AddAttribute(sizeAttr).Default("0")
	return b
}

func TestDatatypeParseFormat(t *testing.T) {
	ts := time.Date(2008, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		want    any
		lexical string
		format  string
		dt      Datatype
		wantErr bool
	}{
		{dt: String, lexical: " a ", want: " a ", format: " a "},
		{dt: Bool, lexical: "TRUE", want: true, format: "true"},
		{dt: Bool, lexical: "0", want: false, format: "false"},
		{dt: Bool, lexical: "yes", wantErr: true},
		{dt: Int, lexical: " 42 ", want: 42, format: "42"},
		{dt: Int, lexical: "99999999999", wantErr: true},
		{dt: Long, lexical: "99999999999", want: int64(99999999999), format: "99999999999"},
		{dt: Double, lexical: "1.5", want: 1.5, format: "1.5"},
		{dt: Float, lexical: "2.25", want: float32(2.25), format: "2.25"},
		{dt: DateTime, lexical: "2008-05-01T10:00:00Z", want: ts, format: "2008-05-01T10:00:00Z"},
		{dt: DateTime, lexical: "yesterday", wantErr: true},
		{dt: URI, lexical: " http://example.com/a ", want: "http://example.com/a", format: "http://example.com/a"},
		{dt: URI, lexical: "http://[::1", wantErr: true},
		{dt: Void, lexical: "  ", want: nil, format: ""},
		{dt: Void, lexical: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.dt.String()+"/"+tt.lexical, func(t *testing.T) {
			got, err := tt.dt.Parse(tt.lexical)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			lexical, err := tt.dt.Format(got)
			require.NoError(t, err)
			assert.Equal(t, tt.format, lexical)
		})
	}
}

func TestDatatypeFormatRejectsWrongType(t *testing.T) {
	_, err := Long.Format("12")
	require.Error(t, err)
	_, err = Bool.Format(1)
	require.Error(t, err)
}

func TestDatatypeFormatIntRange(t *testing.T) {
	_, err := Int.Format(int64(1) << 40)
	require.Error(t, err, "Int is 32 bits wide")
	_, err = Int.Format(math.MinInt32 - 1)
	require.Error(t, err)

	s, err := Int.Format(int64(math.MaxInt32))
	require.NoError(t, err)
	assert.Equal(t, "2147483647", s)
	s, err = Long.Format(int64(1) << 40)
	require.NoError(t, err)
	assert.Equal(t, "1099511627776", s)
}

func TestParseDatatype(t *testing.T) {
	dt, err := ParseDatatype("DateTime")
	require.NoError(t, err)
	assert.Equal(t, DateTime, dt)
	_, err = ParseDatatype("decimal")
	require.Error(t, err)
}

func TestKindLineage(t *testing.T) {
	entry := NewKind("entry", qname.Atom.Name("entry"), Void, nil)
	video := NewKind("video", qname.Atom.Name("entry"), Void, entry)

	assert.True(t, video.Is(entry))
	assert.False(t, entry.Is(video))
	assert.True(t, video.Key().Matches(entry.Key()))
	assert.True(t, video.Key().Matches(Key(qname.Atom.Name("entry"), Void)))
	assert.False(t, entry.Key().Matches(video.Key()))

	lineage := video.Key().lineage()
	require.Len(t, lineage, 3)
	assert.Nil(t, lineage[0].Kind)
	assert.Same(t, entry, lineage[1].Kind)
	assert.Same(t, video, lineage[2].Kind)
}

func TestBindMergesDeclarations(t *testing.T) {
	s := testBuilder().MustBuild()
	root := s.Root(rootKey, Context{})
	require.False(t, root.Undeclared())
	assert.Equal(t, []ElementKey{itemKey, countKey}, root.ChildKeys())
	assert.Equal(t, []qname.Namespace{testNS}, s.Namespaces())

	item := root.BindChild(itemKey)
	assert.Equal(t, Multiple, item.Cardinality())
	assert.True(t, item.ContentRequired())
	require.Len(t, item.Attributes(), 2)
	assert.True(t, item.Attribute(hrefAttr).Required())
	def, ok := item.Attribute(sizeAttr).Default()
	assert.True(t, ok)
	assert.Equal(t, "0", def)

	count := root.BindChild(countKey)
	assert.True(t, count.Required(), "child override applies within parent")
	assert.True(t, count.Undeclared() == false)
	assert.False(t, s.Root(countKey, Context{}).Required(), "override does not apply outside parent")

	key, ok := root.ChildByName(testNS.Name("item"))
	require.True(t, ok)
	assert.Equal(t, itemKey, key)
	_, ok = root.ChildByName(testNS.Name("other"))
	assert.False(t, ok)
}

func TestBindUndeclaredPassThrough(t *testing.T) {
	s := testBuilder().MustBuild()
	m := s.Root(Key(qname.New("urn:foreign", "x"), String), Context{})
	assert.True(t, m.Undeclared())
	assert.True(t, m.ArbitraryXML())
	assert.Empty(t, m.ChildKeys())
	assert.Nil(t, m.AttributeByName(qname.Local("a")))
}

func TestBindKindInheritance(t *testing.T) {
	entry := NewKind("entry", qname.Atom.Name("entry"), Void, nil)
	video := NewKind("video", qname.Atom.Name("entry"), Void, entry)
	stats := Key(qname.YouTube.Name("statistics"), Void)
	id := Key(qname.Atom.Name("id"), String)

	b := NewBuilder()
	b.Element(entry.Key()).AddElement(id).Required(true)
	b.Element(video.Key()).AddElement(stats)
	s := b.MustBuild()

	m := s.Root(video.Key(), Context{})
	assert.Equal(t, []ElementKey{id, stats}, m.ChildKeys())
	assert.True(t, m.BindChild(id).Required())

	base := s.Root(entry.Key(), Context{})
	assert.Equal(t, []ElementKey{id}, base.ChildKeys())
}

func TestBindContextTransforms(t *testing.T) {
	v1 := version.MustNew("gdata", 1, 0)
	v2 := version.MustNew("gdata", 2, 0)
	b := testBuilder()
	b.ElementIn(itemKey, Context{Version: v1}).Rename(legacyName)
	b.ElementIn(itemKey, Context{Version: v1, Projection: "full"}).Rename(testNS.Name("fullItem"))
	b.ElementIn(itemKey, Context{Projection: "lite"}).Visible(false)
	s := b.MustBuild()

	tests := []struct {
		name        string
		ctx         Context
		wantName    qname.QName
		wantVisible bool
	}{
		{name: "default", ctx: Context{}, wantName: itemKey.Name, wantVisible: true},
		{name: "v2", ctx: Context{Version: v2}, wantName: itemKey.Name, wantVisible: true},
		{name: "v1", ctx: Context{Version: version.MustNew("gdata", 1, 1)}, wantName: legacyName, wantVisible: true},
		{name: "v1 full prefers more specific", ctx: Context{Version: v1, Projection: "full"}, wantName: testNS.Name("fullItem"), wantVisible: true},
		{name: "lite", ctx: Context{Projection: "lite"}, wantName: itemKey.Name, wantVisible: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := s.Root(rootKey, tt.ctx).BindChild(itemKey)
			assert.Equal(t, tt.wantName, m.Name())
			assert.Equal(t, tt.wantVisible, m.Visible())
			key, ok := s.Root(rootKey, tt.ctx).ChildByName(tt.wantName)
			assert.True(t, ok)
			assert.Equal(t, itemKey, key)
		})
	}
}

func TestContextMatching(t *testing.T) {
	v2 := version.MustNew("gdata", 2, 0)
	declared := Context{Format: "atom", Version: v2}
	assert.True(t, declared.Matches(Context{Format: "atom", Projection: "full", Version: version.MustNew("gdata", 2, 1)}))
	assert.False(t, declared.Matches(Context{Format: "atom"}))
	assert.False(t, declared.Matches(Context{Format: "rss", Version: v2}))
	assert.True(t, Context{}.Matches(Context{Format: "rss"}))
	assert.Equal(t, 2, declared.Specificity())
	assert.Equal(t, "format=atom,version=gdata:2.0", declared.String())
}

func TestBuildReportsConflicts(t *testing.T) {
	b := testBuilder()
	b.Element(itemKey).ContentRequired(false)
	b.Element(rootKey).AddElement(itemKey).Cardinality(Single)
	b.ElementIn(itemKey, Context{Projection: "lite"}).Visible(false)
	b.ElementIn(itemKey, Context{Projection: "full"}).Visible(true)

	_, err := b.Build()
	require.Error(t, err)
	var cfg *gdataerrors.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, gdataerrors.ErrConflictingMetadata, cfg.Code)
	require.Len(t, cfg.Conflicts, 2)
	assert.Equal(t, "content-required", cfg.Conflicts[0].Setting)
	assert.Equal(t, "cardinality", cfg.Conflicts[1].Setting)

	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuildRejectsEmptyName(t *testing.T) {
	b := NewBuilder()
	b.Element(Key(qname.QName{}, String))
	_, err := b.Build()
	var cfg *gdataerrors.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, gdataerrors.ErrInvalidDeclaration, cfg.Code)
}

func TestCloneIsIndependent(t *testing.T) {
	base := testBuilder()
	clone := base.Clone()
	clone.Element(itemKey).MixedContent(true)

	assert.False(t, base.MustBuild().Root(itemKey, Context{}).MixedContent())
	assert.True(t, clone.MustBuild().Root(itemKey, Context{}).MixedContent())
}

func TestSealedBuilderPanics(t *testing.T) {
	b := testBuilder()
	b.Seal()
	assert.True(t, b.Sealed())
	assert.Panics(t, func() { b.Element(itemKey) })
	assert.NotPanics(t, func() { b.Clone().Element(itemKey) })
}

func TestDefaultSchemaSealsDefault(t *testing.T) {
	s := DefaultSchema()
	require.NotNil(t, s)
	assert.Same(t, s, DefaultSchema())
	assert.True(t, Default().Sealed())
	assert.Panics(t, func() { Default().Element(itemKey) })
}

func TestBindConcurrent(t *testing.T) {
	s := testBuilder().MustBuild()
	const workers = 16
	results := make([]*ElementMetadata, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			root := s.Root(rootKey, Context{})
			_, _ = root.ChildByName(itemKey.Name)
			results[i] = root.BindChild(itemKey)
		}()
	}
	wg.Wait()
	for _, m := range results {
		assert.Same(t, results[0], m, "Bind returns the cached metadata")
	}
}

func TestElementAttributes(t *testing.T) {
	s := testBuilder().MustBuild()
	item := NewElement(s.Root(rootKey, Context{}).BindChild(itemKey))

	require.NoError(t, item.SetAttribute(hrefAttr, "http://example.com/"))
	require.NoError(t, item.SetAttribute(sizeAttr, 10))
	require.Error(t, item.SetAttribute(sizeAttr, "10"), "wrong Go type")
	require.Error(t, item.SetAttribute(sizeAttr, int64(1)<<40), "out of range for Int")
	err := item.SetAttribute(AttrKey(qname.Local("nope"), String), "x")
	require.ErrorIs(t, err, gdataerrors.ErrUndeclared)

	size, ok := Attr[int](item, sizeAttr)
	assert.True(t, ok)
	assert.Equal(t, 10, size)
	_, ok = Attr[string](item, sizeAttr)
	assert.False(t, ok)

	require.NoError(t, item.RemoveAttribute(sizeAttr))
	_, ok = item.AttributeValue(sizeAttr)
	assert.False(t, ok)
	assert.Equal(t, []AttributeKey{hrefAttr}, item.AttributeKeys())
}

func TestElementChildrenAndCardinality(t *testing.T) {
	s := testBuilder().MustBuild()
	rootMeta := s.Root(rootKey, Context{})
	root := NewElement(rootMeta)

	newItem := func(text string) *Element {
		el := NewElement(rootMeta.BindChild(itemKey))
		require.NoError(t, el.SetText(text))
		return el
	}
	require.NoError(t, root.AddElement(newItem("a")))
	require.NoError(t, root.AddElement(newItem("b")))

	count := NewElement(rootMeta.BindChild(countKey))
	require.NoError(t, count.SetText(int64(2)))
	require.NoError(t, root.AddElement(count))
	require.Error(t, root.AddElement(NewElement(rootMeta.BindChild(countKey))), "single child twice")

	foreign := NewElement(s.Root(Key(qname.Local("x"), String), Context{}))
	require.ErrorIs(t, root.AddElement(foreign), gdataerrors.ErrUndeclared)

	assert.Len(t, root.Elements(itemKey), 2)
	assert.Equal(t, "a", root.Element(itemKey).TextString())
	assert.Len(t, root.Children(), 3)

	require.NoError(t, root.RemoveElement(itemKey))
	assert.Empty(t, root.Elements(itemKey))
}

func TestElementText(t *testing.T) {
	s := testBuilder().MustBuild()
	root := NewElement(s.Root(rootKey, Context{}))
	require.ErrorIs(t, root.SetText("x"), gdataerrors.ErrUndeclared, "void element has no text")

	count := NewElement(s.Root(countKey, Context{}))
	require.Error(t, count.SetText("12"))
	require.NoError(t, count.SetText(int64(12)))
	v, ok := count.Text()
	assert.True(t, ok)
	assert.Equal(t, int64(12), v)
	assert.Equal(t, "12", count.TextString())
}

func TestElementLock(t *testing.T) {
	s := testBuilder().MustBuild()
	rootMeta := s.Root(rootKey, Context{})
	root := NewElement(rootMeta)
	item := NewElement(rootMeta.BindChild(itemKey))
	require.NoError(t, root.AddElement(item))

	root.Lock()
	assert.True(t, item.Locked())
	assert.ErrorIs(t, root.AddElement(NewElement(rootMeta.BindChild(itemKey))), gdataerrors.ErrLocked)
	assert.ErrorIs(t, item.SetText("x"), gdataerrors.ErrLocked)
	assert.ErrorIs(t, item.SetAttribute(hrefAttr, "x"), gdataerrors.ErrLocked)
	assert.ErrorIs(t, item.RemoveAttribute(hrefAttr), gdataerrors.ErrLocked)
	assert.ErrorIs(t, root.RemoveElement(itemKey), gdataerrors.ErrLocked)
	assert.ErrorIs(t, item.SetBlob(nil), gdataerrors.ErrLocked)
	assert.ErrorIs(t, item.SetLang("en"), gdataerrors.ErrLocked)
	assert.ErrorIs(t, item.SetBase("http://a/"), gdataerrors.ErrLocked)
}

func TestLockedElementBlobIsACopy(t *testing.T) {
	s := testBuilder().MustBuild()
	root := NewElement(s.Root(rootKey, Context{}))
	blob := &xmlblob.Blob{}
	blob.Append(0, "<x/>")
	require.NoError(t, root.SetBlob(blob))
	assert.Same(t, blob, root.Blob())

	root.Lock()
	root.Blob().Append(0, "<evil/>")
	root.Blob().AddNamespace(qname.Namespace{Prefix: "e", URI: "urn:e"})
	assert.Equal(t, "<x/>", root.Blob().XML())
	assert.Empty(t, root.Blob().Namespaces)
}

func TestElementLangAndBase(t *testing.T) {
	s := testBuilder().MustBuild()
	rootMeta := s.Root(rootKey, Context{})
	build := func(lang, base string) *Element {
		e := NewElement(rootMeta)
		require.NoError(t, e.SetLang(lang))
		require.NoError(t, e.SetBase(base))
		return e
	}
	e := build("en", "http://a/")
	assert.Equal(t, "en", e.Lang())
	assert.Equal(t, "http://a/", e.Base())
	assert.True(t, e.Equal(build("en", "http://a/")))
	assert.False(t, e.Equal(build("fr", "http://a/")))
	assert.False(t, e.Equal(build("en", "")))
}

func TestAttributeEnum(t *testing.T) {
	modeAttr := AttrKey(qname.Local("mode"), String)
	strictAttr := AttrKey(qname.Local("scope"), String)
	b := testBuilder()
	item := b.Element(itemKey)
	item.AddAttribute(modeAttr).Enum(true, "insert", "update")
	item.AddAttribute(strictAttr).Enum(false, "user", "domain")
	item.AddAttribute(hrefAttr).ResolveBase(true)
	s := b.MustBuild()
	meta := s.Root(rootKey, Context{}).BindChild(itemKey)

	values, ignoreCase := meta.Attribute(modeAttr).Enum()
	assert.Equal(t, []string{"insert", "update"}, values)
	assert.True(t, ignoreCase)
	assert.True(t, meta.Attribute(hrefAttr).ResolveBase())
	assert.False(t, meta.Attribute(sizeAttr).ResolveBase())
	assert.True(t, meta.Attribute(sizeAttr).Allows("anything"))

	e := NewElement(meta)
	require.NoError(t, e.SetAttribute(modeAttr, "INSERT"))
	require.Error(t, e.SetAttribute(modeAttr, "delete"))
	require.NoError(t, e.SetAttribute(strictAttr, "user"))
	require.Error(t, e.SetAttribute(strictAttr, "USER"))

	b = NewBuilder()
	b.Element(itemKey).AddAttribute(modeAttr).Enum(false, "a", "b")
	b.Element(itemKey).AddAttribute(modeAttr).Enum(false, "a", "c")
	_, err := b.Build()
	require.Error(t, err, "conflicting enumerations")

	b = NewBuilder()
	b.Element(itemKey).AddAttribute(modeAttr).Enum(false, "a b")
	_, err = b.Build()
	require.Error(t, err, "values cannot hold spaces")
}

func TestElementEqual(t *testing.T) {
	s := testBuilder().MustBuild()
	rootMeta := s.Root(rootKey, Context{})
	build := func(text string) *Element {
		root := NewElement(rootMeta)
		item := NewElement(rootMeta.BindChild(itemKey))
		require.NoError(t, item.SetText(text))
		require.NoError(t, item.SetAttribute(hrefAttr, "http://a/"))
		require.NoError(t, root.AddElement(item))
		return root
	}
	assert.True(t, build("x").Equal(build("x")))
	assert.False(t, build("x").Equal(build("y")))
	assert.False(t, build("x").Equal(nil))
}

func TestElementValidate(t *testing.T) {
	s := testBuilder().MustBuild()
	rootMeta := s.Root(rootKey, Context{})
	root := NewElement(rootMeta)
	item := NewElement(rootMeta.BindChild(itemKey))
	require.NoError(t, root.AddElement(item))

	err := root.Validate()
	require.Error(t, err)
	var codes []gdataerrors.ErrorCode
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ge *gdataerrors.GenerateError
		require.True(t, errors.As(e, &ge))
		codes = append(codes, ge.Code)
	}
	assert.ElementsMatch(t, []gdataerrors.ErrorCode{
		gdataerrors.ErrMissingElement,
		gdataerrors.ErrMissingAttribute,
		gdataerrors.ErrMissingContent,
	}, codes)

	count := NewElement(rootMeta.BindChild(countKey))
	require.NoError(t, count.SetText(int64(1)))
	require.NoError(t, root.AddElement(count))
	require.NoError(t, item.SetAttribute(hrefAttr, "http://a/"))
	require.NoError(t, item.SetText("x"))
	require.NoError(t, root.Validate())
}
