package atom

import (
	"fmt"

	"github.com/jacoelho/gdata/extension"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/parser"
	"github.com/jacoelho/gdata/pkg/qname"
)

func init() {
	Declare(model.Default())
	Register(extension.DefaultCatalog())
}

// Declare adds the Atom and common GData declarations to b.
func Declare(b *model.Builder) {
	declareAtom(b)
	declareGData(b)
	declareAtomPub(b)
	declareBatch(b)
	declareACL(b)
}

func declareAtom(b *model.Builder) {
	for _, key := range []model.ElementKey{TitleKey, SubtitleKey, RightsKey, SummaryKey} {
		text := b.Element(key).ArbitraryXML(true)
		text.AddAttribute(TypeAttr)
	}
	content := b.Element(ContentKey).ArbitraryXML(true).MixedContent(true)
	content.AddAttribute(TypeAttr)
	content.AddAttribute(SrcAttr).ResolveBase(true)

	b.Element(IDKey).ContentRequired(true)
	b.Element(UpdatedKey).ContentRequired(true)
	b.Element(PublishedKey).ContentRequired(true)

	for _, key := range []model.ElementKey{AuthorKey, ContributorKey} {
		person := b.Element(key).Cardinality(model.Multiple).ArbitraryXML(true)
		person.AddElement(NameKey).Required(true)
		person.AddElement(URIKey)
		person.AddElement(EmailKey)
	}

	link := b.Element(LinkKey).Cardinality(model.Multiple)
	link.AddAttribute(RelAttr)
	link.AddAttribute(TypeAttr)
	link.AddAttribute(HrefAttr).Required(true)
	link.AddAttribute(HrefLangAttr)
	link.AddAttribute(TitleAttr)
	link.AddAttribute(LengthAttr)
	link.AddAttribute(ETagAttr)

	category := b.Element(CategoryKey).Cardinality(model.Multiple)
	category.AddAttribute(SchemeAttr)
	category.AddAttribute(TermAttr).Required(true)
	category.AddAttribute(LabelAttr)

	generator := b.Element(GeneratorKey)
	generator.AddAttribute(GeneratorURIAttr)
	generator.AddAttribute(GeneratorVersionAttr)

	feed := b.Element(Feed.Key()).Namespace(qname.Atom).Namespace(qname.GData)
	feed.AddAttribute(ETagAttr)
	addSourceChildren(feed)
	feed.AddElement(Entry.Key()).Cardinality(model.Multiple)

	source := b.Element(Source.Key())
	addSourceChildren(source)

	entry := b.Element(Entry.Key()).Namespace(qname.Atom).Namespace(qname.GData)
	entry.AddAttribute(ETagAttr)
	entry.AddElement(IDKey)
	entry.AddElement(TitleKey)
	entry.AddElement(SummaryKey)
	entry.AddElement(ContentKey)
	entry.AddElement(PublishedKey)
	entry.AddElement(UpdatedKey)
	entry.AddElement(EditedKey)
	entry.AddElement(AuthorKey)
	entry.AddElement(ContributorKey)
	entry.AddElement(LinkKey)
	entry.AddElement(CategoryKey)
	entry.AddElement(RightsKey)
	entry.AddElement(Source.Key())
	entry.AddElement(ControlKey)
}

// addSourceChildren declares the metadata children shared by feed and source.
func addSourceChildren(c *model.ElementCreator) {
	c.AddElement(IDKey)
	c.AddElement(TitleKey)
	c.AddElement(SubtitleKey)
	c.AddElement(RightsKey)
	c.AddElement(UpdatedKey)
	c.AddElement(AuthorKey)
	c.AddElement(ContributorKey)
	c.AddElement(LinkKey)
	c.AddElement(CategoryKey)
	c.AddElement(GeneratorKey)
	c.AddElement(IconKey)
	c.AddElement(LogoKey)
}

func declareGData(b *model.Builder) {
	partial := b.Element(PartialKey).Namespace(qname.GData)
	partial.AddAttribute(FieldsAttr)
	partial.AddElement(Entry.Key()).Required(true)

	b.Element(QuotaBytesUsedKey).Namespace(qname.GData)
	for _, key := range []model.ElementKey{TotalResultsKey, StartIndexKey, ItemsPerPageKey} {
		b.Element(key).Namespace(qname.OpenSearch).ContentRequired(true)
	}
}

func declareAtomPub(b *model.Builder) {
	b.Element(AcceptKey).Namespace(qname.AtomPub)
	b.Element(EditedKey).Namespace(qname.AtomPub).ContentRequired(true)
	b.Element(ControlKey).Namespace(qname.AtomPub).AddElement(DraftKey)
	b.Element(DraftKey).ContentRequired(true)

	legacy := model.Context{Version: V1}
	for _, key := range []model.ElementKey{AcceptKey, ControlKey, DraftKey, EditedKey} {
		b.ElementIn(key, legacy).
			Rename(qname.AtomPubDraft.Name(key.Name.Local)).
			Namespace(qname.AtomPubDraft)
	}
}

func declareBatch(b *model.Builder) {
	op := b.Element(BatchOperationKey).Namespace(qname.Batch)
	op.AddAttribute(TypeAttr).Required(true).Enum(true, enumNames(OperationTypes)...)

	b.Element(BatchIDKey).Namespace(qname.Batch).ContentRequired(true)

	status := b.Element(BatchStatusKey).Namespace(qname.Batch).ArbitraryXML(true)
	status.AddAttribute(CodeAttr).Required(true)
	status.AddAttribute(ReasonAttr)
	status.AddAttribute(ContentTypeAttr)
}

func declareACL(b *model.Builder) {
	scope := b.Element(ScopeKey).Namespace(qname.ACL)
	scope.AddAttribute(TypeAttr).Required(true).Enum(false, enumNames(ScopeTypes)...)
	scope.AddAttribute(ValueAttr)

	b.Element(RoleKey).Namespace(qname.ACL).AddAttribute(ValueAttr).Required(true)

	entry := b.Element(AclEntry.Key())
	entry.AddElement(ScopeKey).Required(true)
	entry.AddElement(RoleKey).Required(true)

	b.Element(AclFeed.Key()).AddElement(AclEntry.Key()).Cardinality(model.Multiple)
}

// enumNames returns the attribute forms of values.
func enumNames[T fmt.Stringer](values []T) []string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = parser.LowerCase(v)
	}
	return names
}

// Register adds the kinds and extension keys of this package to c.
func Register(c *extension.Catalog) {
	c.MustRegister(Feed, Entry, Source, AclFeed, AclEntry)
	for name, key := range map[string]model.ElementKey{
		"totalResults":   TotalResultsKey,
		"startIndex":     StartIndexKey,
		"itemsPerPage":   ItemsPerPageKey,
		"batchOperation": BatchOperationKey,
		"batchId":        BatchIDKey,
		"batchStatus":    BatchStatusKey,
		"quotaBytesUsed": QuotaBytesUsedKey,
		"partial":        PartialKey,
		"accept":         AcceptKey,
		"control":        ControlKey,
		"edited":         EditedKey,
		"aclScope":       ScopeKey,
		"aclRole":        RoleKey,
	} {
		if err := c.RegisterExtension(name, key); err != nil {
			panic(err)
		}
	}
}
