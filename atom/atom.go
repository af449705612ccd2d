package atom

import (
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/version"
)

// Service is the protocol service name of the core GData versions.
const Service = "gdata"

// Core protocol versions. V1 services use the pre-standard AtomPub namespace.
var (
	V1 = version.MustNew(Service, 1, 0)
	V2 = version.MustNew(Service, 2, 0)
)

// Kinds of the Atom document elements.
var (
	Feed   = model.NewKind("feed", qname.Atom.Name("feed"), model.Void, nil)
	Entry  = model.NewKind("entry", qname.Atom.Name("entry"), model.Void, nil)
	Source = model.NewKind("source", qname.Atom.Name("source"), model.Void, nil)

	// AclFeed and AclEntry are the access control list representations.
	AclFeed  = model.NewKind("aclFeed", qname.Atom.Name("feed"), model.Void, Feed)
	AclEntry = model.NewKind("aclEntry", qname.Atom.Name("entry"), model.Void, Entry)
)

// Atom element keys.
var (
	IDKey          = model.Key(qname.Atom.Name("id"), model.String)
	TitleKey       = model.Key(qname.Atom.Name("title"), model.String)
	SubtitleKey    = model.Key(qname.Atom.Name("subtitle"), model.String)
	RightsKey      = model.Key(qname.Atom.Name("rights"), model.String)
	SummaryKey     = model.Key(qname.Atom.Name("summary"), model.String)
	ContentKey     = model.Key(qname.Atom.Name("content"), model.String)
	UpdatedKey     = model.Key(qname.Atom.Name("updated"), model.DateTime)
	PublishedKey   = model.Key(qname.Atom.Name("published"), model.DateTime)
	AuthorKey      = model.Key(qname.Atom.Name("author"), model.Void)
	ContributorKey = model.Key(qname.Atom.Name("contributor"), model.Void)
	NameKey        = model.Key(qname.Atom.Name("name"), model.String)
	URIKey         = model.Key(qname.Atom.Name("uri"), model.URI)
	EmailKey       = model.Key(qname.Atom.Name("email"), model.String)
	LinkKey        = model.Key(qname.Atom.Name("link"), model.Void)
	CategoryKey    = model.Key(qname.Atom.Name("category"), model.Void)
	GeneratorKey   = model.Key(qname.Atom.Name("generator"), model.String)
	IconKey        = model.Key(qname.Atom.Name("icon"), model.URI)
	LogoKey        = model.Key(qname.Atom.Name("logo"), model.URI)
)

// Atom attribute keys.
var (
	TypeAttr             = model.AttrKey(qname.Local("type"), model.String)
	SrcAttr              = model.AttrKey(qname.Local("src"), model.URI)
	HrefAttr             = model.AttrKey(qname.Local("href"), model.URI)
	RelAttr              = model.AttrKey(qname.Local("rel"), model.String)
	HrefLangAttr         = model.AttrKey(qname.Local("hreflang"), model.String)
	TitleAttr            = model.AttrKey(qname.Local("title"), model.String)
	LengthAttr           = model.AttrKey(qname.Local("length"), model.Long)
	TermAttr             = model.AttrKey(qname.Local("term"), model.String)
	SchemeAttr           = model.AttrKey(qname.Local("scheme"), model.URI)
	LabelAttr            = model.AttrKey(qname.Local("label"), model.String)
	GeneratorURIAttr     = model.AttrKey(qname.Local("uri"), model.URI)
	GeneratorVersionAttr = model.AttrKey(qname.Local("version"), model.String)
)

// GData element and attribute keys.
var (
	ETagAttr          = model.AttrKey(qname.GData.Name("etag"), model.String)
	PartialKey        = model.Key(qname.GData.Name("partial"), model.Void)
	FieldsAttr        = model.AttrKey(qname.Local("fields"), model.String)
	QuotaBytesUsedKey = model.Key(qname.GData.Name("quotaBytesUsed"), model.Long)
)

// OpenSearch result keys.
var (
	TotalResultsKey = model.Key(qname.OpenSearch.Name("totalResults"), model.Int)
	StartIndexKey   = model.Key(qname.OpenSearch.Name("startIndex"), model.Int)
	ItemsPerPageKey = model.Key(qname.OpenSearch.Name("itemsPerPage"), model.Int)
)

// Batch processing keys.
var (
	BatchOperationKey = model.Key(qname.Batch.Name("operation"), model.Void)
	BatchIDKey        = model.Key(qname.Batch.Name("id"), model.String)
	BatchStatusKey    = model.Key(qname.Batch.Name("status"), model.String)
	CodeAttr          = model.AttrKey(qname.Local("code"), model.Int)
	ReasonAttr        = model.AttrKey(qname.Local("reason"), model.String)
	ContentTypeAttr   = model.AttrKey(qname.Local("content-type"), model.String)
)

// AtomPub keys. Names are in the standard namespace; version 1 contexts
// rename them into qname.AtomPubDraft.
var (
	AcceptKey  = model.Key(qname.AtomPub.Name("accept"), model.String)
	ControlKey = model.Key(qname.AtomPub.Name("control"), model.Void)
	DraftKey   = model.Key(qname.AtomPub.Name("draft"), model.String)
	EditedKey  = model.Key(qname.AtomPub.Name("edited"), model.DateTime)
)

// Access control keys.
var (
	ScopeKey  = model.Key(qname.ACL.Name("scope"), model.Void)
	RoleKey   = model.Key(qname.ACL.Name("role"), model.Void)
	ValueAttr = model.AttrKey(qname.Local("value"), model.String)
)
