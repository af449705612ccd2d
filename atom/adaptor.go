package atom

import (
	"github.com/jacoelho/gdata/extension"
	"github.com/jacoelho/gdata/pkg/qname"
)

// FeedAdaptor declares the OpenSearch result counts and the feed-level
// batch operation on feeds.
type FeedAdaptor struct{}

// DeclareExtensions implements extension.Adaptor.
func (FeedAdaptor) DeclareExtensions(p *extension.Profile) {
	p.DeclareFeedExtension(extension.Describe(TotalResultsKey, qname.OpenSearch))
	p.DeclareFeedExtension(extension.Describe(StartIndexKey, qname.OpenSearch))
	p.DeclareFeedExtension(extension.Describe(ItemsPerPageKey, qname.OpenSearch))
	p.DeclareFeedExtension(extension.Describe(BatchOperationKey, qname.Batch))
}

// EntryAdaptor declares batch processing and quota elements on entries.
type EntryAdaptor struct{}

// DeclareExtensions implements extension.Adaptor.
func (EntryAdaptor) DeclareExtensions(p *extension.Profile) {
	p.DeclareEntryExtension(extension.Describe(BatchIDKey, qname.Batch))
	p.DeclareEntryExtension(extension.Describe(BatchOperationKey, qname.Batch))
	p.DeclareEntryExtension(extension.Describe(BatchStatusKey, qname.Batch))
	p.DeclareEntryExtension(extension.Describe(QuotaBytesUsedKey, qname.GData))
}

// NewProfile returns a profile over Feed and Entry seeded with both adaptors.
func NewProfile() *extension.Profile {
	p := extension.New(Feed, Entry)
	p.AddDeclarations(FeedAdaptor{})
	p.AddDeclarations(EntryAdaptor{})
	return p
}
