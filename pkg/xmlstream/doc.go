// Package xmlstream provides a namespace-aware streaming XML reader built on
// the raw tokens of encoding/xml. It resolves prefixes itself so callers see
// both the resolved name and the lexical prefix of every element and
// attribute, which blob capture needs to reproduce foreign markup verbatim.
package xmlstream
