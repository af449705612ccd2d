package xmlwriter

import "strings"

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// EscapeText escapes character data for element content. A carriage return
// is written as a character reference because parsers normalize a literal
// one to a line feed.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr escapes a value for a double-quoted attribute.
// Whitespace characters are written as character references so that
// attribute value normalization does not alter them on reparse.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
