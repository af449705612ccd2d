package parser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	gdataerrors "github.com/jacoelho/gdata/errors"
	"github.com/jacoelho/gdata/model"
	"github.com/jacoelho/gdata/pkg/qname"
	"github.com/jacoelho/gdata/pkg/xmlstream"
)

// AttributeHelper consumes attributes and text content of one element and
// reports whatever was left unconsumed. Attributes sharing a local name are
// reported as duplicates; xml:* attributes are handled by the parser and
// skipped.
type AttributeHelper struct {
	attrs           map[qname.QName]string
	dups            map[string]struct{}
	content         string
	hasContent      bool
	contentConsumed bool
}

// NewAttributeHelper collects attrs and the element text. content is trimmed.
func NewAttributeHelper(attrs []xmlstream.Attr, content *string) *AttributeHelper {
	h := &AttributeHelper{
		attrs: make(map[qname.QName]string, len(attrs)),
		dups:  make(map[string]struct{}),
	}
	if content != nil {
		h.content = strings.TrimSpace(*content)
		h.hasContent = true
	}
	for _, a := range attrs {
		if a.Name.Space == qname.XMLNamespace {
			continue
		}
		if _, ok := h.lookup(a.Name.Local); ok {
			h.dups[a.Name.Local] = struct{}{}
		}
		h.attrs[a.Name] = a.Value
	}
	return h
}

// lookup returns the name of an unconsumed attribute with local name,
// preferring the unqualified one.
func (h *AttributeHelper) lookup(local string) (qname.QName, bool) {
	if _, ok := h.attrs[qname.Local(local)]; ok {
		return qname.Local(local), true
	}
	for name := range h.attrs {
		if name.Local == local {
			return name, true
		}
	}
	return qname.QName{}, false
}

// Consume removes and returns the attribute with local name name, whatever
// its namespace.
func (h *AttributeHelper) Consume(name string, required bool) (string, bool, error) {
	found, ok := h.lookup(name)
	if !ok {
		return h.missing(name, required)
	}
	value := h.attrs[found]
	delete(h.attrs, found)
	return value, true, nil
}

// ConsumeQName consumes the attribute only if its resolved name is name.
func (h *AttributeHelper) ConsumeQName(name qname.QName, required bool) (string, bool, error) {
	value, ok := h.attrs[name]
	if !ok {
		return h.missing(name.Local, required)
	}
	delete(h.attrs, name)
	return value, true, nil
}

func (h *AttributeHelper) missing(name string, required bool) (string, bool, error) {
	if required {
		return "", false, gdataerrors.NewParsef(gdataerrors.ErrMissingAttribute, "Missing attribute: '%s'", name)
	}
	return "", false, nil
}

// ConsumeInt consumes an integer attribute, returning def when absent.
func (h *AttributeHelper) ConsumeInt(name string, required bool, def int) (int, error) {
	value, ok, err := h.Consume(name, required)
	if err != nil || !ok {
		return def, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return def, gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err, fmt.Sprintf("Invalid integer value for attribute: '%s'", name))
	}
	return int(v), nil
}

// ConsumeLong consumes a 64-bit integer attribute, returning def when absent.
func (h *AttributeHelper) ConsumeLong(name string, required bool, def int64) (int64, error) {
	value, ok, err := h.Consume(name, required)
	if err != nil || !ok {
		return def, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return def, gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err, fmt.Sprintf("Invalid long value for attribute: '%s'", name))
	}
	return v, nil
}

// ConsumeBool consumes a true|false|1|0 attribute, returning def when absent.
func (h *AttributeHelper) ConsumeBool(name string, required bool, def bool) (bool, error) {
	value, ok, err := h.Consume(name, required)
	if err != nil || !ok {
		return def, err
	}
	switch value {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return def, gdataerrors.NewParsef(gdataerrors.ErrInvalidValue, "Invalid boolean value for attribute: '%s'", name)
	}
}

// ConsumeValue consumes an attribute and parses it as dt.
func (h *AttributeHelper) ConsumeValue(name qname.QName, dt model.Datatype, required bool) (any, bool, error) {
	value, ok, err := h.ConsumeQName(name, required)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := dt.Parse(value)
	if err != nil {
		return nil, false, gdataerrors.WrapParse(gdataerrors.ErrInvalidValue, err, fmt.Sprintf("Invalid value for attribute: '%s'", name.Local))
	}
	return v, true, nil
}

// ConsumeContent returns the trimmed text content.
func (h *AttributeHelper) ConsumeContent(required bool) (string, bool, error) {
	if !h.hasContent && required {
		return "", false, gdataerrors.NewParse(gdataerrors.ErrMissingContent, "Missing required text content")
	}
	h.contentConsumed = true
	return h.content, h.hasContent, nil
}

// Enum is implemented by enumerations whose String returns the constant name.
type Enum interface {
	comparable
	fmt.Stringer
}

// ConsumeEnum matches the upper-cased attribute value against the names of values.
func ConsumeEnum[T Enum](h *AttributeHelper, name string, required bool, values []T, def T) (T, error) {
	value, ok, err := h.Consume(name, required)
	if err != nil || !ok {
		return def, err
	}
	return MatchEnum(name, strings.ToUpper(value), values, T.String)
}

// ConsumeEnumFunc matches the attribute value against toAttr of each value.
func ConsumeEnumFunc[T comparable](h *AttributeHelper, name string, required bool, values []T, def T, toAttr func(T) string) (T, error) {
	value, ok, err := h.Consume(name, required)
	if err != nil || !ok {
		return def, err
	}
	v, err := MatchEnum(name, value, values, toAttr)
	if err != nil {
		return def, err
	}
	return v, nil
}

// ConsumeEnumValue consumes an attribute restricted to values and returns
// the matching value as declared. With ignoreCase the match folds case.
func (h *AttributeHelper) ConsumeEnumValue(name qname.QName, required bool, values []string, ignoreCase bool) (string, bool, error) {
	value, ok, err := h.ConsumeQName(name, required)
	if err != nil || !ok {
		return "", false, err
	}
	fold := func(s string) string { return s }
	if ignoreCase {
		fold = strings.ToLower
	}
	v, err := MatchEnum(name.Local, fold(value), values, fold)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// MatchEnum returns the value whose toAttr form is value. attr names the
// attribute in the error.
func MatchEnum[T comparable](attr, value string, values []T, toAttr func(T) string) (T, error) {
	for _, v := range values {
		if toAttr(v) == value {
			return v, nil
		}
	}
	var zero T
	return zero, gdataerrors.NewParsef(gdataerrors.ErrInvalidEnum, "Invalid value for attribute : '%s'", attr)
}

// LowerCase maps an enumeration constant to its lower-cased name.
func LowerCase[T fmt.Stringer](v T) string {
	return strings.ToLower(v.String())
}

// AssertAllConsumed reports unknown attributes, duplicates and unconsumed
// text in a single error.
func (h *AttributeHelper) AssertAllConsumed() error {
	var b strings.Builder
	code := gdataerrors.ErrorCode("")
	if len(h.dups) > 0 {
		code = gdataerrors.ErrDuplicateAttribute
	}
	if len(h.attrs) > 0 {
		if code == "" {
			code = gdataerrors.ErrUnknownAttribute
		}
		unknown := make(map[string]struct{}, len(h.attrs))
		for name := range h.attrs {
			unknown[name.Local] = struct{}{}
		}
		writeNames(&b, "Unknown attribute", sortedKeys(unknown))
	}
	if len(h.dups) > 0 {
		writeNames(&b, "Duplicate attribute", sortedKeys(h.dups))
	}
	if !h.contentConsumed && h.content != "" {
		if code == "" {
			code = gdataerrors.ErrUnexpectedText
		}
		b.WriteString("Unexpected text content ")
	}
	if b.Len() == 0 {
		return nil
	}
	return gdataerrors.NewParse(code, strings.TrimSpace(b.String()))
}

func writeNames(b *strings.Builder, label string, names []string) {
	b.WriteString(label)
	if len(names) > 1 {
		b.WriteByte('s')
	}
	b.WriteByte(':')
	for _, n := range names {
		b.WriteString(" '" + n + "' ")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// BoolAttribute reads an unqualified true|false|1|0 attribute.
// present is false when the attribute is absent.
func BoolAttribute(attrs []xmlstream.Attr, name string) (value, present bool, err error) {
	for _, a := range attrs {
		if a.Name.Space != "" || a.Name.Local != name {
			continue
		}
		switch {
		case strings.EqualFold(a.Value, "false") || a.Value == "0":
			return false, true, nil
		case strings.EqualFold(a.Value, "true") || a.Value == "1":
			return true, true, nil
		default:
			return false, true, gdataerrors.NewParsef(gdataerrors.ErrInvalidValue, "Invalid value for %s attribute: %s", name, a.Value)
		}
	}
	return false, false, nil
}
