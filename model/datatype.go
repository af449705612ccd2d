package model

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Datatype identifies the Go value type of attribute values and text content.
type Datatype uint8

const (
	// Void marks elements without text content.
	Void Datatype = iota
	String
	Bool
	Int
	Long
	Float
	Double
	DateTime
	URI
)

var datatypeNames = [...]string{
	Void:     "void",
	String:   "string",
	Bool:     "bool",
	Int:      "int",
	Long:     "long",
	Float:    "float",
	Double:   "double",
	DateTime: "datetime",
	URI:      "uri",
}

func (d Datatype) String() string {
	if int(d) < len(datatypeNames) {
		return datatypeNames[d]
	}
	return "datatype(" + strconv.Itoa(int(d)) + ")"
}

// ParseDatatype returns the datatype with the given name.
func ParseDatatype(name string) (Datatype, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range datatypeNames {
		if n == name {
			return Datatype(i), nil
		}
	}
	return Void, fmt.Errorf("unknown datatype %q", name)
}

// Parse converts a lexical value into the datatype's Go value:
// string, bool, int, int64, float32, float64, time.Time or string (URI).
func (d Datatype) Parse(lexical string) (any, error) {
	switch d {
	case Void:
		if strings.TrimSpace(lexical) != "" {
			return nil, fmt.Errorf("unexpected content %q", lexical)
		}
		return nil, nil
	case String:
		return lexical, nil
	case Bool:
		return ParseBool(lexical)
	case Int:
		v, err := strconv.ParseInt(strings.TrimSpace(lexical), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value %q", lexical)
		}
		return int(v), nil
	case Long:
		v, err := strconv.ParseInt(strings.TrimSpace(lexical), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid long value %q", lexical)
		}
		return v, nil
	case Float:
		v, err := strconv.ParseFloat(strings.TrimSpace(lexical), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float value %q", lexical)
		}
		return float32(v), nil
	case Double:
		v, err := strconv.ParseFloat(strings.TrimSpace(lexical), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid double value %q", lexical)
		}
		return v, nil
	case DateTime:
		v, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(lexical))
		if err != nil {
			return nil, fmt.Errorf("invalid date-time value %q", lexical)
		}
		return v, nil
	case URI:
		trimmed := strings.TrimSpace(lexical)
		if _, err := url.Parse(trimmed); err != nil {
			return nil, fmt.Errorf("invalid URI value %q", lexical)
		}
		return trimmed, nil
	default:
		return nil, fmt.Errorf("unsupported datatype %s", d)
	}
}

// Format renders a value of the datatype's Go type in lexical form.
func (d Datatype) Format(value any) (string, error) {
	switch d {
	case Void:
		if value == nil {
			return "", nil
		}
	case String, URI:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case Bool:
		if b, ok := value.(bool); ok {
			return strconv.FormatBool(b), nil
		}
	case Int, Long:
		var n int64
		switch v := value.(type) {
		case int:
			n = int64(v)
		case int32:
			n = int64(v)
		case int64:
			n = v
		default:
			return "", fmt.Errorf("value %v (%T) is not a %s", value, value, d)
		}
		if d == Int && (n < math.MinInt32 || n > math.MaxInt32) {
			return "", fmt.Errorf("value %d is out of range for %s", n, d)
		}
		return strconv.FormatInt(n, 10), nil
	case Float:
		switch v := value.(type) {
		case float32:
			return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 32), nil
		}
	case Double:
		switch v := value.(type) {
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		case float32:
			return strconv.FormatFloat(float64(v), 'g', -1, 64), nil
		}
	case DateTime:
		if t, ok := value.(time.Time); ok {
			return t.Format(time.RFC3339Nano), nil
		}
	}
	return "", fmt.Errorf("value %v (%T) is not a %s", value, value, d)
}

// ParseBool accepts true, false (any case), 1 and 0.
func ParseBool(lexical string) (bool, error) {
	s := strings.TrimSpace(lexical)
	switch {
	case strings.EqualFold(s, "true") || s == "1":
		return true, nil
	case strings.EqualFold(s, "false") || s == "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", lexical)
	}
}
