// Package querystring serializes structured records into URL query strings
// with configurable array encoding, sorting, and escaping rules.
package querystring

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ArrayFormat controls how array values are serialized
type ArrayFormat string

const (
	// ArrayFormatNone repeats the key for each value: a=1&a=2
	ArrayFormatNone ArrayFormat = "none"
	// ArrayFormatBracket appends empty brackets to the key: a[]=1&a[]=2
	ArrayFormatBracket ArrayFormat = "bracket"
	// ArrayFormatIndex writes the element index into the brackets: a[0]=1&a[1]=2
	ArrayFormatIndex ArrayFormat = "index"
	// ArrayFormatComma joins values with a comma: a=1,2
	ArrayFormatComma ArrayFormat = "comma"
	// ArrayFormatSeparator joins values with a configurable separator: a=1|2
	ArrayFormatSeparator ArrayFormat = "separator"
	// ArrayFormatBracketSeparator combines brackets with a separator: a[]=1|2
	ArrayFormatBracketSeparator ArrayFormat = "bracket-separator"
)

// DefaultSeparator is used by the separator formats when none is configured
const DefaultSeparator = ","

// Options configures query string encoding
type Options struct {
	// ArrayFormat selects how array values are serialized (default: none)
	ArrayFormat ArrayFormat

	// ArrayFormatSeparator is the separator used by the separator formats
	ArrayFormatSeparator string

	// Sort controls key ordering. Unset means code-point order; a false
	// value preserves insertion-independent map iteration (i.e. no sorting).
	Sort *bool

	// Compare is an optional custom key comparator. It takes precedence
	// over Sort when set. Negative means a sorts before b.
	Compare func(a, b string) int

	// Strict percent-encodes the reserved characters ! ' ( ) * as well.
	// Unset or false leaves those characters unescaped.
	Strict *bool

	// Encode disables percent-encoding entirely when explicitly false
	Encode *bool

	// SkipNull omits keys with nil values
	SkipNull *bool

	// SkipEmptyString omits keys with empty string values
	SkipEmptyString *bool
}

// Boolean knobs are pointers so a merge can tell unset apart from false;
// these read them with their zero-value defaults.

func (o Options) strict() bool          { return o.Strict != nil && *o.Strict }
func (o Options) skipNull() bool        { return o.SkipNull != nil && *o.SkipNull }
func (o Options) skipEmptyString() bool { return o.SkipEmptyString != nil && *o.SkipEmptyString }

// ValidFormats lists the recognized array formats, for validation
func ValidFormats() []ArrayFormat {
	return []ArrayFormat{
		ArrayFormatNone,
		ArrayFormatBracket,
		ArrayFormatIndex,
		ArrayFormatComma,
		ArrayFormatSeparator,
		ArrayFormatBracketSeparator,
	}
}

// IsValidFormat reports whether f is a recognized array format
func IsValidFormat(f ArrayFormat) bool {
	for _, v := range ValidFormats() {
		if f == v {
			return true
		}
	}
	return false
}

// Merge deep-merges override onto a copy of base. Set fields in the
// override win; unset fields fall through to the base.
func Merge(base, override Options) Options {
	merged := base

	if override.ArrayFormat != "" {
		merged.ArrayFormat = override.ArrayFormat
	}
	if override.ArrayFormatSeparator != "" {
		merged.ArrayFormatSeparator = override.ArrayFormatSeparator
	}
	if override.Sort != nil {
		merged.Sort = override.Sort
	}
	if override.Compare != nil {
		merged.Compare = override.Compare
	}
	if override.Strict != nil {
		merged.Strict = override.Strict
	}
	if override.Encode != nil {
		merged.Encode = override.Encode
	}
	if override.SkipNull != nil {
		merged.SkipNull = override.SkipNull
	}
	if override.SkipEmptyString != nil {
		merged.SkipEmptyString = override.SkipEmptyString
	}

	return merged
}

// Prepare encodes params and prefixes the result with "?". It returns an
// empty string when params is empty or everything was skipped.
func Prepare(params map[string]any, opts Options) string {
	encoded := Encode(params, opts)
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}

// Encode serializes params into a query string without a leading "?".
func Encode(params map[string]any, opts Options) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sortKeys(keys, opts)

	var pairs []string
	for _, key := range keys {
		pairs = append(pairs, encodePairs(key, params[key], opts)...)
	}

	return strings.Join(pairs, "&")
}

// sortKeys orders keys per the configured sort option
func sortKeys(keys []string, opts Options) {
	if opts.Compare != nil {
		sort.Slice(keys, func(i, j int) bool {
			return opts.Compare(keys[i], keys[j]) < 0
		})
		return
	}
	// Default is code-point order; an explicit false disables sorting
	if opts.Sort != nil && !*opts.Sort {
		return
	}
	sort.Strings(keys)
}

// encodePairs serializes a single key/value into zero or more key=value pairs
func encodePairs(key string, value any, opts Options) []string {
	// A nil value renders as a bare key, unless skipped
	if value == nil {
		if opts.skipNull() {
			return nil
		}
		return []string{escape(key, opts)}
	}

	if values, ok := asSlice(value); ok {
		return encodeArray(key, values, opts)
	}

	str := stringify(value)
	if str == "" && opts.skipEmptyString() {
		return nil
	}
	return []string{escape(key, opts) + "=" + escape(str, opts)}
}

// encodeArray serializes an array value per the configured format
func encodeArray(key string, values []any, opts Options) []string {
	sep := opts.ArrayFormatSeparator
	if sep == "" {
		sep = DefaultSeparator
	}

	var items []string
	for _, v := range values {
		if v == nil {
			if opts.skipNull() {
				continue
			}
			items = append(items, "")
			continue
		}
		items = append(items, stringify(v))
	}
	if len(items) == 0 {
		return nil
	}

	switch opts.ArrayFormat {
	case ArrayFormatBracket:
		pairs := make([]string, 0, len(items))
		for _, item := range items {
			pairs = append(pairs, escape(key, opts)+"[]="+escape(item, opts))
		}
		return pairs

	case ArrayFormatIndex:
		pairs := make([]string, 0, len(items))
		for i, item := range items {
			pairs = append(pairs, escape(key, opts)+"["+strconv.Itoa(i)+"]="+escape(item, opts))
		}
		return pairs

	case ArrayFormatComma:
		return []string{escape(key, opts) + "=" + escapeJoin(items, DefaultSeparator, opts)}

	case ArrayFormatSeparator:
		return []string{escape(key, opts) + "=" + escapeJoin(items, sep, opts)}

	case ArrayFormatBracketSeparator:
		return []string{escape(key, opts) + "[]=" + escapeJoin(items, sep, opts)}

	default: // ArrayFormatNone: duplicate keys
		pairs := make([]string, 0, len(items))
		for _, item := range items {
			pairs = append(pairs, escape(key, opts)+"="+escape(item, opts))
		}
		return pairs
	}
}

// escapeJoin escapes each item individually, leaving the separator intact
func escapeJoin(items []string, sep string, opts Options) string {
	escaped := make([]string, 0, len(items))
	for _, item := range items {
		escaped = append(escaped, escape(item, opts))
	}
	return strings.Join(escaped, sep)
}

// permissive lists the reserved characters left unescaped outside strict mode
var permissive = map[string]string{
	"%21": "!",
	"%27": "'",
	"%28": "(",
	"%29": ")",
	"%2A": "*",
}

// escape percent-encodes a component per the configured escaping rules
func escape(s string, opts Options) string {
	if opts.Encode != nil && !*opts.Encode {
		return s
	}

	// QueryEscape is strict about ! ' ( ) *; spaces become %20 rather than +
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")

	if !opts.strict() {
		for enc, raw := range permissive {
			escaped = strings.ReplaceAll(escaped, enc, raw)
		}
	}

	return escaped
}

// asSlice normalizes supported slice types into []any
func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

// stringify renders a scalar value as its query string representation
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// Render whole floats without a trailing .0, matching JSON numbers
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
