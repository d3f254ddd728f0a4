package services

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Coercion helpers normalise loosely-typed wizard input. None of them panic
// and none of them return NaN: anything that cannot be read falls back to the
// default (0, false, "" unless the caller passes one).

var (
	trueWords  = map[string]bool{"true": true, "yes": true, "oui": true, "1": true}
	falseWords = map[string]bool{"false": true, "no": true, "non": true, "0": true}

	// French-formatted amounts group thousands with regular, no-break or
	// narrow no-break spaces.
	numberSpaces = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")
)

// EnsureNumber converts value to a float64. Booleans map to 0/1, blank strings
// are 0, numeric strings are parsed (hex/octal/binary integers and a French
// decimal comma are accepted) and everything else yields the default.
func EnsureNumber(value any, def ...float64) float64 {
	fallback := 0.0
	if len(def) > 0 && isFinite(def[0]) {
		fallback = def[0]
	}

	switch v := value.(type) {
	case nil:
		return fallback
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		if strings.TrimSpace(v) == "" {
			return 0
		}
		f, err := ParseNumber(v)
		if err != nil || !isFinite(f) {
			return fallback
		}
		return f
	}

	f, err := cast.ToFloat64E(value)
	if err != nil || !isFinite(f) {
		return fallback
	}
	return f
}

// ParseNumber parses a numeric string. Surrounding and grouping spaces are
// ignored, a lone decimal comma reads as a dot and 0x/0o/0b prefixes denote
// unsigned integers.
func ParseNumber(s string) (float64, error) {
	s = numberSpaces.Replace(strings.TrimSpace(s))
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
	return strconv.ParseFloat(s, 64)
}

// EnsureBoolean converts value to a bool. Strings are matched
// case-insensitively against true/yes/oui/1 and false/no/non/0; numbers are
// true when non-zero.
func EnsureBoolean(value any, def ...bool) bool {
	fallback := false
	if len(def) > 0 {
		fallback = def[0]
	}

	switch v := value.(type) {
	case nil:
		return fallback
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if trueWords[s] {
			return true
		}
		if falseWords[s] {
			return false
		}
		return fallback
	}

	f, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(f) {
		return fallback
	}
	return f != 0
}

// EnsureString converts scalars to their string form. Maps, slices and other
// composite values yield the default.
func EnsureString(value any, def ...string) string {
	fallback := ""
	if len(def) > 0 {
		fallback = def[0]
	}

	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		return v
	case float64:
		if !isFinite(v) {
			return fallback
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return EnsureString(float64(v), fallback)
	case []any, []string, map[string]any:
		return fallback
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return fallback
	}
	return s
}

// ToFormValue renders value the way an HTML input expects it back.
func ToFormValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ",")
	case []any:
		return strings.Join(EnsureStringArray(v), ",")
	case map[string]any:
		return ""
	}
	return EnsureString(value)
}

// EnsureStringArray converts a slice or comma-separated string to a slice of
// non-empty, trimmed strings. Other scalars yield an empty slice; it never
// returns nil.
func EnsureStringArray(value any) []string {
	out := []string{}

	var raw []string
	switch v := value.(type) {
	case nil:
		return out
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, EnsureString(item))
		}
	default:
		if k := reflect.ValueOf(value).Kind(); k != reflect.Slice && k != reflect.Array {
			return out
		}
		s, err := cast.ToStringSliceE(value)
		if err != nil {
			return out
		}
		raw = s
	}

	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EnsureStringRecord converts a map to map[string]string. Non-map input yields
// an empty map.
func EnsureStringRecord(value any) map[string]string {
	out := map[string]string{}
	for k, v := range toAnyMap(value) {
		out[k] = EnsureString(v)
	}
	return out
}

// EnsureNumberRecord converts a map to map[string]float64, coercing every value
// with EnsureNumber.
func EnsureNumberRecord(value any) map[string]float64 {
	out := map[string]float64{}
	for k, v := range toAnyMap(value) {
		out[k] = EnsureNumber(v)
	}
	return out
}

func toAnyMap(value any) map[string]any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m
	case map[string]float64:
		m := make(map[string]any, len(v))
		for k, f := range v {
			m[k] = f
		}
		return m
	}
	m, err := cast.ToStringMapE(value)
	if err != nil {
		return nil
	}
	return m
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// nonNegative clamps quantities: an area or count below zero prices as zero.
func nonNegative(value any) float64 {
	f := EnsureNumber(value)
	if f < 0 {
		return 0
	}
	return f
}

// sortedKeys returns the map keys in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
