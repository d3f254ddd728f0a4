package services

import (
	"encoding/json"
	"net/url"
)

// FormData is the loosely-typed answer set collected by the estimation
// wizard. Values may be strings, numbers, booleans, lists or nil; the getters
// coerce them and never fail.
type FormData map[string]any

// Number returns key as a float64, or def (default 0) when missing or invalid.
func (f FormData) Number(key string, def ...float64) float64 {
	return EnsureNumber(f[key], def...)
}

// Bool returns key as a bool, or def (default false).
func (f FormData) Bool(key string, def ...bool) bool {
	return EnsureBoolean(f[key], def...)
}

// String returns key as a string, or def (default "").
func (f FormData) String(key string, def ...string) string {
	return EnsureString(f[key], def...)
}

// Strings returns key as a list of non-empty strings.
func (f FormData) Strings(key string) []string {
	return EnsureStringArray(f[key])
}

// Has reports whether key is present with a non-nil, non-empty value.
func (f FormData) Has(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

// Merge returns a new FormData holding f overlaid with other.
func (f FormData) Merge(other FormData) FormData {
	out := make(FormData, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// FormDataFromValues converts a posted HTML form. Keys posted more than once
// become lists; "[]" suffixes are stripped.
func FormDataFromValues(values url.Values) FormData {
	out := make(FormData, len(values))
	for k, vs := range values {
		key := k
		if len(key) > 2 && key[len(key)-2:] == "[]" {
			key = key[:len(key)-2]
			out[key] = append([]string(nil), vs...)
			continue
		}
		switch len(vs) {
		case 0:
			out[key] = nil
		case 1:
			out[key] = vs[0]
		default:
			out[key] = append([]string(nil), vs...)
		}
	}
	return out
}

// ParseFormData decodes a JSON object. Numbers are kept as float64.
func ParseFormData(data []byte) (FormData, error) {
	out := FormData{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
