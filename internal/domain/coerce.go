package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// stringList coerces a raw field value into a list of strings. A delimited
// string is split on commas with each segment trimmed and empty segments
// dropped; a list passes through element by element (nulls skipped); an
// absent or null value yields an empty list; any other scalar becomes a
// single-element list. The result is never nil.
func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		return splitDelimited(t)
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, scalarString(item))
		}
		return out
	default:
		s := scalarString(t)
		if s == "" {
			return []string{}
		}
		return []string{s}
	}
}

// positionalList is stringList for parallel lists: a null element keeps its
// slot as "" so that index i in one list still lines up with index i in the
// other.
func positionalList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return stringList(v)
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.TrimSpace(scalarString(item))
	}
	return out
}

func splitDelimited(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// scalarString renders a single raw value as text. Objects render their
// "name" member when present, otherwise their JSON form.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			return name
		}
		return jsonString(t)
	case RawEvent:
		return scalarString(map[string]any(t))
	default:
		return jsonString(t)
	}
}

func jsonString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// textField reads an optional scalar text field, trimmed.
func textField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	switch v.(type) {
	case []any, map[string]any:
		return ""
	}
	return strings.TrimSpace(scalarString(v))
}

// parseRate extracts a numeric tariff rate. Numbers and numeric strings parse;
// anything else, including NaN and infinities, is absent.
func parseRate(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// asObject returns v as a JSON object when it is one.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case RawEvent:
		return map[string]any(t), true
	default:
		return nil, false
	}
}
