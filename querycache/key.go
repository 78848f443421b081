package querycache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultScope is the scope segment used when Key is called without one.
const DefaultScope = "select"

// Key builds the canonical cache key for a query against table with the
// given descriptor (selected fields, filters, ordering, ranges and so on).
//
// The key is the canonical JSON of {descriptor, scope, table}: object keys
// are sorted lexicographically at every nesting depth, so two descriptors
// that are deeply equal produce the same key no matter how they were
// assembled. Sequences keep their order. The function is total: values that
// do not marshal to JSON degrade to their string form instead of failing.
func Key(table string, descriptor any, scopes ...string) string {
	scope := DefaultScope
	if len(scopes) > 0 && scopes[0] != "" {
		scope = scopes[0]
	}
	var sb strings.Builder
	writeCanonical(&sb, normalize(map[string]any{
		"table":      table,
		"descriptor": descriptor,
		"scope":      scope,
	}))
	return sb.String()
}

// normalize reduces v to a tree of map[string]any, []any and JSON scalars.
// Structs, typed maps and typed slices go through a JSON round-trip.
func normalize(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return val
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalize(item)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = normalize(item)
		}
		return s
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		var out any
		if err := json.Unmarshal(b, &out); err != nil {
			return string(b)
		}
		return out
	}
}

func writeCanonical(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			keyBytes, _ := json.Marshal(k)
			sb.Write(keyBytes)
			sb.WriteByte(':')
			writeCanonical(sb, val[k])
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, item)
		}
		sb.WriteByte(']')
	default:
		b, err := json.Marshal(val)
		if err != nil {
			b, _ = json.Marshal(fmt.Sprint(val))
		}
		sb.Write(b)
	}
}
