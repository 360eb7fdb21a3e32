// Package output canonicalizes evaluator results before they are committed.
package output

import "strconv"

// Normalize rewrites keyed structures whose keys are exactly "0".."n-1" into ordered
// sequences, recursing through every keyed structure and sequence. Primitives, nil
// and empty structures are returned unchanged, so {} never becomes [].
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			return t
		}
		if seq, ok := asSequence(t); ok {
			return seq
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		if len(t) == 0 {
			return t
		}
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

// IsStructured reports whether v is a non-nil keyed structure or sequence.
func IsStructured(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return t != nil
	case []any:
		return t != nil
	default:
		return false
	}
}

func asSequence(m map[string]any) ([]any, bool) {
	out := make([]any, len(m))
	for i := range out {
		val, ok := m[strconv.Itoa(i)]
		if !ok {
			return nil, false
		}
		out[i] = Normalize(val)
	}
	return out, true
}
