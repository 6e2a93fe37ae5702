package retrieval

import (
	"encoding/json"
	"fmt"
)

// Filter restricts search results by document metadata. It follows Postgres
// jsonb containment (metadata @> filter): scalars must be equal, every element
// of a filter array must appear in the metadata array, and objects recurse.
//
//	Filter{"category": "Temple"}
//	Filter{"tags": []string{"culture"}}
type Filter map[string]any

// normalize round-trips f through JSON so values compare the same way as
// metadata decoded from storage (numbers become float64, slices []any).
func (f Filter) normalize() (map[string]any, error) {
	if len(f) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decoding filter: %w", err)
	}
	return out, nil
}

// matchMetadata reports whether the JSON-decoded metadata contains want.
func matchMetadata(metadata, want map[string]any) bool {
	if len(want) == 0 {
		return true
	}
	return contains(metadata, want)
}

func contains(have, want any) bool {
	switch w := want.(type) {
	case map[string]any:
		h, ok := have.(map[string]any)
		if !ok {
			return false
		}
		for k, wv := range w {
			hv, ok := h[k]
			if !ok || !contains(hv, wv) {
				return false
			}
		}
		return true
	case []any:
		h, ok := have.([]any)
		if !ok {
			return false
		}
		for _, wv := range w {
			found := false
			for _, hv := range h {
				if contains(hv, wv) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return have == want
	}
}
