package memstore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// mergePaths applies dotted-path fields to the JSON form of doc and decodes
// the result back into out. Intermediate objects are created as needed.
func mergePaths(doc any, fields map[string]any, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	for path, v := range fields {
		if err := setPath(m, strings.Split(path, "."), v); err != nil {
			return fmt.Errorf("field %q: %w", path, err)
		}
	}
	raw, err = json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func setPath(m map[string]any, keys []string, v any) error {
	for i, k := range keys {
		if k == "" {
			return fmt.Errorf("empty path segment")
		}
		if i == len(keys)-1 {
			m[k] = v
			return nil
		}
		next, ok := m[k].(map[string]any)
		if !ok {
			if m[k] != nil {
				return fmt.Errorf("%s is not an object", k)
			}
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	return nil
}
