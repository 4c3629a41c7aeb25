// File: lixenwraith/configtree/helper.go
package configtree

import (
	"cmp"
	"slices"
	"strings"
)

// setNestedValue sets a value in a nested map using a dot-notation key.
// Intermediate maps are created as needed; a non-map value on the way is
// replaced by a map.
func setNestedValue(nested map[string]any, key string, value any) {
	segments := strings.Split(key, ".")
	current := nested

	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}

	current[segments[len(segments)-1]] = value
}

// nestSnapshot builds a nested map from flat dotted keys. Keys are applied
// shortest first so a scalar at "a" gives way to a table at "a.b".
func nestSnapshot(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sortByDepth(keys)

	nested := make(map[string]any)
	for _, k := range keys {
		setNestedValue(nested, k, flat[k])
	}
	return nested
}

func sortByDepth(keys []string) {
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(strings.Count(a, "."), strings.Count(b, ".")); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}
