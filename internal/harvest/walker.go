package harvest

import (
	"sort"

	apperrors "adspulse/internal/errors"
)

// WalkObjects runs a depth-first traversal of decoded JSON and calls
// visit for every object node, parents before children. Object keys
// are visited in sorted order so the same document always walks the
// same way. Returns ErrTooDeep once nesting passes maxDepth; callers
// treat that as fatal for the whole document.
func WalkObjects(root interface{}, maxDepth int, visit func(map[string]interface{})) error {
	return walk(root, 0, maxDepth, visit)
}

func walk(node interface{}, depth, maxDepth int, visit func(map[string]interface{})) error {
	if depth > maxDepth {
		return apperrors.ErrTooDeep
	}
	switch n := node.(type) {
	case map[string]interface{}:
		visit(n)
		for _, k := range sortedKeys(n) {
			if err := walk(n[k], depth+1, maxDepth, visit); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, item := range n {
			if err := walk(item, depth+1, maxDepth, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
