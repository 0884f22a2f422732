// internal/engine/fieldpath.go
package engine

import (
	"sort"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Field path lookup in argument and local values.
 *
 * Resolve walks the value depth-first with an explicit stack. Each frame is
 * a candidate value and the index of the next segment to apply. A key or
 * index segment yields at most one candidate; a wildcard yields every list
 * element in order, or every object member in sorted key order. Candidates
 * are pushed in reverse so the first one that resolves the whole path wins,
 * which makes wildcard matches deterministic.
 *
 * Path limits (MaxPathDepth, MaxNestedWildcards) are checked before the walk.
 */

type frame struct {
	value types.Value
	next  int
}

// Resolve returns the value at path inside data.
// Returns ErrPathTooDeep or ErrTooManyWildcards for paths over the limits
// and ErrFieldNotFound when nothing in data matches.
func Resolve(path []types.PathSegment, data types.Value) (types.Value, error) {
	if err := types.ValidatePath(path); err != nil {
		return nil, err
	}

	stack := []frame{{value: data}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.next == len(path) {
			return top.value, nil
		}
		candidates := step(path[top.next], top.value)
		for i := len(candidates) - 1; i >= 0; i-- {
			stack = append(stack, frame{value: candidates[i], next: top.next + 1})
		}
	}
	return nil, types.ErrFieldNotFound
}

// step applies one segment to v and returns the values it leads to, in
// match order. Scalars and null lead nowhere.
func step(seg types.PathSegment, v types.Value) []types.Value {
	switch v := v.(type) {
	case map[string]any:
		switch {
		case seg.Wildcard:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			members := make([]types.Value, len(keys))
			for i, k := range keys {
				members[i] = v[k]
			}
			return members
		case seg.IsIndex:
			return nil
		}
		if member, ok := v[seg.Key]; ok {
			return []types.Value{member}
		}
	case []any:
		switch {
		case seg.Wildcard:
			return v
		case seg.IsIndex && seg.Index >= 0 && seg.Index < len(v):
			return []types.Value{v[seg.Index]}
		}
	}
	return nil
}
