package service

import (
	"strconv"
	"strings"

	"fieldguide/internal/domain/models"
)

// ApplyDiff applies one diff operation to the draft content object and
// returns the result plus whether it applied. The input is never
// mutated: the returned map is a deep copy, so the content before the
// change stays retrievable for rollback and audit.
//
// Every intermediate container along the path must already exist; only
// the final key may be newly created. Any failure - a missing or nil
// intermediate, a non-numeric key against a list, an index out of
// range, a scalar in the middle of the path, an unknown operation -
// returns the ORIGINAL content unchanged. A diff whose path no longer
// matches the draft is a no-op, never a fabricated structure.
func ApplyDiff(content map[string]interface{}, op models.DiffOp) (map[string]interface{}, bool) {
	if op.Path == "" {
		return content, false
	}
	if op.Operation != models.DiffOpReplace && op.Operation != models.DiffOpAdd {
		return content, false
	}

	result := deepCopyMap(content)

	keys := strings.Split(op.Path, ".")
	var cur interface{} = result

	// Walk to the container holding the final key.
	for _, key := range keys[:len(keys)-1] {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[key]
			if !ok || next == nil {
				return content, false
			}
			cur = next
		case []interface{}:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return content, false
			}
			cur = node[idx]
		default:
			return content, false
		}
	}

	last := keys[len(keys)-1]
	switch node := cur.(type) {
	case map[string]interface{}:
		if op.Operation == models.DiffOpAdd {
			// Append when the target is already a list; otherwise last
			// write wins over a type mismatch.
			if list, isList := node[last].([]interface{}); isList {
				node[last] = append(list, deepCopyValue(op.NewValue))
				return result, true
			}
		}
		node[last] = deepCopyValue(op.NewValue)
		return result, true
	case []interface{}:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(node) {
			return content, false
		}
		if op.Operation == models.DiffOpAdd {
			if list, isList := node[idx].([]interface{}); isList {
				node[idx] = append(list, deepCopyValue(op.NewValue))
				return result, true
			}
		}
		node[idx] = deepCopyValue(op.NewValue)
		return result, true
	default:
		return content, false
	}
}

// ApplyDiffOps applies a sequence of operations, threading successes and
// skipping failed ops. It reports whether any op changed the content.
func ApplyDiffOps(content map[string]interface{}, ops []models.DiffOp) (map[string]interface{}, bool) {
	changed := false
	current := content
	for _, op := range ops {
		next, ok := ApplyDiff(current, op)
		if ok {
			current = next
			changed = true
		}
	}
	return current, changed
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		// Scalars (string, float64, bool, nil) are immutable as JSON values.
		return val
	}
}
