package payload

import (
	"reflect"
	"sort"
)

// CircularMarker replaces any container reference seen more than once
// during sanitization.
const CircularMarker = "[circular]"

type containerKey struct {
	kind   reflect.Kind
	ptr    uintptr
	length int
}

// Sanitize walks root depth-first and replaces every repeated container
// reference, in place, with CircularMarker. Containers are tracked by
// identity, so each one is entered at most once and the walk terminates
// on cyclic graphs. Scalars are untouched.
func Sanitize(root any) {
	key, ok := identity(root)
	if !ok {
		return
	}

	visited := map[containerKey]struct{}{key: {}}
	walk(root, visited)
}

func walk(node any, visited map[containerKey]struct{}) {
	switch typed := node.(type) {
	case map[string]any:
		// Sorted keys keep the walk order stable, so the same
		// occurrence of a shared reference survives on every run.
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			typed[key] = sanitizeChild(typed[key], visited)
		}
	case []any:
		for index, value := range typed {
			typed[index] = sanitizeChild(value, visited)
		}
	}
}

func sanitizeChild(value any, visited map[containerKey]struct{}) any {
	key, ok := identity(value)
	if !ok {
		return value
	}
	if _, seen := visited[key]; seen {
		return CircularMarker
	}

	visited[key] = struct{}{}
	walk(value, visited)

	return value
}

// identity derives a reference key for containers. Empty containers
// cannot close a cycle and are treated like scalars.
func identity(value any) (containerKey, bool) {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return containerKey{}, false
		}
		return containerKey{kind: reflect.Map, ptr: reflect.ValueOf(typed).Pointer(), length: len(typed)}, true
	case []any:
		if len(typed) == 0 {
			return containerKey{}, false
		}
		return containerKey{kind: reflect.Slice, ptr: reflect.ValueOf(typed).Pointer(), length: len(typed)}, true
	default:
		return containerKey{}, false
	}
}
