package payload

import (
	"reflect"
	"testing"
)

func TestSanitizeAcyclicIsIdentity(t *testing.T) {
	t.Parallel()

	tree := map[string]any{
		"message": "boom",
		"status":  float64(500),
		"nested":  map[string]any{"detail": "broken pipe", "tags": []any{"a", "b"}},
		"empty":   map[string]any{},
	}
	want := map[string]any{
		"message": "boom",
		"status":  float64(500),
		"nested":  map[string]any{"detail": "broken pipe", "tags": []any{"a", "b"}},
		"empty":   map[string]any{},
	}

	Sanitize(tree)

	if !reflect.DeepEqual(tree, want) {
		t.Fatalf("Sanitize() mutated acyclic tree: %#v", tree)
	}
}

func TestSanitizeSelfReferencingMap(t *testing.T) {
	t.Parallel()

	tree := map[string]any{"message": "boom"}
	tree["self"] = tree

	Sanitize(tree)

	if tree["self"] != CircularMarker {
		t.Fatalf("self reference = %#v, want %q", tree["self"], CircularMarker)
	}
	if tree["message"] != "boom" {
		t.Fatalf("scalar sibling changed: %#v", tree["message"])
	}
}

func TestSanitizeIndirectCycle(t *testing.T) {
	t.Parallel()

	inner := map[string]any{"detail": "x"}
	outer := map[string]any{"error": inner}
	inner["parent"] = outer

	Sanitize(outer)

	nested, ok := outer["error"].(map[string]any)
	if !ok {
		t.Fatalf("inner container replaced unexpectedly: %#v", outer["error"])
	}
	if nested["parent"] != CircularMarker {
		t.Fatalf("cycle back to root = %#v, want %q", nested["parent"], CircularMarker)
	}
}

func TestSanitizeCycleThroughSequence(t *testing.T) {
	t.Parallel()

	tree := map[string]any{}
	items := []any{"first", tree}
	tree["items"] = items

	Sanitize(tree)

	sanitized, ok := tree["items"].([]any)
	if !ok {
		t.Fatalf("sequence replaced unexpectedly: %#v", tree["items"])
	}
	if sanitized[0] != "first" {
		t.Fatalf("sequence scalar changed: %#v", sanitized[0])
	}
	if sanitized[1] != CircularMarker {
		t.Fatalf("sequence cycle = %#v, want %q", sanitized[1], CircularMarker)
	}
}

func TestSanitizeRepeatedReferenceWithoutCycle(t *testing.T) {
	t.Parallel()

	shared := map[string]any{"detail": "x"}
	tree := map[string]any{"a": []any{shared, shared}}

	Sanitize(tree)

	items := tree["a"].([]any)
	if _, ok := items[0].(map[string]any); !ok {
		t.Fatalf("first occurrence should keep its content: %#v", items[0])
	}
	if items[1] != CircularMarker {
		t.Fatalf("second occurrence = %#v, want %q", items[1], CircularMarker)
	}
}

func TestSanitizeSharedReferenceUnderSiblingKeys(t *testing.T) {
	t.Parallel()

	// The same sub-container under two sibling keys must resolve the
	// same way on every run: the first key in sorted order keeps the
	// content.
	for i := 0; i < 50; i++ {
		shared := map[string]any{"msg": "x"}
		tree := map[string]any{"error": shared, "message": shared}

		Sanitize(tree)

		kept, ok := tree["error"].(map[string]any)
		if !ok || kept["msg"] != "x" {
			t.Fatalf("error key should keep the shared content: %#v", tree["error"])
		}
		if tree["message"] != CircularMarker {
			t.Fatalf("message key = %#v, want %q", tree["message"], CircularMarker)
		}
	}
}

func TestSanitizeScalarRoot(t *testing.T) {
	t.Parallel()

	Sanitize("just a string")
	Sanitize(nil)
	Sanitize(float64(7))
}
