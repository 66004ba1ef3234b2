package search

import (
	"strconv"
	"strings"
)

// Candidate key lists shared by every caller. Order is the contract:
// the first key that yields a value wins, which is the tie-break for
// payloads carrying several plausible fields at once.
var (
	MessageKeys = []string{
		"error", "message", "Message", "msg", "messages", "description",
		"reason", "detail", "details", "errors", "errorMessage",
		"errorMessages", "ErrorMessage", "error_message", "_error_message",
		"errorDescription", "error_description", "error_summary", "title",
		"text", "field", "err", "type",
	}

	StatusKeys = []string{"statusCode", "status", "code", "status_code", "errorCode", "error_code"}

	NestingKeys = []string{"error", "err", "response", "body", "data"}
)

const sequenceSeparator = " | "

// Find locates a value in an arbitrarily nested payload tree. Phase
// one tries potentialKeys in order directly on node; phase two, only
// when phase one found nothing, descends through traversalKeys and
// repeats the full search underneath. The input must already be
// sanitized; Find assumes the tree is acyclic.
func Find(node any, potentialKeys []string, traversalKeys []string) string {
	mapping, ok := node.(map[string]any)
	if !ok {
		return ""
	}

	for _, key := range potentialKeys {
		value, present := mapping[key]
		if !present {
			continue
		}

		switch typed := value.(type) {
		case string:
			if typed != "" {
				return typed
			}
		case []any:
			if joined := resolveSequence(typed, potentialKeys); joined != "" {
				return joined
			}
		case map[string]any:
			if found := Find(typed, potentialKeys, nil); found != "" {
				return found
			}
		default:
			if text, ok := numberString(value); ok {
				return text
			}
		}
	}

	for _, key := range traversalKeys {
		if !isContainer(mapping[key]) {
			continue
		}
		if found := Find(mapping[key], potentialKeys, traversalKeys); found != "" {
			return found
		}
	}

	return ""
}

// resolveSequence stringifies scalar elements and re-runs the direct
// key search on container elements. Elements that resolve to nothing
// are dropped; only a fully unresolved sequence counts as a non-match
// for the enclosing key.
func resolveSequence(items []any, potentialKeys []string) string {
	resolved := make([]string, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case string:
			if typed != "" {
				resolved = append(resolved, typed)
			}
		case map[string]any:
			if found := Find(typed, potentialKeys, nil); found != "" {
				resolved = append(resolved, found)
			}
		default:
			if text, ok := numberString(item); ok {
				resolved = append(resolved, text)
			}
		}
	}

	if len(resolved) == 0 {
		return ""
	}

	return strings.Join(resolved, sequenceSeparator)
}

func isContainer(value any) bool {
	switch value.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// numberString renders numeric scalars the way they were written:
// integers without a fraction, floats in shortest form. A zero value
// is falsy and never a match.
func numberString(value any) (string, bool) {
	switch typed := value.(type) {
	case float64:
		if typed == 0 {
			return "", false
		}
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case float32:
		if typed == 0 {
			return "", false
		}
		return strconv.FormatFloat(float64(typed), 'f', -1, 32), true
	case int:
		if typed == 0 {
			return "", false
		}
		return strconv.Itoa(typed), true
	case int64:
		if typed == 0 {
			return "", false
		}
		return strconv.FormatInt(typed, 10), true
	case uint64:
		if typed == 0 {
			return "", false
		}
		return strconv.FormatUint(typed, 10), true
	default:
		return "", false
	}
}
