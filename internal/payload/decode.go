package payload

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported payload format %q", value)
	}
}

// Decode parses raw payload text into a tree of map[string]any, []any
// and scalars. Input that does not parse in the requested format is
// kept as a plain string scalar rather than rejected; downstream
// normalization is expected to cope with any shape.
func Decode(data []byte, format Format) (any, error) {
	switch format {
	case FormatJSON:
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return string(data), nil
		}
		return decoded, nil
	case FormatYAML:
		var decoded any
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			return string(data), nil
		}
		return normalizeTree(decoded), nil
	default:
		return nil, fmt.Errorf("unsupported payload format %q", format)
	}
}

// normalizeTree rewrites yaml.v3 output so mappings always use string
// keys, matching the JSON decoder's shape.
func normalizeTree(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, nested := range typed {
			typed[key] = normalizeTree(nested)
		}
		return typed
	case map[any]any:
		normalized := make(map[string]any, len(typed))
		for key, nested := range typed {
			normalized[fmt.Sprint(key)] = normalizeTree(nested)
		}
		return normalized
	case []any:
		for index, nested := range typed {
			typed[index] = normalizeTree(nested)
		}
		return typed
	default:
		return value
	}
}
