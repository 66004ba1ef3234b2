package payload

import (
	"reflect"
	"testing"
)

var decodeTests = []struct {
	name   string
	data   string
	format Format
	want   any
}{
	{
		name:   "json object",
		data:   `{"message":"boom","status":500}`,
		format: FormatJSON,
		want:   map[string]any{"message": "boom", "status": float64(500)},
	},
	{
		name:   "json array",
		data:   `["a","b"]`,
		format: FormatJSON,
		want:   []any{"a", "b"},
	},
	{
		name:   "malformed json degrades to string",
		data:   `{"broken":`,
		format: FormatJSON,
		want:   `{"broken":`,
	},
	{
		name:   "yaml mapping",
		data:   "message: boom\nstatus: 500\n",
		format: FormatYAML,
		want:   map[string]any{"message": "boom", "status": 500},
	},
	{
		name:   "yaml nested sequence",
		data:   "errors:\n  - bad A\n  - bad B\n",
		format: FormatYAML,
		want:   map[string]any{"errors": []any{"bad A", "bad B"}},
	},
}

func TestDecode(t *testing.T) {
	t.Parallel()

	for _, tc := range decodeTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode([]byte(tc.data), tc.format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Decode() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte("{}"), Format("toml")); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	if format, err := ParseFormat("json"); err != nil || format != FormatJSON {
		t.Fatalf("ParseFormat(json) = %q, err=%v", format, err)
	}
	if format, err := ParseFormat("yaml"); err != nil || format != FormatYAML {
		t.Fatalf("ParseFormat(yaml) = %q, err=%v", format, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
