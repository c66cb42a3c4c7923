package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFields_DropsUnknownKeys(t *testing.T) {
	out := SanitizeFields(map[string]any{
		"name":        "Tomato",
		"not_a_field": "x",
		"drop_table":  "y",
	})
	assert.Equal(t, map[string]any{"name": "Tomato"}, out)
}

func TestSanitizeFields_StringFlattensWhitespace(t *testing.T) {
	out := SanitizeFields(map[string]any{"name": "  Cherry \n Tomato\t"})
	assert.Equal(t, "Cherry Tomato", out["name"])
}

func TestSanitizeFields_TextKeepsNewlines(t *testing.T) {
	out := SanitizeFields(map[string]any{"description": "Line one.\nLine two.\n"})
	assert.Equal(t, "Line one.\nLine two.", out["description"])
}

func TestSanitizeFields_Int(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *int
	}{
		{"int", 12, intPtr(12)},
		{"float", 7.0, intPtr(7)},
		{"numeric string", " 42 ", intPtr(42)},
		{"negative becomes absolute", -5, intPtr(5)},
		{"garbage string", "lots", nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeFields(map[string]any{"quantity": tt.input})
			got := out["quantity"].(*int)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestSanitizeFields_Bool(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *bool
	}{
		{"bool true", true, boolPtr(true)},
		{"string true", "TRUE", boolPtr(true)},
		{"string yes", "yes", boolPtr(true)},
		{"string false", "False", boolPtr(false)},
		{"string zero", "0", boolPtr(false)},
		{"int one", 1, boolPtr(true)},
		{"unparseable", "maybe", nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeFields(map[string]any{"container_suitability": tt.input})
			got := out["container_suitability"].(*bool)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestSanitizeFields_Date(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		valid bool
	}{
		{"valid", "2025-04-01", "2025-04-01", true},
		{"padded", " 2025-04-01 ", "2025-04-01", true},
		{"wrong format", "04/01/2025", "", false},
		{"not a date", "springtime", "", false},
		{"impossible date", "2025-02-30", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeFields(map[string]any{"purchase_date": tt.input})
			got := out["purchase_date"].(*string)
			if !tt.valid {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.want, *got)
			}
		})
	}
}

func TestSanitizeFields_URL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already has scheme", "https://example.com/carrot.jpg", "https://example.com/carrot.jpg"},
		{"missing scheme gets http", "example.com/carrot.jpg", "http://example.com/carrot.jpg"},
		{"whitespace trimmed", "  example.com/x  ", "http://example.com/x"},
		{"space escaped by strict pass", "example.com/my photo.jpg", "http://example.com/my%20photo.jpg"},
		{"control char falls back to permissive pass", "example.com/\x01carrot.jpg", "http://example.com/carrot.jpg"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeFields(map[string]any{"image_url": tt.input})
			assert.Equal(t, tt.want, out["image_url"])
		})
	}
}

func TestFieldSchema_Lookup(t *testing.T) {
	spec, ok := FieldSpecFor("container_suitability")
	require.True(t, ok)
	assert.Equal(t, TypeBool, spec.Type)

	_, ok = FieldSpecFor("no_such_field")
	assert.False(t, ok)

	names := FieldNames()
	assert.Equal(t, "name", names[0])
	assert.Len(t, names, len(SeedFieldSchema))
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }
