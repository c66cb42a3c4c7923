// normalize.go cleans up raw model output at the system boundary. The
// provider emits the literal string "null" often enough that it must be
// treated as absent, and boolean fields frequently arrive as strings.
package gemini

import (
	"strings"

	"github.com/gardenbase/seedvault/internal/datastore"
)

// boolFields is the set of schema fields declared boolean, derived from
// the datastore schema.
var boolFields = func() map[string]bool {
	fields := make(map[string]bool)
	for _, spec := range datastore.SeedFieldSchema {
		if spec.Type == datastore.TypeBool {
			fields[spec.Column] = true
		}
	}
	return fields
}()

// NormalizeFields maps provider quirks to real JSON semantics: any value
// equal to the literal string "null" becomes nil, and boolean-typed
// fields coerce case-insensitive "true"/"false" strings to bool, or nil
// when unparseable. Everything else passes through untouched.
func NormalizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if s, ok := value.(string); ok && strings.EqualFold(strings.TrimSpace(s), "null") {
			out[key] = nil
			continue
		}
		if boolFields[key] {
			out[key] = normalizeBool(value)
			continue
		}
		out[key] = value
	}
	return out
}

func normalizeBool(value any) any {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true
		case "false":
			return false
		}
		return nil
	default:
		return nil
	}
}
