// prompt.go builds the instruction sent to the model for seed info
// lookups. The requested field list comes from the datastore schema so
// prompt and storage cannot drift apart.
package gemini

import (
	"fmt"
	"strings"

	"github.com/gardenbase/seedvault/internal/datastore"
)

// promptInputFields are supplied by the user and therefore not requested
// back from the model.
var promptInputFields = map[string]bool{
	"name":    true,
	"variety": true,
	"brand":   true,
	"sku":     true,
}

// FetchRequest identifies the seed to look up. Name is required.
type FetchRequest struct {
	Name    string `json:"name"`
	Variety string `json:"variety,omitempty"`
	Brand   string `json:"brand,omitempty"`
	SKU     string `json:"sku,omitempty"`
}

// buildSeedPrompt assembles the natural-language instruction. Every
// requested field carries a one-line description, and the model is told
// to emit an explicit null for anything it does not know; the normalizer
// depends on that contract.
func buildSeedPrompt(req FetchRequest) string {
	var b strings.Builder

	b.WriteString("You are a horticultural reference assistant. Provide factual growing information about the following seeds:\n")
	fmt.Fprintf(&b, "- Plant name: %s\n", req.Name)
	if req.Variety != "" {
		fmt.Fprintf(&b, "- Variety: %s\n", req.Variety)
	}
	if req.Brand != "" {
		fmt.Fprintf(&b, "- Brand: %s\n", req.Brand)
	}
	if req.SKU != "" {
		fmt.Fprintf(&b, "- SKU: %s\n", req.SKU)
	}

	b.WriteString("\nRespond with a single JSON object containing exactly these keys:\n")
	for _, spec := range datastore.SeedFieldSchema {
		if promptInputFields[spec.Column] {
			continue
		}
		fmt.Fprintf(&b, "- %q: %s", spec.Column, spec.Description)
		switch spec.Type {
		case datastore.TypeBool:
			b.WriteString(" (true or false)")
		case datastore.TypeInt:
			b.WriteString(" (integer)")
		case datastore.TypeDate:
			b.WriteString(" (YYYY-MM-DD)")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Every key must be present. Use JSON null for any value you do not know; never omit a key.\n")
	b.WriteString("- Values must be concise plain text without markdown.\n")
	b.WriteString("- Do not include any keys other than those listed.\n")
	b.WriteString("- Respond with only the JSON object, no surrounding text.\n")

	return b.String()
}
