// schema.go defines the seed field allow-list and per-type sanitization.
// Input maps are filtered against this schema before anything reaches the
// database; unknown keys are dropped silently.
package datastore

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FieldType declares how a seed field is sanitized.
type FieldType string

const (
	TypeString FieldType = "string" // single-line text
	TypeText   FieldType = "text"   // multi-line text
	TypeInt    FieldType = "int"    // non-negative integer
	TypeBool   FieldType = "bool"   // coerced to exactly true/false/absent
	TypeURL    FieldType = "url"    // best-effort normalized, scheme added
	TypeDate   FieldType = "date"   // YYYY-MM-DD or rejected to absent
)

// FieldSpec is one entry of the seed field schema. Column doubles as the
// external field name and the database column name.
type FieldSpec struct {
	Column      string
	Type        FieldType
	Description string // one-line content hint, reused in the AI prompt
}

// SeedFieldSchema is the ordered allow-list of seed fields. Order defines
// CSV export column order. The name field is first and required; all
// others are optional.
var SeedFieldSchema = []FieldSpec{
	{"name", TypeString, "Common name of the plant, e.g. Tomato"},
	{"variety", TypeString, "Specific variety or cultivar name, e.g. Brandywine"},
	{"brand", TypeString, "Seed company or brand name"},
	{"sku", TypeString, "Product SKU or catalog number"},
	{"description", TypeText, "Two to three sentence description of the plant and its seeds"},
	{"plant_type", TypeString, "Botanical type, e.g. Determinate Tomato, Annual Flower"},
	{"growth_habit", TypeString, "Growth habit, e.g. bush, vining, upright"},
	{"plant_size", TypeString, "Mature plant height and spread"},
	{"flower_color", TypeString, "Flower color if applicable"},
	{"foliage_color", TypeString, "Foliage color if notable"},
	{"days_to_germination", TypeString, "Typical germination time range in days"},
	{"days_to_maturity", TypeString, "Days from planting to harvest or bloom"},
	{"germination_rate", TypeString, "Typical germination rate percentage"},
	{"seed_treatment", TypeString, "Recommended seed treatment, e.g. soaking, scarification, none"},
	{"sowing_depth", TypeString, "Recommended sowing depth"},
	{"plant_spacing", TypeString, "Recommended spacing between plants"},
	{"row_spacing", TypeString, "Recommended spacing between rows"},
	{"sowing_indoor", TypeString, "Indoor sowing window relative to last frost"},
	{"sowing_outdoor", TypeString, "Outdoor direct sowing window"},
	{"soil_temperature", TypeString, "Optimal soil temperature range for germination"},
	{"sun_requirements", TypeString, "Sun exposure needs, e.g. full sun, partial shade"},
	{"watering_needs", TypeString, "Watering requirements"},
	{"fertilizer_needs", TypeString, "Fertilizing recommendations"},
	{"soil_type", TypeString, "Preferred soil type and pH"},
	{"hardiness_zone", TypeString, "USDA hardiness zone range"},
	{"bloom_season", TypeString, "Blooming season if applicable"},
	{"harvest_season", TypeString, "Typical harvest season"},
	{"pest_resistance", TypeString, "Known pest resistances"},
	{"disease_resistance", TypeString, "Known disease resistances"},
	{"companion_plants", TypeString, "Good companion plants"},
	{"growing_notes", TypeText, "Additional growing tips and care notes"},
	{"historical_notes", TypeText, "Historical background or origin of the variety"},
	{"pollinator_friendly", TypeBool, "Whether the plant is attractive to pollinators"},
	{"container_suitability", TypeBool, "Whether the plant is suitable for container growing"},
	{"quantity", TypeInt, "Number of seeds or packets on hand"},
	{"purchase_date", TypeDate, "Date the seeds were purchased"},
	{"expiration_date", TypeDate, "Seed packet expiration date"},
	{"image_url", TypeURL, "URL of a representative image"},
	{"purchase_url", TypeURL, "URL of the product page"},
}

// fieldIndex maps field name to its spec for O(1) allow-list checks.
var fieldIndex = func() map[string]FieldSpec {
	idx := make(map[string]FieldSpec, len(SeedFieldSchema))
	for _, spec := range SeedFieldSchema {
		idx[spec.Column] = spec
	}
	return idx
}()

// FieldSpecFor returns the schema entry for a field name.
func FieldSpecFor(name string) (FieldSpec, bool) {
	spec, ok := fieldIndex[name]
	return spec, ok
}

// FieldNames returns every schema field name in schema order.
func FieldNames() []string {
	names := make([]string, 0, len(SeedFieldSchema))
	for _, spec := range SeedFieldSchema {
		names = append(names, spec.Column)
	}
	return names
}

// SanitizeFields filters the input map against the schema and sanitizes
// each value according to its declared type. Unknown keys are dropped.
// Values that sanitize to absent are returned as typed nils so partial
// updates can clear a column explicitly.
func SanitizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, raw := range fields {
		spec, ok := fieldIndex[key]
		if !ok {
			continue
		}
		switch spec.Type {
		case TypeString:
			out[key] = sanitizeLine(raw)
		case TypeText:
			out[key] = sanitizeText(raw)
		case TypeInt:
			out[key] = sanitizeInt(raw)
		case TypeBool:
			out[key] = sanitizeBool(raw)
		case TypeURL:
			out[key] = sanitizeURL(raw)
		case TypeDate:
			out[key] = sanitizeDate(raw)
		}
	}
	return out
}

// sanitizeLine flattens the value to a trimmed single line with control
// characters removed.
func sanitizeLine(raw any) string {
	s := stringify(raw)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// drop
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// sanitizeText trims the value but preserves line structure.
func sanitizeText(raw any) string {
	s := stringify(raw)
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		var b strings.Builder
		for _, r := range line {
			if r == '\t' || !unicode.IsControl(r) {
				b.WriteRune(r)
			}
		}
		lines[i] = strings.TrimRight(b.String(), " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// sanitizeInt coerces numeric-ish input to a non-negative int, absent on
// failure.
func sanitizeInt(raw any) *int {
	var n int
	switch v := raw.(type) {
	case nil:
		return nil
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n < 0 {
		n = -n
	}
	return &n
}

// sanitizeBool coerces truthy/falsy input to exactly true/false/absent.
func sanitizeBool(raw any) *bool {
	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		return &v
	case int:
		b := v != 0
		return &b
	case float64:
		b := v != 0
		return &b
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			b := true
			return &b
		case "false", "0", "no", "off":
			b := false
			return &b
		}
		return nil
	default:
		return nil
	}
}

// sanitizeDate accepts only YYYY-MM-DD, anything else becomes absent.
func sanitizeDate(raw any) *string {
	s := strings.TrimSpace(stringify(raw))
	if s == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	normalized := parsed.Format("2006-01-02")
	return &normalized
}

// sanitizeURL normalizes a URL in two tiers. The strict pass parses and
// re-serializes the URL; if that empties a non-empty input, a permissive
// pass strips only whitespace and quotes so user-entered URLs are not
// silently dropped. A scheme is prefixed when still missing.
func sanitizeURL(raw any) string {
	s := strings.TrimSpace(stringify(raw))
	if s == "" {
		return ""
	}

	normalized := strictURL(s)
	if normalized == "" {
		normalized = permissiveURL(s)
	}
	if normalized == "" {
		return ""
	}

	if !strings.Contains(normalized, "://") {
		normalized = "http://" + normalized
	}
	return normalized
}

func strictURL(s string) string {
	candidate := s
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if !strings.Contains(s, "://") {
		// report without the synthetic scheme, the caller re-adds it
		return strings.TrimPrefix(parsed.String(), "http://")
	}
	return parsed.String()
}

func permissiveURL(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '"' || r == '\'' || r == '<' || r == '>' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stringify renders scalar input as a string for the text sanitizers.
func stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// applyField copies one sanitized value onto the Seed struct. The switch
// is exhaustive over SeedFieldSchema; a field added there must be added
// here too.
func applyField(seed *Seed, column string, value any) {
	switch column {
	case "name":
		seed.Name = value.(string)
	case "variety":
		seed.Variety = value.(string)
	case "brand":
		seed.Brand = value.(string)
	case "sku":
		seed.SKU = value.(string)
	case "description":
		seed.Description = value.(string)
	case "plant_type":
		seed.PlantType = value.(string)
	case "growth_habit":
		seed.GrowthHabit = value.(string)
	case "plant_size":
		seed.PlantSize = value.(string)
	case "flower_color":
		seed.FlowerColor = value.(string)
	case "foliage_color":
		seed.FoliageColor = value.(string)
	case "days_to_germination":
		seed.DaysToGermination = value.(string)
	case "days_to_maturity":
		seed.DaysToMaturity = value.(string)
	case "germination_rate":
		seed.GerminationRate = value.(string)
	case "seed_treatment":
		seed.SeedTreatment = value.(string)
	case "sowing_depth":
		seed.SowingDepth = value.(string)
	case "plant_spacing":
		seed.PlantSpacing = value.(string)
	case "row_spacing":
		seed.RowSpacing = value.(string)
	case "sowing_indoor":
		seed.SowingIndoor = value.(string)
	case "sowing_outdoor":
		seed.SowingOutdoor = value.(string)
	case "soil_temperature":
		seed.SoilTemperature = value.(string)
	case "sun_requirements":
		seed.SunRequirements = value.(string)
	case "watering_needs":
		seed.WateringNeeds = value.(string)
	case "fertilizer_needs":
		seed.FertilizerNeeds = value.(string)
	case "soil_type":
		seed.SoilType = value.(string)
	case "hardiness_zone":
		seed.HardinessZone = value.(string)
	case "bloom_season":
		seed.BloomSeason = value.(string)
	case "harvest_season":
		seed.HarvestSeason = value.(string)
	case "pest_resistance":
		seed.PestResistance = value.(string)
	case "disease_resistance":
		seed.DiseaseResistance = value.(string)
	case "companion_plants":
		seed.CompanionPlants = value.(string)
	case "growing_notes":
		seed.GrowingNotes = value.(string)
	case "historical_notes":
		seed.HistoricalNotes = value.(string)
	case "pollinator_friendly":
		seed.PollinatorFriendly = value.(*bool)
	case "container_suitability":
		seed.ContainerSuitability = value.(*bool)
	case "quantity":
		seed.Quantity = value.(*int)
	case "purchase_date":
		seed.PurchaseDate = value.(*string)
	case "expiration_date":
		seed.ExpirationDate = value.(*string)
	case "image_url":
		seed.ImageURL = value.(string)
	case "purchase_url":
		seed.PurchaseURL = value.(string)
	}
}

// fieldValue reads one schema field back off the Seed struct, for CSV
// export and API projections. Absent optional values come back as "".
func fieldValue(seed *Seed, column string) string {
	switch column {
	case "name":
		return seed.Name
	case "variety":
		return seed.Variety
	case "brand":
		return seed.Brand
	case "sku":
		return seed.SKU
	case "description":
		return seed.Description
	case "plant_type":
		return seed.PlantType
	case "growth_habit":
		return seed.GrowthHabit
	case "plant_size":
		return seed.PlantSize
	case "flower_color":
		return seed.FlowerColor
	case "foliage_color":
		return seed.FoliageColor
	case "days_to_germination":
		return seed.DaysToGermination
	case "days_to_maturity":
		return seed.DaysToMaturity
	case "germination_rate":
		return seed.GerminationRate
	case "seed_treatment":
		return seed.SeedTreatment
	case "sowing_depth":
		return seed.SowingDepth
	case "plant_spacing":
		return seed.PlantSpacing
	case "row_spacing":
		return seed.RowSpacing
	case "sowing_indoor":
		return seed.SowingIndoor
	case "sowing_outdoor":
		return seed.SowingOutdoor
	case "soil_temperature":
		return seed.SoilTemperature
	case "sun_requirements":
		return seed.SunRequirements
	case "watering_needs":
		return seed.WateringNeeds
	case "fertilizer_needs":
		return seed.FertilizerNeeds
	case "soil_type":
		return seed.SoilType
	case "hardiness_zone":
		return seed.HardinessZone
	case "bloom_season":
		return seed.BloomSeason
	case "harvest_season":
		return seed.HarvestSeason
	case "pest_resistance":
		return seed.PestResistance
	case "disease_resistance":
		return seed.DiseaseResistance
	case "companion_plants":
		return seed.CompanionPlants
	case "growing_notes":
		return seed.GrowingNotes
	case "historical_notes":
		return seed.HistoricalNotes
	case "pollinator_friendly":
		return formatBoolPtr(seed.PollinatorFriendly)
	case "container_suitability":
		return formatBoolPtr(seed.ContainerSuitability)
	case "quantity":
		if seed.Quantity == nil {
			return ""
		}
		return strconv.Itoa(*seed.Quantity)
	case "purchase_date":
		return derefString(seed.PurchaseDate)
	case "expiration_date":
		return derefString(seed.ExpirationDate)
	case "image_url":
		return seed.ImageURL
	case "purchase_url":
		return seed.PurchaseURL
	}
	return ""
}

func formatBoolPtr(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportValue exposes fieldValue for the CSV export layer.
func ExportValue(seed *Seed, column string) string {
	return fieldValue(seed, column)
}
