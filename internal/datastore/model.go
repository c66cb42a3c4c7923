// model.go defines the persisted data model for the seed catalog.
package datastore

import (
	"time"

	"github.com/gardenbase/seedvault/internal/taxonomy"
)

// Seed represents one catalog entry. Every attribute other than Name is
// optional. Pointer fields distinguish absent from zero. Date fields are
// stored as YYYY-MM-DD strings; the schema layer rejects anything else.
type Seed struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;index:idx_seeds_name" json:"name"`

	Variety     string `gorm:"index:idx_seeds_variety" json:"variety,omitempty"`
	Brand       string `gorm:"index:idx_seeds_brand" json:"brand,omitempty"`
	SKU         string `gorm:"column:sku" json:"sku,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	PlantType    string `json:"plantType,omitempty"`
	GrowthHabit  string `json:"growthHabit,omitempty"`
	PlantSize    string `json:"plantSize,omitempty"`
	FlowerColor  string `json:"flowerColor,omitempty"`
	FoliageColor string `json:"foliageColor,omitempty"`

	DaysToGermination string `json:"daysToGermination,omitempty"`
	DaysToMaturity    string `json:"daysToMaturity,omitempty"`
	GerminationRate   string `json:"germinationRate,omitempty"`
	SeedTreatment     string `json:"seedTreatment,omitempty"`

	SowingDepth     string `json:"sowingDepth,omitempty"`
	PlantSpacing    string `json:"plantSpacing,omitempty"`
	RowSpacing      string `json:"rowSpacing,omitempty"`
	SowingIndoor    string `json:"sowingIndoor,omitempty"`
	SowingOutdoor   string `json:"sowingOutdoor,omitempty"`
	SoilTemperature string `json:"soilTemperature,omitempty"`

	SunRequirements string `json:"sunRequirements,omitempty"`
	WateringNeeds   string `json:"wateringNeeds,omitempty"`
	FertilizerNeeds string `json:"fertilizerNeeds,omitempty"`
	SoilType        string `json:"soilType,omitempty"`
	HardinessZone   string `json:"hardinessZone,omitempty"`

	BloomSeason   string `json:"bloomSeason,omitempty"`
	HarvestSeason string `json:"harvestSeason,omitempty"`

	PestResistance    string `json:"pestResistance,omitempty"`
	DiseaseResistance string `json:"diseaseResistance,omitempty"`
	CompanionPlants   string `json:"companionPlants,omitempty"`

	GrowingNotes    string `gorm:"type:text" json:"growingNotes,omitempty"`
	HistoricalNotes string `gorm:"type:text" json:"historicalNotes,omitempty"`

	PollinatorFriendly   *bool `json:"pollinatorFriendly,omitempty"`
	ContainerSuitability *bool `json:"containerSuitability,omitempty"`

	Quantity *int `json:"quantity,omitempty"`

	PurchaseDate   *string `json:"purchaseDate,omitempty"`
	ExpirationDate *string `json:"expirationDate,omitempty"`

	ImageURL    string `gorm:"column:image_url" json:"imageUrl,omitempty"`
	PurchaseURL string `gorm:"column:purchase_url" json:"purchaseUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Resolved category list, populated by the repository on reads.
	Categories []taxonomy.Category `gorm:"-" json:"categories,omitempty"`
}

// SeedCategory links a seed to a taxonomy junction id. Link rows are
// replaced wholesale on every save and update.
type SeedCategory struct {
	ID             uint  `gorm:"primaryKey"`
	SeedID         uint  `gorm:"index;not null;uniqueIndex:idx_seed_categories_link"`
	TermTaxonomyID int64 `gorm:"not null;uniqueIndex:idx_seed_categories_link"`
}

// Option is one key-value settings row (API key, selected model, schema
// version marker).
type Option struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// ModelUsage accumulates per-model telemetry counters. AvgLatencyMs is
// maintained as a running average so storage does not grow with call
// count.
type ModelUsage struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	ModelID      string    `gorm:"uniqueIndex;not null" json:"modelId"`
	Calls        int64     `json:"calls"`
	InputTokens  int64     `json:"inputTokens"`
	OutputTokens int64     `json:"outputTokens"`
	TotalTokens  int64     `json:"totalTokens"`
	AvgLatencyMs float64   `json:"avgLatencyMs"`
	LastUsedAt   time.Time `json:"lastUsedAt"`
}
