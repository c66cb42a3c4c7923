// interfaces.go defines the database operations exposed by the datastore.
package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/taxonomy"
)

// SeedFilters selects and pages seed query results. Query and Category
// are AND-combined. CategoryTermID is the user-facing term id; the
// repository resolves it to a junction id internally.
type SeedFilters struct {
	Query          string // free-text, matched against name/variety/brand/description
	CategoryTermID int64  // 0 means no category filter
	IDs            []uint // explicit id list, empty means all
	Limit          int    // 0 means no limit
	Offset         int
	OrderBy        string // must be in the order column allow-list, falls back to name
	Descending     bool
}

// Interface abstracts the underlying database implementation.
type Interface interface {
	Open() error
	Close() error

	// Seed repository
	SaveSeed(fields map[string]any, junctionIDs []int64) (uint, error)
	UpdateSeed(id uint, fields map[string]any, junctionIDs []int64) error
	DeleteSeed(id uint) (bool, error)
	GetSeed(id uint) (*Seed, error)
	SearchSeeds(filters *SeedFilters) ([]Seed, error)
	CountSeeds(filters *SeedFilters) (int64, error)

	// Options store
	GetOption(name string) (string, error)
	SetOption(name, value string) error

	// Usage telemetry
	RecordModelUsage(modelID string, inputTokens, outputTokens int64, latency time.Duration) error
	GetModelUsage() ([]ModelUsage, error)
	ResetModelUsage() error

	// Taxonomy returns the category adapter bound to this store.
	Taxonomy() *taxonomy.Adapter
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB       *gorm.DB
	taxonomy *taxonomy.Adapter
}

// New creates a store for whichever database output is enabled.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// Taxonomy returns the category adapter. Valid after Open.
func (ds *DataStore) Taxonomy() *taxonomy.Adapter {
	return ds.taxonomy
}

// initialize wires the adapter and migrates the schema. Called by the
// dialect stores from Open.
func (ds *DataStore) initialize(db *gorm.DB) error {
	ds.DB = db
	ds.taxonomy = taxonomy.NewAdapter(db)

	if err := db.AutoMigrate(&Seed{}, &SeedCategory{}, &Option{}, &ModelUsage{}); err != nil {
		return classifyDBError(err, "auto_migrate")
	}
	if err := ds.taxonomy.Migrate(); err != nil {
		return classifyDBError(err, "auto_migrate_taxonomy")
	}
	return ds.ensureSchemaVersion()
}
