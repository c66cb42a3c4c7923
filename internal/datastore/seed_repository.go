// seed_repository.go implements seed CRUD, dynamic filtering and category
// link maintenance. This file is the sole writer of the seeds and
// seed_categories tables.
package datastore

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gardenbase/seedvault/internal/errors"
)

// ErrNameRequired is returned when the required name field is empty after
// sanitization.
var ErrNameRequired = errors.NewStd("seed name must not be empty")

// ErrSeedNotFound is returned by update when the target id does not
// exist.
var ErrSeedNotFound = errors.NewStd("seed not found")

// orderColumns is the allow-list of sortable columns. Restricting the
// order-by parameter to this set keeps caller input out of the SQL text.
var orderColumns = map[string]bool{
	"name":            true,
	"variety":         true,
	"brand":           true,
	"quantity":        true,
	"purchase_date":   true,
	"expiration_date": true,
	"created_at":      true,
	"updated_at":      true,
}

// SaveSeed sanitizes fields against the schema, persists a new seed and
// replaces its category links. Returns the new seed id.
func (ds *DataStore) SaveSeed(fields map[string]any, junctionIDs []int64) (uint, error) {
	sanitized := SanitizeFields(fields)

	name, _ := sanitized["name"].(string)
	if strings.TrimSpace(name) == "" {
		return 0, errors.New(ErrNameRequired).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("operation", "save_seed").
			Build()
	}

	var seed Seed
	for column, value := range sanitized {
		applyField(&seed, column, value)
	}

	if err := ds.DB.Create(&seed).Error; err != nil {
		return 0, classifyDBError(err, "save_seed")
	}

	// Link replacement is deliberately outside the row insert: a failure
	// here leaves the seed saved without categories rather than losing
	// the submission.
	if err := ds.replaceCategoryLinks(seed.ID, junctionIDs); err != nil {
		getLogger().Error("category links not saved",
			"seed_id", seed.ID,
			"junction_ids", junctionIDs,
			"error", err)
	}

	getLogger().Info("seed saved", "seed_id", seed.ID, "name", seed.Name)
	return seed.ID, nil
}

// UpdateSeed applies a partial update: only keys present in fields are
// touched. The last-modified timestamp is always refreshed and category
// links are always replaced, even when no scalar field changed.
func (ds *DataStore) UpdateSeed(id uint, fields map[string]any, junctionIDs []int64) error {
	var existing Seed
	if err := ds.DB.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(ErrSeedNotFound).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("seed_id", id).
				Build()
		}
		return classifyDBError(err, "update_seed")
	}

	sanitized := SanitizeFields(fields)

	if raw, supplied := sanitized["name"]; supplied {
		if name, _ := raw.(string); strings.TrimSpace(name) == "" {
			return errors.New(ErrNameRequired).
				Component("datastore").
				Category(errors.CategoryValidation).
				Context("operation", "update_seed").
				Context("seed_id", id).
				Build()
		}
	}

	sanitized["updated_at"] = time.Now()
	if err := ds.DB.Model(&Seed{ID: id}).Updates(sanitized).Error; err != nil {
		return classifyDBError(err, "update_seed")
	}

	if err := ds.replaceCategoryLinks(id, junctionIDs); err != nil {
		getLogger().Error("category links not replaced",
			"seed_id", id,
			"junction_ids", junctionIDs,
			"error", err)
	}

	return nil
}

// DeleteSeed removes the category links first, then the row. Returns
// whether the row delete affected at least one row.
func (ds *DataStore) DeleteSeed(id uint) (bool, error) {
	if err := ds.DB.Where("seed_id = ?", id).Delete(&SeedCategory{}).Error; err != nil {
		return false, classifyDBError(err, "delete_seed_links")
	}

	result := ds.DB.Delete(&Seed{}, id)
	if result.Error != nil {
		return false, classifyDBError(result.Error, "delete_seed")
	}

	deleted := result.RowsAffected > 0
	if deleted {
		getLogger().Info("seed deleted", "seed_id", id)
	}
	return deleted, nil
}

// GetSeed retrieves one seed hydrated with its resolved categories.
// Returns nil without error when the id does not exist.
func (ds *DataStore) GetSeed(id uint) (*Seed, error) {
	var seed Seed
	if err := ds.DB.First(&seed, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classifyDBError(err, "get_seed")
	}

	categories, err := ds.taxonomy.CategoriesForSeed(seed.ID)
	if err != nil {
		return nil, err
	}
	seed.Categories = categories

	return &seed, nil
}

// SearchSeeds returns seeds matching the filters. The category filter
// joins the link table and de-duplicates, so a seed linked through more
// than one matching relationship row appears once. Category hydration for
// the whole result set is batched into a single lookup.
func (ds *DataStore) SearchSeeds(filters *SeedFilters) ([]Seed, error) {
	query, err := ds.buildSeedQuery(filters)
	if err != nil {
		return nil, err
	}

	query = query.Order(orderClause(filters))
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var seeds []Seed
	if err := query.Find(&seeds).Error; err != nil {
		return nil, classifyDBError(err, "search_seeds")
	}

	if err := ds.hydrateCategories(seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}

// CountSeeds applies the same filter semantics as SearchSeeds minus
// pagination and ordering.
func (ds *DataStore) CountSeeds(filters *SeedFilters) (int64, error) {
	query, err := ds.buildSeedQuery(filters)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := query.Distinct("seeds.id").Count(&count).Error; err != nil {
		return 0, classifyDBError(err, "count_seeds")
	}
	return count, nil
}

// buildSeedQuery assembles the shared WHERE/JOIN clauses for search and
// count.
func (ds *DataStore) buildSeedQuery(filters *SeedFilters) (*gorm.DB, error) {
	query := ds.DB.Model(&Seed{})
	if filters == nil {
		return query, nil
	}

	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(seeds.name) LIKE ? OR LOWER(seeds.variety) LIKE ? OR LOWER(seeds.brand) LIKE ? OR LOWER(seeds.description) LIKE ?",
			like, like, like, like)
	}

	if filters.CategoryTermID != 0 {
		junctionID, found, err := ds.taxonomy.JunctionForTerm(filters.CategoryTermID)
		if err != nil {
			return nil, err
		}
		if !found {
			// Unknown category: match nothing rather than erroring.
			junctionID = -1
		}
		query = query.
			Joins("INNER JOIN seed_categories ON seed_categories.seed_id = seeds.id").
			Where("seed_categories.term_taxonomy_id = ?", junctionID).
			Distinct("seeds.*")
	}

	if len(filters.IDs) > 0 {
		query = query.Where("seeds.id IN ?", filters.IDs)
	}

	return query, nil
}

// orderClause resolves the order column against the allow-list, defaulting
// to name ascending.
func orderClause(filters *SeedFilters) string {
	column := "name"
	descending := false
	if filters != nil {
		if orderColumns[filters.OrderBy] {
			column = filters.OrderBy
		}
		descending = filters.Descending
	}
	if descending {
		return "seeds." + column + " DESC"
	}
	return "seeds." + column + " ASC"
}

// hydrateCategories attaches resolved categories to a result set with one
// batched lookup.
func (ds *DataStore) hydrateCategories(seeds []Seed) error {
	if len(seeds) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(seeds))
	for i := range seeds {
		ids = append(ids, seeds[i].ID)
	}
	byID, err := ds.taxonomy.CategoriesForSeeds(ids)
	if err != nil {
		return err
	}
	for i := range seeds {
		seeds[i].Categories = byID[seeds[i].ID]
	}
	return nil
}

// replaceCategoryLinks swaps the full link set for a seed inside one
// transaction. Links are replaced, not diffed.
func (ds *DataStore) replaceCategoryLinks(seedID uint, junctionIDs []int64) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("seed_id = ?", seedID).Delete(&SeedCategory{}).Error; err != nil {
			return classifyDBError(err, "replace_links_delete")
		}
		seen := make(map[int64]bool, len(junctionIDs))
		for _, junctionID := range junctionIDs {
			if junctionID <= 0 || seen[junctionID] {
				continue
			}
			seen[junctionID] = true
			link := SeedCategory{SeedID: seedID, TermTaxonomyID: junctionID}
			if err := tx.Create(&link).Error; err != nil {
				return classifyDBError(err, "replace_links_insert")
			}
		}
		return nil
	})
}
