// Package taxonomy maps between user-facing category term ids and the
// junction ids used for seed-category relationship storage, and builds
// hierarchical category listings.
package taxonomy

import (
	"sort"

	"gorm.io/gorm"

	"github.com/gardenbase/seedvault/internal/errors"
)

// DefaultNamespace is the taxonomy namespace seed categories live in.
const DefaultNamespace = "seed_category"

// Term is a category label. Names are unique within the taxonomy.
type Term struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Slug string `gorm:"index" json:"slug"`
}

// TermRelation binds a term into a namespace and places it in the
// hierarchy. Its primary key is the junction id referenced by the
// seed-category link table.
type TermRelation struct {
	ID        int64  `gorm:"primaryKey" json:"id"` // junction id
	TermID    int64  `gorm:"index;not null" json:"termId"`
	Namespace string `gorm:"index;not null" json:"namespace"`
	ParentID  int64  `gorm:"index" json:"parentId"` // parent term id, 0 for top level
}

// Category is the resolved view of a term within the namespace.
type Category struct {
	TermID     int64  `json:"termId"`
	JunctionID int64  `json:"junctionId"`
	ParentID   int64  `json:"parentId"`
	Name       string `json:"name"`
}

// Option is one row of a hierarchical category selector.
type Option struct {
	Category Category `json:"category"`
	Depth    int      `json:"depth"`
	Selected bool     `json:"selected"`
}

// Adapter performs taxonomy lookups against the shared database.
type Adapter struct {
	DB        *gorm.DB
	Namespace string
}

// NewAdapter creates an Adapter scoped to the default namespace.
func NewAdapter(db *gorm.DB) *Adapter {
	return &Adapter{DB: db, Namespace: DefaultNamespace}
}

// Migrate creates the taxonomy tables.
func (a *Adapter) Migrate() error {
	return a.DB.AutoMigrate(&Term{}, &TermRelation{})
}

// ResolveJunctionIDs maps term ids to junction ids, dropping any that do
// not exist within the adapter's namespace.
func (a *Adapter) ResolveJunctionIDs(termIDs []int64) ([]int64, error) {
	if len(termIDs) == 0 {
		return nil, nil
	}

	var relations []TermRelation
	err := a.DB.Where("term_id IN ? AND namespace = ?", termIDs, a.Namespace).
		Find(&relations).Error
	if err != nil {
		return nil, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryDatabase).
			Context("operation", "resolve_junction_ids").
			Build()
	}

	// Preserve caller ordering of the input term ids.
	byTerm := make(map[int64]int64, len(relations))
	for _, rel := range relations {
		byTerm[rel.TermID] = rel.ID
	}
	junctionIDs := make([]int64, 0, len(termIDs))
	for _, termID := range termIDs {
		if jid, ok := byTerm[termID]; ok {
			junctionIDs = append(junctionIDs, jid)
		}
	}
	return junctionIDs, nil
}

// JunctionForTerm resolves a single term id. The second return reports
// whether the term exists in this namespace.
func (a *Adapter) JunctionForTerm(termID int64) (int64, bool, error) {
	ids, err := a.ResolveJunctionIDs([]int64{termID})
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// categoryRow is the join result shape shared by the per-seed lookups.
type categoryRow struct {
	SeedID     uint
	TermID     int64
	JunctionID int64
	ParentID   int64
	Name       string
}

// CategoriesForSeed returns the resolved categories linked to one seed.
func (a *Adapter) CategoriesForSeed(seedID uint) ([]Category, error) {
	byID, err := a.CategoriesForSeeds([]uint{seedID})
	if err != nil {
		return nil, err
	}
	return byID[seedID], nil
}

// CategoriesForSeeds resolves categories for a whole result set with a
// single query, keyed by seed id. Seeds without categories are absent
// from the map.
func (a *Adapter) CategoriesForSeeds(seedIDs []uint) (map[uint][]Category, error) {
	if len(seedIDs) == 0 {
		return map[uint][]Category{}, nil
	}

	var rows []categoryRow
	err := a.DB.Table("seed_categories").
		Select("seed_categories.seed_id AS seed_id, terms.id AS term_id, term_relations.id AS junction_id, term_relations.parent_id AS parent_id, terms.name AS name").
		Joins("INNER JOIN term_relations ON term_relations.id = seed_categories.term_taxonomy_id").
		Joins("INNER JOIN terms ON terms.id = term_relations.term_id").
		Where("seed_categories.seed_id IN ? AND term_relations.namespace = ?", seedIDs, a.Namespace).
		Order("terms.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryDatabase).
			Context("operation", "categories_for_seeds").
			Context("seed_count", len(seedIDs)).
			Build()
	}

	result := make(map[uint][]Category, len(seedIDs))
	for _, row := range rows {
		result[row.SeedID] = append(result[row.SeedID], Category{
			TermID:     row.TermID,
			JunctionID: row.JunctionID,
			ParentID:   row.ParentID,
			Name:       row.Name,
		})
	}
	return result, nil
}

// ListCategories returns every category in the namespace.
func (a *Adapter) ListCategories() ([]Category, error) {
	var rows []categoryRow
	err := a.DB.Table("term_relations").
		Select("terms.id AS term_id, term_relations.id AS junction_id, term_relations.parent_id AS parent_id, terms.name AS name").
		Joins("INNER JOIN terms ON terms.id = term_relations.term_id").
		Where("term_relations.namespace = ?", a.Namespace).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryDatabase).
			Context("operation", "list_categories").
			Build()
	}

	categories := make([]Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, Category{
			TermID:     row.TermID,
			JunctionID: row.JunctionID,
			ParentID:   row.ParentID,
			Name:       row.Name,
		})
	}
	return categories, nil
}

// HierarchicalOptions flattens the category tree into an indented option
// list for rendering a nested selector. Children are sorted
// alphabetically within each parent. Nodes whose parent is missing from
// the namespace are promoted to top level rather than dropped.
func (a *Adapter) HierarchicalOptions(selectedTermIDs []int64) ([]Option, error) {
	categories, err := a.ListCategories()
	if err != nil {
		return nil, err
	}

	selected := make(map[int64]bool, len(selectedTermIDs))
	for _, id := range selectedTermIDs {
		selected[id] = true
	}

	known := make(map[int64]bool, len(categories))
	for _, cat := range categories {
		known[cat.TermID] = true
	}

	children := make(map[int64][]Category)
	for _, cat := range categories {
		parent := cat.ParentID
		if parent != 0 && !known[parent] {
			// orphaned node, treat as top level
			parent = 0
		}
		children[parent] = append(children[parent], cat)
	}
	for parent := range children {
		sort.Slice(children[parent], func(i, j int) bool {
			return children[parent][i].Name < children[parent][j].Name
		})
	}

	var options []Option
	var walk func(parent int64, depth int)
	walk = func(parent int64, depth int) {
		for _, cat := range children[parent] {
			options = append(options, Option{
				Category: cat,
				Depth:    depth,
				Selected: selected[cat.TermID],
			})
			if cat.TermID != parent {
				walk(cat.TermID, depth+1)
			}
		}
	}
	walk(0, 0)

	return options, nil
}

// EnsureCategory creates a term and its namespace relation if the name is
// not already present, returning the resolved category either way.
func (a *Adapter) EnsureCategory(name string, parentTermID int64) (Category, error) {
	var term Term
	err := a.DB.Where("name = ?", name).First(&term).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		term = Term{Name: name}
		if err := a.DB.Create(&term).Error; err != nil {
			return Category{}, errors.New(err).
				Component("taxonomy").
				Category(errors.CategoryDatabase).
				Context("operation", "create_term").
				Build()
		}
	case err != nil:
		return Category{}, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryDatabase).
			Context("operation", "lookup_term").
			Build()
	}

	var relation TermRelation
	err = a.DB.Where("term_id = ? AND namespace = ?", term.ID, a.Namespace).First(&relation).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		relation = TermRelation{TermID: term.ID, Namespace: a.Namespace, ParentID: parentTermID}
		if err := a.DB.Create(&relation).Error; err != nil {
			return Category{}, errors.New(err).
				Component("taxonomy").
				Category(errors.CategoryDatabase).
				Context("operation", "create_term_relation").
				Build()
		}
	case err != nil:
		return Category{}, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryDatabase).
			Context("operation", "lookup_term_relation").
			Build()
	}

	return Category{
		TermID:     term.ID,
		JunctionID: relation.ID,
		ParentID:   relation.ParentID,
		Name:       term.Name,
	}, nil
}
