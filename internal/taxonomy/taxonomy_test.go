package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAdapter(t *testing.T) *Adapter {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	adapter := NewAdapter(db)
	require.NoError(t, adapter.Migrate())

	// seed_categories normally comes from the datastore migration; the
	// adapter only reads it, so a bare table is enough here.
	require.NoError(t, db.Exec(
		"CREATE TABLE seed_categories (id INTEGER PRIMARY KEY AUTOINCREMENT, seed_id INTEGER NOT NULL, term_taxonomy_id INTEGER NOT NULL)").Error)

	return adapter
}

func linkSeed(t *testing.T, a *Adapter, seedID uint, junctionID int64) {
	t.Helper()
	require.NoError(t, a.DB.Exec(
		"INSERT INTO seed_categories (seed_id, term_taxonomy_id) VALUES (?, ?)", seedID, junctionID).Error)
}

func TestResolveJunctionIDs_DropsUnknown(t *testing.T) {
	a := setupAdapter(t)
	vegetables, err := a.EnsureCategory("Vegetables", 0)
	require.NoError(t, err)
	herbs, err := a.EnsureCategory("Herbs", 0)
	require.NoError(t, err)

	ids, err := a.ResolveJunctionIDs([]int64{herbs.TermID, 9999, vegetables.TermID})
	require.NoError(t, err)
	assert.Equal(t, []int64{herbs.JunctionID, vegetables.JunctionID}, ids)
}

func TestResolveJunctionIDs_Empty(t *testing.T) {
	a := setupAdapter(t)
	ids, err := a.ResolveJunctionIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolveJunctionIDs_NamespaceScoped(t *testing.T) {
	a := setupAdapter(t)
	cat, err := a.EnsureCategory("Vegetables", 0)
	require.NoError(t, err)

	other := &Adapter{DB: a.DB, Namespace: "post_tag"}
	ids, err := other.ResolveJunctionIDs([]int64{cat.TermID})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCategoriesForSeeds_Batched(t *testing.T) {
	a := setupAdapter(t)
	vegetables, err := a.EnsureCategory("Vegetables", 0)
	require.NoError(t, err)
	herbs, err := a.EnsureCategory("Herbs", 0)
	require.NoError(t, err)

	linkSeed(t, a, 1, vegetables.JunctionID)
	linkSeed(t, a, 1, herbs.JunctionID)
	linkSeed(t, a, 2, herbs.JunctionID)

	byID, err := a.CategoriesForSeeds([]uint{1, 2, 3})
	require.NoError(t, err)

	require.Len(t, byID[1], 2)
	assert.Equal(t, "Herbs", byID[1][0].Name)
	assert.Equal(t, "Vegetables", byID[1][1].Name)
	require.Len(t, byID[2], 1)
	_, hasEmpty := byID[3]
	assert.False(t, hasEmpty, "seeds without categories are absent from the map")
}

func TestCategoriesForSeed_Single(t *testing.T) {
	a := setupAdapter(t)
	vegetables, err := a.EnsureCategory("Vegetables", 0)
	require.NoError(t, err)
	linkSeed(t, a, 7, vegetables.JunctionID)

	categories, err := a.CategoriesForSeed(7)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, vegetables.TermID, categories[0].TermID)
	assert.Equal(t, vegetables.JunctionID, categories[0].JunctionID)
}

func TestHierarchicalOptions_DepthAndOrder(t *testing.T) {
	a := setupAdapter(t)
	vegetables, err := a.EnsureCategory("Vegetables", 0)
	require.NoError(t, err)
	_, err = a.EnsureCategory("Tomatoes", vegetables.TermID)
	require.NoError(t, err)
	_, err = a.EnsureCategory("Beans", vegetables.TermID)
	require.NoError(t, err)
	_, err = a.EnsureCategory("Flowers", 0)
	require.NoError(t, err)

	options, err := a.HierarchicalOptions([]int64{vegetables.TermID})
	require.NoError(t, err)
	require.Len(t, options, 4)

	// Top level alphabetical, children indented under their parent and
	// alphabetical within it.
	assert.Equal(t, "Flowers", options[0].Category.Name)
	assert.Equal(t, 0, options[0].Depth)
	assert.Equal(t, "Vegetables", options[1].Category.Name)
	assert.True(t, options[1].Selected)
	assert.Equal(t, "Beans", options[2].Category.Name)
	assert.Equal(t, 1, options[2].Depth)
	assert.Equal(t, "Tomatoes", options[3].Category.Name)
	assert.Equal(t, 1, options[3].Depth)
}

func TestHierarchicalOptions_OrphanPromotedToTopLevel(t *testing.T) {
	a := setupAdapter(t)
	_, err := a.EnsureCategory("Orphan", 12345)
	require.NoError(t, err)

	options, err := a.HierarchicalOptions(nil)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Orphan", options[0].Category.Name)
	assert.Equal(t, 0, options[0].Depth)
}

func TestEnsureCategory_Idempotent(t *testing.T) {
	a := setupAdapter(t)

	first, err := a.EnsureCategory("Vegetables", 0)
	require.NoError(t, err)
	second, err := a.EnsureCategory("Vegetables", 0)
	require.NoError(t, err)

	assert.Equal(t, first.TermID, second.TermID)
	assert.Equal(t, first.JunctionID, second.JunctionID)
}
