package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenbase/seedvault/internal/taxonomy"
)

func TestCreateAndListCategories(t *testing.T) {
	controller, _ := setupTestController(t)

	rec := doJSON(t, controller, http.MethodPost, "/api/v2/categories", `{"name": "Vegetables"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var veg taxonomy.Category
	decodeBody(t, rec, &veg)
	assert.NotZero(t, veg.TermID)

	rec = doJSON(t, controller, http.MethodPost, "/api/v2/categories",
		fmt.Sprintf(`{"name": "Tomatoes", "parent": %d}`, veg.TermID))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Creating the same name again returns the existing term.
	rec = doJSON(t, controller, http.MethodPost, "/api/v2/categories", `{"name": "Vegetables"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var again taxonomy.Category
	decodeBody(t, rec, &again)
	assert.Equal(t, veg.TermID, again.TermID)

	rec = doJSON(t, controller, http.MethodGet, "/api/v2/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var flat []taxonomy.Category
	decodeBody(t, rec, &flat)
	assert.Len(t, flat, 2)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	controller, _ := setupTestController(t)

	rec := doJSON(t, controller, http.MethodPost, "/api/v2/categories", `{"name": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCategoryOptionsHierarchy(t *testing.T) {
	controller, ds := setupTestController(t)
	veg := mustCategory(t, ds, "Vegetables", 0)
	tomatoes := mustCategory(t, ds, "Tomatoes", veg.TermID)
	mustCategory(t, ds, "Herbs", 0)

	rec := doJSON(t, controller, http.MethodGet,
		fmt.Sprintf("/api/v2/categories/options?selected=%d", tomatoes.TermID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var options []taxonomy.Option
	decodeBody(t, rec, &options)
	require.Len(t, options, 3)

	// Depth-first order: Herbs, Vegetables, then nested Tomatoes.
	assert.Equal(t, "Herbs", options[0].Category.Name)
	assert.Equal(t, 0, options[0].Depth)
	assert.Equal(t, "Vegetables", options[1].Category.Name)
	assert.Equal(t, "Tomatoes", options[2].Category.Name)
	assert.Equal(t, 1, options[2].Depth)
	assert.True(t, options[2].Selected)
	assert.False(t, options[1].Selected)
}

func TestGetCategoryOptionsRejectsBadSelected(t *testing.T) {
	controller, _ := setupTestController(t)

	rec := doJSON(t, controller, http.MethodGet, "/api/v2/categories/options?selected=a,b", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
