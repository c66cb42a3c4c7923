package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	controller, ds := setupTestController(t)
	veg := mustCategory(t, ds, "Vegetables", 0)

	rec := doJSON(t, controller, http.MethodPost, "/api/v2/seeds",
		fmt.Sprintf(`{"name": "Tomato", "brand": "Heritage", "categories": [%d]}`, veg.TermID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, controller, http.MethodGet, "/api/v2/export/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	body := rec.Body.Bytes()
	require.True(t, len(body) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, body[:3], "export should start with a UTF-8 BOM")

	text := string(body[3:])
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "name,"), "header should lead with the name column")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[0]), "categories"))
	assert.Contains(t, lines[1], "Tomato")
	assert.Contains(t, lines[1], "Heritage")
	assert.Contains(t, lines[1], "Vegetables")
}

func TestExportCSVAppliesSearchFilter(t *testing.T) {
	controller, _ := setupTestController(t)

	for _, body := range []string{`{"name": "Tomato"}`, `{"name": "Basil"}`} {
		rec := doJSON(t, controller, http.MethodPost, "/api/v2/seeds", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, controller, http.MethodGet, "/api/v2/export/csv?search=tomato", "")
	require.Equal(t, http.StatusOK, rec.Code)

	text := rec.Body.String()
	assert.Contains(t, text, "Tomato")
	assert.NotContains(t, text, "Basil")
}
