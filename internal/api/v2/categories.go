// internal/api/v2/categories.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gardenbase/seedvault/internal/errors"
)

// initCategoryRoutes registers category taxonomy endpoints.
func (c *Controller) initCategoryRoutes() {
	c.Group.GET("/categories", c.GetCategories)
	c.Group.GET("/categories/options", c.GetCategoryOptions)
	c.Group.POST("/categories", c.CreateCategory)
}

// GetCategories returns the flat category list ordered by name.
func (c *Controller) GetCategories(ctx echo.Context) error {
	categories, err := c.DS.Taxonomy().ListCategories()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list categories", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, categories)
}

// GetCategoryOptions returns the hierarchical selector options. The
// selected query parameter takes a comma-separated term id list and marks
// those options selected.
func (c *Controller) GetCategoryOptions(ctx echo.Context) error {
	selected, err := parseTermIDList(ctx.QueryParam("selected"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid selected parameter", http.StatusBadRequest)
	}

	options, err := c.DS.Taxonomy().HierarchicalOptions(selected)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to build category options", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, options)
}

// CreateCategoryRequest names a category and optionally places it under a
// parent term.
type CreateCategoryRequest struct {
	Name   string `json:"name"`
	Parent int64  `json:"parent"`
}

// CreateCategory creates a category term, or returns the existing one
// when the name is already taken.
func (c *Controller) CreateCategory(ctx echo.Context) error {
	var req CreateCategoryRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	if strings.TrimSpace(req.Name) == "" {
		err := errors.Newf("category name must not be empty").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
		return c.HandleError(ctx, err, "Category name is required", http.StatusBadRequest)
	}

	category, err := c.DS.Taxonomy().EnsureCategory(req.Name, req.Parent)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to create category", statusForError(err))
	}
	return ctx.JSON(http.StatusCreated, category)
}

// parseTermIDList parses a comma-separated term id list. Empty input
// yields an empty list.
func parseTermIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Newf("term id %q is not numeric", part).
				Component("api").
				Category(errors.CategoryValidation).
				Build()
		}
		ids = append(ids, id)
	}
	return ids, nil
}
