// internal/api/v2/seeds.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gardenbase/seedvault/internal/datastore"
	"github.com/gardenbase/seedvault/internal/errors"
)

const (
	defaultSeedLimit = 100
	maxSeedLimit     = 1000
)

// initSeedRoutes registers seed CRUD and search endpoints.
func (c *Controller) initSeedRoutes() {
	c.Group.GET("/seeds", c.GetSeeds)
	c.Group.POST("/seeds", c.CreateSeed)
	c.Group.GET("/seeds/:id", c.GetSeed)
	c.Group.PUT("/seeds/:id", c.UpdateSeed)
	c.Group.PATCH("/seeds/:id", c.UpdateSeed)
	c.Group.DELETE("/seeds/:id", c.DeleteSeed)
}

// SeedListResponse pages seed search results.
type SeedListResponse struct {
	Data   []datastore.Seed `json:"data"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// GetSeeds lists seeds with optional free-text search, category filter
// and paging.
func (c *Controller) GetSeeds(ctx echo.Context) error {
	filters, err := parseSeedFilters(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid query parameters", http.StatusBadRequest)
	}

	seeds, err := c.DS.SearchSeeds(filters)
	if err != nil {
		c.countSeedOp("list", "error")
		return c.HandleError(ctx, err, "Failed to list seeds", statusForError(err))
	}

	total, err := c.DS.CountSeeds(filters)
	if err != nil {
		c.countSeedOp("list", "error")
		return c.HandleError(ctx, err, "Failed to count seeds", statusForError(err))
	}

	c.countSeedOp("list", "success")
	return ctx.JSON(http.StatusOK, SeedListResponse{
		Data:   seeds,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// GetSeed returns one seed by id with its categories resolved.
func (c *Controller) GetSeed(ctx echo.Context) error {
	id, err := parseSeedID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid seed ID", http.StatusBadRequest)
	}

	seed, err := c.DS.GetSeed(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get seed", statusForError(err))
	}
	if seed == nil {
		return c.HandleError(ctx, datastore.ErrSeedNotFound, "Seed not found", http.StatusNotFound)
	}

	return ctx.JSON(http.StatusOK, seed)
}

// CreateSeed creates a seed from a flat field object. A "categories" key
// holds category term ids; every other key is a seed field. Unknown keys
// are dropped by the sanitizer.
func (c *Controller) CreateSeed(ctx echo.Context) error {
	fields, termIDs, err := bindSeedBody(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	junctionIDs, err := c.resolveCategories(termIDs)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to resolve categories", statusForError(err))
	}

	id, err := c.DS.SaveSeed(fields, junctionIDs)
	if err != nil {
		c.countSeedOp("create", "error")
		if errors.Is(err, datastore.ErrNameRequired) {
			return c.HandleError(ctx, err, "Seed name is required", http.StatusBadRequest)
		}
		return c.HandleError(ctx, err, "Failed to create seed", statusForError(err))
	}

	c.countSeedOp("create", "success")

	seed, err := c.DS.GetSeed(id)
	if err != nil || seed == nil {
		// Creation succeeded, report the id even if the readback failed.
		return ctx.JSON(http.StatusCreated, map[string]any{"id": id})
	}
	return ctx.JSON(http.StatusCreated, seed)
}

// UpdateSeed applies a partial update. Only the supplied fields change;
// when a "categories" key is present the link set is replaced wholesale.
func (c *Controller) UpdateSeed(ctx echo.Context) error {
	id, err := parseSeedID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid seed ID", http.StatusBadRequest)
	}

	fields, termIDs, err := bindSeedBody(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	// The repository replaces the link set on every update, so a request
	// without a categories key must carry the current links forward.
	var junctionIDs []int64
	if termIDs == nil {
		junctionIDs, err = c.currentJunctionIDs(id)
	} else {
		junctionIDs, err = c.resolveCategories(termIDs)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Failed to resolve categories", statusForError(err))
	}

	if err := c.DS.UpdateSeed(id, fields, junctionIDs); err != nil {
		c.countSeedOp("update", "error")
		switch {
		case errors.Is(err, datastore.ErrSeedNotFound):
			return c.HandleError(ctx, err, "Seed not found", http.StatusNotFound)
		case errors.Is(err, datastore.ErrNameRequired):
			return c.HandleError(ctx, err, "Seed name cannot be empty", http.StatusBadRequest)
		default:
			return c.HandleError(ctx, err, "Failed to update seed", statusForError(err))
		}
	}

	c.countSeedOp("update", "success")

	seed, err := c.DS.GetSeed(id)
	if err != nil || seed == nil {
		return ctx.JSON(http.StatusOK, map[string]any{"id": id})
	}
	return ctx.JSON(http.StatusOK, seed)
}

// DeleteSeed removes a seed and its category links.
func (c *Controller) DeleteSeed(ctx echo.Context) error {
	id, err := parseSeedID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid seed ID", http.StatusBadRequest)
	}

	deleted, err := c.DS.DeleteSeed(id)
	if err != nil {
		c.countSeedOp("delete", "error")
		return c.HandleError(ctx, err, "Failed to delete seed", statusForError(err))
	}
	if !deleted {
		return c.HandleError(ctx, datastore.ErrSeedNotFound, "Seed not found", http.StatusNotFound)
	}

	c.countSeedOp("delete", "success")
	return ctx.NoContent(http.StatusNoContent)
}

// parseSeedID reads the :id path parameter.
func parseSeedID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.Newf("seed id must be a positive integer").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	return uint(id), nil
}

// parseSeedFilters builds SeedFilters from the query string.
func parseSeedFilters(ctx echo.Context) (*datastore.SeedFilters, error) {
	filters := &datastore.SeedFilters{
		Query:   strings.TrimSpace(ctx.QueryParam("search")),
		Limit:   defaultSeedLimit,
		OrderBy: ctx.QueryParam("orderBy"),
	}

	if raw := ctx.QueryParam("category"); raw != "" {
		termID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || termID < 0 {
			return nil, errors.Newf("category must be a non-negative integer").
				Component("api").
				Category(errors.CategoryValidation).
				Build()
		}
		filters.CategoryTermID = termID
	}

	if raw := ctx.QueryParam("numResults"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, errors.Newf("numResults must be a positive integer").
				Component("api").
				Category(errors.CategoryValidation).
				Build()
		}
		if limit > maxSeedLimit {
			limit = maxSeedLimit
		}
		filters.Limit = limit
	}

	if raw := ctx.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, errors.Newf("offset must be a non-negative integer").
				Component("api").
				Category(errors.CategoryValidation).
				Build()
		}
		filters.Offset = offset
	}

	filters.Descending = strings.EqualFold(ctx.QueryParam("order"), "desc")

	return filters, nil
}

// bindSeedBody decodes a flat seed object, splitting out the category
// term id list from the field values.
func bindSeedBody(ctx echo.Context) (fields map[string]any, termIDs []int64, err error) {
	var body map[string]any
	if err := ctx.Bind(&body); err != nil {
		return nil, nil, errors.New(err).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}

	rawCategories, hasCategories := body["categories"]
	delete(body, "categories")

	if hasCategories {
		termIDs, err = coerceTermIDs(rawCategories)
		if err != nil {
			return nil, nil, err
		}
		if termIDs == nil {
			termIDs = []int64{}
		}
	}

	return body, termIDs, nil
}

// coerceTermIDs accepts a JSON array of numeric or string term ids.
func coerceTermIDs(raw any) ([]int64, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Newf("categories must be an array of term ids").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}

	ids := make([]int64, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case float64:
			ids = append(ids, int64(v))
		case string:
			id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, errors.Newf("category id %q is not numeric", v).
					Component("api").
					Category(errors.CategoryValidation).
					Build()
			}
			ids = append(ids, id)
		default:
			return nil, errors.Newf("categories must contain only term ids").
				Component("api").
				Category(errors.CategoryValidation).
				Build()
		}
	}
	return ids, nil
}

// resolveCategories maps term ids to junction ids. A nil term id list
// means the caller did not supply categories at all.
func (c *Controller) resolveCategories(termIDs []int64) ([]int64, error) {
	if termIDs == nil {
		return []int64{}, nil
	}
	return c.DS.Taxonomy().ResolveJunctionIDs(termIDs)
}

// currentJunctionIDs returns the junction ids a seed is linked to now.
func (c *Controller) currentJunctionIDs(id uint) ([]int64, error) {
	categories, err := c.DS.Taxonomy().CategoriesForSeed(id)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(categories))
	for _, category := range categories {
		ids = append(ids, category.JunctionID)
	}
	return ids, nil
}

func (c *Controller) countSeedOp(operation, status string) {
	if c.metrics != nil {
		c.metrics.CountSeedOp(operation, status)
	}
}
