// internal/api/v2/models.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// initModelRoutes registers model registry and usage telemetry endpoints.
func (c *Controller) initModelRoutes() {
	c.Group.GET("/models", c.GetModels)
	c.Group.POST("/models/refresh", c.RefreshModels)
	c.Group.POST("/models/:id/test", c.TestModel)
	c.Group.GET("/models/usage", c.GetModelUsage)
	c.Group.DELETE("/models/usage", c.ResetModelUsage)
}

// GetModels returns the cached model list, refreshing it when the cache
// is stale. Newly discovered model ids ride along for UI notification.
func (c *Controller) GetModels(ctx echo.Context) error {
	list := c.Registry.ListModels(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, map[string]any{
		"models":       list.Models,
		"updateStatus": list.UpdateStatus,
		"updateError":  list.UpdateError,
		"updatedAt":    list.UpdatedAt,
		"newModels":    c.Registry.NewlyDiscovered(),
	})
}

// RefreshModels discards the cached model list and fetches a fresh one.
func (c *Controller) RefreshModels(ctx echo.Context) error {
	list := c.Registry.RefreshModels(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, map[string]any{
		"models":       list.Models,
		"updateStatus": list.UpdateStatus,
		"updateError":  list.UpdateError,
		"updatedAt":    list.UpdatedAt,
		"newModels":    c.Registry.NewlyDiscovered(),
	})
}

// TestModel runs one connectivity probe against the named model and
// returns the measured latency and token counts.
func (c *Controller) TestModel(ctx echo.Context) error {
	modelID := ctx.Param("id")

	result, err := c.Gemini.TestModel(ctx.Request().Context(), modelID)
	if err != nil {
		return c.HandleError(ctx, err, aiErrorMessage(err), statusForError(err))
	}
	return ctx.JSON(http.StatusOK, result)
}

// GetModelUsage returns accumulated per-model telemetry.
func (c *Controller) GetModelUsage(ctx echo.Context) error {
	usage, err := c.DS.GetModelUsage()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load model usage", statusForError(err))
	}
	return ctx.JSON(http.StatusOK, usage)
}

// ResetModelUsage clears all usage counters.
func (c *Controller) ResetModelUsage(ctx echo.Context) error {
	if err := c.DS.ResetModelUsage(); err != nil {
		return c.HandleError(ctx, err, "Failed to reset model usage", statusForError(err))
	}
	return ctx.NoContent(http.StatusNoContent)
}
