// internal/api/v2/export.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gardenbase/seedvault/internal/export"
)

// initExportRoutes registers the CSV export endpoint.
func (c *Controller) initExportRoutes() {
	c.Group.GET("/export/csv", c.ExportCSV)
}

// ExportCSV streams the catalog as a CSV attachment. The same search and
// category filters as the list endpoint apply; paging parameters are
// ignored so the export is always complete.
func (c *Controller) ExportCSV(ctx echo.Context) error {
	filters, err := parseSeedFilters(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid query parameters", http.StatusBadRequest)
	}
	filters.Limit = 0
	filters.Offset = 0

	filename := fmt.Sprintf("seedvault-export-%s.csv", time.Now().Format("20060102-150405"))
	ctx.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Response().WriteHeader(http.StatusOK)

	if err := export.WriteCSV(ctx.Response(), c.DS, c.Settings, filters); err != nil {
		// Headers are already sent; log instead of replying twice.
		c.logger.Printf("CSV export failed mid-stream: %v", err)
		return err
	}
	return nil
}
