// internal/api/v2/settings.go
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/datastore"
	"github.com/gardenbase/seedvault/internal/export"
	"github.com/gardenbase/seedvault/internal/gemini"
)

// initSettingsRoutes registers the runtime-configurable provider and
// export settings.
func (c *Controller) initSettingsRoutes() {
	c.Group.GET("/settings/gemini", c.GetGeminiSettings)
	c.Group.PUT("/settings/gemini", c.UpdateGeminiSettings)
	c.Group.GET("/settings/export", c.GetExportSettings)
	c.Group.PUT("/settings/export", c.UpdateExportSettings)
}

// GeminiSettingsResponse describes the stored provider settings. The API
// key itself never leaves the server; only its presence and a short tail
// for recognition are reported.
type GeminiSettingsResponse struct {
	APIKeySet     bool   `json:"apiKeySet"`
	APIKeyTail    string `json:"apiKeyTail,omitempty"`
	SelectedModel string `json:"selectedModel"`
}

// GeminiSettingsRequest updates the stored provider settings. Nil fields
// are left unchanged; an explicit empty API key clears it.
type GeminiSettingsRequest struct {
	APIKey        *string `json:"apiKey"`
	SelectedModel *string `json:"selectedModel"`
}

// GetGeminiSettings reports the provider configuration.
func (c *Controller) GetGeminiSettings(ctx echo.Context) error {
	key, err := c.DS.GetOption(datastore.OptionAPIKey)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load settings", statusForError(err))
	}

	resp := GeminiSettingsResponse{
		APIKeySet:     key != "",
		SelectedModel: c.Gemini.SelectedModel(),
	}
	if len(key) > 4 {
		resp.APIKeyTail = key[len(key)-4:]
	}

	return ctx.JSON(http.StatusOK, resp)
}

// UpdateGeminiSettings stores the API key and selected model.
func (c *Controller) UpdateGeminiSettings(ctx echo.Context) error {
	var req GeminiSettingsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	if req.APIKey != nil {
		if err := c.DS.SetOption(datastore.OptionAPIKey, strings.TrimSpace(*req.APIKey)); err != nil {
			return c.HandleError(ctx, err, "Failed to store API key", statusForError(err))
		}
	}

	if req.SelectedModel != nil {
		model := strings.TrimSpace(*req.SelectedModel)
		if model == "" {
			model = gemini.DefaultModelID
		}
		if err := c.DS.SetOption(datastore.OptionSelectedModel, model); err != nil {
			return c.HandleError(ctx, err, "Failed to store selected model", statusForError(err))
		}
	}

	return c.GetGeminiSettings(ctx)
}

// ExportSettingsResponse reports the configured export field list and the
// effective CSV columns it resolves to.
type ExportSettingsResponse struct {
	Fields  []string `json:"fields"`
	Columns []string `json:"columns"`
}

// ExportSettingsRequest replaces the configured export field list. An
// empty list restores the default of every schema field.
type ExportSettingsRequest struct {
	Fields []string `json:"fields"`
}

// GetExportSettings reports the CSV export configuration.
func (c *Controller) GetExportSettings(ctx echo.Context) error {
	fields := c.Settings.Export.Fields
	if fields == nil {
		fields = []string{}
	}
	return ctx.JSON(http.StatusOK, ExportSettingsResponse{
		Fields:  fields,
		Columns: export.Columns(c.Settings),
	})
}

// UpdateExportSettings replaces the export field list and persists the
// configuration file.
func (c *Controller) UpdateExportSettings(ctx echo.Context) error {
	var req ExportSettingsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	fields := make([]string, 0, len(req.Fields))
	for _, field := range req.Fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if _, ok := datastore.FieldSpecFor(field); !ok {
			return c.HandleError(ctx, fmt.Errorf("unknown export field %q", field),
				"Unknown export field", http.StatusBadRequest)
		}
		fields = append(fields, field)
	}
	c.Settings.Export.Fields = fields

	if !c.DisableSaveSettings {
		if err := conf.SaveSettings(); err != nil {
			return c.HandleError(ctx, err, "Failed to save settings", http.StatusInternalServerError)
		}
	}

	return c.GetExportSettings(ctx)
}
