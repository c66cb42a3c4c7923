// internal/api/v2/aiinfo.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gardenbase/seedvault/internal/errors"
	"github.com/gardenbase/seedvault/internal/gemini"
)

// initAIRoutes registers the AI lookup endpoint.
func (c *Controller) initAIRoutes() {
	c.Group.POST("/seeds/ai-fetch", c.FetchSeedInfo)
}

// FetchSeedInfo asks the configured model for growing information about
// the named seed. The result is a field map the client can merge into an
// edit form; nothing is persisted here.
func (c *Controller) FetchSeedInfo(ctx echo.Context) error {
	var req gemini.FetchRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	fields, err := c.Gemini.FetchSeedInfo(ctx.Request().Context(), req)
	if err != nil {
		return c.HandleError(ctx, err, aiErrorMessage(err), statusForError(err))
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"fields": fields,
		"model":  c.Gemini.SelectedModel(),
	})
}

// aiErrorMessage picks a user-facing message for an AI lookup failure.
func aiErrorMessage(err error) string {
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return "Gemini API key is not configured"
	}
	if errors.Is(err, gemini.ErrEmptyResponse) {
		return "The model returned no usable answer"
	}

	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case gemini.APIErrorInvalidKey:
			return "Gemini rejected the configured API key"
		case gemini.APIErrorSafety:
			return "The request was blocked by the provider's safety filters"
		}
		return "Gemini request failed"
	}

	if errors.HasCategory(err, errors.CategoryJSONParse) {
		return "The model answer could not be parsed"
	}
	return "AI lookup failed"
}
