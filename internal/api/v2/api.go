// internal/api/v2/api.go
package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/datastore"
	"github.com/gardenbase/seedvault/internal/errors"
	"github.com/gardenbase/seedvault/internal/gemini"
	"github.com/gardenbase/seedvault/internal/logging"
	"github.com/gardenbase/seedvault/internal/observability"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	Gemini   *gemini.Client
	Registry *gemini.Registry

	// DisableSaveSettings prevents persisting settings changes to disk.
	DisableSaveSettings bool

	logger         *log.Logger
	apiLogger      *slog.Logger
	apiLevelVar    *slog.LevelVar
	apiLoggerClose func() error
	metrics        *observability.Metrics
	startTime      time.Time
}

// New creates the API controller and registers all routes under /api/v2.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	geminiClient *gemini.Client, registry *gemini.Registry,
	logger *log.Logger, metrics *observability.Metrics) *Controller {

	if logger == nil {
		logger = log.Default()
	}
	if settings == nil {
		settings = conf.Setting()
	}

	c := &Controller{
		Echo:      e,
		DS:        ds,
		Settings:  settings,
		Gemini:    geminiClient,
		Registry:  registry,
		logger:    logger,
		metrics:   metrics,
		startTime: time.Now(),
	}

	c.apiLevelVar = new(slog.LevelVar)
	c.apiLevelVar.Set(slog.LevelInfo)
	if settings.Debug {
		c.apiLevelVar.Set(slog.LevelDebug)
	}

	apiLogger, closeFunc, err := logging.NewFileLogger("logs/web.log", "api", c.apiLevelVar)
	if err != nil {
		logger.Printf("Warning: failed to initialize API structured logger: %v", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: c.apiLevelVar})
		c.apiLogger = slog.New(fbHandler).With("service", "api")
		c.apiLoggerClose = func() error { return nil }
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFunc
	}

	c.Group = e.Group("/api/v2")
	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.CORS())
	c.Group.Use(middleware.BodyLimit("1M"))
	c.Group.Use(c.LoggingMiddleware())

	c.initRoutes()

	return c
}

// LoggingMiddleware logs every API request through the structured logger.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)

			if c.apiLogger == nil {
				return err
			}

			req := ctx.Request()
			res := ctx.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("query", req.URL.RawQuery),
				slog.Int("status", res.Status),
				slog.String("ip", ctx.RealIP()),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}

			c.apiLogger.LogAttrs(req.Context(), slog.LevelInfo, "API Request", attrs...)

			return err
		}
	}
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"seed routes", c.initSeedRoutes},
		{"category routes", c.initCategoryRoutes},
		{"ai routes", c.initAIRoutes},
		{"model routes", c.initModelRoutes},
		{"settings routes", c.initSettingsRoutes},
		{"export routes", c.initExportRoutes},
	}

	for _, initializer := range routeInitializers {
		c.Debug("Initializing %s...", initializer.name)
		initializer.fn()
	}

	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// HealthCheck reports service and database status.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":    "healthy",
		"version":   c.Settings.Version,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	dbStatus := "connected"
	if _, err := c.DS.CountSeeds(&datastore.SeedFilters{}); err != nil {
		dbStatus = "disconnected"
		response["database_error"] = err.Error()
	}
	response["database_status"] = dbStatus

	uptime := time.Since(c.startTime)
	response["uptime"] = uptime.String()
	response["uptime_seconds"] = uptime.Seconds()

	return ctx.JSON(http.StatusOK, response)
}

// Shutdown releases controller resources.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("Error closing API log file: %v", err)
		}
	}
	c.Debug("API Controller shutting down")
}

// ErrorResponse is the JSON error body returned by every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new API error response.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a short unique identifier for error
// tracking.
func generateCorrelationID() string {
	return uuid.NewString()[:8]
}

// HandleError constructs and returns an appropriate error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	c.logger.Printf("API Error [%s] from %s: %s: %v",
		errorResp.CorrelationID, ctx.RealIP(), message, err)

	if c.apiLogger != nil {
		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorResp.Error,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ctx.RealIP(),
		)
	}

	return ctx.JSON(code, errorResp)
}

// statusForError maps an error to an HTTP status using its category.
func statusForError(err error) int {
	switch {
	case errors.HasCategory(err, errors.CategoryValidation):
		return http.StatusBadRequest
	case errors.HasCategory(err, errors.CategoryNotFound):
		return http.StatusNotFound
	case errors.HasCategory(err, errors.CategoryDuplicate):
		return http.StatusConflict
	case errors.HasCategory(err, errors.CategoryConfiguration):
		return http.StatusPreconditionFailed
	case errors.HasCategory(err, errors.CategoryAPIResponse),
		errors.HasCategory(err, errors.CategoryHTTP),
		errors.HasCategory(err, errors.CategoryJSONParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Debug logs debug messages when debug mode is enabled.
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings.Debug {
		msg := fmt.Sprintf(format, v...)
		c.logger.Printf("[DEBUG] %s", msg)
		if c.apiLogger != nil {
			c.apiLogger.Debug(msg)
		}
	}
}
