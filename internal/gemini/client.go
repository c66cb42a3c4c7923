// Package gemini integrates with the Google generative language REST API:
// seed info fetching, model listing and connectivity testing. All output
// from this package is provisional; the datastore re-sanitizes anything
// that gets persisted.
package gemini

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/datastore"
	"github.com/gardenbase/seedvault/internal/logging"
	"github.com/gardenbase/seedvault/internal/observability"
)

// DefaultModelID is the model selected when the option is unset.
const DefaultModelID = "gemini-2.5-flash-lite"

// OptionStore supplies the runtime-configurable provider settings.
type OptionStore interface {
	GetOption(name string) (string, error)
}

// UsageRecorder accumulates per-model telemetry after each call.
type UsageRecorder interface {
	RecordModelUsage(modelID string, inputTokens, outputTokens int64, latency time.Duration) error
}

// Client calls the generative language API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	store      OptionStore
	usage      UsageRecorder
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Client from settings. metrics may be nil.
func NewClient(settings *conf.Settings, store OptionStore, usage UsageRecorder, metrics *observability.Metrics) *Client {
	timeout := time.Duration(settings.Gemini.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:   settings.Gemini.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		usage:      usage,
		metrics:    metrics,
		logger:     getLogger(),
	}
}

// apiKey returns the configured API key, empty when unset.
func (c *Client) apiKey() (string, error) {
	return c.store.GetOption(datastore.OptionAPIKey)
}

// SelectedModel returns the configured model id, falling back to the
// default.
func (c *Client) SelectedModel() string {
	model, err := c.store.GetOption(datastore.OptionSelectedModel)
	if err != nil || model == "" {
		return DefaultModelID
	}
	return model
}

// Package-level logging, lazily initialized.
var (
	geminiLogger   *slog.Logger
	geminiLevelVar = new(slog.LevelVar)
	loggerOnce     sync.Once
)

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		geminiLevelVar.Set(slog.LevelInfo)
		logger, _, err := logging.NewFileLogger("logs/gemini.log", "gemini", geminiLevelVar)
		if err != nil {
			logger = logging.ForService("gemini")
		}
		geminiLogger = logger
	})
	return geminiLogger
}
