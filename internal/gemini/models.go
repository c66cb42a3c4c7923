// models.go maintains the catalog of selectable models: a curated static
// list merged with the provider's live listing, cached with a weekly TTL.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ModelType is the curated classification of a model.
type ModelType string

const (
	ModelTypeFree         ModelType = "free"
	ModelTypeExperimental ModelType = "experimental"
	ModelTypeLegacy       ModelType = "legacy"
	ModelTypeAdvanced     ModelType = "advanced"
)

// Update statuses recorded alongside the cached model list.
const (
	UpdateStatusSuccess  = "success"
	UpdateStatusError    = "error"
	UpdateStatusNoAPIKey = "no_api_key"
)

// ModelDescriptor describes one selectable model.
type ModelDescriptor struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Type        ModelType `json:"type"`
	Recommended bool      `json:"recommended"`
	Available   bool      `json:"available"`
	Discovered  bool      `json:"discovered"` // not in the curated list

	// Capability data reported by the API, zero when not yet fetched.
	Description      string   `json:"description,omitempty"`
	Version          string   `json:"version,omitempty"`
	InputTokenLimit  int64    `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit int64    `json:"outputTokenLimit,omitempty"`
	SupportedMethods []string `json:"supportedMethods,omitempty"`
	Temperature      float64  `json:"temperature,omitempty"`
	MaxTemperature   float64  `json:"maxTemperature,omitempty"`
}

// ModelList is the cached registry state.
type ModelList struct {
	Models       map[string]ModelDescriptor `json:"models"`
	UpdateStatus string                     `json:"updateStatus"`
	UpdateError  string                     `json:"updateError,omitempty"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
}

// defaultModels is the curated built-in catalog. Curated metadata wins
// over live data for known ids.
func defaultModels() map[string]ModelDescriptor {
	return map[string]ModelDescriptor{
		"gemini-2.5-flash-lite": {
			ID:          "gemini-2.5-flash-lite",
			DisplayName: "Gemini 2.5 Flash-Lite",
			Type:        ModelTypeFree,
			Recommended: true,
		},
		"gemini-2.5-flash": {
			ID:          "gemini-2.5-flash",
			DisplayName: "Gemini 2.5 Flash",
			Type:        ModelTypeFree,
		},
		"gemini-2.5-pro": {
			ID:          "gemini-2.5-pro",
			DisplayName: "Gemini 2.5 Pro",
			Type:        ModelTypeAdvanced,
		},
		"gemini-2.0-flash": {
			ID:          "gemini-2.0-flash",
			DisplayName: "Gemini 2.0 Flash",
			Type:        ModelTypeLegacy,
		},
		"gemini-2.0-flash-lite": {
			ID:          "gemini-2.0-flash-lite",
			DisplayName: "Gemini 2.0 Flash-Lite",
			Type:        ModelTypeLegacy,
		},
		"gemini-1.5-flash": {
			ID:          "gemini-1.5-flash",
			DisplayName: "Gemini 1.5 Flash",
			Type:        ModelTypeLegacy,
		},
		"gemini-1.5-pro": {
			ID:          "gemini-1.5-pro",
			DisplayName: "Gemini 1.5 Pro",
			Type:        ModelTypeLegacy,
		},
	}
}

const (
	modelCacheKey     = "model-list"
	newModelsCacheKey = "new-models"
	modelCacheTTL     = 7 * 24 * time.Hour
)

// Registry serves the model list from cache, refreshing from the live API
// when the cache is empty or expired.
type Registry struct {
	client *Client
	cache  *cache.Cache
}

// NewRegistry creates a registry around the shared client.
func NewRegistry(client *Client) *Registry {
	return &Registry{
		client: client,
		cache:  cache.New(modelCacheTTL, time.Hour),
	}
}

// ListModels returns the cached model list when fresh, otherwise performs
// a live refresh and caches the outcome. The recorded update status
// (success, error or no_api_key) is part of the cached state, so repeated
// calls within the TTL are stable.
func (r *Registry) ListModels(ctx context.Context) ModelList {
	if cached, found := r.cache.Get(modelCacheKey); found {
		return cached.(ModelList)
	}

	list := r.refresh(ctx)
	r.cache.SetDefault(modelCacheKey, list)
	return list
}

// RefreshModels clears the cache and refreshes immediately.
func (r *Registry) RefreshModels(ctx context.Context) ModelList {
	r.cache.Delete(modelCacheKey)
	return r.ListModels(ctx)
}

// ScheduledRefresh is the cron entry point for the weekly background
// refresh. It blocks the scheduler goroutine for the duration of the
// listing call.
func (r *Registry) ScheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	list := r.RefreshModels(ctx)
	getLogger().Info("scheduled model list refresh finished",
		"status", list.UpdateStatus,
		"models", len(list.Models),
		"error", list.UpdateError)
}

// NewlyDiscovered returns the ids of models found by the latest refresh
// that were absent from the curated list. The notification expires with
// its own 7-day TTL.
func (r *Registry) NewlyDiscovered() []string {
	if ids, found := r.cache.Get(newModelsCacheKey); found {
		return ids.([]string)
	}
	return nil
}

// refresh builds a ModelList from the defaults and, when possible, the
// live API listing.
func (r *Registry) refresh(ctx context.Context) ModelList {
	now := time.Now()

	key, err := r.client.apiKey()
	if err == nil && key == "" {
		return ModelList{
			Models:       defaultModels(),
			UpdateStatus: UpdateStatusNoAPIKey,
			UpdatedAt:    now,
		}
	}
	if err != nil {
		return ModelList{
			Models:       defaultModels(),
			UpdateStatus: UpdateStatusError,
			UpdateError:  err.Error(),
			UpdatedAt:    now,
		}
	}

	live, err := r.client.listLiveModels(ctx, key)
	if err != nil {
		getLogger().Warn("live model listing failed", "error", err)
		return ModelList{
			Models:       defaultModels(),
			UpdateStatus: UpdateStatusError,
			UpdateError:  err.Error(),
			UpdatedAt:    now,
		}
	}

	merged, discovered := mergeModels(defaultModels(), live)
	if len(discovered) > 0 {
		sort.Strings(discovered)
		r.cache.SetDefault(newModelsCacheKey, discovered)
		getLogger().Info("new models discovered", "ids", discovered)
	}

	return ModelList{
		Models:       merged,
		UpdateStatus: UpdateStatusSuccess,
		UpdatedAt:    now,
	}
}

// mergeModels folds the live listing into the curated defaults: known ids
// keep their curated metadata and gain capability data, unknown ids are
// added as discovered experimental models, and curated ids missing from
// the live list are marked unavailable.
func mergeModels(curated map[string]ModelDescriptor, live []apiModel) (map[string]ModelDescriptor, []string) {
	merged := make(map[string]ModelDescriptor, len(curated))
	maps.Copy(merged, curated)

	var discovered []string
	for _, m := range live {
		id := strings.TrimPrefix(m.Name, "models/")
		if !supportsGeneration(m) {
			continue
		}

		descriptor, known := merged[id]
		if !known {
			descriptor = ModelDescriptor{
				ID:          id,
				DisplayName: m.DisplayName,
				Type:        ModelTypeExperimental,
				Discovered:  true,
			}
			discovered = append(discovered, id)
		}

		descriptor.Available = true
		descriptor.Description = m.Description
		descriptor.Version = m.Version
		descriptor.InputTokenLimit = m.InputTokenLimit
		descriptor.OutputTokenLimit = m.OutputTokenLimit
		descriptor.SupportedMethods = m.SupportedGenerationMethods
		descriptor.Temperature = m.Temperature
		descriptor.MaxTemperature = m.MaxTemperature
		merged[id] = descriptor
	}

	return merged, discovered
}

func supportsGeneration(m apiModel) bool {
	for _, method := range m.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}

// listLiveModels fetches the provider's model listing.
func (c *Client) listLiveModels(ctx context.Context, key string) ([]apiModel, error) {
	url := fmt.Sprintf("%s/models?key=%s", c.endpoint, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching model list: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model list response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := classifyAPIError(resp.StatusCode, raw)
		return nil, apiErr
	}

	var parsed modelsListResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding model list: %w", err)
	}
	return parsed.Models, nil
}
