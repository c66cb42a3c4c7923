package gemini

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/errors"
)

type fakeStore struct {
	options map[string]string
	err     error
}

func (s *fakeStore) GetOption(name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.options[name], nil
}

type fakeUsage struct {
	modelID      string
	inputTokens  int64
	outputTokens int64
	latency      time.Duration
	calls        int
	err          error
}

func (u *fakeUsage) RecordModelUsage(modelID string, inputTokens, outputTokens int64, latency time.Duration) error {
	u.calls++
	u.modelID = modelID
	u.inputTokens = inputTokens
	u.outputTokens = outputTokens
	u.latency = latency
	return u.err
}

const testEndpoint = "https://gemini.test/v1beta"

func newTestClient(t *testing.T, store *fakeStore, usage *fakeUsage) *Client {
	t.Helper()

	settings := &conf.Settings{}
	settings.Gemini.Endpoint = testEndpoint
	settings.Gemini.Timeout = 5

	client := NewClient(settings, store, usage, nil)
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func storeWithKey() *fakeStore {
	return &fakeStore{options: map[string]string{
		"gemini_api_key": "test-key",
	}}
}

// generationResponder mocks a successful generateContent reply carrying
// the given text and token counts.
func generationResponder(text string, inputTokens, outputTokens int64) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"parts": []map[string]any{{"text": text}}},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{
			"promptTokenCount":     inputTokens,
			"candidatesTokenCount": outputTokens,
			"totalTokenCount":      inputTokens + outputTokens,
		},
	})
}

func TestFetchSeedInfoSuccess(t *testing.T) {
	usage := &fakeUsage{}
	client := newTestClient(t, storeWithKey(), usage)

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/"+DefaultModelID+":generateContent",
		generationResponder(`{"plant_type":"Determinate Tomato","container_suitability":"true","days_to_maturity":null,"description":"null"}`, 120, 45))

	fields, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Tomato", Variety: "Roma"})
	require.NoError(t, err)

	assert.Equal(t, "Determinate Tomato", fields["plant_type"])
	assert.Equal(t, true, fields["container_suitability"], "string booleans should be coerced")
	assert.Nil(t, fields["days_to_maturity"])
	assert.Nil(t, fields["description"], "literal null strings should become nil")

	assert.Equal(t, 1, usage.calls)
	assert.Equal(t, DefaultModelID, usage.modelID)
	assert.Equal(t, int64(120), usage.inputTokens)
	assert.Equal(t, int64(45), usage.outputTokens)
}

func TestFetchSeedInfoRequiresName(t *testing.T) {
	client := newTestClient(t, storeWithKey(), &fakeUsage{})

	_, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Zero(t, httpmock.GetTotalCallCount(), "no request should be made without a name")
}

func TestFetchSeedInfoMissingAPIKey(t *testing.T) {
	client := newTestClient(t, &fakeStore{options: map[string]string{}}, &fakeUsage{})

	_, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Tomato"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfiguration))
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestFetchSeedInfoInvalidKey(t *testing.T) {
	usage := &fakeUsage{}
	client := newTestClient(t, storeWithKey(), usage)

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/"+DefaultModelID+":generateContent",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"code":    400,
				"message": "API key not valid. Please pass a valid API key.",
				"status":  "INVALID_ARGUMENT",
			},
		}))

	_, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Tomato"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, APIErrorInvalidKey, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.True(t, errors.HasCategory(err, errors.CategoryAPIResponse))
	assert.Zero(t, usage.calls, "failed calls should not record usage")
}

func TestFetchSeedInfoSafetyBlockWith200(t *testing.T) {
	client := newTestClient(t, storeWithKey(), &fakeUsage{})

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/"+DefaultModelID+":generateContent",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		}))

	_, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Tomato"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, APIErrorSafety, apiErr.Kind)
}

func TestFetchSeedInfoTruncatedGeneration(t *testing.T) {
	client := newTestClient(t, storeWithKey(), &fakeUsage{})

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/"+DefaultModelID+":generateContent",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"parts": []map[string]any{{"text": `{"plant_ty`}}},
				"finishReason": "MAX_TOKENS",
			}},
		}))

	_, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Tomato"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestFetchSeedInfoBlankGeneration(t *testing.T) {
	client := newTestClient(t, storeWithKey(), &fakeUsage{})

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/"+DefaultModelID+":generateContent",
		generationResponder("   ", 10, 0))

	_, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Tomato"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestFetchSeedInfoMalformedJSON(t *testing.T) {
	usage := &fakeUsage{}
	client := newTestClient(t, storeWithKey(), usage)

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/"+DefaultModelID+":generateContent",
		generationResponder("Sure! Here is the information you asked for.", 50, 20))

	_, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Tomato"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryJSONParse))

	// The provider still billed the tokens, so the failed parse counts.
	assert.Equal(t, 1, usage.calls)
	assert.Equal(t, int64(50), usage.inputTokens)
	assert.Equal(t, int64(20), usage.outputTokens)
}

func TestFetchSeedInfoTransportError(t *testing.T) {
	client := newTestClient(t, storeWithKey(), &fakeUsage{})

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/"+DefaultModelID+":generateContent",
		httpmock.NewErrorResponder(assert.AnError))

	_, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Tomato"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryHTTP))
}

func TestFetchSeedInfoUsesSelectedModel(t *testing.T) {
	store := storeWithKey()
	store.options["gemini_selected_model"] = "gemini-2.5-pro"
	client := newTestClient(t, store, &fakeUsage{})

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/gemini-2.5-pro:generateContent",
		generationResponder(`{"plant_type":"Pepper"}`, 10, 5))

	fields, err := client.FetchSeedInfo(context.Background(), FetchRequest{Name: "Pepper"})
	require.NoError(t, err)
	assert.Equal(t, "Pepper", fields["plant_type"])
}

func TestModelSuccess(t *testing.T) {
	usage := &fakeUsage{}
	client := newTestClient(t, storeWithKey(), usage)

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/gemini-2.0-flash:generateContent",
		generationResponder("OK", 8, 1))

	result, err := client.TestModel(context.Background(), "gemini-2.0-flash")
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", result.ModelID)
	assert.Equal(t, "OK", result.Text)
	assert.Equal(t, int64(8), result.InputTokens)
	assert.Equal(t, int64(1), result.OutputTokens)
	assert.Equal(t, 1, usage.calls)
	assert.Equal(t, "gemini-2.0-flash", usage.modelID)
}

func TestModelDefaultsToSelected(t *testing.T) {
	client := newTestClient(t, storeWithKey(), &fakeUsage{})

	httpmock.RegisterResponder(http.MethodPost,
		testEndpoint+"/models/"+DefaultModelID+":generateContent",
		generationResponder("OK", 8, 1))

	result, err := client.TestModel(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModelID, result.ModelID)
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantKind   APIErrorKind
	}{
		{"invalid key by message", 400, `{"error":{"message":"API key not valid"}}`, APIErrorInvalidKey},
		{"invalid key by status", 401, `{"error":{"message":"unauthenticated"}}`, APIErrorInvalidKey},
		{"safety", 400, `{"error":{"message":"Request blocked for safety reasons"}}`, APIErrorSafety},
		{"generic", 500, `{"error":{"message":"internal error"}}`, APIErrorGeneric},
		{"unparseable body", 503, `upstream unavailable`, APIErrorGeneric},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := classifyAPIError(tc.statusCode, []byte(tc.body))
			assert.Equal(t, tc.wantKind, apiErr.Kind)
			assert.Equal(t, tc.statusCode, apiErr.StatusCode)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}
