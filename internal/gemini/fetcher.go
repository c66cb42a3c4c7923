// fetcher.go implements the seed info lookup and the low-level
// generateContent call shared with model testing.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gardenbase/seedvault/internal/errors"
)

// generation is the outcome of one generateContent round-trip.
type generation struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
	Latency      time.Duration
}

// FetchSeedInfo asks the configured model for structured growing
// information. The returned map is normalized but untrusted; the
// repository sanitizes it again on save. Failures are typed and never
// retried automatically.
func (c *Client) FetchSeedInfo(ctx context.Context, req FetchRequest) (map[string]any, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.Newf("seed name is required for an AI lookup").
			Component("gemini").
			Category(errors.CategoryValidation).
			Build()
	}

	model := c.SelectedModel()
	gen, err := c.generate(ctx, "fetch_info", model, buildSeedPrompt(req))
	if err != nil {
		return nil, err
	}

	// Tokens were spent even when the output turns out to be garbage.
	c.recordUsage(model, gen)

	var fields map[string]any
	if err := json.Unmarshal([]byte(gen.Text), &fields); err != nil {
		return nil, errors.New(fmt.Errorf("model output is not valid JSON: %w", err)).
			Component("gemini").
			Category(errors.CategoryJSONParse).
			Context("model", model).
			Context("raw_excerpt", excerpt(gen.Text)).
			Build()
	}

	c.logger.Info("seed info fetched",
		"model", model,
		"name", req.Name,
		"fields", len(fields),
		"latency_ms", gen.Latency.Milliseconds())

	return NormalizeFields(fields), nil
}

// TestResult reports one connectivity test round-trip.
type TestResult struct {
	ModelID      string `json:"modelId"`
	Text         string `json:"text"`
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
	LatencyMs    int64  `json:"latencyMs"`
}

// TestModel issues one lightweight prompt to validate connectivity and
// measure latency, and records usage on success.
func (c *Client) TestModel(ctx context.Context, modelID string) (*TestResult, error) {
	if modelID == "" {
		modelID = c.SelectedModel()
	}

	gen, err := c.generate(ctx, "test_model", modelID,
		"Reply with the single word OK.")
	if err != nil {
		return nil, err
	}

	c.recordUsage(modelID, gen)

	return &TestResult{
		ModelID:      modelID,
		Text:         strings.TrimSpace(gen.Text),
		InputTokens:  gen.InputTokens,
		OutputTokens: gen.OutputTokens,
		LatencyMs:    gen.Latency.Milliseconds(),
	}, nil
}

// generate performs one generateContent call and extracts the generated
// text.
func (c *Client) generate(ctx context.Context, operation, modelID, prompt string) (*generation, error) {
	key, err := c.apiKey()
	if err != nil {
		return nil, err
	}
	if key == "" {
		c.metrics.ObserveGemini(operation, "no_api_key", 0)
		return nil, errors.New(ErrMissingAPIKey).
			Component("gemini").
			Category(errors.CategoryConfiguration).
			Build()
	}

	body, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, modelID, key)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		c.metrics.ObserveGemini(operation, "http_error", latency.Seconds())
		return nil, errors.New(fmt.Errorf("request to AI provider failed: %w", err)).
			Component("gemini").
			Category(errors.CategoryHTTP).
			Context("model", modelID).
			Build()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveGemini(operation, "http_error", latency.Seconds())
		return nil, errors.New(fmt.Errorf("reading provider response: %w", err)).
			Component("gemini").
			Category(errors.CategoryHTTP).
			Context("model", modelID).
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := classifyAPIError(resp.StatusCode, raw)
		c.metrics.ObserveGemini(operation, "api_error", latency.Seconds())
		c.logger.Warn("provider rejected request",
			"model", modelID,
			"status", resp.StatusCode,
			"kind", string(apiErr.Kind))
		return nil, errors.New(apiErr).
			Component("gemini").
			Category(errors.CategoryAPIResponse).
			Context("model", modelID).
			Context("status_code", resp.StatusCode).
			Build()
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.metrics.ObserveGemini(operation, "bad_response", latency.Seconds())
		return nil, errors.New(fmt.Errorf("decoding provider response: %w", err)).
			Component("gemini").
			Category(errors.CategoryJSONParse).
			Context("model", modelID).
			Context("raw_excerpt", excerpt(string(raw))).
			Build()
	}

	// A safety block can also arrive with a 200.
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		c.metrics.ObserveGemini(operation, "safety_block", latency.Seconds())
		return nil, errors.New(&APIError{
			StatusCode: resp.StatusCode,
			Message:    "request blocked: " + parsed.PromptFeedback.BlockReason,
			Kind:       APIErrorSafety,
		}).
			Component("gemini").
			Category(errors.CategoryAPIResponse).
			Context("model", modelID).
			Build()
	}

	text, finishReason := extractText(&parsed)
	if strings.TrimSpace(text) == "" || (finishReason != "" && finishReason != "STOP") {
		c.metrics.ObserveGemini(operation, "empty_response", latency.Seconds())
		return nil, errors.New(ErrEmptyResponse).
			Component("gemini").
			Category(errors.CategoryAPIResponse).
			Context("model", modelID).
			Context("finish_reason", finishReason).
			Build()
	}

	gen := &generation{Text: text, Latency: latency}
	if parsed.UsageMetadata != nil {
		gen.InputTokens = parsed.UsageMetadata.PromptTokenCount
		gen.OutputTokens = parsed.UsageMetadata.CandidatesTokenCount
	}

	c.metrics.ObserveGemini(operation, "success", latency.Seconds())
	return gen, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *generateContentResponse) (text, finishReason string) {
	if len(resp.Candidates) == 0 {
		return "", ""
	}
	candidate := resp.Candidates[0]
	var b strings.Builder
	for _, p := range candidate.Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), candidate.FinishReason
}

// classifyAPIError maps a non-2xx response to an APIError with invalid-key
// and safety-block sub-cases detected.
func classifyAPIError(statusCode int, raw []byte) *APIError {
	var body apiErrorResponse
	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		message = body.Error.Message
	}

	kind := APIErrorGeneric
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "api key not valid"),
		strings.Contains(lower, "api_key_invalid"),
		statusCode == http.StatusUnauthorized:
		kind = APIErrorInvalidKey
	case strings.Contains(lower, "safety"),
		strings.Contains(lower, "blocked"):
		kind = APIErrorSafety
	}

	return &APIError{StatusCode: statusCode, Message: message, Kind: kind}
}

// recordUsage is best effort; a telemetry write failure never fails the
// call that produced it.
func (c *Client) recordUsage(modelID string, gen *generation) {
	if c.usage == nil {
		return
	}
	if err := c.usage.RecordModelUsage(modelID, gen.InputTokens, gen.OutputTokens, gen.Latency); err != nil {
		c.logger.Warn("usage not recorded", "model", modelID, "error", err)
	}
}
