// Package openai implements an embedding client backed by an
// OpenAI-compatible embeddings API.
package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/pkoukk/tiktoken-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"log/slog"

	"github.com/fairyhunter13/talent-match/internal/adapter/observability"
	"github.com/fairyhunter13/talent-match/internal/config"
	"github.com/fairyhunter13/talent-match/internal/domain"
)

// Client implements domain.EmbeddingClient against the /embeddings endpoint.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs an embedding client with sensible timeouts and an
// instrumented transport.
func New(cfg config.Config) *Client {
	timeout := 30 * time.Second
	if cfg.IsDev() {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ModelID reports the configured embedding model identifier.
func (c *Client) ModelID() string { return c.cfg.EmbeddingsModel }

// getBackoffConfig returns a configured ExponentialBackOff based on the current environment.
func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()

	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetEmbedBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier

	return expo
}

// truncate clips text to the configured token budget. Falls back to a byte
// cap when no encoding is available for the model.
func (c *Client) truncate(text string) string {
	maxTokens := c.cfg.EmbeddingMaxTokens
	if maxTokens <= 0 {
		return text
	}
	enc, err := tiktoken.EncodingForModel(c.cfg.EmbeddingsModel)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		// Rough heuristic: ~4 bytes per token for latin-heavy text.
		maxBytes := maxTokens * 4
		if len(text) > maxBytes {
			return text[:maxBytes]
		}
		return text
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return enc.Decode(ids[:maxTokens])
}

// readSnippet reads up to n bytes from r for error logging.
func readSnippet(r io.Reader, n int) string {
	if r == nil || n <= 0 {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, int64(n)))
	return string(b)
}

// Embed calls the embeddings endpoint with retry and returns one vector per
// input text, in input order.
func (c *Client) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if c.cfg.OpenAIAPIKey == "" || c.cfg.EmbeddingsModel == "" {
		// Do not log secrets; only indicate presence
		slog.Error("embedding API key or model missing", slog.Bool("has_api_key", c.cfg.OpenAIAPIKey != ""), slog.String("model", c.cfg.EmbeddingsModel))
		return nil, fmt.Errorf("%w: OPENAI_API_KEY or EMBEDDINGS_MODEL missing", domain.ErrModelUnavailable)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to embed", domain.ErrInvalidArgument)
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = c.truncate(t)
	}

	slog.Info("calling embeddings API", slog.String("model", c.cfg.EmbeddingsModel), slog.Int("text_count", len(input)))
	body := map[string]any{
		"model": c.cfg.EmbeddingsModel,
		"input": input,
	}
	b, _ := json.Marshal(body)
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/embeddings", bytes.NewReader(b))
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.EmbeddingRequestDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			observability.EmbeddingRequestsTotal.WithLabelValues("transport_error").Inc()
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode == http.StatusTooManyRequests {
			observability.EmbeddingRequestsTotal.WithLabelValues("rate_limited").Inc()
			slog.Warn("embedding provider rate limited", slog.Int("status", resp.StatusCode), slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			observability.EmbeddingRequestsTotal.WithLabelValues("client_error").Inc()
			bodySnippet := readSnippet(resp.Body, 512)
			slog.Warn("embedding provider 4xx", slog.Int("status", resp.StatusCode), slog.String("model", c.cfg.EmbeddingsModel), slog.String("body", bodySnippet))
			return backoff.Permanent(fmt.Errorf("embed status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			observability.EmbeddingRequestsTotal.WithLabelValues("server_error").Inc()
			bodySnippet := readSnippet(resp.Body, 512)
			slog.Error("embedding provider non-2xx", slog.Int("status", resp.StatusCode), slog.String("model", c.cfg.EmbeddingsModel), slog.String("body", bodySnippet))
			return fmt.Errorf("embed status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			observability.EmbeddingRequestsTotal.WithLabelValues("decode_error").Inc()
			slog.Error("embedding provider decode error", slog.String("model", c.cfg.EmbeddingsModel), slog.Any("error", err))
			return err
		}
		observability.EmbeddingRequestsTotal.WithLabelValues("success").Inc()
		return nil
	}
	expo := c.getBackoffConfig()
	bo := backoff.WithContext(expo, ctx)

	if err := backoff.Retry(op, bo); err != nil {
		slog.Error("embeddings API failed after retries", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}

	if len(out.Data) != len(input) {
		slog.Error("embeddings API returned unexpected vector count", slog.Int("want", len(input)), slog.Int("got", len(out.Data)))
		return nil, fmt.Errorf("%w: vector count mismatch", domain.ErrModelUnavailable)
	}

	res := make([][]float32, len(out.Data))
	for i := range out.Data {
		if len(out.Data[i].Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", domain.ErrModelUnavailable, i)
		}
		v := make([]float32, len(out.Data[i].Embedding))
		for j := range out.Data[i].Embedding {
			v[j] = float32(out.Data[i].Embedding[j])
		}
		res[i] = v
	}
	return res, nil
}

var _ domain.EmbeddingClient = (*Client)(nil)
