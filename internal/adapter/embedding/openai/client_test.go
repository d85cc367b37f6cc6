package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/talent-match/internal/adapter/embedding/openai"
	"github.com/fairyhunter13/talent-match/internal/config"
	"github.com/fairyhunter13/talent-match/internal/domain"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:          "test",
		OpenAIAPIKey:    "test-key",
		OpenAIBaseURL:   baseURL,
		EmbeddingsModel: "text-embedding-3-small",
	}
}

func TestEmbed_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "text-embedding-3-small", req.Model)
		resp := map[string]any{"data": []map[string]any{}}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"embedding": []float64{0.1, 0.2, 0.3}}
		}
		resp["data"] = data
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	vecs, err := c.Embed(context.Background(), []string{"profile one", "profile two"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.InDelta(t, 0.1, float64(vecs[0][0]), 1e-6)
	assert.Len(t, vecs[1], 3)
}

func TestEmbed_MissingKey(t *testing.T) {
	t.Parallel()
	cfg := testConfig("http://localhost:1")
	cfg.OpenAIAPIKey = ""
	c := openai.New(cfg)
	_, err := c.Embed(context.Background(), []string{"x"})
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestEmbed_EmptyInput(t *testing.T) {
	t.Parallel()
	c := openai.New(testConfig("http://localhost:1"))
	_, err := c.Embed(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestEmbed_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	_, err := c.Embed(context.Background(), []string{"x"})
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.Equal(t, 1, attempts)
}

func TestEmbed_ServerErrorRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{1, 0}}},
		})
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	vecs, err := c.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	assert.GreaterOrEqual(t, attempts, 3)
}

func TestEmbed_CountMismatch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{1}}},
		})
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL))
	_, err := c.Embed(context.Background(), []string{"a", "b"})
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestModelID(t *testing.T) {
	t.Parallel()
	c := openai.New(testConfig("http://localhost:1"))
	assert.Equal(t, "text-embedding-3-small", c.ModelID())
}
