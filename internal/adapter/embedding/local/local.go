// Package local implements a deterministic in-process embedder used in
// development and tests when no embeddings API key is configured.
package local

import (
	"hash/fnv"
	"math"
	"strings"

	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/pkg/textx"
)

const dim = 64

// Embedder hashes word unigrams and bigrams into a fixed-size bucket vector.
// Texts sharing vocabulary land near each other under inner product, which
// is enough for smoke-testing the matching pipeline end to end.
type Embedder struct{}

// New constructs a local embedder.
func New() *Embedder { return &Embedder{} }

// ModelID identifies the local hashing scheme so persisted indexes built
// with it are never mixed with API-built ones.
func (e *Embedder) ModelID() string { return "local-hash-64" }

// Embed returns one unit-length vector per text, in input order.
func (e *Embedder) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedOne(t)
	}
	return out, nil
}

func embedOne(text string) []float32 {
	v := make([]float32, dim)
	words := strings.Fields(strings.ToLower(textx.NormalizeText(text)))
	for i, w := range words {
		v[bucket(w)]++
		if i+1 < len(words) {
			v[bucket(w+" "+words[i+1])] += 0.5
		}
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for j := range v {
			v[j] *= inv
		}
	}
	return v
}

func bucket(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % dim)
}

var _ domain.EmbeddingClient = (*Embedder)(nil)
