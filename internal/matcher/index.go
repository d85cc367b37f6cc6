// Package matcher embeds occupation records into L2-normalized vectors and
// answers exact nearest-neighbor queries over them. An Index is immutable
// after Build/Decode and safe for concurrent queries.
package matcher

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/fairyhunter13/talent-match/internal/domain"
)

// Index maps corpus row index to an L2-normalized embedding vector. At
// corpus scale (hundreds to low thousands of rows) brute-force inner
// product is exact and fast enough.
type Index struct {
	modelID string
	dim     int
	vectors [][]float32
	corpus  []domain.OccupationRecord
	embed   domain.EmbeddingClient
}

// Hit is a single nearest-neighbor result.
type Hit struct {
	Row   int
	Score float32
}

// Build embeds one descriptive document per occupation record and returns a
// ready index. Building is deterministic for identical corpus content and
// model identity; it is the expensive path and callers should persist the
// result (see Builder).
func Build(ctx domain.Context, corpus []domain.OccupationRecord, embedder domain.EmbeddingClient) (*Index, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("op=matcher.Build: %w", domain.ErrNoCorpusData)
	}
	docs := make([]string, len(corpus))
	for i := range corpus {
		docs[i] = buildDoc(&corpus[i])
	}
	vecs, err := embedder.Embed(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("op=matcher.Build: %w", err)
	}
	if len(vecs) != len(corpus) {
		return nil, fmt.Errorf("op=matcher.Build: got %d vectors for %d rows: %w", len(vecs), len(corpus), domain.ErrModelUnavailable)
	}
	dim := len(vecs[0])
	for i, v := range vecs {
		if len(v) != dim {
			return nil, fmt.Errorf("op=matcher.Build: row %d dim %d != %d: %w", i, len(v), dim, domain.ErrModelUnavailable)
		}
		l2Normalize(v)
	}
	return &Index{
		modelID: embedder.ModelID(),
		dim:     dim,
		vectors: vecs,
		corpus:  corpus,
		embed:   embedder,
	}, nil
}

// buildDoc concatenates the labelled segments that describe one occupation
// for embedding purposes.
func buildDoc(rec *domain.OccupationRecord) string {
	return fmt.Sprintf("Occupation: %s. Unit: %s. Skills: %s.",
		rec.Name, rec.CompetencyUnit, rec.RequiredKeywordsRaw)
}

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return len(ix.vectors) }

// ModelID returns the identity of the embedding model the index was built
// with.
func (ix *Index) ModelID() string { return ix.modelID }

// Record returns the occupation record at the given row.
func (ix *Index) Record(row int) domain.OccupationRecord { return ix.corpus[row] }

// Query returns the arg-max row for the given text and its similarity
// score. An empty index fails with ErrNoCorpusData.
func (ix *Index) Query(ctx domain.Context, text string) (int, float32, error) {
	hits, err := ix.TopK(ctx, text, 1)
	if err != nil {
		return 0, 0, err
	}
	return hits[0].Row, hits[0].Score, nil
}

// TopK returns the k rows with the highest inner product against the query
// embedding, descending by score, ties broken by ascending row index.
func (ix *Index) TopK(ctx domain.Context, text string, k int) ([]Hit, error) {
	if ix.Len() == 0 {
		return nil, fmt.Errorf("op=matcher.TopK: %w", domain.ErrNoCorpusData)
	}
	if k <= 0 {
		k = 1
	}
	if k > ix.Len() {
		k = ix.Len()
	}
	vecs, err := ix.embed.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("op=matcher.TopK: %w", err)
	}
	q := vecs[0]
	if len(q) != ix.dim {
		return nil, fmt.Errorf("op=matcher.TopK: query dim %d != index dim %d: %w", len(q), ix.dim, domain.ErrIndexCorrupt)
	}
	l2Normalize(q)

	// Insertion into a k-sized slice keeps the tie-break on ascending row
	// index for free: later rows never displace equal scores.
	hits := make([]Hit, 0, k)
	for row, v := range ix.vectors {
		score := dot(q, v)
		pos := len(hits)
		for pos > 0 && hits[pos-1].Score < score {
			pos--
		}
		if pos >= k {
			continue
		}
		if len(hits) < k {
			hits = append(hits, Hit{})
		}
		copy(hits[pos+1:], hits[pos:])
		hits[pos] = Hit{Row: row, Score: score}
	}
	return hits, nil
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// l2Normalize scales v to unit length in place so that inner product equals
// cosine similarity. Zero vectors are left untouched.
func l2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// indexBlob is the serialized form of an index plus its corpus. The format
// is opaque to callers; only this package reads and writes it.
type indexBlob struct {
	ModelID string
	Dim     int
	Vectors [][]float32
	Corpus  []corpusRow
}

type corpusRow struct {
	ID                  string
	Name                string
	FunctionalArea      string
	CompetencyUnit      string
	RequiredKeywordsRaw string
}

// Encode serializes the index and its corpus into an opaque blob suitable
// for an IndexStore.
func (ix *Index) Encode() ([]byte, error) {
	blob := indexBlob{ModelID: ix.modelID, Dim: ix.dim, Vectors: ix.vectors}
	blob.Corpus = make([]corpusRow, len(ix.corpus))
	for i, rec := range ix.corpus {
		blob.Corpus[i] = corpusRow{
			ID:                  rec.ID,
			Name:                rec.Name,
			FunctionalArea:      rec.FunctionalArea,
			CompetencyUnit:      rec.CompetencyUnit,
			RequiredKeywordsRaw: rec.RequiredKeywordsRaw,
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blob); err != nil {
		return nil, fmt.Errorf("op=matcher.Encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode restores a previously encoded index. The blob must have been built
// with the same embedding model; any structural mismatch surfaces as
// ErrIndexCorrupt so the caller can trigger a full rebuild.
func Decode(blob []byte, embedder domain.EmbeddingClient) (*Index, error) {
	var decoded indexBlob
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("op=matcher.Decode: %v: %w", err, domain.ErrIndexCorrupt)
	}
	if decoded.ModelID != embedder.ModelID() {
		return nil, fmt.Errorf("op=matcher.Decode: model %q != %q: %w", decoded.ModelID, embedder.ModelID(), domain.ErrIndexCorrupt)
	}
	if len(decoded.Vectors) == 0 || len(decoded.Vectors) != len(decoded.Corpus) {
		return nil, fmt.Errorf("op=matcher.Decode: %d vectors for %d rows: %w", len(decoded.Vectors), len(decoded.Corpus), domain.ErrIndexCorrupt)
	}
	for i, v := range decoded.Vectors {
		if len(v) != decoded.Dim {
			return nil, fmt.Errorf("op=matcher.Decode: row %d dim %d != %d: %w", i, len(v), decoded.Dim, domain.ErrIndexCorrupt)
		}
	}
	corpus := make([]domain.OccupationRecord, len(decoded.Corpus))
	for i, row := range decoded.Corpus {
		corpus[i] = domain.OccupationRecord{
			ID:                  row.ID,
			Name:                row.Name,
			FunctionalArea:      row.FunctionalArea,
			CompetencyUnit:      row.CompetencyUnit,
			RequiredKeywordsRaw: row.RequiredKeywordsRaw,
		}
	}
	return &Index{
		modelID: decoded.ModelID,
		dim:     decoded.Dim,
		vectors: decoded.Vectors,
		corpus:  corpus,
		embed:   embedder,
	}, nil
}
