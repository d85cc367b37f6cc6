package matcher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fairyhunter13/talent-match/internal/adapter/observability"
	"github.com/fairyhunter13/talent-match/internal/domain"
)

// Builder resolves the current index for the corpus, loading a persisted
// blob when one exists and rebuilding otherwise. Concurrent Ensure calls
// for the same corpus version are coalesced so the expensive embedding pass
// runs at most once; late callers share the in-flight result.
type Builder struct {
	Corpus   domain.CorpusReader
	Store    domain.IndexStore
	Embedder domain.EmbeddingClient
	TTL      time.Duration

	group  singleflight.Group
	mu     sync.RWMutex
	cached *Index
	key    string
}

// NewBuilder constructs a Builder. Store may be nil, in which case every
// process start rebuilds the index once and keeps it in memory.
func NewBuilder(corpus domain.CorpusReader, store domain.IndexStore, embedder domain.EmbeddingClient, ttl time.Duration) *Builder {
	return &Builder{Corpus: corpus, Store: store, Embedder: embedder, TTL: ttl}
}

// Ensure returns the index for the corpus as it currently stands. The
// corpus version is a content hash, so a changed dataset or embedding model
// yields a new store key and a rebuild.
func (b *Builder) Ensure(ctx domain.Context) (*Index, error) {
	records, err := b.Corpus.ListOccupations(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=builder.Ensure: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("op=builder.Ensure: %w", domain.ErrNoCorpusData)
	}
	key := b.cacheKey(records)

	b.mu.RLock()
	if b.cached != nil && b.key == key {
		ix := b.cached
		b.mu.RUnlock()
		return ix, nil
	}
	b.mu.RUnlock()

	v, err, _ := b.group.Do(key, func() (any, error) {
		return b.loadOrBuild(ctx, key, records)
	})
	if err != nil {
		return nil, err
	}
	ix := v.(*Index)

	b.mu.Lock()
	b.cached, b.key = ix, key
	b.mu.Unlock()
	return ix, nil
}

func (b *Builder) loadOrBuild(ctx domain.Context, key string, records []domain.OccupationRecord) (*Index, error) {
	trigger := "cold"
	if b.Store != nil {
		blob, err := b.Store.Load(ctx, key)
		switch {
		case err == nil:
			ix, derr := Decode(blob, b.Embedder)
			if derr == nil {
				slog.Info("occupation index loaded from store", slog.String("key", key), slog.Int("rows", ix.Len()))
				return ix, nil
			}
			// A corrupt blob is a data problem, not a fatal one: fall
			// through to a full rebuild.
			slog.Warn("persisted index rejected, rebuilding", slog.String("key", key), slog.Any("error", derr))
			trigger = "corrupt_blob"
		case errors.Is(err, domain.ErrNotFound):
			// first build for this corpus version
		default:
			slog.Warn("index store load failed, rebuilding", slog.String("key", key), slog.Any("error", err))
		}
	}

	start := time.Now()
	ix, err := Build(ctx, records, b.Embedder)
	if err != nil {
		return nil, err
	}
	observability.IndexBuildsTotal.WithLabelValues(trigger).Inc()
	slog.Info("occupation index built",
		slog.String("key", key),
		slog.Int("rows", ix.Len()),
		slog.Duration("took", time.Since(start)))

	if b.Store != nil {
		blob, err := ix.Encode()
		if err != nil {
			return nil, err
		}
		if err := b.Store.Save(ctx, key, blob, b.TTL); err != nil {
			// The in-memory index is still usable; persisting is best-effort.
			slog.Warn("index store save failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return ix, nil
}

// cacheKey hashes corpus content together with the model identity so that
// either changing invalidates persisted blobs.
func (b *Builder) cacheKey(records []domain.OccupationRecord) string {
	h := sha256.New()
	h.Write([]byte(b.Embedder.ModelID()))
	for i := range records {
		rec := &records[i]
		h.Write([]byte{0})
		h.Write([]byte(rec.ID))
		h.Write([]byte{0})
		h.Write([]byte(rec.Name))
		h.Write([]byte{0})
		h.Write([]byte(rec.FunctionalArea))
		h.Write([]byte{0})
		h.Write([]byte(rec.CompetencyUnit))
		h.Write([]byte{0})
		h.Write([]byte(rec.RequiredKeywordsRaw))
	}
	return "occindex:" + hex.EncodeToString(h.Sum(nil)[:16])
}
