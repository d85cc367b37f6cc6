package matcher_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/matcher"
)

type stubCorpus struct {
	records []domain.OccupationRecord
	err     error
}

func (c *stubCorpus) ListOccupations(_ domain.Context) ([]domain.OccupationRecord, error) {
	return c.records, c.err
}

func (c *stubCorpus) GetOccupation(_ domain.Context, id string) (domain.OccupationRecord, error) {
	for _, r := range c.records {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.OccupationRecord{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

type memStore struct {
	mu    sync.Mutex
	m     map[string][]byte
	loads int
	saves int
}

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) Load(_ domain.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	b, ok := s.m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return b, nil
}

func (s *memStore) Save(_ domain.Context, key string, blob []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.m[key] = blob
	return nil
}

// slowEmbedder delays each call so concurrent Ensure calls overlap.
type slowEmbedder struct {
	wordEmbedder
	delay time.Duration
	mu    sync.Mutex
	n     int
}

func (e *slowEmbedder) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.n++
	e.mu.Unlock()
	time.Sleep(e.delay)
	return e.wordEmbedder.Embed(ctx, texts)
}

func (e *slowEmbedder) embedCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.n
}

func TestEnsure_BuildsAndPersists(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	b := matcher.NewBuilder(&stubCorpus{records: corpus()}, store, &wordEmbedder{}, 0)

	ix, err := b.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 1, store.saves)
}

func TestEnsure_MemoryCacheSkipsStore(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	b := matcher.NewBuilder(&stubCorpus{records: corpus()}, store, &wordEmbedder{}, 0)

	_, err := b.Ensure(context.Background())
	require.NoError(t, err)
	loadsAfterFirst := store.loads

	_, err = b.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loadsAfterFirst, store.loads)
}

func TestEnsure_LoadsPersistedBlob(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	emb := &wordEmbedder{}
	warm := matcher.NewBuilder(&stubCorpus{records: corpus()}, store, emb, 0)
	_, err := warm.Ensure(context.Background())
	require.NoError(t, err)
	buildCalls := emb.calls

	// A fresh builder over the same store decodes instead of re-embedding
	// the corpus. Only the query-time embeds remain.
	cold := matcher.NewBuilder(&stubCorpus{records: corpus()}, store, emb, 0)
	ix, err := cold.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, buildCalls, emb.calls)
}

func TestEnsure_FunctionalAreaChangeInvalidatesBlob(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	warm := matcher.NewBuilder(&stubCorpus{records: corpus()}, store, &wordEmbedder{}, 0)
	_, err := warm.Ensure(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, store.saves)

	changed := corpus()
	changed[0].FunctionalArea = "Reclassified"
	cold := matcher.NewBuilder(&stubCorpus{records: changed}, store, &wordEmbedder{}, 0)
	ix, err := cold.Ensure(context.Background())
	require.NoError(t, err)
	// The edited corpus misses the old key and rebuilds.
	assert.Equal(t, 2, store.saves)
	assert.Equal(t, "Reclassified", ix.Record(0).FunctionalArea)
}

func TestEnsure_CorruptBlobTriggersRebuild(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	corp := &stubCorpus{records: corpus()}
	emb := &wordEmbedder{}
	b := matcher.NewBuilder(corp, store, emb, 0)

	// Recover the store key via a scratch build, then poison it.
	scratch := newMemStore()
	probe := matcher.NewBuilder(corp, scratch, emb, 0)
	_, err := probe.Ensure(context.Background())
	require.NoError(t, err)
	for k := range scratch.m {
		store.m[k] = []byte("garbage")
	}

	ix, err := b.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
	// The rebuild overwrote the poisoned blob.
	assert.GreaterOrEqual(t, store.saves, 1)
}

func TestEnsure_EmptyCorpus(t *testing.T) {
	t.Parallel()
	b := matcher.NewBuilder(&stubCorpus{}, newMemStore(), &wordEmbedder{}, 0)
	_, err := b.Ensure(context.Background())
	require.ErrorIs(t, err, domain.ErrNoCorpusData)
}

func TestEnsure_CoalescesConcurrentBuilds(t *testing.T) {
	t.Parallel()
	emb := &slowEmbedder{delay: 50 * time.Millisecond}
	b := matcher.NewBuilder(&stubCorpus{records: corpus()}, newMemStore(), emb, 0)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.Ensure(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, emb.embedCalls())
}

func TestEnsure_NilStoreStillWorks(t *testing.T) {
	t.Parallel()
	b := matcher.NewBuilder(&stubCorpus{records: corpus()}, nil, &wordEmbedder{}, 0)
	ix, err := b.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
}
