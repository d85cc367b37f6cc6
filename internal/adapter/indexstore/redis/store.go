// Package redis persists serialized occupation-index blobs in Redis.
package redis

import (
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/talent-match/internal/domain"
)

// Store implements domain.IndexStore on top of a go-redis client.
type Store struct {
	rdb *goredis.Client
}

// New parses the Redis URL and returns a Store.
func New(redisURL string) (*Store, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("op=indexstore.new: %w", err)
	}
	return &Store{rdb: goredis.NewClient(opt)}, nil
}

// NewWithClient wraps an existing client; used by tests with miniredis.
func NewWithClient(rdb *goredis.Client) *Store { return &Store{rdb: rdb} }

// Load returns the blob stored under key, or ErrNotFound when absent.
func (s *Store) Load(ctx domain.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("op=indexstore.load: %w: key=%s", domain.ErrNotFound, key)
		}
		return nil, fmt.Errorf("op=indexstore.load: %w", err)
	}
	return b, nil
}

// Save stores blob under key with the given TTL. A zero TTL persists
// without expiry.
func (s *Store) Save(ctx domain.Context, key string, blob []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, blob, ttl).Err(); err != nil {
		return fmt.Errorf("op=indexstore.save: %w", err)
	}
	return nil
}

// Ping checks connectivity; used by the readiness probe.
func (s *Store) Ping(ctx domain.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("op=indexstore.ping: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.rdb.Close() }

var _ domain.IndexStore = (*Store)(nil)
