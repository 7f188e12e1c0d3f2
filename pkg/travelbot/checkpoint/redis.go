package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists snapshots to Redis. A sorted-set index keyed by
// update time supports listing; snapshot keys can carry a TTL so
// abandoned conversations expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string

	mu     sync.RWMutex
	closed bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets an expiry on snapshot keys. Zero means no expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithKeyPrefix namespaces all keys written by the store.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore creates a snapshot store on an existing Redis client.
// The store does not own the client's lifecycle until Close is called.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "travelbot:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) snapshotKey(conversationID string) string {
	return s.prefix + "conv:" + conversationID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "convs"
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.snapshotKey(snap.ConversationID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(snap.Timestamp.UTC().UnixNano()),
		Member: snap.ConversationID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, conversationID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	data, err := s.client.Get(ctx, s.snapshotKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return Unmarshal(data)
}

// List implements Store.
// Index entries whose snapshot key has expired are removed lazily.
func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, s.snapshotKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			s.client.ZRem(ctx, s.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load snapshot %q: %w", id, err)
		}
		snap, err := Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot %q: %w", id, err)
		}
		infos = append(infos, Info{
			ConversationID: id,
			Stage:          snap.Stage,
			Sequence:       snap.Sequence,
			UpdatedAt:      snap.Timestamp,
			Size:           int64(len(data)),
		})
	}

	return infos, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.snapshotKey(conversationID))
	pipe.ZRem(ctx, s.indexKey(), conversationID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.client.Close()
}
