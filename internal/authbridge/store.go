package authbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Snapshot is the persisted form of a bridge's state. The ID token and its
// expiry are kept beside the state because State never serialises them. A
// signed-out state is a snapshot with no user.
type Snapshot struct {
	State          State     `json:"state"`
	IDToken        string    `json:"idToken,omitempty"`
	TokenExpiresAt time.Time `json:"tokenExpiresAt,omitempty"`
}

// SnapshotOf builds the snapshot for st.
func SnapshotOf(st State) Snapshot {
	snap := Snapshot{State: st}
	if st.User != nil {
		snap.IDToken = st.User.IDToken
		snap.TokenExpiresAt = st.User.TokenExpiresAt
	}
	return snap
}

// Store persists snapshots by workspace id so a workspace rebuilt after
// eviction, or on another replica, resumes without re-entering loading.
type Store interface {
	Save(ctx context.Context, id string, snap Snapshot) error
	// Load returns (nil, nil) when nothing is stored for id.
	Load(ctx context.Context, id string) (*Snapshot, error)
}

const redisKeyPrefix = "pawmart:session:"

// RedisStore keeps snapshots as JSON strings with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a redis-backed Store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) Save(ctx context.Context, id string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &snap, nil
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore returns an in-memory Store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, ttl/2+time.Minute)}
}

func (s *MemoryStore) Save(_ context.Context, id string, snap Snapshot) error {
	s.cache.SetDefault(id, snap)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Snapshot, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, nil
	}
	snap := v.(Snapshot)
	return &snap, nil
}
