package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is prepended to every session key.
const DefaultRedisPrefix = "salesdash:session:"

// RedisStore keeps credentials in Redis with a TTL matching their expiry.
// It's suitable for multi-node deployments behind a load balancer.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	closed atomic.Bool
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Default: "salesdash:session:".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(r *RedisStore) {
		r.prefix = prefix
	}
}

// NewRedisStore creates a RedisStore on client.
func NewRedisStore(client redis.Cmdable, opts ...RedisStoreOption) *RedisStore {
	r := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Save implements Store. Credentials that are already expired are deleted.
func (r *RedisStore) Save(ctx context.Context, id string, cred Credential) error {
	if r.closed.Load() {
		return ErrStoreClosed
	}

	ttl := time.Until(cred.ExpiresAt)
	if ttl <= 0 {
		return r.Delete(ctx, id)
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("session: encode credential: %w", err)
	}
	return r.client.Set(ctx, r.key(id), data, ttl).Err()
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, id string) (*Credential, error) {
	if r.closed.Load() {
		return nil, ErrStoreClosed
	}

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("session: decode credential: %w", err)
	}
	if cred.Expired(time.Now()) {
		return nil, nil
	}
	return &cred, nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if r.closed.Load() {
		return ErrStoreClosed
	}
	return r.client.Del(ctx, r.key(id)).Err()
}

// Close marks the store as closed. The Redis client is not closed since it
// may be shared.
func (r *RedisStore) Close() error {
	r.closed.Store(true)
	return nil
}

// Prefix returns the key prefix.
func (r *RedisStore) Prefix() string {
	return r.prefix
}
