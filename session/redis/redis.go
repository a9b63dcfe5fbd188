// Package redis provides a Redis-backed session.TokenStore for deployments
// running more than one replica, where the in-memory registry would split
// sessions across instances. The contract stays get/set on an opaque token;
// only the wiring layer decides which backend to instantiate.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campaignmesh/campaignmesh/session"
)

// Options configures the Redis token store.
type Options struct {
	// KeyPrefix namespaces registry entries within a shared Redis instance.
	KeyPrefix string
	// TTL bounds token lifetime. Zero keeps tokens forever, matching the
	// in-memory registry's no-eviction behavior.
	TTL time.Duration
}

// TokenStore implements session.TokenStore on a Redis client.
type TokenStore struct {
	client redis.UniversalClient
	opts   Options
}

var _ session.TokenStore = (*TokenStore)(nil)

// New creates a TokenStore from an existing Redis client.
func New(client redis.UniversalClient, optFns ...func(o *Options)) *TokenStore {
	opts := Options{KeyPrefix: "campaignmesh:session:"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &TokenStore{client: client, opts: opts}
}

// Get returns the active token for key, reporting ok=false when no prior
// session exists.
func (s *TokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	token, err := s.client.Get(ctx, s.opts.KeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return token, true, nil
}

// Set stores the token for key, overwriting any previous value.
func (s *TokenStore) Set(ctx context.Context, key, token string) error {
	if err := s.client.Set(ctx, s.opts.KeyPrefix+key, token, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
