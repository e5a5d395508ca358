package statestore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store keeps short-lived OAuth state tokens in Redis. A state is written
// when the authorize link is minted and consumed exactly once by the
// callback; expiry is handled by the key TTL.
type Store struct {
	client *redis.Client
	logger zerolog.Logger
}

// New creates a Redis-backed state store.
func New(client *redis.Client, logger zerolog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

// Save registers a state token for the seller with the given TTL.
func (s *Store) Save(ctx context.Context, state, sellerID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKey(state), sellerID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// Take consumes a state token and returns the seller it was minted for, or
// "" when the state is unknown, expired, or already used.
func (s *Store) Take(ctx context.Context, state string) (string, error) {
	sellerID, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load oauth state: %w", err)
	}
	return sellerID, nil
}
