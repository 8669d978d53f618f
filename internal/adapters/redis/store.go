// Package redis provides a Redis-backed persistence adapter for the serve
// command. It keeps attributes out of process memory so a restarted server
// does not forget its users.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/tendril/pkg/model"
)

// Store implements ports.PersistenceAdapter using Redis. Each user's
// attributes are one JSON value under a prefixed key.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored attributes.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored attributes.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "tendril:attributes:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(userID string) string {
	return s.prefix + userID
}

// SaveAttributes persists the attribute map to Redis.
func (s *Store) SaveAttributes(ctx context.Context, envelope *model.RequestEnvelope, attributes map[string]any) error {
	userID := envelope.UserID()
	if userID == "" {
		return fmt.Errorf("envelope has no user id")
	}

	data, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	// A zero ttl means no expiration.
	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// GetAttributes retrieves the attribute map from Redis.
func (s *Store) GetAttributes(ctx context.Context, envelope *model.RequestEnvelope) (map[string]any, bool, error) {
	userID := envelope.UserID()
	if userID == "" {
		return nil, false, fmt.Errorf("envelope has no user id")
	}

	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	var attributes map[string]any
	if err := json.Unmarshal([]byte(val), &attributes); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal attributes: %w", err)
	}

	return attributes, true, nil
}

// DeleteAttributes removes the user's attributes.
func (s *Store) DeleteAttributes(ctx context.Context, envelope *model.RequestEnvelope) error {
	userID := envelope.UserID()
	if userID == "" {
		return fmt.Errorf("envelope has no user id")
	}

	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
