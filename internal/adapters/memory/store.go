// Package memory provides an in-process persistence adapter. It is the
// default for the serve command when no durable backend is configured, which
// makes it suitable for demos and tests but nothing that should survive a
// restart.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/aretw0/tendril/pkg/model"
)

// Store implements ports.PersistenceAdapter with a mutex-guarded map.
type Store struct {
	mu    sync.RWMutex
	users map[string]map[string]any
}

// New creates an empty Store.
func New() *Store {
	return &Store{users: make(map[string]map[string]any)}
}

// SaveAttributes stores a copy of the attribute map for the envelope's user.
func (s *Store) SaveAttributes(ctx context.Context, envelope *model.RequestEnvelope, attributes map[string]any) error {
	userID := envelope.UserID()
	if userID == "" {
		return fmt.Errorf("envelope has no user id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = maps.Clone(attributes)
	return nil
}

// GetAttributes returns a copy of the stored attributes, so callers cannot
// mutate the store through the returned map.
func (s *Store) GetAttributes(ctx context.Context, envelope *model.RequestEnvelope) (map[string]any, bool, error) {
	userID := envelope.UserID()
	if userID == "" {
		return nil, false, fmt.Errorf("envelope has no user id")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	attributes, found := s.users[userID]
	if !found {
		return nil, false, nil
	}
	return maps.Clone(attributes), true, nil
}

// DeleteAttributes removes the user's attributes.
func (s *Store) DeleteAttributes(ctx context.Context, envelope *model.RequestEnvelope) error {
	userID := envelope.UserID()
	if userID == "" {
		return fmt.Errorf("envelope has no user id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}
