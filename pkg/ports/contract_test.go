package ports_test

import (
	"context"
	"maps"
	"sync"
	"testing"

	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
)

// memoryAdapter is a reference in-memory PersistenceAdapter used to prove
// the contract suite is satisfiable.
type memoryAdapter struct {
	mu   sync.RWMutex
	data map[string]map[string]any
}

func newMemoryAdapter() *memoryAdapter {
	return &memoryAdapter{data: make(map[string]map[string]any)}
}

func (m *memoryAdapter) GetAttributes(_ context.Context, envelope *model.RequestEnvelope) (map[string]any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	attrs, ok := m.data[envelope.UserID()]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(attrs), true, nil
}

func (m *memoryAdapter) SaveAttributes(_ context.Context, envelope *model.RequestEnvelope, attributes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[envelope.UserID()] = maps.Clone(attributes)
	return nil
}

func (m *memoryAdapter) DeleteAttributes(_ context.Context, envelope *model.RequestEnvelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, envelope.UserID())
	return nil
}

func TestMemoryAdapterSatisfiesContract(t *testing.T) {
	ports.RunPersistenceAdapterContract(t, newMemoryAdapter())
}
