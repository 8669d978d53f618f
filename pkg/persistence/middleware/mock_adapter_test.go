package middleware_test

import (
	"context"

	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
)

// MockAdapter is a simple map-based adapter for testing middleware, keyed
// by the envelope's user id.
type MockAdapter struct {
	data map[string]map[string]any
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		data: make(map[string]map[string]any),
	}
}

func (a *MockAdapter) GetAttributes(ctx context.Context, envelope *model.RequestEnvelope) (map[string]any, bool, error) {
	attrs, ok := a.data[envelope.UserID()]
	return attrs, ok, nil
}

func (a *MockAdapter) SaveAttributes(ctx context.Context, envelope *model.RequestEnvelope, attributes map[string]any) error {
	a.data[envelope.UserID()] = attributes
	return nil
}

func (a *MockAdapter) DeleteAttributes(ctx context.Context, envelope *model.RequestEnvelope) error {
	delete(a.data, envelope.UserID())
	return nil
}

var _ ports.PersistenceAdapter = (*MockAdapter)(nil)

func userEnvelope(userID string) *model.RequestEnvelope {
	return &model.RequestEnvelope{
		Version: model.EnvelopeVersion,
		Context: &model.Context{
			System: &model.System{
				User: &model.User{UserID: userID},
			},
		},
		Request: &model.Request{Type: model.RequestTypeLaunch, RequestID: "request-1"},
	}
}
