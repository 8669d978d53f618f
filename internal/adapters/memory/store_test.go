package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/tendril/internal/adapters/memory"
	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.New()
	ports.RunPersistenceAdapterContract(t, store)
}

func TestMemoryStore_CopiesOnReadAndWrite(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	envelope := &model.RequestEnvelope{
		Version: model.EnvelopeVersion,
		Context: &model.Context{
			System: &model.System{User: &model.User{UserID: "user-copy"}},
		},
		Request: &model.Request{Type: model.RequestTypeLaunch, RequestID: "req-copy"},
	}

	saved := map[string]any{"color": "green"}
	if err := store.SaveAttributes(ctx, envelope, saved); err != nil {
		t.Fatalf("SaveAttributes() error = %v", err)
	}

	// Mutating the caller's map after saving must not affect the store.
	saved["color"] = "red"

	loaded, found, err := store.GetAttributes(ctx, envelope)
	if err != nil || !found {
		t.Fatalf("GetAttributes() = (found=%v, err=%v)", found, err)
	}
	if loaded["color"] != "green" {
		t.Errorf("stored color = %v, want green", loaded["color"])
	}

	// Mutating the returned map must not affect the store either.
	loaded["color"] = "blue"

	again, _, err := store.GetAttributes(ctx, envelope)
	if err != nil {
		t.Fatalf("GetAttributes() error = %v", err)
	}
	if again["color"] != "green" {
		t.Errorf("stored color after mutation = %v, want green", again["color"])
	}
}
