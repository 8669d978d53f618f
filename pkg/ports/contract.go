package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tendril/pkg/model"
)

// RunPersistenceAdapterContract runs a suite of tests verifying that a
// PersistenceAdapter implementation adheres to the interface contract the
// attributes manager relies on.
func RunPersistenceAdapterContract(t *testing.T, adapter PersistenceAdapter) {
	ctx := context.Background()
	stamp := time.Now().Format("20060102150405")
	envelope := contractEnvelope("contract-user-" + stamp)

	t.Run("Get Missing", func(t *testing.T) {
		_, found, err := adapter.GetAttributes(ctx, contractEnvelope("never-seen-"+stamp))
		require.NoError(t, err, "missing attributes are not an error")
		assert.False(t, found)
	})

	t.Run("Save and Get", func(t *testing.T) {
		attrs := map[string]any{"game": "started", "score": 42}

		err := adapter.SaveAttributes(ctx, envelope, attrs)
		require.NoError(t, err, "Save should not return error")

		loaded, found, err := adapter.GetAttributes(ctx, envelope)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "started", loaded["game"])
		// JSON-backed adapters round numbers through float64; only presence
		// is part of the contract.
		assert.NotNil(t, loaded["score"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, adapter.SaveAttributes(ctx, envelope, map[string]any{"round": "one"}))
		require.NoError(t, adapter.SaveAttributes(ctx, envelope, map[string]any{"winner": "me"}))

		loaded, found, err := adapter.GetAttributes(ctx, envelope)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "me", loaded["winner"])
		assert.NotContains(t, loaded, "round", "save replaces, not merges")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, adapter.SaveAttributes(ctx, envelope, map[string]any{"gone": "soon"}))

		err := adapter.DeleteAttributes(ctx, envelope)
		require.NoError(t, err, "Delete should not return error")

		_, found, err := adapter.GetAttributes(ctx, envelope)
		require.NoError(t, err)
		assert.False(t, found, "Get after Delete should report missing")
	})

	t.Run("Delete Missing", func(t *testing.T) {
		err := adapter.DeleteAttributes(ctx, contractEnvelope("never-stored-"+stamp))
		assert.NoError(t, err, "deleting never-stored attributes is a no-op")
	})

	t.Run("Isolation", func(t *testing.T) {
		first := contractEnvelope("first-" + stamp)
		second := contractEnvelope("second-" + stamp)

		require.NoError(t, adapter.SaveAttributes(ctx, first, map[string]any{"owner": "first"}))
		require.NoError(t, adapter.SaveAttributes(ctx, second, map[string]any{"owner": "second"}))

		defer func() {
			_ = adapter.DeleteAttributes(ctx, first)
			_ = adapter.DeleteAttributes(ctx, second)
		}()

		loaded, found, err := adapter.GetAttributes(ctx, first)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "first", loaded["owner"])
	})
}

func contractEnvelope(userID string) *model.RequestEnvelope {
	return &model.RequestEnvelope{
		Version: model.EnvelopeVersion,
		Context: &model.Context{
			System: &model.System{
				User: &model.User{UserID: userID},
			},
		},
		Request: &model.Request{Type: model.RequestTypeLaunch, RequestID: "contract-req"},
	}
}
