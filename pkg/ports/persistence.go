package ports

import (
	"context"

	"github.com/aretw0/tendril/pkg/model"
)

// PersistenceAdapter stores attributes that outlive a single session. The
// request envelope identifies whose attributes are meant; implementations
// typically key on the envelope's user id.
//
// Implementations must be safe for concurrent use: separate dispatches may
// read and write different users' attributes at the same time.
type PersistenceAdapter interface {
	// GetAttributes loads the stored attributes for the envelope's subject.
	// found is false when nothing has been stored yet; that is not an error.
	GetAttributes(ctx context.Context, envelope *model.RequestEnvelope) (attributes map[string]any, found bool, err error)

	// SaveAttributes stores the attribute map, replacing any previous value.
	SaveAttributes(ctx context.Context, envelope *model.RequestEnvelope, attributes map[string]any) error

	// DeleteAttributes removes the stored attributes. Deleting attributes
	// that were never stored is a no-op.
	DeleteAttributes(ctx context.Context, envelope *model.RequestEnvelope) error
}
