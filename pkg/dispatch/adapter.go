package dispatch

import (
	"context"
	"fmt"

	"github.com/aretw0/tendril/pkg/model"
)

// HandlerAdapter executes a resolved handler. Supports probes whether the
// adapter understands the handler's shape; Execute invokes it. Adapters do
// not run chain-local interceptors, that is the dispatcher's job.
type HandlerAdapter interface {
	Supports(handler any) bool
	Execute(ctx context.Context, input *HandlerInput, handler any) (*model.Response, error)
}

// DefaultHandlerAdapter executes any RequestHandler directly.
type DefaultHandlerAdapter struct{}

// Supports reports whether the handler is a RequestHandler.
func (DefaultHandlerAdapter) Supports(handler any) bool {
	_, ok := handler.(RequestHandler)
	return ok
}

// Execute invokes the handler, propagating whatever it returns or fails
// with.
func (DefaultHandlerAdapter) Execute(ctx context.Context, input *HandlerInput, handler any) (*model.Response, error) {
	h, ok := handler.(RequestHandler)
	if !ok {
		return nil, fmt.Errorf("%w (handler type %T)", ErrUnsupportedHandler, handler)
	}
	return h.Handle(ctx, input)
}
