package dispatch

import (
	"context"

	"github.com/aretw0/tendril/pkg/model"
)

// RequestHandler is the capability the dispatch core routes to: a predicate
// probing whether the handler wants the request, and the invocation itself.
// CanHandle must be a side-effect-free query; it may be called for requests
// the handler never ends up handling. A nil response with a nil error is a
// valid outcome meaning "no output".
type RequestHandler interface {
	CanHandle(input *HandlerInput) bool
	Handle(ctx context.Context, input *HandlerInput) (*model.Response, error)
}

// ExceptionHandler recovers from a failure raised while handling a request.
// CanHandle probes on the (input, error) pair; Handle produces the response
// that stands in for the failed dispatch.
type ExceptionHandler interface {
	CanHandle(input *HandlerInput, err error) bool
	Handle(ctx context.Context, input *HandlerInput, err error) (*model.Response, error)
}

// HandleFunc is the invocation half of a request handler.
type HandleFunc func(ctx context.Context, input *HandlerInput) (*model.Response, error)

// NewHandler pairs a predicate with a handle func into a RequestHandler.
// Predicates compose well with the predicates package.
func NewHandler(canHandle func(input *HandlerInput) bool, handle HandleFunc) RequestHandler {
	return &predicateHandler{canHandle: canHandle, handle: handle}
}

type predicateHandler struct {
	canHandle func(input *HandlerInput) bool
	handle    HandleFunc
}

func (h *predicateHandler) CanHandle(input *HandlerInput) bool {
	return h.canHandle(input)
}

func (h *predicateHandler) Handle(ctx context.Context, input *HandlerInput) (*model.Response, error) {
	return h.handle(ctx, input)
}

// ExceptionHandleFunc is the recovery half of an exception handler.
type ExceptionHandleFunc func(ctx context.Context, input *HandlerInput, err error) (*model.Response, error)

// NewExceptionHandler pairs a predicate with a recovery func into an
// ExceptionHandler.
func NewExceptionHandler(canHandle func(input *HandlerInput, err error) bool, handle ExceptionHandleFunc) ExceptionHandler {
	return &predicateExceptionHandler{canHandle: canHandle, handle: handle}
}

type predicateExceptionHandler struct {
	canHandle func(input *HandlerInput, err error) bool
	handle    ExceptionHandleFunc
}

func (h *predicateExceptionHandler) CanHandle(input *HandlerInput, err error) bool {
	return h.canHandle(input, err)
}

func (h *predicateExceptionHandler) Handle(ctx context.Context, input *HandlerInput, err error) (*model.Response, error) {
	return h.handle(ctx, input, err)
}
