package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/tendril/pkg/model"
)

// Dispatcher drives the pipeline described in the package documentation.
// Build one with NewDispatcher; it is immutable afterwards and safe for
// concurrent use.
type Dispatcher struct {
	mappers              []RequestMapper
	adapters             []HandlerAdapter
	exceptions           ExceptionMapper
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	logger               *slog.Logger
}

// DispatcherOption defines a functional option for configuring the
// Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRequestMappers appends request mappers. Mappers are tried in the
// order given until one resolves a chain.
func WithRequestMappers(mappers ...RequestMapper) DispatcherOption {
	return func(d *Dispatcher) {
		d.mappers = append(d.mappers, mappers...)
	}
}

// WithHandlerAdapters appends handler adapters. Adapters are tried in the
// order given until one supports the resolved handler.
func WithHandlerAdapters(adapters ...HandlerAdapter) DispatcherOption {
	return func(d *Dispatcher) {
		d.adapters = append(d.adapters, adapters...)
	}
}

// WithExceptionMapper sets the mapper consulted when the pipeline fails.
func WithExceptionMapper(m ExceptionMapper) DispatcherOption {
	return func(d *Dispatcher) {
		d.exceptions = m
	}
}

// WithRequestInterceptors appends dispatcher-global request interceptors.
func WithRequestInterceptors(interceptors ...RequestInterceptor) DispatcherOption {
	return func(d *Dispatcher) {
		d.requestInterceptors = append(d.requestInterceptors, interceptors...)
	}
}

// WithResponseInterceptors appends dispatcher-global response interceptors.
func WithResponseInterceptors(interceptors ...ResponseInterceptor) DispatcherOption {
	return func(d *Dispatcher) {
		d.responseInterceptors = append(d.responseInterceptors, interceptors...)
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher from the given options. A dispatcher
// without mappers rejects every request with ErrNotHandled; one without an
// exception mapper propagates failures as DispatchError.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one request through the pipeline and returns the response
// that should be sent back. A nil response with a nil error means the
// handler chose to produce no output.
func (d *Dispatcher) Dispatch(ctx context.Context, input *HandlerInput) (*model.Response, error) {
	resp, err := d.dispatchRequest(ctx, input)
	if err == nil {
		return resp, nil
	}
	// An unsupported handler is a wiring defect. It surfaces directly and
	// never reaches the exception chain.
	if errors.Is(err, ErrUnsupportedHandler) {
		return nil, err
	}
	return d.recoverFrom(ctx, input, err)
}

// recoverFrom offers the failure to the exception chain exactly once. A
// failure inside the chosen exception handler propagates as-is; there is no
// second recovery pass.
func (d *Dispatcher) recoverFrom(ctx context.Context, input *HandlerInput, cause error) (*model.Response, error) {
	d.logger.Debug("request handling failed", "request_type", input.RequestEnvelope().RequestType(), "err", cause)
	if d.exceptions != nil {
		if handler, ok := d.exceptions.HandlerFor(input, cause); ok {
			return handler.Handle(ctx, input, cause)
		}
	}
	return nil, &DispatchError{Err: cause}
}

// dispatchRequest runs the linear pipeline. A panic anywhere inside is
// converted to an error so it reaches the exception chain like any other
// failure.
func (d *Dispatcher) dispatchRequest(ctx context.Context, input *HandlerInput) (resp *model.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("request handling panicked: %v", r)
		}
	}()

	// 1. Global request interceptors
	for _, ri := range d.requestInterceptors {
		if err := ri.Process(ctx, input); err != nil {
			return nil, err
		}
	}

	// 2. Resolve the handler chain
	var chain *HandlerChain
	for _, m := range d.mappers {
		if c, ok := m.ChainFor(input); ok {
			chain = c
			break
		}
	}
	if chain == nil {
		return nil, fmt.Errorf("%w (request type %q)", ErrNotHandled, input.RequestEnvelope().RequestType())
	}

	// 3. Select an adapter for the handler's shape
	handler := chain.Handler()
	var adapter HandlerAdapter
	for _, a := range d.adapters {
		if a.Supports(handler) {
			adapter = a
			break
		}
	}
	if adapter == nil {
		return nil, fmt.Errorf("%w (handler type %T)", ErrUnsupportedHandler, handler)
	}

	// 4. Chain-local request interceptors, then the handler itself
	for _, ri := range chain.RequestInterceptors() {
		if err := ri.Process(ctx, input); err != nil {
			return nil, err
		}
	}
	resp, err = adapter.Execute(ctx, input, handler)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("request handled", "request_type", input.RequestEnvelope().RequestType())

	// 5. Chain-local response interceptors, then global ones. Each sees
	// the response the previous one returned.
	for _, pi := range chain.ResponseInterceptors() {
		resp, err = pi.Process(ctx, input, resp)
		if err != nil {
			return nil, err
		}
	}
	for _, pi := range d.responseInterceptors {
		resp, err = pi.Process(ctx, input, resp)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}
