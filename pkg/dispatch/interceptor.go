package dispatch

import (
	"context"

	"github.com/aretw0/tendril/pkg/model"
)

// RequestInterceptor runs before handler resolution (global) or before the
// handler invocation (chain-local). An error aborts the pipeline and is
// offered to the exception chain.
type RequestInterceptor interface {
	Process(ctx context.Context, input *HandlerInput) error
}

// RequestInterceptorFunc adapts a func into a RequestInterceptor.
type RequestInterceptorFunc func(ctx context.Context, input *HandlerInput) error

func (f RequestInterceptorFunc) Process(ctx context.Context, input *HandlerInput) error {
	return f(ctx, input)
}

// ResponseInterceptor runs after the handler produced a response. It
// returns the response to carry forward, so an interceptor may replace or
// augment it, or hand back what it received. The in-flight response may be
// nil when the handler produced no output.
type ResponseInterceptor interface {
	Process(ctx context.Context, input *HandlerInput, resp *model.Response) (*model.Response, error)
}

// ResponseInterceptorFunc adapts a func into a ResponseInterceptor.
type ResponseInterceptorFunc func(ctx context.Context, input *HandlerInput, resp *model.Response) (*model.Response, error)

func (f ResponseInterceptorFunc) Process(ctx context.Context, input *HandlerInput, resp *model.Response) (*model.Response, error) {
	return f(ctx, input, resp)
}
