package dispatch

// HandlerChain bundles one handler with interceptors scoped to that
// handler's invocation only. The handler is held as any so alternate
// handler shapes can travel through custom mappers and adapters; the
// default mapper and adapter work with RequestHandler values.
type HandlerChain struct {
	handler              any
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// ChainOption configures a HandlerChain.
type ChainOption func(*HandlerChain)

// WithChainRequestInterceptors appends interceptors run before this chain's
// handler, inside the dispatcher-global ones.
func WithChainRequestInterceptors(interceptors ...RequestInterceptor) ChainOption {
	return func(c *HandlerChain) {
		c.requestInterceptors = append(c.requestInterceptors, interceptors...)
	}
}

// WithChainResponseInterceptors appends interceptors run after this chain's
// handler, before the dispatcher-global ones.
func WithChainResponseInterceptors(interceptors ...ResponseInterceptor) ChainOption {
	return func(c *HandlerChain) {
		c.responseInterceptors = append(c.responseInterceptors, interceptors...)
	}
}

// NewHandlerChain bundles a handler with chain-scoped interceptors.
func NewHandlerChain(handler any, opts ...ChainOption) *HandlerChain {
	c := &HandlerChain{handler: handler}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handler returns the chain's handler.
func (c *HandlerChain) Handler() any {
	return c.handler
}

// RequestInterceptors returns the chain-scoped request interceptors in
// registration order.
func (c *HandlerChain) RequestInterceptors() []RequestInterceptor {
	return c.requestInterceptors
}

// ResponseInterceptors returns the chain-scoped response interceptors in
// registration order.
func (c *HandlerChain) ResponseInterceptors() []ResponseInterceptor {
	return c.responseInterceptors
}
