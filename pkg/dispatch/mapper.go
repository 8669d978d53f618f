package dispatch

// RequestMapper resolves the chain responsible for an input. Returning
// ok=false means no chain matched, which is a normal outcome, not an error.
type RequestMapper interface {
	ChainFor(input *HandlerInput) (*HandlerChain, bool)
}

// DefaultRequestMapper resolves over an ordered chain list: the first chain
// whose RequestHandler reports CanHandle wins. Chains holding other handler
// shapes are skipped; those need a custom mapper.
type DefaultRequestMapper struct {
	chains []*HandlerChain
}

// NewRequestMapper builds a mapper over chains in the given order. The
// order is the resolution priority.
func NewRequestMapper(chains ...*HandlerChain) *DefaultRequestMapper {
	return &DefaultRequestMapper{chains: chains}
}

// ChainFor scans the chains in registration order and returns the first
// whose handler can handle the input.
func (m *DefaultRequestMapper) ChainFor(input *HandlerInput) (*HandlerChain, bool) {
	for _, chain := range m.chains {
		handler, ok := chain.Handler().(RequestHandler)
		if !ok {
			continue
		}
		if handler.CanHandle(input) {
			return chain, true
		}
	}
	return nil, false
}
