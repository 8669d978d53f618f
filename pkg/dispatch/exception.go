package dispatch

// ExceptionMapper resolves the exception handler responsible for a failure.
// Returning ok=false means no handler claims it and the failure propagates.
type ExceptionMapper interface {
	HandlerFor(input *HandlerInput, err error) (ExceptionHandler, bool)
}

// DefaultExceptionMapper resolves over an ordered handler list with the
// same first-match-wins semantics as request mapping, keyed on the
// (input, error) pair.
type DefaultExceptionMapper struct {
	handlers []ExceptionHandler
}

// NewExceptionMapper builds a mapper over handlers in the given order.
func NewExceptionMapper(handlers ...ExceptionHandler) *DefaultExceptionMapper {
	return &DefaultExceptionMapper{handlers: handlers}
}

// HandlerFor scans the handlers in registration order and returns the first
// that can handle the failure.
func (m *DefaultExceptionMapper) HandlerFor(input *HandlerInput, err error) (ExceptionHandler, bool) {
	for _, handler := range m.handlers {
		if handler.CanHandle(input, err) {
			return handler, true
		}
	}
	return nil, false
}
