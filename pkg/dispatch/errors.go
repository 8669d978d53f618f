package dispatch

import (
	"errors"
	"fmt"
)

// ErrNotHandled is returned when no registered request mapper produced a
// chain for the input. It reaches the exception chain, so skills can catch
// it with a catch-all exception handler.
var ErrNotHandled = errors.New("no request handler can handle the request")

// ErrUnsupportedHandler is returned when a chain was resolved but no
// registered adapter supports its handler. This is a wiring defect, not a
// runtime condition, and is never offered to the exception chain.
var ErrUnsupportedHandler = errors.New("no handler adapter supports the resolved handler")

// DispatchError wraps a failure that escaped the exception chain, either
// because no exception handler matched or none was configured. The original
// failure is available through Unwrap.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("request dispatch failed: %v", e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
