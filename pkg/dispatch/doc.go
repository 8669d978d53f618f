/*
Package dispatch routes one inbound request envelope to the first registered
handler that claims it, runs interceptors around the invocation, and
recovers from failures through an ordered chain of exception handlers.

# Pipeline

One call to Dispatcher.Dispatch is one linear pass:

 1. Global request interceptors, in registration order.
 2. Chain resolution: request mappers are tried in registration order and
    the first chain whose handler reports CanHandle wins.
 3. Adapter resolution: the first registered adapter that supports the
    resolved handler executes it.
 4. Chain-local request interceptors, the handler, chain-local response
    interceptors, then global response interceptors. Response interceptors
    may replace the in-flight response.
 5. On any failure from steps 1 to 4, the exception mapper is consulted
    exactly once; a matching exception handler's result becomes the dispatch
    result. With no match the original failure is returned wrapped in a
    DispatchError.

Registration order is the only priority mechanism: resolution is a linear
scan with first-match-wins, never a lookup table.

A Dispatcher is immutable after construction and safe for concurrent use;
each dispatch works on its own HandlerInput.
*/
package dispatch
