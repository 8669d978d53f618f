package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/model"
)

// fixedChainMapper resolves every input to one fixed chain, bypassing the
// handler-shape check of the default mapper.
type fixedChainMapper struct {
	chain *dispatch.HandlerChain
}

func (m fixedChainMapper) ChainFor(input *dispatch.HandlerInput) (*dispatch.HandlerChain, bool) {
	return m.chain, true
}

// countingExceptionMapper records how often the dispatcher consults it.
type countingExceptionMapper struct {
	inner dispatch.ExceptionMapper
	calls int
}

func (m *countingExceptionMapper) HandlerFor(input *dispatch.HandlerInput, err error) (dispatch.ExceptionHandler, bool) {
	m.calls++
	if m.inner == nil {
		return nil, false
	}
	return m.inner.HandlerFor(input, err)
}

func intentEnvelope(name string) *model.RequestEnvelope {
	return &model.RequestEnvelope{
		Version: "1.0",
		Session: &model.Session{SessionID: "session-1"},
		Request: &model.Request{
			Type:      model.RequestTypeIntent,
			RequestID: "request-1",
			Intent:    &model.Intent{Name: name},
		},
	}
}

func speak(text string) *model.Response {
	return &model.Response{
		OutputSpeech: &model.OutputSpeech{Type: model.SpeechTypePlainText, Text: text},
	}
}

func intentHandler(name string, resp *model.Response) dispatch.RequestHandler {
	return dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool {
			return input.RequestEnvelope().IntentName() == name
		},
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return resp, nil
		},
	)
}

func catchAllHandler(resp *model.Response) dispatch.RequestHandler {
	return dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return resp, nil
		},
	)
}

func chainsOf(handlers ...dispatch.RequestHandler) []*dispatch.HandlerChain {
	chains := make([]*dispatch.HandlerChain, 0, len(handlers))
	for _, h := range handlers {
		chains = append(chains, dispatch.NewHandlerChain(h))
	}
	return chains
}

func newDispatcher(chains []*dispatch.HandlerChain, opts ...dispatch.DispatcherOption) *dispatch.Dispatcher {
	base := []dispatch.DispatcherOption{
		dispatch.WithRequestMappers(dispatch.NewRequestMapper(chains...)),
		dispatch.WithHandlerAdapters(dispatch.DefaultHandlerAdapter{}),
	}
	return dispatch.NewDispatcher(append(base, opts...)...)
}

func TestDispatcher_RoutesByIntent(t *testing.T) {
	fooResp := speak("foo")
	barResp := speak("bar")
	d := newDispatcher(chainsOf(
		intentHandler("FooIntent", fooResp),
		intentHandler("BarIntent", barResp),
	))

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, fooResp, resp)

	resp, err = d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("BarIntent")))
	require.NoError(t, err)
	assert.Same(t, barResp, resp)
}

func TestDispatcher_RegistrationOrderWins(t *testing.T) {
	fooResp := speak("foo")
	allResp := speak("catch-all")

	// A catch-all registered first shadows every later handler.
	d := newDispatcher(chainsOf(
		catchAllHandler(allResp),
		intentHandler("FooIntent", fooResp),
	))
	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, allResp, resp)

	// Registered last, it only sees what the earlier handlers declined.
	d = newDispatcher(chainsOf(
		intentHandler("FooIntent", fooResp),
		catchAllHandler(allResp),
	))
	resp, err = d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, fooResp, resp)

	resp, err = d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("BarIntent")))
	require.NoError(t, err)
	assert.Same(t, allResp, resp)
}

func TestDispatcher_MappersTriedInOrder(t *testing.T) {
	firstResp := speak("first mapper")
	secondResp := speak("second mapper")
	d := dispatch.NewDispatcher(
		dispatch.WithRequestMappers(
			dispatch.NewRequestMapper(chainsOf(catchAllHandler(firstResp))...),
			dispatch.NewRequestMapper(chainsOf(catchAllHandler(secondResp))...),
		),
		dispatch.WithHandlerAdapters(dispatch.DefaultHandlerAdapter{}),
	)

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, firstResp, resp)
}

func TestDispatcher_NoMatchingHandler(t *testing.T) {
	d := newDispatcher(chainsOf(intentHandler("FooIntent", speak("foo"))))

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("BarIntent")))
	require.Error(t, err)
	assert.Nil(t, resp)

	var de *dispatch.DispatchError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, dispatch.ErrNotHandled)
	assert.Contains(t, err.Error(), model.RequestTypeIntent)
}

func TestDispatcher_NoMatchingHandlerReachesExceptionChain(t *testing.T) {
	fallback := speak("sorry")
	var seen error
	d := newDispatcher(nil, dispatch.WithExceptionMapper(dispatch.NewExceptionMapper(
		dispatch.NewExceptionHandler(
			func(input *dispatch.HandlerInput, err error) bool { return true },
			func(ctx context.Context, input *dispatch.HandlerInput, err error) (*model.Response, error) {
				seen = err
				return fallback, nil
			},
		),
	)))

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, fallback, resp)
	assert.ErrorIs(t, seen, dispatch.ErrNotHandled)
}

func TestDispatcher_HandlerErrorOfferedInOrder(t *testing.T) {
	errBoom := errors.New("boom")
	failing := dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return nil, errBoom
		},
	)

	firstResp := speak("first")
	secondResp := speak("second")
	matchBoom := func(input *dispatch.HandlerInput, err error) bool {
		return errors.Is(err, errBoom)
	}
	never := func(input *dispatch.HandlerInput, err error) bool { return false }
	reply := func(resp *model.Response) dispatch.ExceptionHandleFunc {
		return func(ctx context.Context, input *dispatch.HandlerInput, err error) (*model.Response, error) {
			return resp, nil
		}
	}

	// The first handler declines, so the second one recovers.
	d := newDispatcher(chainsOf(failing), dispatch.WithExceptionMapper(dispatch.NewExceptionMapper(
		dispatch.NewExceptionHandler(never, reply(firstResp)),
		dispatch.NewExceptionHandler(matchBoom, reply(secondResp)),
	)))
	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, secondResp, resp)

	// With both matching, the one registered first wins.
	d = newDispatcher(chainsOf(failing), dispatch.WithExceptionMapper(dispatch.NewExceptionMapper(
		dispatch.NewExceptionHandler(matchBoom, reply(firstResp)),
		dispatch.NewExceptionHandler(matchBoom, reply(secondResp)),
	)))
	resp, err = d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, firstResp, resp)
}

func TestDispatcher_UnrecoveredHandlerError(t *testing.T) {
	errBoom := errors.New("boom")
	failing := dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return nil, errBoom
		},
	)

	d := newDispatcher(chainsOf(failing))
	_, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.Error(t, err)

	var de *dispatch.DispatchError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, errBoom)
}

func TestDispatcher_ExceptionHandlerFailurePropagates(t *testing.T) {
	errBoom := errors.New("boom")
	errRecovery := errors.New("recovery failed too")
	failing := dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return nil, errBoom
		},
	)
	mapper := &countingExceptionMapper{inner: dispatch.NewExceptionMapper(
		dispatch.NewExceptionHandler(
			func(input *dispatch.HandlerInput, err error) bool { return true },
			func(ctx context.Context, input *dispatch.HandlerInput, err error) (*model.Response, error) {
				return nil, errRecovery
			},
		),
	)}

	d := newDispatcher(chainsOf(failing), dispatch.WithExceptionMapper(mapper))
	_, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))

	// The recovery failure comes back as-is. There is no second pass over
	// the exception chain and no DispatchError wrapping.
	require.ErrorIs(t, err, errRecovery)
	var de *dispatch.DispatchError
	assert.False(t, errors.As(err, &de))
	assert.Equal(t, 1, mapper.calls)
}

func TestDispatcher_UnsupportedHandlerIsFatal(t *testing.T) {
	mapper := &countingExceptionMapper{inner: dispatch.NewExceptionMapper(
		dispatch.NewExceptionHandler(
			func(input *dispatch.HandlerInput, err error) bool { return true },
			func(ctx context.Context, input *dispatch.HandlerInput, err error) (*model.Response, error) {
				return speak("recovered"), nil
			},
		),
	)}
	d := dispatch.NewDispatcher(
		dispatch.WithRequestMappers(fixedChainMapper{chain: dispatch.NewHandlerChain(42)}),
		dispatch.WithHandlerAdapters(dispatch.DefaultHandlerAdapter{}),
		dispatch.WithExceptionMapper(mapper),
	)

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.ErrorIs(t, err, dispatch.ErrUnsupportedHandler)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "int")

	// A wiring defect is never offered to the exception chain.
	assert.Equal(t, 0, mapper.calls)
}

func TestDispatcher_InterceptorNesting(t *testing.T) {
	var trace []string
	recordReq := func(name string) dispatch.RequestInterceptor {
		return dispatch.RequestInterceptorFunc(func(ctx context.Context, input *dispatch.HandlerInput) error {
			trace = append(trace, name)
			return nil
		})
	}
	recordResp := func(name string) dispatch.ResponseInterceptor {
		return dispatch.ResponseInterceptorFunc(func(ctx context.Context, input *dispatch.HandlerInput, resp *model.Response) (*model.Response, error) {
			trace = append(trace, name)
			return resp, nil
		})
	}
	handler := dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			trace = append(trace, "handler")
			return speak("ok"), nil
		},
	)
	chain := dispatch.NewHandlerChain(handler,
		dispatch.WithChainRequestInterceptors(recordReq("chain-request")),
		dispatch.WithChainResponseInterceptors(recordResp("chain-response")),
	)

	d := dispatch.NewDispatcher(
		dispatch.WithRequestMappers(dispatch.NewRequestMapper(chain)),
		dispatch.WithHandlerAdapters(dispatch.DefaultHandlerAdapter{}),
		dispatch.WithRequestInterceptors(recordReq("global-request-1"), recordReq("global-request-2")),
		dispatch.WithResponseInterceptors(recordResp("global-response-1"), recordResp("global-response-2")),
	)

	_, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"global-request-1",
		"global-request-2",
		"chain-request",
		"handler",
		"chain-response",
		"global-response-1",
		"global-response-2",
	}, trace)
}

func TestDispatcher_RequestInterceptorFailureShortCircuits(t *testing.T) {
	errVeto := errors.New("vetoed")
	handled := false
	handler := dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			handled = true
			return speak("ok"), nil
		},
	)
	fallback := speak("sorry")
	var seen error

	d := newDispatcher(chainsOf(handler),
		dispatch.WithRequestInterceptors(dispatch.RequestInterceptorFunc(
			func(ctx context.Context, input *dispatch.HandlerInput) error {
				return errVeto
			},
		)),
		dispatch.WithExceptionMapper(dispatch.NewExceptionMapper(
			dispatch.NewExceptionHandler(
				func(input *dispatch.HandlerInput, err error) bool { return true },
				func(ctx context.Context, input *dispatch.HandlerInput, err error) (*model.Response, error) {
					seen = err
					return fallback, nil
				},
			),
		)),
	)

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, fallback, resp)
	assert.False(t, handled, "handler must not run after an interceptor veto")
	assert.ErrorIs(t, seen, errVeto)
}

func TestDispatcher_ResponseInterceptorsReplaceResponse(t *testing.T) {
	original := speak("original")
	replaced := speak("replaced")
	final := speak("final")

	handler := catchAllHandler(original)
	chain := dispatch.NewHandlerChain(handler,
		dispatch.WithChainResponseInterceptors(dispatch.ResponseInterceptorFunc(
			func(ctx context.Context, input *dispatch.HandlerInput, resp *model.Response) (*model.Response, error) {
				assert.Same(t, original, resp)
				return replaced, nil
			},
		)),
	)

	d := dispatch.NewDispatcher(
		dispatch.WithRequestMappers(dispatch.NewRequestMapper(chain)),
		dispatch.WithHandlerAdapters(dispatch.DefaultHandlerAdapter{}),
		dispatch.WithResponseInterceptors(dispatch.ResponseInterceptorFunc(
			func(ctx context.Context, input *dispatch.HandlerInput, resp *model.Response) (*model.Response, error) {
				assert.Same(t, replaced, resp)
				return final, nil
			},
		)),
	)

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, final, resp)
}

func TestDispatcher_ResponseInterceptorFailureRecovered(t *testing.T) {
	errAudit := errors.New("audit rejected response")
	fallback := speak("sorry")
	var seen error

	d := newDispatcher(chainsOf(catchAllHandler(speak("ok"))),
		dispatch.WithResponseInterceptors(dispatch.ResponseInterceptorFunc(
			func(ctx context.Context, input *dispatch.HandlerInput, resp *model.Response) (*model.Response, error) {
				return nil, errAudit
			},
		)),
		dispatch.WithExceptionMapper(dispatch.NewExceptionMapper(
			dispatch.NewExceptionHandler(
				func(input *dispatch.HandlerInput, err error) bool { return true },
				func(ctx context.Context, input *dispatch.HandlerInput, err error) (*model.Response, error) {
					seen = err
					return fallback, nil
				},
			),
		)),
	)

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, fallback, resp)
	assert.ErrorIs(t, seen, errAudit)
}

func TestDispatcher_PanicBecomesDispatchError(t *testing.T) {
	panicking := dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			panic("kaboom")
		},
	)

	d := newDispatcher(chainsOf(panicking))
	_, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.Error(t, err)

	var de *dispatch.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, err.Error(), "panicked")
	assert.Contains(t, err.Error(), "kaboom")
}

func TestDispatcher_PanicRecoveredByExceptionChain(t *testing.T) {
	panicking := dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			panic("kaboom")
		},
	)
	fallback := speak("sorry")
	var seen error

	d := newDispatcher(chainsOf(panicking), dispatch.WithExceptionMapper(dispatch.NewExceptionMapper(
		dispatch.NewExceptionHandler(
			func(input *dispatch.HandlerInput, err error) bool { return true },
			func(ctx context.Context, input *dispatch.HandlerInput, err error) (*model.Response, error) {
				seen = err
				return fallback, nil
			},
		),
	)))

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Same(t, fallback, resp)
	require.Error(t, seen)
	assert.Contains(t, seen.Error(), "kaboom")
}

func TestDispatcher_NilResponseIsValid(t *testing.T) {
	silent := dispatch.NewHandler(
		func(input *dispatch.HandlerInput) bool { return true },
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return nil, nil
		},
	)
	sawNil := false

	d := newDispatcher(chainsOf(silent),
		dispatch.WithResponseInterceptors(dispatch.ResponseInterceptorFunc(
			func(ctx context.Context, input *dispatch.HandlerInput, resp *model.Response) (*model.Response, error) {
				sawNil = resp == nil
				return resp, nil
			},
		)),
	)

	resp, err := d.Dispatch(t.Context(), dispatch.NewHandlerInput(intentEnvelope("FooIntent")))
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.True(t, sawNil, "response interceptors must still run for silent handlers")
}
