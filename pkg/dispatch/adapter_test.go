package dispatch

import (
	"errors"
	"testing"

	"github.com/aretw0/tendril/pkg/model"
)

func TestHandlerAdapter_Supports(t *testing.T) {
	adapter := DefaultHandlerAdapter{}

	if !adapter.Supports(&stubHandler{}) {
		t.Error("expected request handlers to be supported")
	}
	if adapter.Supports("not a request handler") {
		t.Error("expected foreign handler shapes to be rejected")
	}
}

func TestHandlerAdapter_ExecuteInvokesHandler(t *testing.T) {
	want := &model.Response{}
	adapter := DefaultHandlerAdapter{}

	got, err := adapter.Execute(t.Context(), stubInput(), &stubHandler{resp: want})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != want {
		t.Error("expected the handler's response to be returned")
	}
}

func TestHandlerAdapter_ExecuteRejectsForeignShape(t *testing.T) {
	adapter := DefaultHandlerAdapter{}

	_, err := adapter.Execute(t.Context(), stubInput(), 42)
	if !errors.Is(err, ErrUnsupportedHandler) {
		t.Fatalf("expected ErrUnsupportedHandler, got %v", err)
	}
}
