package dispatch

import (
	"github.com/aretw0/tendril/pkg/attributes"
	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/response"
	"github.com/aretw0/tendril/pkg/services"
)

// HandlerInput is the context bundle handed to every handler and
// interceptor of one dispatch. It is created per dispatch and must not be
// shared across concurrent dispatches; the pipeline passes the same
// instance through every step of the call.
type HandlerInput struct {
	envelope  *model.RequestEnvelope
	attrs     *attributes.Manager
	services  *services.ClientFactory
	apiClient ports.APIClient
	builder   *response.Builder
}

// InputOption configures a HandlerInput.
type InputOption func(*HandlerInput)

// WithAttributesManager supplies a prepared attributes manager. Without
// this option the input gets a fresh manager with no persistence adapter.
func WithAttributesManager(m *attributes.Manager) InputOption {
	return func(in *HandlerInput) {
		in.attrs = m
	}
}

// WithServiceClientFactory supplies the factory for platform service
// clients.
func WithServiceClientFactory(f *services.ClientFactory) InputOption {
	return func(in *HandlerInput) {
		in.services = f
	}
}

// WithAPIClient exposes the raw API client to handlers.
func WithAPIClient(c ports.APIClient) InputOption {
	return func(in *HandlerInput) {
		in.apiClient = c
	}
}

// NewHandlerInput bundles an envelope with the ambient collaborators of one
// dispatch.
func NewHandlerInput(envelope *model.RequestEnvelope, opts ...InputOption) *HandlerInput {
	in := &HandlerInput{
		envelope: envelope,
		builder:  response.NewBuilder(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.attrs == nil {
		in.attrs = attributes.NewManager(envelope)
	}
	return in
}

// RequestEnvelope returns the inbound envelope.
func (in *HandlerInput) RequestEnvelope() *model.RequestEnvelope {
	return in.envelope
}

// Attributes returns the dispatch's attribute manager.
func (in *HandlerInput) Attributes() *attributes.Manager {
	return in.attrs
}

// ServiceClientFactory returns the platform service client factory, or nil
// when the skill was built without an API client.
func (in *HandlerInput) ServiceClientFactory() *services.ClientFactory {
	return in.services
}

// APIClient returns the raw API client, or nil when none is configured.
func (in *HandlerInput) APIClient() ports.APIClient {
	return in.apiClient
}

// ResponseBuilder returns the input's response builder. All pipeline steps
// of the dispatch see the same builder instance.
func (in *HandlerInput) ResponseBuilder() *response.Builder {
	return in.builder
}
