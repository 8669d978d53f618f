package services

import (
	"fmt"
	"strings"

	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
)

// ServiceError reports a non-2xx answer from a platform service.
type ServiceError struct {
	StatusCode int
	Body       []byte
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("platform service returned status %d", e.StatusCode)
}

// ClientFactory hands out service clients bound to one invocation's API
// endpoint and access token.
type ClientFactory struct {
	client   ports.APIClient
	endpoint string
	token    string
}

// NewClientFactory builds a factory from explicit endpoint and token.
func NewClientFactory(client ports.APIClient, endpoint, token string) *ClientFactory {
	return &ClientFactory{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
	}
}

// NewClientFactoryForEnvelope builds a factory from the endpoint and token
// the platform stamped on the request envelope.
func NewClientFactoryForEnvelope(client ports.APIClient, envelope *model.RequestEnvelope) *ClientFactory {
	return NewClientFactory(client, envelope.APIEndpoint(), envelope.APIAccessToken())
}

// DeviceAddress returns the device address service client.
func (f *ClientFactory) DeviceAddress() *DeviceAddressService {
	return &DeviceAddressService{
		client:   f.client,
		endpoint: f.endpoint,
		token:    f.token,
	}
}
