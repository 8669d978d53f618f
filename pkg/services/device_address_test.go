package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tendril/pkg/model"
)

func addressTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/devices/device-1/settings/address", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(Address{
			AddressLine1: "1 Main St",
			City:         "Springfield",
			PostalCode:   "12345",
			CountryCode:  "US",
		})
	})
	mux.HandleFunc("GET /v1/devices/device-1/settings/address/countryAndPostalCode", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ShortAddress{CountryCode: "US", PostalCode: "12345"})
	})
	mux.HandleFunc("GET /v1/devices/device-empty/settings/address", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDeviceAddressFullAddress(t *testing.T) {
	srv := addressTestServer(t)
	factory := NewClientFactory(NewClient(), srv.URL, "token-1")

	addr, err := factory.DeviceAddress().FullAddress(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", addr.AddressLine1)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "US", addr.CountryCode)
}

func TestDeviceAddressCountryAndPostalCode(t *testing.T) {
	srv := addressTestServer(t)
	factory := NewClientFactory(NewClient(), srv.URL, "token-1")

	addr, err := factory.DeviceAddress().CountryAndPostalCode(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, "US", addr.CountryCode)
	assert.Equal(t, "12345", addr.PostalCode)
}

func TestDeviceAddressPermissionDenied(t *testing.T) {
	srv := addressTestServer(t)
	factory := NewClientFactory(NewClient(), srv.URL, "wrong-token")

	_, err := factory.DeviceAddress().FullAddress(context.Background(), "device-1")

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.StatusCode)
}

func TestDeviceAddressNotSet(t *testing.T) {
	srv := addressTestServer(t)
	factory := NewClientFactory(NewClient(), srv.URL, "token-1")

	_, err := factory.DeviceAddress().FullAddress(context.Background(), "device-empty")
	assert.ErrorIs(t, err, ErrAddressNotSet)
}

func TestNewClientFactoryForEnvelope(t *testing.T) {
	env := &model.RequestEnvelope{
		Context: &model.Context{
			System: &model.System{
				APIEndpoint:    "https://api.example.com/",
				APIAccessToken: "env-token",
			},
		},
		Request: &model.Request{Type: model.RequestTypeLaunch, RequestID: "r"},
	}

	factory := NewClientFactoryForEnvelope(NewClient(), env)
	assert.Equal(t, "https://api.example.com", factory.endpoint, "trailing slash trimmed")
	assert.Equal(t, "env-token", factory.token)
}

func TestClientTransportFailure(t *testing.T) {
	srv := addressTestServer(t)
	srv.Close()

	factory := NewClientFactory(NewClient(), srv.URL, "token-1")
	_, err := factory.DeviceAddress().FullAddress(context.Background(), "device-1")
	require.Error(t, err)

	var svcErr *ServiceError
	assert.False(t, errors.As(err, &svcErr), "transport failures are not service errors")
}
