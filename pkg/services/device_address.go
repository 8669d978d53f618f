package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/tendril/pkg/ports"
)

// ErrAddressNotSet is returned when the user has not configured an address
// for the device.
var ErrAddressNotSet = errors.New("device address not set")

// Address is the full postal address configured for a device.
type Address struct {
	AddressLine1     string `json:"addressLine1"`
	AddressLine2     string `json:"addressLine2"`
	AddressLine3     string `json:"addressLine3"`
	City             string `json:"city"`
	StateOrRegion    string `json:"stateOrRegion"`
	DistrictOrCounty string `json:"districtOrCounty"`
	PostalCode       string `json:"postalCode"`
	CountryCode      string `json:"countryCode"`
}

// ShortAddress is the country and postal code subset of a device address.
type ShortAddress struct {
	CountryCode string `json:"countryCode"`
	PostalCode  string `json:"postalCode"`
}

// DeviceAddressService reads the address a user configured for their
// device. Reading requires the user to have granted the address permission;
// without it the platform answers 403, surfaced here as a ServiceError.
type DeviceAddressService struct {
	client   ports.APIClient
	endpoint string
	token    string
}

// FullAddress fetches the device's complete address.
func (s *DeviceAddressService) FullAddress(ctx context.Context, deviceID string) (*Address, error) {
	var addr Address
	url := fmt.Sprintf("%s/v1/devices/%s/settings/address", s.endpoint, deviceID)
	if err := s.get(ctx, url, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

// CountryAndPostalCode fetches the country and postal code only, which
// needs a narrower permission than the full address.
func (s *DeviceAddressService) CountryAndPostalCode(ctx context.Context, deviceID string) (*ShortAddress, error) {
	var addr ShortAddress
	url := fmt.Sprintf("%s/v1/devices/%s/settings/address/countryAndPostalCode", s.endpoint, deviceID)
	if err := s.get(ctx, url, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *DeviceAddressService) get(ctx context.Context, url string, target any) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)
	header.Set("Accept", "application/json")

	resp, err := s.client.Invoke(ctx, &ports.APIRequest{
		Method: http.MethodGet,
		URL:    url,
		Header: header,
	})
	if err != nil {
		return fmt.Errorf("calling device address service: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return ErrAddressNotSet
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &ServiceError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("decoding device address response: %w", err)
	}
	return nil
}
