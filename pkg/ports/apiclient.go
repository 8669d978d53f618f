package ports

import (
	"context"
	"net/http"
)

// APIRequest is one HTTP exchange request as seen by service clients.
type APIRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// APIResponse is the raw result of an APIRequest.
type APIResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// APIClient performs HTTP exchanges on behalf of platform service clients.
// Implementations return an error only for transport failures; non-2xx
// status codes come back as a normal APIResponse for the caller to
// interpret.
type APIClient interface {
	Invoke(ctx context.Context, req *APIRequest) (*APIResponse, error)
}
