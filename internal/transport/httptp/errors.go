package httptp

import "errors"

var (
	// ErrInvalidEndpoint indicates the endpoint is not an absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("httptp: endpoint must be an absolute http or https URL")
	// ErrResponseTooLarge indicates the body exceeded Options.MaxResponseBytes.
	ErrResponseTooLarge = errors.New("httptp: response body too large")
)
