package types

import "github.com/m-mizutani/goerr/v2"

// Error kinds surfaced by catalog and resource loading. Callers match them
// with errors.Is; the wrapping error carries the detail.
var (
	// ErrInvalidURL means a base, document or resource URL could not be parsed
	ErrInvalidURL = goerr.New("invalid URL")

	// ErrTransport means the request failed before a response was received
	ErrTransport = goerr.New("transport error")

	// ErrHTTPStatus means a response arrived with a non-2xx status
	ErrHTTPStatus = goerr.New("unexpected HTTP status")

	// ErrDecode means the response body did not have the expected shape
	ErrDecode = goerr.New("decode error")
)
