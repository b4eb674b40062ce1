package interfaces

import (
	"context"
	"net/url"
)

// Fetcher retrieves a remote document by plain GET, always revalidating
// against the origin
type Fetcher interface {
	// Fetch returns the body of a 2xx response. Failures wrap
	// types.ErrTransport or types.ErrHTTPStatus.
	Fetch(ctx context.Context, u *url.URL) ([]byte, error)
}
