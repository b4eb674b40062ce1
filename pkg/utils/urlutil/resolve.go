package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/m-mizutani/appdeck/pkg/domain/types"
)

var (
	// ErrInvalidBase is returned when the base URL cannot serve as a resolution base
	ErrInvalidBase = fmt.Errorf("%w: invalid base", types.ErrInvalidURL)

	// ErrInvalidRelativeReference is returned when the name cannot be resolved against the base
	ErrInvalidRelativeReference = fmt.Errorf("%w: invalid relative reference", types.ErrInvalidURL)
)

// Resolve returns nameOrURL as-is when it already carries a scheme, and
// otherwise resolves it against base following RFC 3986 reference resolution.
func Resolve(base, nameOrURL string) (*url.URL, error) {
	nameOrURL = strings.TrimSpace(nameOrURL)

	ref, refErr := url.Parse(nameOrURL)
	if refErr == nil && ref.Scheme != "" {
		return ref, nil
	}

	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidBase, base, err)
	}
	// A relative base would yield a relative result that no transport can fetch
	if !baseURL.IsAbs() {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBase, base)
	}

	if refErr != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRelativeReference, nameOrURL, refErr)
	}
	if nameOrURL == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidRelativeReference)
	}

	return baseURL.ResolveReference(ref), nil
}
