package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/domain/types"
)

const (
	// DefaultTimeout bounds a single request including reading the body
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize bounds the size of a response body
	DefaultMaxBodySize int64 = 10 << 20
)

type client struct {
	httpClient  *http.Client
	timeout     time.Duration
	maxBodySize int64
	userAgent   string

	token      string
	tokenHosts map[string]struct{}
}

// Option configures the client
type Option func(*client)

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-request timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(cl *client) {
		cl.timeout = d
	}
}

// WithMaxBodySize sets the largest accepted response body in bytes
func WithMaxBodySize(n int64) Option {
	return func(cl *client) {
		cl.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(cl *client) {
		cl.userAgent = ua
	}
}

// WithBearerToken sends token as a bearer credential to the given hosts.
// With no hosts the token is sent with every request.
func WithBearerToken(token string, hosts ...string) Option {
	return func(cl *client) {
		cl.token = token
		cl.tokenHosts = make(map[string]struct{}, len(hosts))
		for _, h := range hosts {
			cl.tokenHosts[strings.ToLower(h)] = struct{}{}
		}
	}
}

func (c *client) authorize(u *url.URL) bool {
	if c.token == "" {
		return false
	}
	if len(c.tokenHosts) == 0 {
		return true
	}
	_, ok := c.tokenHosts[strings.ToLower(u.Host)]
	return ok
}

// New creates a Fetcher that never serves a locally cached response
func New(opts ...Option) interfaces.Fetcher {
	c := &client{
		httpClient:  http.DefaultClient,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   "appdeck/" + types.Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the body at u
func (c *client) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: nil URL", types.ErrInvalidURL)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidURL, u.String(), err)
	}

	// Revalidate with the origin on every request
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.authorize(u) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s for %s", types.ErrHTTPStatus, resp.Status, u.String())
	}

	body := io.Reader(resp.Body)
	if c.maxBodySize > 0 {
		body = io.LimitReader(resp.Body, c.maxBodySize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %s: %w", types.ErrTransport, u.String(), err)
	}
	if c.maxBodySize > 0 && int64(len(data)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: body of %s exceeds %d bytes", types.ErrDecode, u.String(), c.maxBodySize)
	}

	return data, nil
}
