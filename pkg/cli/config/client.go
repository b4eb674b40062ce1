package config

import (
	"net/url"
	"time"

	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/infra/httpclient"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Client holds HTTP client configuration
type Client struct {
	Timeout     time.Duration
	MaxBodySize int64
	UserAgent   string
	AuthToken   string `masq:"secret"`
}

// Flags returns CLI flags for HTTP client configuration
func (c *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout of a single request",
			Value:       httpclient.DefaultTimeout,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("APPDECK_TIMEOUT"),
		},
		&cli.Int64Flag{
			Name:        "max-body-size",
			Usage:       "Largest accepted response body in bytes",
			Value:       httpclient.DefaultMaxBodySize,
			Destination: &c.MaxBodySize,
			Sources:     cli.EnvVars("APPDECK_MAX_BODY_SIZE"),
		},
		&cli.StringFlag{
			Name:        "user-agent",
			Usage:       "User-Agent header sent with every request",
			Destination: &c.UserAgent,
			Sources:     cli.EnvVars("APPDECK_USER_AGENT"),
		},
		&cli.StringFlag{
			Name:        "auth-token",
			Usage:       "Bearer token sent to the catalog host",
			Destination: &c.AuthToken,
			Sources:     cli.EnvVars("APPDECK_AUTH_TOKEN"),
		},
	}
}

// New builds a Fetcher. The auth token is only sent to the host of baseURL.
func (c *Client) New(baseURL string) (interfaces.Fetcher, error) {
	opts := []httpclient.Option{
		httpclient.WithTimeout(c.Timeout),
		httpclient.WithMaxBodySize(c.MaxBodySize),
	}
	if c.UserAgent != "" {
		opts = append(opts, httpclient.WithUserAgent(c.UserAgent))
	}

	if c.AuthToken != "" {
		u, err := url.Parse(baseURL)
		if err != nil || u.Host == "" {
			return nil, goerr.New("auth token requires a base URL with a host", goerr.V("base_url", baseURL))
		}
		opts = append(opts, httpclient.WithBearerToken(c.AuthToken, u.Host))
	}

	return httpclient.New(opts...), nil
}

func (c *Client) applyFile(doc *fileDoc, isSet func(string) bool) error {
	f := doc.Client
	if f.Timeout != "" && !isSet("timeout") {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return goerr.Wrap(err, "invalid client.timeout", goerr.V("value", f.Timeout))
		}
		c.Timeout = d
	}
	if f.MaxBodySize != 0 && !isSet("max-body-size") {
		c.MaxBodySize = f.MaxBodySize
	}
	if f.UserAgent != "" && !isSet("user-agent") {
		c.UserAgent = f.UserAgent
	}
	if f.AuthToken != "" && !isSet("auth-token") {
		c.AuthToken = f.AuthToken
	}
	return nil
}
