package config

import (
	"github.com/m-mizutani/appdeck/pkg/utils/urlutil"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Catalog holds the location of the catalog document
type Catalog struct {
	BaseURL  string
	Document string
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL the catalog document and icons are resolved against",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("APPDECK_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "document",
			Usage:       "Catalog document name or absolute URL",
			Value:       "apps.json",
			Destination: &c.Document,
			Sources:     cli.EnvVars("APPDECK_DOCUMENT"),
		},
	}
}

// Validate checks that the catalog document URL can be resolved
func (c *Catalog) Validate() error {
	if c.BaseURL == "" {
		return goerr.New("base URL is required")
	}
	if _, err := urlutil.Resolve(c.BaseURL, c.Document); err != nil {
		return goerr.Wrap(err, "invalid catalog location",
			goerr.V("base_url", c.BaseURL),
			goerr.V("document", c.Document),
		)
	}
	return nil
}

func (c *Catalog) applyFile(doc *fileDoc, isSet func(string) bool) error {
	if doc.Catalog.BaseURL != "" && !isSet("base-url") {
		c.BaseURL = doc.Catalog.BaseURL
	}
	if doc.Catalog.Document != "" && !isSet("document") {
		c.Document = doc.Catalog.Document
	}
	return nil
}
