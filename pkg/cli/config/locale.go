package config

import (
	"github.com/m-mizutani/appdeck/pkg/utils/locale"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Locale holds the preferred languages ranked above the environment
type Locale struct {
	Languages []string
}

// Flags returns CLI flags for locale configuration
func (c *Locale) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "lang",
			Usage:       "Preferred language tag, repeatable (e.g. zh-Hant-TW)",
			Destination: &c.Languages,
			Sources:     cli.EnvVars("APPDECK_LANG"),
		},
	}
}

// Sources validates the configured tags and returns them merged with the
// process environment
func (c *Locale) Sources() (locale.Sources, error) {
	for _, tag := range c.Languages {
		if err := locale.Validate(tag); err != nil {
			return locale.Sources{}, goerr.Wrap(err, "invalid language tag", goerr.V("lang", tag))
		}
	}
	return locale.FromEnv(c.Languages...), nil
}

func (c *Locale) applyFile(doc *fileDoc, isSet func(string) bool) error {
	if len(doc.Locale.Languages) > 0 && !isSet("lang") {
		c.Languages = doc.Locale.Languages
	}
	return nil
}
