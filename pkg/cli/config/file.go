package config

import (
	"bytes"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File holds the path of an optional TOML config file. Values given by flag
// or environment variable take precedence over the file.
type File struct {
	Path string
}

type fileDoc struct {
	Catalog struct {
		BaseURL  string `toml:"base_url"`
		Document string `toml:"document"`
	} `toml:"catalog"`

	Client struct {
		Timeout     string `toml:"timeout"`
		MaxBodySize int64  `toml:"max_body_size"`
		UserAgent   string `toml:"user_agent"`
		AuthToken   string `toml:"auth_token" masq:"secret"`
	} `toml:"client"`

	Locale struct {
		Languages []string `toml:"languages"`
	} `toml:"locale"`

	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
}

// FileTarget is a settings group that can be filled from the config file
type FileTarget interface {
	applyFile(doc *fileDoc, isSet func(string) bool) error
}

// Flags returns CLI flags for config file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML config file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("APPDECK_CONFIG"),
		},
	}
}

// Apply reads the config file, if any, and fills every target setting not
// already given on the command line or in the environment
func (c *File) Apply(cmd *cli.Command, targets ...FileTarget) error {
	if c.Path == "" {
		return nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", c.Path))
	}

	return apply(data, cmd.IsSet, targets...)
}

func apply(data []byte, isSet func(string) bool, targets ...FileTarget) error {
	var doc fileDoc
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return goerr.Wrap(err, "failed to decode config file")
	}

	for _, t := range targets {
		if err := t.applyFile(&doc, isSet); err != nil {
			return err
		}
	}
	return nil
}
