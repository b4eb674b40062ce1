package cli

import (
	"context"

	"github.com/m-mizutani/appdeck/pkg/cli/config"
	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// deckConfig gathers the settings shared by every command that loads a catalog
type deckConfig struct {
	file    config.File
	catalog config.Catalog
	client  config.Client
	locale  config.Locale
}

func (c *deckConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.file.Flags()...)
	flags = append(flags, c.catalog.Flags()...)
	flags = append(flags, c.client.Flags()...)
	flags = append(flags, c.locale.Flags()...)
	return flags
}

// build applies the config file and wires a deck for the configured catalog
func (c *deckConfig) build(ctx context.Context, cmd *cli.Command, extra ...config.FileTarget) (interfaces.DeckUseCase, error) {
	targets := append([]config.FileTarget{&c.catalog, &c.client, &c.locale}, extra...)
	if err := c.file.Apply(cmd, targets...); err != nil {
		return nil, err
	}

	if err := c.catalog.Validate(); err != nil {
		return nil, err
	}

	sources, err := c.locale.Sources()
	if err != nil {
		return nil, err
	}

	fetcher, err := c.client.New(c.catalog.BaseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create HTTP client")
	}

	ctxlog.From(ctx).Debug("Catalog configured",
		"base_url", c.catalog.BaseURL,
		"document", c.catalog.Document,
		"client", c.client,
		"languages", c.locale.Languages,
	)

	return usecase.NewDeck(ctx, fetcher, c.catalog.BaseURL, c.catalog.Document,
		usecase.WithLocaleSources(sources),
	), nil
}
