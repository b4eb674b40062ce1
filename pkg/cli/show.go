package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/appdeck/pkg/utils/imagex"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdShow(w io.Writer) *cli.Command {
	var (
		deckCfg deckConfig
		noColor bool
		asJSON  bool
	)

	flags := append(deckCfg.Flags(),
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Destination: &noColor,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the localized catalog as JSON",
			Destination: &asJSON,
		},
	)

	return &cli.Command{
		Name:  "show",
		Usage: "Fetch the catalog once and print its entries",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			deck, err := deckCfg.build(ctx, c)
			if err != nil {
				return err
			}

			deck.Load(ctx)
			if err := deck.Wait(ctx); err != nil {
				deck.Cancel()
				return goerr.Wrap(err, "interrupted while loading catalog")
			}

			snap := deck.Snapshot(nil)
			if snap.State.Status == model.FetchFailed {
				return goerr.New("failed to load catalog",
					goerr.V("reason", snap.State.Reason),
					goerr.V("base_url", deckCfg.catalog.BaseURL),
					goerr.V("document", deckCfg.catalog.Document),
				)
			}

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(snap); err != nil {
					return goerr.Wrap(err, "failed to encode catalog")
				}
				return nil
			}

			newPrinter(w, noColor).print(snap, deck)
			return nil
		},
	}
}

type printer struct {
	w       io.Writer
	title   *color.Color
	name    *color.Color
	faint   *color.Color
	warn    *color.Color
	success *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:       w,
		title:   color.New(color.FgHiWhite, color.Bold),
		name:    color.New(color.FgCyan, color.Bold),
		faint:   color.New(color.FgHiBlack),
		warn:    color.New(color.FgYellow),
		success: color.New(color.FgGreen),
	}
	if noColor {
		for _, c := range []*color.Color{p.title, p.name, p.faint, p.warn, p.success} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) print(snap *model.LocalizedCatalog, deck interfaces.DeckUseCase) {
	status := p.success.Sprint("active")
	if !snap.Active {
		status = p.warn.Sprint("inactive")
	}
	p.title.Fprintf(p.w, "Catalog: %d entries ", len(snap.Entries))
	fmt.Fprintf(p.w, "(%s)\n", status)

	for i, entry := range snap.Entries {
		fmt.Fprintf(p.w, "\n[%d] ", i)
		p.name.Fprintln(p.w, entry.Name)
		if entry.Summary != "" {
			fmt.Fprintf(p.w, "    %s\n", entry.Summary)
		}
		p.faint.Fprintf(p.w, "    download: %s\n", entry.DownloadURL)
		p.faint.Fprintf(p.w, "    icon:     %s\n", p.iconLabel(deck, i, entry))
	}
}

func (p *printer) iconLabel(deck interfaces.DeckUseCase, index int, entry model.LocalizedEntry) string {
	if entry.IconURL == "" {
		return "placeholder (unresolvable icon name)"
	}

	state, ok := deck.Icon(index)
	if !ok || !state.Available() {
		return "placeholder (" + entry.IconURL + ")"
	}

	format, err := imagex.Validate(state.Data)
	if err != nil {
		return "placeholder (" + entry.IconURL + ")"
	}
	return fmt.Sprintf("%s, %d bytes (%s)", format, len(state.Data), entry.IconURL)
}
