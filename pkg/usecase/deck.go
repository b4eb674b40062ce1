package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/appdeck/pkg/utils/locale"
	"github.com/m-mizutani/ctxlog"
)

type deck struct {
	baseURL  string
	document string
	sources  locale.Sources

	fetcher *CatalogFetcher
	icons   *IconSet

	mu          sync.Mutex
	iconCatalog *model.Catalog // catalog whose icons were last requested
}

// DeckOption configures a deck
type DeckOption func(*deck)

// WithLocaleSources sets the host preference sources used when a caller
// supplies no preferences of its own
func WithLocaleSources(src locale.Sources) DeckOption {
	return func(d *deck) {
		d.sources = src
	}
}

// WithIconOptions applies opts to every icon loader
func WithIconOptions(opts ...ResourceOption) DeckOption {
	return func(d *deck) {
		d.icons.opts = append(d.icons.opts, opts...)
	}
}

// NewDeck wires a catalog fetcher and an icon set for one catalog document.
// Icons of every newly loaded catalog are requested in the background using
// the logger of ctx.
func NewDeck(ctx context.Context, fetcher interfaces.Fetcher, baseURL, document string, opts ...DeckOption) interfaces.DeckUseCase {
	d := &deck{
		baseURL:  baseURL,
		document: document,
		fetcher:  NewCatalogFetcher(fetcher),
		icons:    NewIconSet(fetcher),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.fetcher.Subscribe(func(s model.FetchState) {
		if s.Status != model.FetchIdle {
			return
		}
		d.refreshIcons(ctx)
	})

	return d
}

func (d *deck) refreshIcons(ctx context.Context) {
	catalog := d.fetcher.Catalog()

	d.mu.Lock()
	if catalog == nil || catalog == d.iconCatalog {
		d.mu.Unlock()
		return
	}
	d.iconCatalog = catalog
	d.mu.Unlock()

	ctxlog.From(ctx).Debug("Requesting icons", "entries", len(catalog.Entries))
	d.icons.RequestAll(ctx, d.baseURL, catalog)
}

// Load fetches the catalog document, unless a fetch is already in flight
func (d *deck) Load(ctx context.Context) {
	d.fetcher.Load(ctx, d.baseURL, d.document)
}

// LoadIfNeeded fetches the catalog document unless one is retained
func (d *deck) LoadIfNeeded(ctx context.Context) {
	d.fetcher.LoadIfNeeded(ctx, d.baseURL, d.document)
}

// Cancel stops the catalog fetch and every icon request in flight
func (d *deck) Cancel() {
	d.fetcher.Cancel()
	d.icons.CancelAll()
}

// State returns the catalog fetch state
func (d *deck) State() model.FetchState {
	return d.fetcher.State()
}

// Catalog returns the retained catalog, if any
func (d *deck) Catalog() *model.Catalog {
	return d.fetcher.Catalog()
}

// Snapshot localizes the retained catalog. Caller preferences rank above
// the host sources.
func (d *deck) Snapshot(preferences []string) *model.LocalizedCatalog {
	tags := append(append([]string{}, preferences...), d.sources.Tags()...)
	chain := locale.FallbackChain(tags)

	snap := &model.LocalizedCatalog{
		State:   d.fetcher.State(),
		Entries: []model.LocalizedEntry{},
	}
	if catalog := d.fetcher.Catalog(); catalog != nil {
		snap.Active = catalog.Active
		snap.Entries = Localize(catalog, d.baseURL, chain)
	}
	return snap
}

// Icon returns the icon state of the entry at index in the retained catalog
func (d *deck) Icon(index int) (model.ResourceState, bool) {
	catalog := d.fetcher.Catalog()
	if catalog == nil || index < 0 || index >= len(catalog.Entries) {
		return model.ResourceState{}, false
	}
	return d.icons.Loader(catalog.Entries[index].ID()).State(), true
}

// Wait blocks until the catalog fetch and icon requests in flight have settled
func (d *deck) Wait(ctx context.Context) error {
	if err := d.fetcher.Wait(ctx); err != nil {
		return err
	}
	return d.icons.Wait(ctx)
}
