package usecase

import (
	"context"
	"net/url"
	"sync"

	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/appdeck/pkg/utils/async"
	"github.com/m-mizutani/appdeck/pkg/utils/urlutil"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ReasonInvalidURL is the failure reason when the document URL cannot be built
const ReasonInvalidURL = "Invalid JSON URL"

// CatalogFetcher retrieves the catalog document and keeps the last one that
// decoded successfully. At most one fetch is in flight at a time.
type CatalogFetcher struct {
	fetcher interfaces.Fetcher

	mu      sync.Mutex
	state   model.FetchState
	catalog *model.Catalog
	gen     uint64
	cancel  context.CancelFunc
	done    <-chan struct{}

	pub publisher[model.FetchState]
}

// NewCatalogFetcher creates a CatalogFetcher in the idle state
func NewCatalogFetcher(fetcher interfaces.Fetcher) *CatalogFetcher {
	return &CatalogFetcher{
		fetcher: fetcher,
		state:   model.FetchState{Status: model.FetchIdle},
	}
}

// State returns the current fetch state
func (f *CatalogFetcher) State() model.FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Catalog returns the retained catalog, or nil if none has been loaded.
// The returned value must be treated as read-only.
func (f *CatalogFetcher) Catalog() *model.Catalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalog
}

// Subscribe registers fn to be called on every state transition, in order.
// fn runs on the goroutine that made the transition. It may read State and
// Catalog but must not call Load, LoadIfNeeded or Cancel synchronously.
// The returned func unsubscribes.
func (f *CatalogFetcher) Subscribe(fn func(model.FetchState)) func() {
	return f.pub.subs.add(fn)
}

// Load starts fetching baseURL + documentName in the background. It is a
// no-op while a fetch is in flight; call Cancel first to restart.
func (f *CatalogFetcher) Load(ctx context.Context, baseURL, documentName string) {
	logger := ctxlog.From(ctx)

	f.pub.begin()
	f.mu.Lock()
	if f.state.Status == model.FetchLoading {
		f.mu.Unlock()
		f.pub.abort()
		logger.Debug("Catalog fetch already in flight, ignoring load")
		return
	}

	u, err := urlutil.Resolve(baseURL, documentName)
	if err != nil {
		logger.Warn("Failed to build catalog URL",
			"error", err,
			"base_url", baseURL,
			"document", documentName,
		)
		f.stopLocked()
		f.catalog = nil
		f.transitionLocked(model.FetchState{Status: model.FetchFailed, Reason: ReasonInvalidURL})
		return
	}

	f.stopLocked()
	f.gen++
	gen := f.gen

	logger.Info("Loading catalog", "url", u.String())

	f.cancel, f.done = async.Dispatch(ctx, func(ctx context.Context) error {
		f.fetch(ctx, gen, u)
		return nil
	})
	f.transitionLocked(model.FetchState{Status: model.FetchLoading})
}

// LoadIfNeeded calls Load only when no catalog is retained
func (f *CatalogFetcher) LoadIfNeeded(ctx context.Context, baseURL, documentName string) {
	if f.Catalog() != nil {
		return
	}
	f.Load(ctx, baseURL, documentName)
}

// Cancel stops the in-flight fetch, if any, and returns to idle. The
// retained catalog is kept.
func (f *CatalogFetcher) Cancel() {
	f.pub.begin()
	f.mu.Lock()
	f.stopLocked()
	f.gen++
	if f.state.Status != model.FetchLoading {
		f.mu.Unlock()
		f.pub.abort()
		return
	}
	f.transitionLocked(model.FetchState{Status: model.FetchIdle})
}

// Wait blocks until the fetch in flight at call time has settled or ctx is done
func (f *CatalogFetcher) Wait(ctx context.Context) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *CatalogFetcher) fetch(ctx context.Context, gen uint64, u *url.URL) {
	logger := ctxlog.From(ctx)

	catalog, err := f.retrieve(ctx, u)

	f.pub.begin()
	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		f.pub.abort()
		logger.Debug("Discarding superseded catalog response", "url", u.String())
		return
	}
	f.cancel = nil

	if err != nil {
		logger.Warn("Failed to load catalog", "error", err)
		f.transitionLocked(model.FetchState{Status: model.FetchFailed, Reason: err.Error()})
		return
	}

	logger.Info("Loaded catalog",
		"url", u.String(),
		"active", catalog.Active,
		"entries", len(catalog.Entries),
	)
	f.catalog = catalog
	f.transitionLocked(model.FetchState{Status: model.FetchIdle})
}

func (f *CatalogFetcher) retrieve(ctx context.Context, u *url.URL) (*model.Catalog, error) {
	data, err := f.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch catalog", goerr.V("url", u.String()))
	}

	catalog, err := model.DecodeCatalog(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode catalog",
			goerr.V("url", u.String()),
			goerr.V("size", len(data)),
		)
	}
	return catalog, nil
}

// stopLocked cancels the in-flight request. f.mu must be held.
func (f *CatalogFetcher) stopLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// transitionLocked sets the state, releases f.mu and notifies subscribers.
// The caller must hold f.pub.order, taken before f.mu.
func (f *CatalogFetcher) transitionLocked(s model.FetchState) {
	f.state = s
	f.mu.Unlock()
	f.pub.notify(s)
}
