package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/appdeck/pkg/utils/urlutil"
	"github.com/m-mizutani/ctxlog"
)

// IconSet owns one ResourceLoader per catalog entry. Loaders are
// independent and run concurrently.
type IconSet struct {
	fetcher interfaces.Fetcher
	opts    []ResourceOption

	mu      sync.Mutex
	loaders map[string]*ResourceLoader
}

// NewIconSet creates an empty IconSet. opts apply to every loader it creates.
func NewIconSet(fetcher interfaces.Fetcher, opts ...ResourceOption) *IconSet {
	return &IconSet{
		fetcher: fetcher,
		opts:    opts,
		loaders: make(map[string]*ResourceLoader),
	}
}

// Loader returns the loader for an entry ID, creating it on first use
func (s *IconSet) Loader(id string) *ResourceLoader {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loaders[id]
	if !ok {
		l = NewResourceLoader(s.fetcher, s.opts...)
		s.loaders[id] = l
	}
	return l
}

// Request loads the icon of entry, resolved against baseURL. An unresolvable
// icon locator clears the entry's loader.
func (s *IconSet) Request(ctx context.Context, baseURL string, entry model.CatalogEntry) *ResourceLoader {
	l := s.Loader(entry.ID())

	u, err := urlutil.Resolve(baseURL, entry.IconName)
	if err != nil {
		ctxlog.From(ctx).Debug("Cannot resolve icon URL",
			"entry", entry.ID(),
			"icon", entry.IconName,
			"error", err,
		)
		l.Request(ctx, nil)
		return l
	}

	l.Request(ctx, u)
	return l
}

// RequestAll starts loading the icon of every entry in catalog
func (s *IconSet) RequestAll(ctx context.Context, baseURL string, catalog *model.Catalog) {
	if catalog == nil {
		return
	}
	s.Retain(catalog)
	for _, e := range catalog.Entries {
		s.Request(ctx, baseURL, e)
	}
}

// Retain cancels and drops the loaders of entries no longer in catalog
func (s *IconSet) Retain(catalog *model.Catalog) {
	keep := make(map[string]struct{})
	if catalog != nil {
		for _, e := range catalog.Entries {
			keep[e.ID()] = struct{}{}
		}
	}

	s.mu.Lock()
	var dropped []*ResourceLoader
	for id, l := range s.loaders {
		if _, ok := keep[id]; !ok {
			dropped = append(dropped, l)
			delete(s.loaders, id)
		}
	}
	s.mu.Unlock()

	for _, l := range dropped {
		l.Cancel()
	}
}

// CancelAll cancels every loader's request in flight
func (s *IconSet) CancelAll() {
	s.mu.Lock()
	loaders := make([]*ResourceLoader, 0, len(s.loaders))
	for _, l := range s.loaders {
		loaders = append(loaders, l)
	}
	s.mu.Unlock()

	for _, l := range loaders {
		l.Cancel()
	}
}

// Wait blocks until every loader has settled or ctx is done
func (s *IconSet) Wait(ctx context.Context) error {
	s.mu.Lock()
	loaders := make([]*ResourceLoader, 0, len(s.loaders))
	for _, l := range s.loaders {
		loaders = append(loaders, l)
	}
	s.mu.Unlock()

	for _, l := range loaders {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
