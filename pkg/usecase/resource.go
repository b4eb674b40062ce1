package usecase

import (
	"context"
	"net/url"
	"sync"

	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/appdeck/pkg/utils/async"
	"github.com/m-mizutani/appdeck/pkg/utils/imagex"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ResourceLoader loads one binary resource at a time, keyed by URL. A new
// request supersedes the previous one; a superseded response is never applied.
type ResourceLoader struct {
	fetcher  interfaces.Fetcher
	validate func([]byte) error

	mu      sync.Mutex
	state   model.ResourceState
	current string // most recently requested URL
	gen     uint64
	cancel  context.CancelFunc
	done    <-chan struct{}

	pub publisher[model.ResourceState]
}

// ResourceOption configures a ResourceLoader
type ResourceOption func(*ResourceLoader)

// WithValidator replaces the payload check. The default accepts decodable images only.
func WithValidator(fn func([]byte) error) ResourceOption {
	return func(l *ResourceLoader) {
		l.validate = fn
	}
}

// NewResourceLoader creates an empty ResourceLoader
func NewResourceLoader(fetcher interfaces.Fetcher, opts ...ResourceOption) *ResourceLoader {
	l := &ResourceLoader{
		fetcher: fetcher,
		validate: func(data []byte) error {
			_, err := imagex.Validate(data)
			return err
		},
		state: model.ResourceState{Status: model.ResourceEmpty},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current load state
func (l *ResourceLoader) State() model.ResourceState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Subscribe registers fn to be called on every state transition, in order.
// fn may read State but must not call Request or Cancel synchronously.
func (l *ResourceLoader) Subscribe(fn func(model.ResourceState)) func() {
	return l.pub.subs.add(fn)
}

// Request starts loading u, cancelling any request in flight. A nil u clears
// the loader. Data loaded for another URL is dropped immediately.
func (l *ResourceLoader) Request(ctx context.Context, u *url.URL) {
	l.pub.begin()
	l.mu.Lock()
	l.stopLocked()
	l.gen++

	if u == nil {
		l.current = ""
		l.transitionLocked(model.ResourceState{Status: model.ResourceEmpty})
		return
	}

	key := u.String()
	data := l.state.Data
	if key != l.current {
		data = nil
	}
	l.current = key
	gen := l.gen

	l.cancel, l.done = async.Dispatch(ctx, func(ctx context.Context) error {
		l.load(ctx, gen, u)
		return nil
	})
	l.transitionLocked(model.ResourceState{Status: model.ResourceLoading, URL: key, Data: data})
}

// Cancel stops the request in flight and leaves the state as it is. A loader
// cancelled while loading stays loading, keeping any data it held, until the
// next Request settles it.
func (l *ResourceLoader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
	l.gen++
}

// Wait blocks until the request in flight at call time has settled or ctx is done
func (l *ResourceLoader) Wait(ctx context.Context) error {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

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

func (l *ResourceLoader) load(ctx context.Context, gen uint64, u *url.URL) {
	logger := ctxlog.From(ctx)
	key := u.String()

	data, err := l.fetcher.Fetch(ctx, u)
	if err == nil {
		if verr := l.validate(data); verr != nil {
			err = goerr.Wrap(verr, "unusable resource payload", goerr.V("size", len(data)))
		}
	}

	l.pub.begin()
	l.mu.Lock()
	if gen != l.gen || key != l.current {
		l.mu.Unlock()
		l.pub.abort()
		logger.Debug("Discarding superseded resource response", "url", key)
		return
	}
	l.cancel = nil

	if err != nil {
		// Missing resources are cosmetic; consumers show a placeholder
		logger.Debug("Resource unavailable", "url", key, "error", err)
		l.transitionLocked(model.ResourceState{Status: model.ResourceEmpty})
		return
	}

	l.transitionLocked(model.ResourceState{Status: model.ResourceLoaded, URL: key, Data: data})
}

func (l *ResourceLoader) stopLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// transitionLocked sets the state, releases l.mu and notifies subscribers.
// The caller must hold l.pub.order, taken before l.mu.
func (l *ResourceLoader) transitionLocked(s model.ResourceState) {
	l.state = s
	l.mu.Unlock()
	l.pub.notify(s)
}
