package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
)

// MockFetcher is a mock implementation of interfaces.Fetcher
type MockFetcher struct {
	fetchFunc func(ctx context.Context, u *url.URL) ([]byte, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, u.String())
	m.mu.Unlock()

	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, u)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

// gate blocks fetches for a URL until released
type gate struct {
	mu      sync.Mutex
	started map[string]chan struct{}
	release map[string]chan struct{}
}

func newGate(urls ...string) *gate {
	g := &gate{
		started: make(map[string]chan struct{}),
		release: make(map[string]chan struct{}),
	}
	for _, u := range urls {
		g.started[u] = make(chan struct{})
		g.release[u] = make(chan struct{})
	}
	return g
}

// wait blocks until the fetch of u is released. It ignores cancellation to
// model a response that has already arrived.
func (g *gate) wait(u string) {
	g.mu.Lock()
	started, release := g.started[u], g.release[u]
	if started != nil {
		select {
		case <-started:
		default:
			close(started)
		}
	}
	g.mu.Unlock()

	if release == nil {
		return
	}
	<-release
}

func (g *gate) awaitStart(t *testing.T, u string) {
	t.Helper()
	select {
	case <-g.started[u]:
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch of %s did not start", u)
	}
}

func (g *gate) open(u string) {
	close(g.release[u])
}

// logWatcher is a slog.Handler that signals when a message is logged
type logWatcher struct {
	mu      sync.Mutex
	waiters map[string]chan struct{}
}

func newLogWatcher(messages ...string) *logWatcher {
	w := &logWatcher{waiters: make(map[string]chan struct{})}
	for _, msg := range messages {
		w.waiters[msg] = make(chan struct{}, 16)
	}
	return w
}

func (w *logWatcher) Enabled(context.Context, slog.Level) bool { return true }

func (w *logWatcher) Handle(_ context.Context, r slog.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for msg, ch := range w.waiters {
		if strings.Contains(r.Message, msg) {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
	return nil
}

func (w *logWatcher) WithAttrs([]slog.Attr) slog.Handler { return w }
func (w *logWatcher) WithGroup(string) slog.Handler      { return w }

func (w *logWatcher) context() context.Context {
	return ctxlog.With(context.Background(), slog.New(w))
}

func (w *logWatcher) await(t *testing.T, msg string) {
	t.Helper()
	select {
	case <-w.waiters[msg]:
	case <-time.After(2 * time.Second):
		t.Fatalf("log message %q was not written", msg)
	}
}

func waitSettled(t *testing.T, waiter interface{ Wait(context.Context) error }) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gt.NoError(t, waiter.Wait(ctx))
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	gt.NoError(t, err)
	return u
}

// awaitClosed fails the test if ch is not closed in time
func awaitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not finish", what)
	}
}
