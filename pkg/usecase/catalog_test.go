package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/appdeck/pkg/domain/types"
	"github.com/m-mizutani/appdeck/pkg/infra/httpclient"
	"github.com/m-mizutani/appdeck/pkg/usecase"
	"github.com/m-mizutani/gt"
)

const (
	baseURL     = "https://files.example.com/"
	documentURL = "https://files.example.com/apps.json"
	catalogDoc  = `{"Active": true, "apps": [
		{"iconName": "notes.png", "downloadURL": "https://apps.example.com/notes", "name": {"en": "Notes"}, "summary": {"en": "Take notes"}}
	]}`
)

func TestCatalogFetcher_Load_Success(t *testing.T) {
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			return []byte(catalogDoc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)
	gt.Equal(t, f.State().Status, model.FetchIdle)
	gt.Value(t, f.Catalog()).Nil()

	f.Load(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)

	gt.Equal(t, f.State(), model.FetchState{Status: model.FetchIdle})
	gt.Value(t, f.Catalog()).NotNil()
	gt.True(t, f.Catalog().Active)
	gt.A(t, f.Catalog().Entries).Length(1)
	gt.Equal(t, mock.Calls(), []string{documentURL})
}

func TestCatalogFetcher_Load_InvalidURL(t *testing.T) {
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			return []byte(catalogDoc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)

	f.Load(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)
	gt.Value(t, f.Catalog()).NotNil()

	f.Load(context.Background(), "not a url", "apps.json")
	gt.Equal(t, f.State(), model.FetchState{Status: model.FetchFailed, Reason: usecase.ReasonInvalidURL})
	gt.Value(t, f.Catalog()).Nil()
	gt.A(t, mock.Calls()).Length(1)
}

func TestCatalogFetcher_Load_Failures(t *testing.T) {
	tests := []struct {
		name     string
		fetch    func(ctx context.Context, u *url.URL) ([]byte, error)
		wantKind error
	}{
		{
			name: "transport error",
			fetch: func(ctx context.Context, u *url.URL) ([]byte, error) {
				return nil, types.ErrTransport
			},
			wantKind: types.ErrTransport,
		},
		{
			name: "status error",
			fetch: func(ctx context.Context, u *url.URL) ([]byte, error) {
				return nil, types.ErrHTTPStatus
			},
			wantKind: types.ErrHTTPStatus,
		},
		{
			name: "decode error",
			fetch: func(ctx context.Context, u *url.URL) ([]byte, error) {
				return []byte(`<html>maintenance</html>`), nil
			},
			wantKind: types.ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := usecase.NewCatalogFetcher(&MockFetcher{fetchFunc: tt.fetch})

			f.Load(context.Background(), baseURL, "apps.json")
			waitSettled(t, f)

			state := f.State()
			gt.Equal(t, state.Status, model.FetchFailed)
			gt.String(t, state.Reason).Contains(tt.wantKind.Error())
			gt.Value(t, f.Catalog()).Nil()
		})
	}
}

func TestCatalogFetcher_FailurePreservesPriorSuccess(t *testing.T) {
	fail := false
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			if fail {
				return nil, errors.New("connection reset by peer")
			}
			return []byte(catalogDoc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)

	f.Load(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)
	first := f.Catalog()
	gt.Value(t, first).NotNil()

	fail = true
	f.Load(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)

	gt.Equal(t, f.State().Status, model.FetchFailed)
	gt.String(t, f.State().Reason).Contains("connection reset by peer")
	gt.Value(t, f.Catalog()).Equal(first)
	gt.A(t, f.Catalog().Entries).Length(1)
}

func TestCatalogFetcher_ReloadReplacesCatalog(t *testing.T) {
	docs := []string{catalogDoc, `{"active": false}`}
	n := 0
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			doc := docs[n]
			n++
			return []byte(doc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)

	f.Load(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)
	gt.A(t, f.Catalog().Entries).Length(1)

	f.Load(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)
	gt.False(t, f.Catalog().Active)
	gt.A(t, f.Catalog().Entries).Length(0)
}

func TestCatalogFetcher_NoConcurrentDuplicateFetch(t *testing.T) {
	g := newGate(documentURL)
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			g.wait(u.String())
			return []byte(catalogDoc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)

	f.Load(context.Background(), baseURL, "apps.json")
	g.awaitStart(t, documentURL)
	gt.Equal(t, f.State().Status, model.FetchLoading)

	f.Load(context.Background(), baseURL, "apps.json")
	f.Load(context.Background(), baseURL, "other.json")
	gt.Equal(t, f.State().Status, model.FetchLoading)

	g.open(documentURL)
	waitSettled(t, f)

	gt.Equal(t, mock.Calls(), []string{documentURL})
	gt.Equal(t, f.State().Status, model.FetchIdle)
}

func TestCatalogFetcher_CancelAndRestart(t *testing.T) {
	const secondURL = "https://files.example.com/apps-v2.json"
	g := newGate(documentURL, secondURL)
	w := newLogWatcher("Discarding superseded catalog response")
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			g.wait(u.String())
			if u.String() == documentURL {
				return []byte(`{"active": false}`), nil
			}
			return []byte(catalogDoc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)
	ctx := w.context()

	f.Load(ctx, baseURL, "apps.json")
	g.awaitStart(t, documentURL)

	f.Cancel()
	gt.Equal(t, f.State().Status, model.FetchIdle)

	f.Load(ctx, baseURL, "apps-v2.json")
	g.awaitStart(t, secondURL)
	gt.Equal(t, f.State().Status, model.FetchLoading)

	g.open(secondURL)
	waitSettled(t, f)
	gt.True(t, f.Catalog().Active)

	// The cancelled response arrives late and must not replace the newer catalog
	g.open(documentURL)
	w.await(t, "Discarding superseded catalog response")

	gt.Equal(t, f.State().Status, model.FetchIdle)
	gt.True(t, f.Catalog().Active)
	gt.Equal(t, mock.Calls(), []string{documentURL, secondURL})
}

func TestCatalogFetcher_CancelWhenIdle(t *testing.T) {
	f := usecase.NewCatalogFetcher(&MockFetcher{})
	var transitions []model.FetchState
	f.Subscribe(func(s model.FetchState) {
		transitions = append(transitions, s)
	})

	f.Cancel()
	gt.Equal(t, f.State().Status, model.FetchIdle)
	gt.A(t, transitions).Length(0)
}

func TestCatalogFetcher_CancelPropagatesToTransport(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		},
	}
	f := usecase.NewCatalogFetcher(mock)

	f.Load(context.Background(), baseURL, "apps.json")
	<-started
	f.Cancel()
	<-cancelled
	waitSettled(t, f)

	gt.Equal(t, f.State().Status, model.FetchIdle)
	gt.Value(t, f.Catalog()).Nil()
}

func TestCatalogFetcher_LoadIfNeeded(t *testing.T) {
	fail := true
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			if fail {
				return nil, types.ErrTransport
			}
			return []byte(catalogDoc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)

	f.LoadIfNeeded(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)
	gt.Equal(t, f.State().Status, model.FetchFailed)

	// Nothing retained yet, so it tries again
	fail = false
	f.LoadIfNeeded(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)
	gt.Value(t, f.Catalog()).NotNil()

	// Retained: no further fetch
	f.LoadIfNeeded(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)
	gt.A(t, mock.Calls()).Length(2)
}

func TestCatalogFetcher_SubscribeOrder(t *testing.T) {
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			return []byte(catalogDoc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)

	var mu sync.Mutex
	var transitions []model.FetchStatus
	unsubscribe := f.Subscribe(func(s model.FetchState) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, s.Status)
	})

	f.Load(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)

	unsubscribe()
	f.Load(context.Background(), baseURL, "apps.json")
	waitSettled(t, f)

	mu.Lock()
	defer mu.Unlock()
	gt.Equal(t, transitions, []model.FetchStatus{model.FetchLoading, model.FetchIdle})
}

func TestCatalogFetcher_WithHTTPServer(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/apps.json" {
			http.NotFound(w, r)
			return
		}
		code := int(status.Load())
		w.WriteHeader(code)
		if code == http.StatusOK {
			w.Write([]byte(catalogDoc))
		}
	}))
	defer server.Close()

	f := usecase.NewCatalogFetcher(httpclient.New())

	f.Load(context.Background(), server.URL+"/catalog/", "apps.json")
	waitSettled(t, f)
	gt.Equal(t, f.State().Status, model.FetchIdle)
	gt.A(t, f.Catalog().Entries).Length(1)

	status.Store(http.StatusServiceUnavailable)
	f.Load(context.Background(), server.URL+"/catalog/", "apps.json")
	waitSettled(t, f)
	gt.Equal(t, f.State().Status, model.FetchFailed)
	gt.String(t, f.State().Reason).Contains("503")
	gt.A(t, f.Catalog().Entries).Length(1)
}

func TestCatalogFetcher_SubscriberReadsStateDuringConcurrentLoad(t *testing.T) {
	mock := &MockFetcher{
		fetchFunc: func(ctx context.Context, u *url.URL) ([]byte, error) {
			return []byte(catalogDoc), nil
		},
	}
	f := usecase.NewCatalogFetcher(mock)

	entered := make(chan struct{})
	finished := make(chan struct{})
	var once sync.Once
	f.Subscribe(func(s model.FetchState) {
		if s.Status != model.FetchIdle {
			return
		}
		once.Do(func() {
			close(entered)
			// Give the concurrent Load time to reach the fetcher
			time.Sleep(100 * time.Millisecond)
			_ = f.State()
			_ = f.Catalog()
			close(finished)
		})
	})

	f.Load(context.Background(), baseURL, "apps.json")
	awaitClosed(t, entered, "first notification")

	reloaded := make(chan struct{})
	go func() {
		defer close(reloaded)
		f.Load(context.Background(), baseURL, "apps.json")
		f.Cancel()
	}()

	awaitClosed(t, finished, "subscriber")
	awaitClosed(t, reloaded, "concurrent load")
	waitSettled(t, f)
	gt.Value(t, f.Catalog()).NotNil()
}
