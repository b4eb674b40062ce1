package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/appdeck/pkg/domain/interfaces"
	"github.com/m-mizutani/appdeck/pkg/utils/locale"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

type deckHandler struct {
	// ctx outlives requests; fetches started here must not end with the request
	ctx  context.Context
	deck interfaces.DeckUseCase
}

// preferences returns the caller's raw locale tags. An explicit lang query
// wins over Accept-Language.
func preferences(r *http.Request) []string {
	var tags []string
	for _, v := range r.URL.Query()["lang"] {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	if len(tags) > 0 {
		return tags
	}
	return locale.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
}

func (h *deckHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, status int) {
	snap := h.deck.Snapshot(preferences(r))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Language")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode catalog response", "error", err)
	}
}

// getCatalog starts the first fetch if nothing is retained and returns the
// current localized view
func (h *deckHandler) getCatalog(w http.ResponseWriter, r *http.Request) {
	h.deck.LoadIfNeeded(h.ctx)
	h.writeSnapshot(w, r, http.StatusOK)
}

// reload retries the fetch, typically after a failure
func (h *deckHandler) reload(w http.ResponseWriter, r *http.Request) {
	h.deck.Load(h.ctx)
	h.writeSnapshot(w, r, http.StatusAccepted)
}

func (h *deckHandler) cancel(w http.ResponseWriter, r *http.Request) {
	h.deck.Cancel()
	h.writeSnapshot(w, r, http.StatusOK)
}

// getIcon serves the icon bytes of one entry. 404 tells the client to show
// its placeholder.
func (h *deckHandler) getIcon(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid icon index", goerr.V("index", raw)), http.StatusBadRequest)
		return
	}

	state, ok := h.deck.Icon(index)
	if !ok {
		writeError(w, r, goerr.New("no such entry", goerr.V("index", index)), http.StatusNotFound)
		return
	}
	if !state.Available() {
		writeError(w, r, goerr.New("icon not available", goerr.V("index", index), goerr.V("status", state.Status)), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(state.Data))
	w.Header().Set("Content-Length", strconv.Itoa(len(state.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(state.Data); err != nil {
		ctxlog.From(r.Context()).Warn("Failed to write icon", "error", err, "index", index)
	}
}
