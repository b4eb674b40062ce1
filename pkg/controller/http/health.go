package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/appdeck/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
)

// handleHealth reports the service as healthy while a catalog is retained or
// no fetch has failed yet. A failed fetch with nothing to show is degraded.
func (h *deckHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := h.deck.State()
	status := &model.HealthStatus{
		Status:  "healthy",
		Service: "appdeck",
		Version: types.Version,
		Catalog: state.String(),
	}
	if state.Status == model.FetchFailed && h.deck.Catalog() == nil {
		status.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}
