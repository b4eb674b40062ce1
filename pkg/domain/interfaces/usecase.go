package interfaces

import (
	"context"

	"github.com/m-mizutani/appdeck/pkg/domain/model"
)

// DeckUseCase is the consumer-facing surface of one catalog document
type DeckUseCase interface {
	// Load fetches the catalog; no-op while a fetch is in flight
	Load(ctx context.Context)

	// LoadIfNeeded fetches the catalog only when none is retained
	LoadIfNeeded(ctx context.Context)

	// Cancel stops the catalog fetch and icon requests in flight
	Cancel()

	// State returns the catalog fetch state
	State() model.FetchState

	// Catalog returns the retained catalog, or nil
	Catalog() *model.Catalog

	// Snapshot localizes the retained catalog for the given raw locale tags
	Snapshot(preferences []string) *model.LocalizedCatalog

	// Icon returns the icon state of the entry at index
	Icon(index int) (model.ResourceState, bool)

	// Wait blocks until work in flight has settled
	Wait(ctx context.Context) error
}
