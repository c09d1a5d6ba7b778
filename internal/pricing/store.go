package pricing

import (
	"fmt"
	"sync/atomic"
)

// CatalogStore publishes catalog snapshots. Readers take one snapshot per pricing call
// and never see a catalog change underneath them; writers replace the whole catalog.
type CatalogStore struct {
	current atomic.Pointer[Catalog]
}

// NewCatalogStore validates initial and publishes it.
func NewCatalogStore(initial *Catalog) (*CatalogStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog %q: %w", initial.Version, err)
	}
	s := &CatalogStore{}
	s.current.Store(initial)
	return s, nil
}

// Current returns the published catalog. Callers must not modify it.
func (s *CatalogStore) Current() *Catalog {
	return s.current.Load()
}

// Swap validates next and publishes it, returning the catalog it replaced. An invalid
// catalog is rejected and the current one stays published.
func (s *CatalogStore) Swap(next *Catalog) (*Catalog, error) {
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog %q: %w", next.Version, err)
	}
	return s.current.Swap(next), nil
}
