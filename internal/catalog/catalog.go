// Package catalog holds the read-only catalog stores: the full title list,
// per-title detail and the featured billboard pick.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

const catalogKey = "all"

// Store caches the full title list under a single key.
type Store struct {
	gateway  domain.CatalogGateway
	snapshot domain.Snapshot
	logger   *slog.Logger
	cache    *cache.Cache[string, []domain.Title]
}

// NewStore creates a catalog store, hydrating it from snapshot when a
// previous run saved the catalog.
func NewStore(gateway domain.CatalogGateway, snapshot domain.Snapshot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if snapshot == nil {
		snapshot = domain.NoSnapshot{}
	}
	s := &Store{
		gateway:  gateway,
		snapshot: snapshot,
		logger:   logger,
		cache:    cache.New[string, []domain.Title]("catalog", logger),
	}
	if titles, fetchedAt, ok := snapshot.GetCatalog(); ok {
		s.cache.Seed(catalogKey, titles, fetchedAt)
		logger.Debug("hydrated catalog from snapshot", "count", len(titles))
	}
	return s
}

// Entry returns the current catalog entry without fetching
func (s *Store) Entry() cache.Entry[[]domain.Title] {
	return s.cache.Get(catalogKey)
}

// Titles returns the cached titles, or nil if none are loaded
func (s *Store) Titles() []domain.Title {
	return s.Entry().Value
}

// Ensure loads the catalog, joining a fetch that is already outstanding
func (s *Store) Ensure(ctx context.Context) ([]domain.Title, error) {
	return s.cache.Ensure(ctx, catalogKey, s.fetch)
}

// Invalidate marks the catalog for revalidation on the next Ensure
func (s *Store) Invalidate() {
	s.cache.Invalidate(catalogKey)
}

// Observe registers fn to run after every catalog change
func (s *Store) Observe(fn func(cache.Entry[[]domain.Title])) {
	s.cache.Observe(func(_ string, e cache.Entry[[]domain.Title]) { fn(e) })
}

func (s *Store) fetch(ctx context.Context) ([]domain.Title, error) {
	titles, err := s.gateway.FetchCatalog(ctx)
	if err != nil {
		s.logger.Error("failed to fetch catalog", "error", err)
		return nil, err
	}
	if err := s.snapshot.SaveCatalog(titles, time.Now()); err != nil {
		s.logger.Error("failed to save catalog", "error", err)
	}
	s.logger.Debug("fetched catalog", "count", len(titles))
	return titles, nil
}

// Find returns the title with the given id from the cached catalog
func (s *Store) Find(id string) (domain.Title, bool) {
	for _, t := range s.Titles() {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Title{}, false
}

// FavoriteTitles projects the catalog onto a favorite set ("My List"),
// preserving catalog order.
func FavoriteTitles(titles []domain.Title, favorites domain.FavoriteSet) []domain.Title {
	if favorites.Len() == 0 {
		return nil
	}
	out := make([]domain.Title, 0, favorites.Len())
	for _, t := range titles {
		if favorites.Has(t.ID) {
			out = append(out, t)
		}
	}
	return out
}
