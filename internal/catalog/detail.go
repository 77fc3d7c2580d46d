package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

// DetailStore caches single-title detail keyed by title ID
type DetailStore struct {
	gateway  domain.CatalogGateway
	snapshot domain.Snapshot
	logger   *slog.Logger
	cache    *cache.Cache[string, domain.Title]

	hydrateMu sync.Mutex
	hydrated  map[string]bool
}

// NewDetailStore creates a detail store. Titles saved to snapshot by a
// previous run are hydrated the first time their ID is read.
func NewDetailStore(gateway domain.CatalogGateway, snapshot domain.Snapshot, logger *slog.Logger) *DetailStore {
	if logger == nil {
		logger = slog.Default()
	}
	if snapshot == nil {
		snapshot = domain.NoSnapshot{}
	}
	return &DetailStore{
		gateway:  gateway,
		snapshot: snapshot,
		logger:   logger,
		cache:    cache.New[string, domain.Title]("detail", logger),
		hydrated: make(map[string]bool),
	}
}

// Entry returns the current detail entry for id without fetching
func (s *DetailStore) Entry(id string) cache.Entry[domain.Title] {
	s.hydrate(id)
	return s.cache.Get(id)
}

// Ensure loads the detail for id
func (s *DetailStore) Ensure(ctx context.Context, id string) (domain.Title, error) {
	s.hydrate(id)
	return s.cache.Ensure(ctx, id, func(ctx context.Context) (domain.Title, error) {
		return s.fetch(ctx, id)
	})
}

// Invalidate marks the detail for id for revalidation
func (s *DetailStore) Invalidate(id string) {
	s.cache.Invalidate(id)
}

// Observe registers fn to run after every detail change
func (s *DetailStore) Observe(fn func(id string, entry cache.Entry[domain.Title])) {
	s.cache.Observe(fn)
}

func (s *DetailStore) fetch(ctx context.Context, id string) (domain.Title, error) {
	title, err := s.gateway.FetchTitleDetail(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch title detail", "error", err, "titleID", id)
		return domain.Title{}, err
	}
	if err := s.snapshot.SaveTitle(title, time.Now()); err != nil {
		s.logger.Error("failed to save title", "error", err, "titleID", id)
	}
	s.logger.Debug("fetched title detail", "titleID", id)
	return title, nil
}

func (s *DetailStore) hydrate(id string) {
	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()
	if s.hydrated[id] {
		return
	}
	s.hydrated[id] = true
	if title, fetchedAt, ok := s.snapshot.GetTitle(id); ok {
		s.cache.Seed(id, title, fetchedAt)
	}
}
