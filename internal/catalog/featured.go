package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

const featuredKey = "featured"

// FeaturedStore caches the billboard pick. Once a pick is ready it is pinned
// until Invalidate so the billboard never flickers between titles.
type FeaturedStore struct {
	gateway domain.CatalogGateway
	logger  *slog.Logger
	cache   *cache.Cache[string, domain.Title]
	intN    func(n int) int
}

// FeaturedOption configures a FeaturedStore
type FeaturedOption func(*FeaturedStore)

// WithRandom sets the source used to choose among pool candidates.
// intN must return a value in [0, n).
func WithRandom(intN func(n int) int) FeaturedOption {
	return func(s *FeaturedStore) { s.intN = intN }
}

// NewFeaturedStore creates a featured pick store
func NewFeaturedStore(gateway domain.CatalogGateway, logger *slog.Logger, opts ...FeaturedOption) *FeaturedStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FeaturedStore{
		gateway: gateway,
		logger:  logger,
		cache:   cache.New[string, domain.Title]("featured", logger),
		intN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Entry returns the current pick without fetching
func (s *FeaturedStore) Entry() cache.Entry[domain.Title] {
	return s.cache.Get(featuredKey)
}

// Ensure returns the pinned pick, fetching and rolling a new one only when
// the entry is not ready.
func (s *FeaturedStore) Ensure(ctx context.Context) (domain.Title, error) {
	if e := s.cache.Get(featuredKey); e.Status == cache.StatusReady {
		return e.Value, nil
	}
	return s.cache.Ensure(ctx, featuredKey, s.fetch)
}

// Invalidate releases the pin; the next Ensure rolls a new pick
func (s *FeaturedStore) Invalidate() {
	s.cache.Invalidate(featuredKey)
}

// Observe registers fn to run after every pick change
func (s *FeaturedStore) Observe(fn func(cache.Entry[domain.Title])) {
	s.cache.Observe(func(_ string, e cache.Entry[domain.Title]) { fn(e) })
}

func (s *FeaturedStore) fetch(ctx context.Context) (domain.Title, error) {
	pool, ok := s.gateway.(domain.FeaturedPool)
	if !ok {
		title, err := s.gateway.FetchFeaturedCandidate(ctx)
		if err != nil {
			s.logger.Error("failed to fetch featured title", "error", err)
			return domain.Title{}, err
		}
		s.logger.Debug("fetched featured title", "titleID", title.ID)
		return title, nil
	}

	candidates, err := pool.FetchFeaturedCandidates(ctx)
	if err != nil {
		s.logger.Error("failed to fetch featured candidates", "error", err)
		return domain.Title{}, err
	}
	if len(candidates) == 0 {
		return domain.Title{}, fmt.Errorf("%w: empty candidate pool", domain.ErrNoContent)
	}

	title := s.pick(candidates)
	s.logger.Debug("picked featured title", "titleID", title.ID, "candidates", len(candidates))
	return title, nil
}

// pick chooses a candidate, avoiding the title being replaced when the pool
// has an alternative.
func (s *FeaturedStore) pick(candidates []domain.Title) domain.Title {
	prev := s.cache.Get(featuredKey)
	if prev.HasValue && len(candidates) > 1 {
		rest := make([]domain.Title, 0, len(candidates)-1)
		for _, t := range candidates {
			if t.ID != prev.Value.ID {
				rest = append(rest, t)
			}
		}
		if len(rest) > 0 {
			candidates = rest
		}
	}
	return candidates[s.intN(len(candidates))]
}
