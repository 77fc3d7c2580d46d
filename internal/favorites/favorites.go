// Package favorites caches the current user's favorite set and implements
// the optimistic add/remove protocol.
//
// A toggle writes the expected set immediately, issues the remote call and
// then either reconciles with the server's answer or rolls the toggled title
// back to its previous membership. At most one mutation per title may be
// outstanding; a second toggle is rejected with domain.ErrMutationInProgress.
package favorites

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

// Op is the direction of a favorite mutation
type Op int

const (
	OpAdd Op = iota
	OpRemove
)

func (o Op) String() string {
	if o == OpAdd {
		return "add"
	}
	return "remove"
}

// State is the lifecycle stage of a mutation
type State int

const (
	StatePending State = iota
	StateApplied
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateApplied:
		return "applied"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Mutation records one toggle. Err is set only when State is StateRolledBack.
type Mutation struct {
	ID      uuid.UUID
	TitleID string
	Op      Op
	State   State
	Err     error
}

// pending is the optimistic membership a mutation expects to hold
type pending struct {
	mutation Mutation
	member   bool
}

// Store caches one user's favorite set
type Store struct {
	gateway domain.FavoritesGateway
	userID  string
	logger  *slog.Logger
	cache   *cache.Cache[string, domain.FavoriteSet]

	// mu serializes optimistic writes, reconciliation and rollback.
	// It is always taken before the cache lock. pendingMu guards the
	// pending table for readers that do not hold mu; writers hold both.
	mu        sync.Mutex
	pendingMu sync.RWMutex
	pending   map[string]*pending
}

// NewStore creates a favorites store for userID
func NewStore(gateway domain.FavoritesGateway, userID string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		gateway: gateway,
		userID:  userID,
		logger:  logger,
		cache:   cache.New[string, domain.FavoriteSet]("favorites", logger),
		pending: make(map[string]*pending),
	}
}

// UserID returns the user whose favorites are cached
func (s *Store) UserID() string {
	return s.userID
}

// Entry returns the current favorites entry without fetching
func (s *Store) Entry() cache.Entry[domain.FavoriteSet] {
	return s.cache.Get(s.userID)
}

// IsFavorite reports whether id is in the current (possibly optimistic) set
func (s *Store) IsFavorite(id string) bool {
	return s.Entry().Value.Has(id)
}

// InFlight reports whether a mutation for id is outstanding
func (s *Store) InFlight(id string) bool {
	s.pendingMu.RLock()
	defer s.pendingMu.RUnlock()
	_, ok := s.pending[id]
	return ok
}

// Ensure revalidates the set from the server
func (s *Store) Ensure(ctx context.Context) (domain.FavoriteSet, error) {
	return s.cache.Ensure(ctx, s.userID, s.fetch)
}

// Invalidate marks the set for revalidation
func (s *Store) Invalidate() {
	s.cache.Invalidate(s.userID)
}

// Observe registers fn to run after every change to the set
func (s *Store) Observe(fn func(cache.Entry[domain.FavoriteSet])) {
	s.cache.Observe(func(_ string, e cache.Entry[domain.FavoriteSet]) { fn(e) })
}

func (s *Store) fetch(ctx context.Context) (domain.FavoriteSet, error) {
	set, err := s.gateway.FetchFavoriteIDs(ctx, s.userID)
	if err != nil {
		s.logger.Error("failed to fetch favorites", "error", err, "userID", s.userID)
		return domain.FavoriteSet{}, err
	}
	s.logger.Debug("fetched favorites", "userID", s.userID, "count", set.Len())
	return set, nil
}

// Toggle flips id's membership. The optimistic set is visible to readers
// before the remote call is issued. On failure the title's previous
// membership is restored before the error is returned.
func (s *Store) Toggle(ctx context.Context, id string) (Mutation, error) {
	s.mu.Lock()
	if _, busy := s.pending[id]; busy {
		s.mu.Unlock()
		return Mutation{TitleID: id}, domain.ErrMutationInProgress
	}

	var was bool
	p := &pending{mutation: Mutation{ID: uuid.New(), TitleID: id, Op: OpAdd, State: StatePending}}
	s.cache.Update(s.userID, func(cur domain.FavoriteSet, _ bool) domain.FavoriteSet {
		was = cur.Has(id)
		p.member = !was
		if was {
			p.mutation.Op = OpRemove
		}
		s.setPending(id, p)
		return cur.WithMembership(id, !was)
	})
	s.mu.Unlock()

	s.logger.Debug("favorite toggled optimistically", "titleID", id, "op", p.mutation.Op, "mutation", p.mutation.ID)

	var server domain.FavoriteSet
	var err error
	if p.mutation.Op == OpAdd {
		server, err = s.gateway.AddFavorite(ctx, s.userID, id)
	} else {
		server, err = s.gateway.RemoveFavorite(ctx, s.userID, id)
	}

	if err != nil {
		return s.rollback(p, was, err), err
	}
	return s.apply(p, server), nil
}

// apply replaces the set with the server's answer, keeping the optimistic
// membership of titles whose own mutations are still outstanding.
func (s *Store) apply(p *pending, server domain.FavoriteSet) Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPending(p.mutation.TitleID, nil)

	s.cache.Update(s.userID, func(domain.FavoriteSet, bool) domain.FavoriteSet {
		out := server
		for id, other := range s.pending {
			out = out.WithMembership(id, other.member)
		}
		return out
	})

	p.mutation.State = StateApplied
	if server.Has(p.mutation.TitleID) != p.member {
		s.logger.Warn("server disagreed with favorite change", "titleID", p.mutation.TitleID, "op", p.mutation.Op)
	}
	s.logger.Info("favorite change applied", "titleID", p.mutation.TitleID, "op", p.mutation.Op, "count", server.Len())
	return p.mutation
}

// rollback restores the title's pre-toggle membership. Other titles are left
// as they are so concurrent mutations are not disturbed. A set that was never
// fetched is left idle: the optimistic write displaced the first load, so
// what remains is not the server's set.
func (s *Store) rollback(p *pending, was bool, err error) Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPending(p.mutation.TitleID, nil)

	s.cache.Update(s.userID, func(cur domain.FavoriteSet, _ bool) domain.FavoriteSet {
		return cur.WithMembership(p.mutation.TitleID, was)
	})
	if s.cache.Get(s.userID).FetchedAt.IsZero() {
		s.cache.Invalidate(s.userID)
	}

	p.mutation.State = StateRolledBack
	p.mutation.Err = err
	s.logger.Error("favorite change rolled back", "titleID", p.mutation.TitleID, "op", p.mutation.Op, "error", err)
	return p.mutation
}

func (s *Store) setPending(id string, p *pending) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if p == nil {
		delete(s.pending, id)
		return
	}
	s.pending[id] = p
}
