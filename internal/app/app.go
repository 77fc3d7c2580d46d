// Package app wires the client state together. An App is created once at
// startup and handed to the presentation layer, which reads state through its
// synchronous accessors and re-reads whenever the observer fires.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/mmcdole/marquee/internal/modal"
	"github.com/mmcdole/marquee/internal/search"
)

// DefaultSuggestions caps the "did you mean" list
const DefaultSuggestions = 5

// Player plays a video URL
type Player interface {
	Launch(url string) error
}

// Options configures an App. Zero values fall back to defaults.
type Options struct {
	UserID   string
	Snapshot domain.Snapshot       // nil disables persistence
	Featured domain.CatalogGateway // billboard source, defaults to the gateway
	Player   Player
	Observer domain.Observer
	Logger   *slog.Logger

	Suggestions     int
	ModalOptions    []modal.Option
	FeaturedOptions []catalog.FeaturedOption
}

// App owns the stores, the overlay coordinator and the search query
type App struct {
	catalog   *catalog.Store
	details   *catalog.DetailStore
	featured  *catalog.FeaturedStore
	favorites *favorites.Store
	modal     *modal.Coordinator

	player      Player
	observer    domain.Observer
	logger      *slog.Logger
	suggestions int

	mu    sync.RWMutex
	query string
}

// New builds the application state over gateway. Background work started by
// the App (overlay detail loads) runs under ctx.
func New(ctx context.Context, gateway domain.RemoteGateway, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	snapshot := opts.Snapshot
	if snapshot == nil {
		snapshot = domain.NoSnapshot{}
	}
	featuredSource := opts.Featured
	if featuredSource == nil {
		featuredSource = gateway
	}
	observer := opts.Observer
	if observer == nil {
		observer = domain.NoOpObserver{}
	}
	suggestions := opts.Suggestions
	if suggestions <= 0 {
		suggestions = DefaultSuggestions
	}

	a := &App{
		catalog:     catalog.NewStore(gateway, snapshot, logger),
		details:     catalog.NewDetailStore(gateway, snapshot, logger),
		featured:    catalog.NewFeaturedStore(featuredSource, logger, opts.FeaturedOptions...),
		favorites:   favorites.NewStore(gateway, opts.UserID, logger),
		player:      opts.Player,
		observer:    observer,
		logger:      logger,
		suggestions: suggestions,
	}
	a.modal = modal.New(ctx, a.details, logger, opts.ModalOptions...)

	a.catalog.Observe(func(cache.Entry[[]domain.Title]) {
		a.emit(domain.SourceCatalog, "")
	})
	a.details.Observe(func(id string, _ cache.Entry[domain.Title]) {
		a.emit(domain.SourceDetail, id)
	})
	a.featured.Observe(func(cache.Entry[domain.Title]) {
		a.emit(domain.SourceFeatured, "")
	})
	a.favorites.Observe(func(cache.Entry[domain.FavoriteSet]) {
		a.emit(domain.SourceFavorites, opts.UserID)
	})
	a.modal.Observe(func(s modal.State) {
		a.emit(domain.SourceModal, s.TitleID)
	})

	return a
}

func (a *App) emit(source domain.Source, key string) {
	a.observer.OnChange(domain.Change{Source: source, Key: key})
}

// Start loads the catalog, the billboard pick and the favorites concurrently.
// It returns once all three have settled; failures stay visible in the entries.
func (a *App) Start(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	collect := func(what string, err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", what, err))
		mu.Unlock()
	}

	wg.Go(func() {
		_, err := a.catalog.Ensure(ctx)
		collect("catalog", err)
	})
	wg.Go(func() {
		_, err := a.featured.Ensure(ctx)
		collect("featured", err)
	})
	wg.Go(func() {
		_, err := a.favorites.Ensure(ctx)
		collect("favorites", err)
	})
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		a.logger.Error("startup load incomplete", "error", err)
	}
	return err
}

// Catalog returns the catalog entry
func (a *App) Catalog() cache.Entry[[]domain.Title] {
	return a.catalog.Entry()
}

// Featured returns the billboard entry
func (a *App) Featured() cache.Entry[domain.Title] {
	return a.featured.Entry()
}

// Favorites returns the current user's favorites entry
func (a *App) Favorites() cache.Entry[domain.FavoriteSet] {
	return a.favorites.Entry()
}

// Detail returns the detail entry for id
func (a *App) Detail(id string) cache.Entry[domain.Title] {
	return a.details.Entry(id)
}

// EnsureDetail loads the detail for id, joining an outstanding load
func (a *App) EnsureDetail(ctx context.Context, id string) (domain.Title, error) {
	return a.details.Ensure(ctx, id)
}

// IsFavorite reports the current (possibly optimistic) membership of id
func (a *App) IsFavorite(id string) bool {
	return a.favorites.IsFavorite(id)
}

// FavoritePending reports whether a favorite mutation for id is outstanding
func (a *App) FavoritePending(id string) bool {
	return a.favorites.InFlight(id)
}

// FavoriteTitles is "My List": favorited titles in catalog order
func (a *App) FavoriteTitles() []domain.Title {
	return catalog.FavoriteTitles(a.catalog.Titles(), a.favorites.Entry().Value)
}

// ToggleFavorite adds or removes id from the current user's favorites.
// A failed toggle that left the set unloaded starts a reload.
func (a *App) ToggleFavorite(ctx context.Context, id string) (favorites.Mutation, error) {
	m, err := a.favorites.Toggle(ctx, id)
	if err != nil && a.favorites.Entry().Status == cache.StatusIdle {
		go func() { _, _ = a.favorites.Ensure(context.WithoutCancel(ctx)) }()
	}
	return m, err
}

// OpenModal shows the info overlay for id
func (a *App) OpenModal(id string) {
	a.modal.Open(id)
}

// CloseModal starts closing the info overlay
func (a *App) CloseModal() {
	a.modal.Close()
}

// Modal returns the overlay state
func (a *App) Modal() modal.State {
	return a.modal.State()
}

// SetSearchQuery replaces the search text
func (a *App) SetSearchQuery(text string) {
	a.mu.Lock()
	changed := a.query != text
	a.query = text
	a.mu.Unlock()

	if changed {
		a.emit(domain.SourceSearch, text)
	}
}

// SearchQuery returns the search text
func (a *App) SearchQuery() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.query
}

// Searching reports whether the query selects a filtered view
func (a *App) Searching() bool {
	return a.SearchQuery() != ""
}

// SearchResults filters the catalog by the current query
func (a *App) SearchResults() []domain.Title {
	return search.Filter(a.catalog.Titles(), a.SearchQuery())
}

// Suggestions returns close matches when the query has no results
func (a *App) Suggestions() []domain.Title {
	titles := a.catalog.Titles()
	query := a.SearchQuery()
	if len(search.Filter(titles, query)) > 0 {
		return nil
	}
	return search.Suggest(titles, query, a.suggestions)
}

// Refresh revalidates the catalog and favorites
func (a *App) Refresh(ctx context.Context) error {
	a.catalog.Invalidate()
	a.favorites.Invalidate()

	var (
		wg                  sync.WaitGroup
		catalogErr, favsErr error
	)
	wg.Go(func() { _, catalogErr = a.catalog.Ensure(ctx) })
	wg.Go(func() { _, favsErr = a.favorites.Ensure(ctx) })
	wg.Wait()

	return errors.Join(catalogErr, favsErr)
}

// Reroll picks a new billboard title
func (a *App) Reroll(ctx context.Context) (domain.Title, error) {
	a.featured.Invalidate()
	return a.featured.Ensure(ctx)
}

// Play launches the title's video in the external player. The loaded detail
// is preferred; the catalog row is used when the detail is not available.
func (a *App) Play(ctx context.Context, id string) error {
	if a.player == nil {
		return fmt.Errorf("no player configured")
	}

	title, ok := a.playable(id)
	if !ok {
		detail, err := a.details.Ensure(ctx, id)
		if err != nil {
			return err
		}
		title = detail
	}

	a.logger.Info("playing title", "titleID", id, "title", title.Title)
	if err := a.player.Launch(title.VideoURL); err != nil {
		a.logger.Error("failed to launch player", "titleID", id, "error", err)
		return err
	}
	return nil
}

func (a *App) playable(id string) (domain.Title, bool) {
	if e := a.details.Entry(id); e.HasValue && e.Value.VideoURL != "" {
		return e.Value, true
	}
	if t, ok := a.catalog.Find(id); ok && t.VideoURL != "" {
		return t, true
	}
	return domain.Title{}, false
}
