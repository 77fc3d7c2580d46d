// Package mockserver serves the catalog API from an in-memory seed for
// local development and tests.
package mockserver

import (
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/remote"
	"github.com/rs/cors"
)

// Options configures a Server
type Options struct {
	Token   string        // required bearer token; empty disables auth
	Latency time.Duration // artificial delay added to every API response
	IntN    func(n int) int
	Logger  *slog.Logger
}

// Server holds the catalog and per-user favorites
type Server struct {
	opts   Options
	logger *slog.Logger

	titles []domain.Title
	byID   map[string]int

	mu        sync.Mutex
	favorites map[string]domain.FavoriteSet
}

// New creates a server from seed
func New(seed Seed, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}
	s := &Server{
		opts:      opts,
		logger:    opts.Logger,
		titles:    seed.DomainTitles(),
		byID:      make(map[string]int, len(seed.Titles)),
		favorites: make(map[string]domain.FavoriteSet, len(seed.Users)),
	}
	for i, t := range s.titles {
		s.byID[t.ID] = i
	}
	for _, u := range seed.Users {
		s.favorites[u.ID] = domain.NewFavoriteSet(u.Favorites...)
	}
	return s
}

// Router returns the API routes wrapped in CORS handling
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.latency, s.auth)

		r.Get("/movies", s.handleListMovies)
		r.Get("/movies/{movieID}", s.handleGetMovie)
		r.Get("/random", s.handleRandom)

		r.Get("/users/{userID}/favorites", s.handleListFavorites)
		r.Post("/users/{userID}/favorites", s.handleAddFavorite)
		r.Delete("/users/{userID}/favorites/{movieID}", s.handleRemoveFavorite)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			select {
			case <-time.After(s.opts.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || got != s.opts.Token {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "marquee-mock",
	})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies := make([]remote.Movie, len(s.titles))
	for i, t := range s.titles {
		movies[i] = remote.ToMovie(t)
	}
	writeJSON(w, http.StatusOK, movies)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(chi.URLParam(r, "movieID"))
	if !ok {
		writeError(w, http.StatusNotFound, "Invalid ID")
		return
	}
	writeJSON(w, http.StatusOK, remote.ToMovie(t))
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	if len(s.titles) == 0 {
		writeError(w, http.StatusNotFound, "No movies found")
		return
	}
	t := s.titles[s.opts.IntN(len(s.titles))]
	writeJSON(w, http.StatusOK, remote.ToMovie(t))
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.mu.Lock()
	set := s.favorites[userID]
	s.mu.Unlock()
	writeFavorites(w, set)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var body remote.AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if _, ok := s.lookup(body.MovieID); !ok {
		writeError(w, http.StatusNotFound, "Invalid ID")
		return
	}

	s.mu.Lock()
	set := s.favorites[userID].With(body.MovieID)
	s.favorites[userID] = set
	s.mu.Unlock()

	s.logger.Info("favorite added", "userID", userID, "movieID", body.MovieID)
	writeFavorites(w, set)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	movieID := chi.URLParam(r, "movieID")
	if _, ok := s.lookup(movieID); !ok {
		writeError(w, http.StatusNotFound, "Invalid ID")
		return
	}

	s.mu.Lock()
	set := s.favorites[userID].Without(movieID)
	s.favorites[userID] = set
	s.mu.Unlock()

	s.logger.Info("favorite removed", "userID", userID, "movieID", movieID)
	writeFavorites(w, set)
}

// Favorites returns a user's current set
func (s *Server) Favorites(userID string) domain.FavoriteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites[userID]
}

func (s *Server) lookup(id string) (domain.Title, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Title{}, false
	}
	return s.titles[i], true
}

func writeFavorites(w http.ResponseWriter, set domain.FavoriteSet) {
	writeJSON(w, http.StatusOK, remote.FavoritesResponse{FavoriteIDs: set.IDs()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, remote.ErrorResponse{Error: msg})
}
