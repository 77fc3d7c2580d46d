package mockserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/marquee/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
[[titles]]
id = "1"
title = "Alpha"
genres = ["Drama", "Crime"]
video_url = "/media/alpha.mp4"

[[titles]]
id = "2"
title = "beta"

[[users]]
id = "u1"
favorites = ["1"]
`

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	seed, err := ParseSeed(testSeed)
	require.NoError(t, err)
	return New(seed, opts)
}

func do(t *testing.T, h http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	assert.NotEmpty(t, seed.Titles)

	_, err = ParseSeed("[[titles]]\ntitle = \"no id\"\n")
	assert.Error(t, err)

	_, err = ParseSeed("[[titles]]\nid = \"1\"\n[[titles]]\nid = \"1\"\n")
	assert.ErrorContains(t, err, "duplicate")

	_, err = ParseSeed("[[titles]]\nid = \"1\"\n[[users]]\nid = \"u\"\nfavorites = [\"9\"]\n")
	assert.ErrorContains(t, err, "unknown title")
}

func TestHandleMovies(t *testing.T) {
	h := newTestServer(t, Options{}).Router()

	rec := do(t, h, http.MethodGet, "/api/movies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	movies := decodeBody[[]remote.Movie](t, rec)
	require.Len(t, movies, 2)
	assert.Equal(t, "Drama, Crime", movies[0].Genre)

	rec = do(t, h, http.MethodGet, "/api/movies/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "beta", decodeBody[remote.Movie](t, rec).Title)

	rec = do(t, h, http.MethodGet, "/api/movies/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRandom(t *testing.T) {
	h := newTestServer(t, Options{IntN: func(n int) int { return n - 1 }}).Router()
	rec := do(t, h, http.MethodGet, "/api/random", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", decodeBody[remote.Movie](t, rec).ID)

	empty := New(Seed{}, Options{}).Router()
	rec = do(t, empty, http.MethodGet, "/api/random", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleFavorites(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Router()

	rec := do(t, h, http.MethodGet, "/api/users/u1/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1"}, decodeBody[remote.FavoritesResponse](t, rec).FavoriteIDs)

	rec = do(t, h, http.MethodPost, "/api/users/u1/favorites", remote.AddFavoriteRequest{MovieID: "2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1", "2"}, decodeBody[remote.FavoritesResponse](t, rec).FavoriteIDs)

	rec = do(t, h, http.MethodDelete, "/api/users/u1/favorites/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2"}, decodeBody[remote.FavoritesResponse](t, rec).FavoriteIDs)
	assert.Equal(t, []string{"2"}, s.Favorites("u1").IDs())

	rec = do(t, h, http.MethodPost, "/api/users/u1/favorites", remote.AddFavoriteRequest{MovieID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/users/u1/favorites/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/stranger/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[remote.FavoritesResponse](t, rec).FavoriteIDs)
}

func TestAuth(t *testing.T) {
	h := newTestServer(t, Options{Token: "secret"}).Router()

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/movies", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		do(t, h, http.MethodGet, "/api/movies", nil, "Authorization", "Bearer wrong").Code)
	assert.Equal(t, http.StatusOK,
		do(t, h, http.MethodGet, "/api/movies", nil, "Authorization", "Bearer secret").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil).Code, "health is public")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, Options{}).Router()
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPut, "/api/random", nil).Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, Options{}).Router()
	rec := do(t, h, http.MethodGet, "/api/movies", nil, "Origin", "http://localhost:3000")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
