package remote_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/mockserver"
	"github.com/mmcdole/marquee/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `
[[titles]]
id = "1"
title = "Alpha"
genres = ["Drama", "Crime"]
thumbnail_url = "/img/alpha.jpg"
video_url = "https://cdn.example.com/alpha.mp4"

[[titles]]
id = "2"
title = "beta"

[[users]]
id = "u1"
favorites = ["1"]
`

func newMock(t *testing.T, opts mockserver.Options) (*remote.Client, *mockserver.Server) {
	t.Helper()
	s, err := mockserver.ParseSeed(seed)
	require.NoError(t, err)
	srv := mockserver.New(s, opts)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return remote.NewClient(ts.URL+"/", opts.Token, nil), srv
}

func TestClient_Catalog(t *testing.T) {
	c, _ := newMock(t, mockserver.Options{})
	ctx := context.Background()

	titles, err := c.FetchCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, []string{"Drama", "Crime"}, titles[0].Genres)
	assert.Equal(t, c.BaseURL()+"/img/alpha.jpg", titles[0].ThumbnailURL, "relative asset resolved")
	assert.Equal(t, "https://cdn.example.com/alpha.mp4", titles[0].VideoURL)
	assert.Nil(t, titles[1].Genres)

	detail, err := c.FetchTitleDetail(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "beta", detail.Title)

	_, err = c.FetchTitleDetail(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_Featured(t *testing.T) {
	c, _ := newMock(t, mockserver.Options{IntN: func(int) int { return 0 }})
	title, err := c.FetchFeaturedCandidate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", title.ID)

	pool, err := remote.CatalogPool{Client: c}.FetchFeaturedCandidates(context.Background())
	require.NoError(t, err)
	assert.Len(t, pool, 2)
}

func TestClient_FeaturedNoContent(t *testing.T) {
	ts := httptest.NewServer(mockserver.New(mockserver.Seed{}, mockserver.Options{}).Router())
	t.Cleanup(ts.Close)

	_, err := remote.NewClient(ts.URL, "", nil).FetchFeaturedCandidate(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoContent)

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(empty.Close)

	_, err = remote.NewClient(empty.URL, "", nil).FetchFeaturedCandidate(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoContent)
}

func TestClient_Favorites(t *testing.T) {
	c, srv := newMock(t, mockserver.Options{Token: "tok"})
	ctx := context.Background()

	set, err := c.FetchFavoriteIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, set.IDs())

	set, err = c.AddFavorite(ctx, "u1", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, set.IDs())

	set, err = c.RemoveFavorite(ctx, "u1", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, set.IDs())
	assert.True(t, srv.Favorites("u1").Equal(set))

	_, err = c.AddFavorite(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, domain.ErrAuth},
		{"forbidden", http.StatusForbidden, `{}`, domain.ErrAuth},
		{"not found", http.StatusNotFound, `{}`, domain.ErrNotFound},
		{"server error", http.StatusInternalServerError, `{}`, domain.ErrNetwork},
		{"bad gateway", http.StatusBadGateway, `{}`, domain.ErrNetwork},
		{"malformed json", http.StatusOK, `{not json`, domain.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(ts.Close)

			_, err := remote.NewClient(ts.URL, "", nil).FetchTitleDetail(context.Background(), "1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_OversizedResponse(t *testing.T) {
	chunk := bytes.Repeat([]byte(" "), 1<<20)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 17 MiB of whitespace: valid JSON padding, but over the cap
		for range 17 {
			_, _ = w.Write(chunk)
		}
	}))
	t.Cleanup(ts.Close)

	_, err := remote.NewClient(ts.URL, "", nil).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestClient_ErrorBodyIsBounded(t *testing.T) {
	chunk := bytes.Repeat([]byte("x"), 1<<20)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		for range 4 {
			_, _ = w.Write(chunk)
		}
	}))
	t.Cleanup(ts.Close)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	_, err := remote.NewClient(ts.URL, "", logger).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Less(t, logs.Len(), 16<<10, "only the head of the error body is logged")
}

func TestClient_AuthRejected(t *testing.T) {
	c, _ := newMock(t, mockserver.Options{Token: "tok"})
	_, err := remote.NewClient(c.BaseURL(), "wrong", nil).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.False(t, domain.KindOf(err).Retryable())
}

func TestClient_ServerOffline(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := remote.NewClient(url, "", nil).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.True(t, domain.KindOf(err).Retryable())
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"favoriteIds":[]}`))
	}))
	t.Cleanup(ts.Close)

	_, err := remote.NewClient(ts.URL, "abc", nil).FetchFavoriteIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
}
