package remote

import (
	"net/url"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
)

// MapTitles converts wire movies to domain titles, resolving relative
// asset paths against serverURL
func MapTitles(movies []Movie, serverURL string) []domain.Title {
	titles := make([]domain.Title, 0, len(movies))
	for _, m := range movies {
		if m.ID == "" {
			continue
		}
		titles = append(titles, MapTitle(m, serverURL))
	}
	return titles
}

// MapTitle converts a single wire movie
func MapTitle(m Movie, serverURL string) domain.Title {
	return domain.Title{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Duration:     m.Duration,
		Genres:       splitGenres(m.Genre),
		ThumbnailURL: resolveURL(serverURL, m.ThumbnailURL),
		VideoURL:     resolveURL(serverURL, m.VideoURL),
	}
}

// ToMovie converts a domain title back to its wire form
func ToMovie(t domain.Title) Movie {
	return Movie{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Duration:     t.Duration,
		Genre:        strings.Join(t.Genres, ", "),
		ThumbnailURL: t.ThumbnailURL,
		VideoURL:     t.VideoURL,
	}
}

// MapFavorites converts a favorites response to a set
func MapFavorites(resp FavoritesResponse) domain.FavoriteSet {
	return domain.NewFavoriteSet(resp.FavoriteIDs...)
}

func splitGenres(label string) []string {
	var genres []string
	for _, g := range strings.Split(label, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// resolveURL makes a server-relative path absolute. Absolute URLs and
// empty values pass through unchanged.
func resolveURL(serverURL, ref string) string {
	if ref == "" || serverURL == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	base, err := url.Parse(serverURL)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}
