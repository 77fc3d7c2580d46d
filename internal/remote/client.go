// Package remote implements domain.RemoteGateway over the catalog server's
// JSON HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Marquee/1.0"

	// maxResponseSize caps successful bodies; anything larger is rejected
	maxResponseSize = 16 << 20
	// maxErrorBody caps how much of a failed response is logged
	maxErrorBody = 8 << 10
)

// Client implements domain.RemoteGateway
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new catalog API client
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs a request and returns the body of a 2xx response.
// notFound is returned for 404 so callers can distinguish NotFound from NoContent.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, notFound error) ([]byte, error) {
	reqURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("catalog request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s %s", domain.ErrAuth, method, path)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", notFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("catalog request error", "status", resp.StatusCode, "body", string(msg))
		return nil, fmt.Errorf("%w: unexpected status code: %d", domain.ErrNetwork, resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrNetwork, err)
	}
	if len(respBody) > maxResponseSize {
		return nil, fmt.Errorf("%w: response from %s exceeds %d bytes", domain.ErrNetwork, path, maxResponseSize)
	}
	return respBody, nil
}

func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: failed to parse response: %v", domain.ErrNetwork, err)
	}
	return v, nil
}

// FetchCatalog returns every title in server order
func (c *Client) FetchCatalog(ctx context.Context) ([]domain.Title, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/movies", nil, domain.ErrNotFound)
	if err != nil {
		return nil, err
	}
	movies, err := decode[[]Movie](body)
	if err != nil {
		return nil, err
	}
	return MapTitles(movies, c.baseURL), nil
}

// FetchTitleDetail returns a single title
func (c *Client) FetchTitleDetail(ctx context.Context, id string) (domain.Title, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/movies/"+url.PathEscape(id), nil, domain.ErrNotFound)
	if err != nil {
		return domain.Title{}, err
	}
	movie, err := decode[Movie](body)
	if err != nil {
		return domain.Title{}, err
	}
	return MapTitle(movie, c.baseURL), nil
}

// FetchFeaturedCandidate returns the server's random billboard pick
func (c *Client) FetchFeaturedCandidate(ctx context.Context) (domain.Title, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/random", nil, domain.ErrNoContent)
	if err != nil {
		return domain.Title{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Title{}, domain.ErrNoContent
	}
	movie, err := decode[Movie](body)
	if err != nil {
		return domain.Title{}, err
	}
	if movie.ID == "" {
		return domain.Title{}, domain.ErrNoContent
	}
	return MapTitle(movie, c.baseURL), nil
}

// FetchFavoriteIDs returns the user's favorite set
func (c *Client) FetchFavoriteIDs(ctx context.Context, userID string) (domain.FavoriteSet, error) {
	body, err := c.doRequest(ctx, http.MethodGet, favoritesPath(userID), nil, domain.ErrNotFound)
	if err != nil {
		return domain.FavoriteSet{}, err
	}
	return decodeFavorites(body)
}

// AddFavorite adds titleID and returns the updated set
func (c *Client) AddFavorite(ctx context.Context, userID, titleID string) (domain.FavoriteSet, error) {
	req := AddFavoriteRequest{MovieID: titleID}
	body, err := c.doRequest(ctx, http.MethodPost, favoritesPath(userID), req, domain.ErrNotFound)
	if err != nil {
		return domain.FavoriteSet{}, err
	}
	return decodeFavorites(body)
}

// RemoveFavorite removes titleID and returns the updated set
func (c *Client) RemoveFavorite(ctx context.Context, userID, titleID string) (domain.FavoriteSet, error) {
	path := favoritesPath(userID) + "/" + url.PathEscape(titleID)
	body, err := c.doRequest(ctx, http.MethodDelete, path, nil, domain.ErrNotFound)
	if err != nil {
		return domain.FavoriteSet{}, err
	}
	return decodeFavorites(body)
}

func favoritesPath(userID string) string {
	return "/api/users/" + url.PathEscape(userID) + "/favorites"
}

func decodeFavorites(body []byte) (domain.FavoriteSet, error) {
	resp, err := decode[FavoritesResponse](body)
	if err != nil {
		return domain.FavoriteSet{}, err
	}
	return MapFavorites(resp), nil
}

// CatalogPool serves billboard candidates from the full catalog so the
// client rolls the pick itself instead of asking /api/random.
type CatalogPool struct {
	*Client
}

// FetchFeaturedCandidates returns every catalog title as a candidate
func (p CatalogPool) FetchFeaturedCandidates(ctx context.Context) ([]domain.Title, error) {
	return p.FetchCatalog(ctx)
}

var (
	_ domain.RemoteGateway = (*Client)(nil)
	_ domain.FeaturedPool  = CatalogPool{}
)
