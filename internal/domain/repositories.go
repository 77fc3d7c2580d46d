package domain

import "context"

// CatalogGateway provides read access to the remote catalog
type CatalogGateway interface {
	// FetchCatalog returns every title in catalog order
	FetchCatalog(ctx context.Context) ([]Title, error)

	// FetchTitleDetail returns a single title
	FetchTitleDetail(ctx context.Context, id string) (Title, error)

	// FetchFeaturedCandidate returns the server's billboard suggestion
	FetchFeaturedCandidate(ctx context.Context) (Title, error)
}

// FeaturedPool is optionally implemented by gateways that can return
// several billboard candidates for the client to choose from.
type FeaturedPool interface {
	FetchFeaturedCandidates(ctx context.Context) ([]Title, error)
}

// FavoritesGateway provides the per-user favorites API.
// Add and Remove return the server's updated set.
type FavoritesGateway interface {
	FetchFavoriteIDs(ctx context.Context, userID string) (FavoriteSet, error)
	AddFavorite(ctx context.Context, userID, titleID string) (FavoriteSet, error)
	RemoveFavorite(ctx context.Context, userID, titleID string) (FavoriteSet, error)
}

// RemoteGateway is the only boundary that issues network calls
type RemoteGateway interface {
	CatalogGateway
	FavoritesGateway
}
