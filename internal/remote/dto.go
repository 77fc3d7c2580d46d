package remote

// Movie is the wire representation of a title
type Movie struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Duration     string `json:"duration"`
	Genre        string `json:"genre"` // comma-separated labels
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
}

// FavoritesResponse is returned by every favorites endpoint
type FavoritesResponse struct {
	FavoriteIDs []string `json:"favoriteIds"`
}

// AddFavoriteRequest is the body of POST /api/users/{userID}/favorites
type AddFavoriteRequest struct {
	MovieID string `json:"movieId"`
}

// ErrorResponse is the body of non-2xx responses
type ErrorResponse struct {
	Error string `json:"error"`
}
