package domain

import "context"

// KeyValueStore is the synchronous string storage the local lists persist into.
// Get reports ok=false for a missing key; err is reserved for storage failures.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// DiscoverOptions filters the discover listing
type DiscoverOptions struct {
	Page    int
	GenreID int    // 0 = any genre
	SortBy  string // e.g. "popularity.desc"
}

// ListingRepository provides paginated movie listings (network)
type ListingRepository interface {
	GetGenres(ctx context.Context) (*GenreList, error)
	GetPopular(ctx context.Context, page int) (*MoviePage, error)
	GetTopRated(ctx context.Context, page int) (*MoviePage, error)
	GetNowPlaying(ctx context.Context, page int) (*MoviePage, error)
	GetUpcoming(ctx context.Context, page int) (*MoviePage, error)
	Discover(ctx context.Context, opts DiscoverOptions) (*MoviePage, error)
	Search(ctx context.Context, query string, page int) (*MoviePage, error)
}

// MovieRepository provides per-movie resources (network)
type MovieRepository interface {
	GetMovie(ctx context.Context, movieID int) (*MovieDetails, error)
	GetImages(ctx context.Context, movieID int) (*Images, error)
	GetCredits(ctx context.Context, movieID int) (*Credits, error)
	GetReviews(ctx context.Context, movieID, page int) (*ReviewPage, error)
	GetWatchProviders(ctx context.Context, movieID int) (*WatchProviders, error)
	GetVideos(ctx context.Context, movieID int) (*VideoList, error)
	GetSimilar(ctx context.Context, movieID, page int) (*MoviePage, error)
}

// CatalogRepository is everything the catalog client must implement
type CatalogRepository interface {
	ListingRepository
	MovieRepository
}
