package catalog

import (
	"context"
	"log/slog"

	"github.com/mmcdole/movzen/internal/domain"
	"github.com/mmcdole/movzen/internal/fetch"
)

// DefaultRegion picks watch providers when no region is configured
const DefaultRegion = "US"

// ViewRecorder receives movies the user opened
type ViewRecorder interface {
	AddRecentlyViewed(movie domain.MovieSummary)
}

// Page is one page of a listing, ready for display
type Page struct {
	Browse       Browse
	Movies       []domain.Movie
	TotalPages   int // capped at domain.MaxPages
	TotalResults int
}

// Service runs catalog queries through the fetch adapter
type Service struct {
	repo     domain.CatalogRepository
	cache    *fetch.Cache
	recorder ViewRecorder
	region   string
	logger   *slog.Logger
}

// NewService creates a catalog service. recorder may be nil.
func NewService(repo domain.CatalogRepository, cache *fetch.Cache, recorder ViewRecorder, region string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = fetch.NewCache(fetch.DefaultRetries, fetch.DefaultRetryDelay, logger)
	}
	if region == "" {
		region = DefaultRegion
	}
	return &Service{repo: repo, cache: cache, recorder: recorder, region: region, logger: logger}
}

// Genres loads the genre list
func (s *Service) Genres(ctx context.Context) fetch.Result[*domain.GenreList] {
	q := fetch.New(s.cache, []any{"genre-list"}, func(ctx context.Context, _ fetch.Params) (*domain.GenreList, error) {
		return s.repo.GetGenres(ctx)
	}, nil)
	return q.Run(ctx)
}

// Browse loads one page of a listing
func (s *Service) Browse(ctx context.Context, b Browse) fetch.Result[*Page] {
	b = b.Normalize()

	opts := fetch.Params{"page": b.Page}
	if b.Category == CategorySearch {
		opts["query"] = b.Query
	}
	if b.Category == CategoryGenre {
		opts["with_genres"] = b.GenreID
		opts["sort_by"] = b.Sort
	}

	q := fetch.New(s.cache, b.Key(), func(ctx context.Context, p fetch.Params) (*Page, error) {
		return s.loadPage(ctx, b, p)
	}, opts)

	res := q.Run(ctx)
	if res.Err != nil {
		s.logger.Error("failed to load listing", "category", b.Category, "page", b.Page, "error", res.Err)
	} else {
		s.logger.Debug("loaded listing", "category", b.Category, "page", b.Page, "count", len(res.Data.Movies))
	}
	return res
}

func (s *Service) loadPage(ctx context.Context, b Browse, p fetch.Params) (*Page, error) {
	page := p.Int("page", 1)

	var (
		result *domain.MoviePage
		err    error
	)
	switch b.Category {
	case CategoryPopular:
		result, err = s.repo.GetPopular(ctx, page)
	case CategoryTopRated:
		result, err = s.repo.GetTopRated(ctx, page)
	case CategoryNowPlaying:
		result, err = s.repo.GetNowPlaying(ctx, page)
	case CategoryUpcoming:
		result, err = s.repo.GetUpcoming(ctx, page)
	case CategorySearch:
		result, err = s.repo.Search(ctx, p.String("query"), page)
	case CategoryGenre:
		result, err = s.repo.Discover(ctx, domain.DiscoverOptions{
			Page:    page,
			GenreID: p.Int("with_genres", 0),
			SortBy:  p.String("sort_by"),
		})
	case CategorySimilar:
		result, err = s.repo.GetSimilar(ctx, b.MovieID, page)
	default:
		result, err = s.repo.Discover(ctx, domain.DiscoverOptions{Page: page})
	}
	if err != nil {
		return nil, err
	}

	movies := result.Results
	if b.Category == CategorySearch {
		movies = rankByTitle(movies, b.Query)
	}

	return &Page{
		Browse:       b,
		Movies:       movies,
		TotalPages:   result.CappedTotalPages(),
		TotalResults: result.TotalResults,
	}, nil
}
