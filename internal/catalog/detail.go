package catalog

import (
	"context"
	"sync"

	"github.com/mmcdole/movzen/internal/domain"
	"github.com/mmcdole/movzen/internal/fetch"
	"github.com/sourcegraph/conc"
)

// Display limits for the detail view
const (
	MaxBackdrops = 8
	MaxCast      = 10
	MaxCrew      = 6
	MaxReviews   = 3
	MaxVideos    = 4
	MaxSimilar   = 6
)

var featuredJobs = map[string]bool{
	"Director":   true,
	"Writer":     true,
	"Screenplay": true,
	"Producer":   true,
}

var videoTypes = map[string]bool{
	"Trailer":    true,
	"Teaser":     true,
	"Clip":       true,
	"Featurette": true,
}

// Section names a part of the detail view loaded independently
type Section string

const (
	SectionImages    Section = "images"
	SectionCredits   Section = "credits"
	SectionReviews   Section = "reviews"
	SectionProviders Section = "providers"
	SectionVideos    Section = "videos"
	SectionSimilar   Section = "similar"
)

// Detail is everything the movie view shows. Secondary sections that
// failed to load are empty and their error is kept in Errors.
type Detail struct {
	Movie        *domain.MovieDetails
	Backdrops    []domain.Image
	Cast         []domain.CastMember
	Crew         []domain.CrewMember
	Reviews      []domain.Review
	TotalReviews int
	Region       string
	Providers    *domain.RegionProviders // nil when none in Region
	Videos       []domain.Video
	Similar      []domain.Movie
	Errors       map[Section]error
}

// Summary returns the list record for the movie
func (d *Detail) Summary() domain.MovieSummary {
	return d.Movie.Summary()
}

// Detail loads a movie and its secondary sections concurrently. Only a
// failure of the movie itself fails the call. On success the movie is
// recorded as recently viewed.
func (s *Service) Detail(ctx context.Context, movieID int) (*Detail, error) {
	d := &Detail{Region: s.region, Errors: make(map[Section]error)}

	var (
		mu       sync.Mutex
		movieErr error
	)
	fail := func(section Section, err error) {
		mu.Lock()
		d.Errors[section] = err
		mu.Unlock()
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		res := runMovieQuery(ctx, s, "movie-details", movieID, s.repo.GetMovie)
		if res.Err != nil {
			movieErr = res.Err
			return
		}
		d.Movie = res.Data
	})
	wg.Go(func() {
		res := runMovieQuery(ctx, s, "movie-images", movieID, s.repo.GetImages)
		if res.Err != nil {
			fail(SectionImages, res.Err)
			return
		}
		d.Backdrops = limit(res.Data.Backdrops, MaxBackdrops)
	})
	wg.Go(func() {
		res := runMovieQuery(ctx, s, "movie-credits", movieID, s.repo.GetCredits)
		if res.Err != nil {
			fail(SectionCredits, res.Err)
			return
		}
		d.Cast = limit(res.Data.Cast, MaxCast)
		d.Crew = featuredCrew(res.Data.Crew)
	})
	wg.Go(func() {
		res := runMovieQuery(ctx, s, "movie-reviews", movieID, func(ctx context.Context, id int) (*domain.ReviewPage, error) {
			return s.repo.GetReviews(ctx, id, 1)
		})
		if res.Err != nil {
			fail(SectionReviews, res.Err)
			return
		}
		d.Reviews = limit(res.Data.Results, MaxReviews)
		d.TotalReviews = res.Data.TotalResults
	})
	wg.Go(func() {
		res := runMovieQuery(ctx, s, "movie-providers", movieID, s.repo.GetWatchProviders)
		if res.Err != nil {
			fail(SectionProviders, res.Err)
			return
		}
		if region, ok := res.Data.Results[s.region]; ok && !region.IsEmpty() {
			d.Providers = &region
		}
	})
	wg.Go(func() {
		res := runMovieQuery(ctx, s, "movie-videos", movieID, s.repo.GetVideos)
		if res.Err != nil {
			fail(SectionVideos, res.Err)
			return
		}
		d.Videos = featuredVideos(res.Data.Results)
	})
	wg.Go(func() {
		res := runMovieQuery(ctx, s, "similar-movies", movieID, func(ctx context.Context, id int) (*domain.MoviePage, error) {
			return s.repo.GetSimilar(ctx, id, 1)
		})
		if res.Err != nil {
			fail(SectionSimilar, res.Err)
			return
		}
		d.Similar = limit(res.Data.Results, MaxSimilar)
	})
	wg.Wait()

	if movieErr != nil {
		s.logger.Error("failed to load movie", "movieID", movieID, "error", movieErr)
		return nil, movieErr
	}
	for section, err := range d.Errors {
		s.logger.Warn("movie section unavailable", "movieID", movieID, "section", section, "error", err)
	}

	if s.recorder != nil {
		s.recorder.AddRecentlyViewed(d.Summary())
	}
	return d, nil
}

func runMovieQuery[T any](ctx context.Context, s *Service, name string, movieID int, get func(context.Context, int) (T, error)) fetch.Result[T] {
	q := fetch.New(s.cache, []any{name, movieID}, func(ctx context.Context, _ fetch.Params) (T, error) {
		return get(ctx, movieID)
	}, nil)
	return q.Run(ctx)
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func featuredCrew(crew []domain.CrewMember) []domain.CrewMember {
	out := make([]domain.CrewMember, 0, MaxCrew)
	for _, c := range crew {
		if len(out) == MaxCrew {
			break
		}
		if featuredJobs[c.Job] {
			out = append(out, c)
		}
	}
	return out
}

func featuredVideos(videos []domain.Video) []domain.Video {
	out := make([]domain.Video, 0, MaxVideos)
	for _, v := range videos {
		if len(out) == MaxVideos {
			break
		}
		if v.Site == "YouTube" && videoTypes[v.Type] {
			out = append(out, v)
		}
	}
	return out
}
