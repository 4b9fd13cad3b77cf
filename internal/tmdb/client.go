package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/movzen/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the TMDB v3 API root
	DefaultBaseURL = "https://api.themoviedb.org/3"

	defaultTimeout  = 30 * time.Second
	defaultLanguage = "en-US"
	userAgent       = "Movzen/1.0"
)

// Options configures a Client
type Options struct {
	BaseURL   string
	Token     string
	Language  string
	Region    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
}

// Client implements domain.CatalogRepository for the TMDB v3 API
type Client struct {
	baseURL    string
	token      string
	language   string
	region     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new TMDB API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}

	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		token:    opts.Token,
		language: opts.Language,
		region:   opts.Region,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c
}

// doRequest performs an authenticated GET request
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.token == "" {
		return nil, domain.ErrMissingToken
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("language", c.language)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("tmdb request", "path", path, "query", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body)
		c.logger.Error("tmdb request error", "path", path, "status", resp.StatusCode, "message", apiErr.StatusMessage)
		return nil, apiErr
	}

	return body, nil
}

// get performs a request and decodes the JSON body into out
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("JSON parse error", "path", path, "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	return query
}

func (c *Client) getPage(ctx context.Context, path string, query url.Values) (*domain.MoviePage, error) {
	var page domain.MoviePage
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []domain.Movie{}
	}
	return &page, nil
}

// withRegion adds the region filter for listings that honor it
func (c *Client) withRegion(query url.Values) url.Values {
	if c.region != "" {
		query.Set("region", c.region)
	}
	return query
}

// === Listings ===

// GetGenres returns the movie genre list
func (c *Client) GetGenres(ctx context.Context) (*domain.GenreList, error) {
	var genres domain.GenreList
	if err := c.get(ctx, "/genre/movie/list", nil, &genres); err != nil {
		return nil, err
	}
	return &genres, nil
}

// GetPopular returns a page of popular movies
func (c *Client) GetPopular(ctx context.Context, page int) (*domain.MoviePage, error) {
	return c.getPage(ctx, "/movie/popular", c.withRegion(pageQuery(page)))
}

// GetTopRated returns a page of top rated movies
func (c *Client) GetTopRated(ctx context.Context, page int) (*domain.MoviePage, error) {
	return c.getPage(ctx, "/movie/top_rated", c.withRegion(pageQuery(page)))
}

// GetNowPlaying returns a page of movies currently in theaters
func (c *Client) GetNowPlaying(ctx context.Context, page int) (*domain.MoviePage, error) {
	return c.getPage(ctx, "/movie/now_playing", c.withRegion(pageQuery(page)))
}

// GetUpcoming returns a page of upcoming movies
func (c *Client) GetUpcoming(ctx context.Context, page int) (*domain.MoviePage, error) {
	return c.getPage(ctx, "/movie/upcoming", c.withRegion(pageQuery(page)))
}

// Discover returns a page of movies filtered by genre and sorted
func (c *Client) Discover(ctx context.Context, opts domain.DiscoverOptions) (*domain.MoviePage, error) {
	query := pageQuery(opts.Page)
	if opts.GenreID > 0 {
		query.Set("with_genres", strconv.Itoa(opts.GenreID))
	}
	if opts.SortBy != "" {
		query.Set("sort_by", opts.SortBy)
	}
	return c.getPage(ctx, "/discover/movie", query)
}

// Search returns a page of movies matching query
func (c *Client) Search(ctx context.Context, query string, page int) (*domain.MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	q := pageQuery(page)
	q.Set("query", query)
	return c.getPage(ctx, "/search/movie", q)
}

// === Per-movie resources ===

func moviePath(movieID int, resource string) string {
	if resource == "" {
		return fmt.Sprintf("/movie/%d", movieID)
	}
	return fmt.Sprintf("/movie/%d/%s", movieID, resource)
}

// GetMovie returns the full record for a movie
func (c *Client) GetMovie(ctx context.Context, movieID int) (*domain.MovieDetails, error) {
	var details domain.MovieDetails
	if err := c.get(ctx, moviePath(movieID, ""), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetImages returns the artwork for a movie. Without include_image_language
// the API drops textless backdrops, so those are requested explicitly.
func (c *Client) GetImages(ctx context.Context, movieID int) (*domain.Images, error) {
	query := url.Values{}
	query.Set("include_image_language", "en,null")
	var images domain.Images
	if err := c.get(ctx, moviePath(movieID, "images"), query, &images); err != nil {
		return nil, err
	}
	return &images, nil
}

// GetCredits returns the cast and crew for a movie
func (c *Client) GetCredits(ctx context.Context, movieID int) (*domain.Credits, error) {
	var credits domain.Credits
	if err := c.get(ctx, moviePath(movieID, "credits"), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// GetReviews returns a page of user reviews for a movie
func (c *Client) GetReviews(ctx context.Context, movieID, page int) (*domain.ReviewPage, error) {
	var reviews domain.ReviewPage
	if err := c.get(ctx, moviePath(movieID, "reviews"), pageQuery(page), &reviews); err != nil {
		return nil, err
	}
	return &reviews, nil
}

// GetWatchProviders returns streaming, rental and purchase options per region
func (c *Client) GetWatchProviders(ctx context.Context, movieID int) (*domain.WatchProviders, error) {
	var providers domain.WatchProviders
	if err := c.get(ctx, moviePath(movieID, "watch/providers"), nil, &providers); err != nil {
		return nil, err
	}
	return &providers, nil
}

// GetVideos returns trailers, teasers and clips for a movie
func (c *Client) GetVideos(ctx context.Context, movieID int) (*domain.VideoList, error) {
	var videos domain.VideoList
	if err := c.get(ctx, moviePath(movieID, "videos"), nil, &videos); err != nil {
		return nil, err
	}
	return &videos, nil
}

// GetSimilar returns a page of movies similar to movieID
func (c *Client) GetSimilar(ctx context.Context, movieID, page int) (*domain.MoviePage, error) {
	return c.getPage(ctx, moviePath(movieID, "similar"), pageQuery(page))
}

// Ping validates the token against the authentication endpoint
func (c *Client) Ping(ctx context.Context) error {
	var status statusResponse
	if err := c.get(ctx, "/authentication", nil, &status); err != nil {
		return err
	}
	if !status.Success {
		return domain.ErrAuthFailed
	}
	return nil
}

// Compile-time interface check
var _ domain.CatalogRepository = (*Client)(nil)

