package catalog

import "fmt"

// Category selects which listing a Browse request pages through
type Category string

const (
	CategoryPopular    Category = "popular"
	CategoryTopRated   Category = "toprated"
	CategoryNowPlaying Category = "nowplaying"
	CategoryUpcoming   Category = "upcoming"
	CategoryDiscover   Category = "discover"
	CategorySearch     Category = "search"
	CategoryGenre      Category = "genre"
	CategorySimilar    Category = "similar"
)

// SortOption is a genre listing order
type SortOption struct {
	Value string
	Label string
}

// DefaultSort is the genre listing order used when none is chosen
const DefaultSort = "popularity.desc"

// SortOptions are the orders offered on genre listings, in display order
var SortOptions = []SortOption{
	{Value: "popularity.desc", Label: "Most Popular"},
	{Value: "vote_average.desc", Label: "Highest Rated"},
	{Value: "release_date.desc", Label: "Release date"},
	{Value: "title.asc", Label: "Title"},
}

// NormalizeSort returns sort if it is a known option, otherwise DefaultSort
func NormalizeSort(sort string) string {
	for _, o := range SortOptions {
		if o.Value == sort {
			return sort
		}
	}
	return DefaultSort
}

// SortLabel returns the display label of sort
func SortLabel(sort string) string {
	sort = NormalizeSort(sort)
	for _, o := range SortOptions {
		if o.Value == sort {
			return o.Label
		}
	}
	return ""
}

// NextSort cycles to the option after sort
func NextSort(sort string) string {
	sort = NormalizeSort(sort)
	for i, o := range SortOptions {
		if o.Value == sort {
			return SortOptions[(i+1)%len(SortOptions)].Value
		}
	}
	return DefaultSort
}

// Browse describes one page of a listing
type Browse struct {
	Category  Category
	Page      int
	Query     string // search
	GenreID   int    // genre
	GenreName string // genre, display only
	Sort      string // genre
	MovieID   int    // similar
	MovieName string // similar, display only
}

// Normalize clamps the page and fills defaults
func (b Browse) Normalize() Browse {
	if b.Page < 1 {
		b.Page = 1
	}
	if b.Category == CategoryGenre {
		b.Sort = NormalizeSort(b.Sort)
	}
	return b
}

// WithPage returns a copy of b positioned on page
func (b Browse) WithPage(page int) Browse {
	b.Page = page
	return b.Normalize()
}

// Title is the heading shown above the listing
func (b Browse) Title() string {
	switch b.Category {
	case CategoryTopRated:
		return "Top Rated Movies"
	case CategoryPopular:
		return "Popular Movies"
	case CategoryNowPlaying:
		return "Now Playing"
	case CategoryUpcoming:
		return "Upcoming Movies"
	case CategorySearch:
		return fmt.Sprintf("Search Results for %q", b.Query)
	case CategoryGenre:
		if b.GenreName != "" {
			return b.GenreName + " Movies"
		}
		return "Movies by Genre"
	case CategorySimilar:
		if b.MovieName != "" {
			return "Similar to " + b.MovieName
		}
		return "Similar Movies"
	default:
		return "Discover Movies"
	}
}

// Key returns the base query key for the listing
func (b Browse) Key() []any {
	b = b.Normalize()
	switch b.Category {
	case CategoryTopRated:
		return []any{"top-rated-movies-all", b.Page}
	case CategoryPopular:
		return []any{"popular-movies-all", b.Page}
	case CategoryNowPlaying:
		return []any{"now-playing-movies", b.Page}
	case CategoryUpcoming:
		return []any{"upcoming-movies", b.Page}
	case CategorySearch:
		return []any{"search-movies", b.Query, b.Page}
	case CategoryGenre:
		return []any{"movies-by-genre", b.GenreID, b.Page, b.Sort}
	case CategorySimilar:
		return []any{"similar-movies", b.MovieID, b.Page}
	default:
		return []any{"discover-movies", b.Page}
	}
}
