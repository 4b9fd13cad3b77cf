package domain

import (
	"fmt"
	"strings"
)

// MovieSummary is the denormalized record kept in the local lists.
// AddedAt is assigned by the list store (milliseconds since epoch).
type MovieSummary struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview,omitempty"`
	AddedAt     int64   `json:"addedAt"`
}

// Year returns the release year or "N/A" when the date is unknown
func (m MovieSummary) Year() string {
	return releaseYear(m.ReleaseDate)
}

// Rating returns the vote average with one decimal
func (m MovieSummary) Rating() string {
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// Movie is a catalog listing entry as returned by the movie metadata API
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Adult            bool    `json:"adult"`
}

// Summary converts a listing entry into the record stored in local lists.
// AddedAt is left zero; the list store stamps it.
func (m Movie) Summary() MovieSummary {
	return MovieSummary{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
		ReleaseDate: m.ReleaseDate,
		Overview:    m.Overview,
	}
}

// Year returns the release year or "N/A"
func (m Movie) Year() string {
	return releaseYear(m.ReleaseDate)
}

// MoviePage is one page of a paginated listing
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// MaxPages is the upstream API's hard pagination limit
const MaxPages = 500

// CappedTotalPages returns TotalPages clamped to [1, MaxPages]
func (p MoviePage) CappedTotalPages() int {
	switch {
	case p.TotalPages < 1:
		return 1
	case p.TotalPages > MaxPages:
		return MaxPages
	default:
		return p.TotalPages
	}
}

// Genre is a catalog genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the genre listing response
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Find returns the genre with the given id
func (l GenreList) Find(id int) (Genre, bool) {
	for _, g := range l.Genres {
		if g.ID == id {
			return g, true
		}
	}
	return Genre{}, false
}

// Company is a production company
type Company struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

// Language is a spoken language entry
type Language struct {
	ISO6391     string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// Collection is the franchise a movie belongs to
type Collection struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
}

// MovieDetails is the full record for a single movie
type MovieDetails struct {
	ID                  int         `json:"id"`
	Title               string      `json:"title"`
	OriginalTitle       string      `json:"original_title"`
	OriginalLanguage    string      `json:"original_language"`
	Tagline             string      `json:"tagline"`
	Overview            string      `json:"overview"`
	PosterPath          *string     `json:"poster_path"`
	BackdropPath        *string     `json:"backdrop_path"`
	VoteAverage         float64     `json:"vote_average"`
	VoteCount           int         `json:"vote_count"`
	ReleaseDate         string      `json:"release_date"`
	Runtime             int         `json:"runtime"`
	Status              string      `json:"status"`
	Budget              int64       `json:"budget"`
	Revenue             int64       `json:"revenue"`
	Homepage            string      `json:"homepage"`
	IMDbID              string      `json:"imdb_id"`
	Popularity          float64     `json:"popularity"`
	Genres              []Genre     `json:"genres"`
	SpokenLanguages     []Language  `json:"spoken_languages"`
	ProductionCompanies []Company   `json:"production_companies"`
	BelongsToCollection *Collection `json:"belongs_to_collection"`
}

// Summary converts the details into a local list record
func (d MovieDetails) Summary() MovieSummary {
	return MovieSummary{
		ID:          d.ID,
		Title:       d.Title,
		PosterPath:  d.PosterPath,
		VoteAverage: d.VoteAverage,
		ReleaseDate: d.ReleaseDate,
		Overview:    d.Overview,
	}
}

// Year returns the release year or "N/A"
func (d MovieDetails) Year() string {
	return releaseYear(d.ReleaseDate)
}

// GenreNames joins the genre names with ", "
func (d MovieDetails) GenreNames() string {
	names := make([]string, len(d.Genres))
	for i, g := range d.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

func releaseYear(date string) string {
	if len(date) < 4 {
		return "N/A"
	}
	return date[:4]
}
