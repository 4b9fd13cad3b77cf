package tui

import (
	"github.com/mmcdole/movzen/internal/catalog"
	"github.com/mmcdole/movzen/internal/domain"
	"github.com/mmcdole/movzen/internal/lists"
)

type screenKind int

const (
	screenHome screenKind = iota
	screenMovies
	screenGenres
	screenDetail
	screenSaved
)

// screen is one level of the navigation stack. Only the fields of its kind
// are used.
type screen struct {
	kind   screenKind
	id     int
	reqID  int // id of the load the screen waits for
	title  string
	cursor int

	loading bool
	err     error

	// screenMovies
	browse catalog.Browse
	page   *catalog.Page

	// screenGenres
	genres []domain.Genre

	// screenDetail
	movieID int
	detail  *catalog.Detail

	// screenSaved
	list    lists.Name
	filter  string
	entries []domain.MovieSummary
}

// len returns the number of selectable rows
func (s *screen) len() int {
	switch s.kind {
	case screenHome:
		return len(homeMenu)
	case screenMovies:
		if s.page == nil {
			return 0
		}
		return len(s.page.Movies)
	case screenGenres:
		return len(s.genres)
	case screenSaved:
		return len(s.entries)
	default:
		return 0
	}
}

func (s *screen) move(delta int) {
	s.cursor += delta
	s.clampCursor(s.len())
}

func (s *screen) clampCursor(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// selectedMovie returns the listing entry under the cursor
func (s *screen) selectedMovie() (domain.Movie, bool) {
	if s.kind != screenMovies || s.page == nil || s.cursor >= len(s.page.Movies) {
		return domain.Movie{}, false
	}
	return s.page.Movies[s.cursor], true
}

// selectedSummary returns the list record under the cursor on any screen
// that shows movies
func (s *screen) selectedSummary() (domain.MovieSummary, bool) {
	switch s.kind {
	case screenMovies:
		movie, ok := s.selectedMovie()
		return movie.Summary(), ok
	case screenSaved:
		if s.cursor < len(s.entries) {
			return s.entries[s.cursor], true
		}
	case screenDetail:
		if s.detail != nil {
			return s.detail.Summary(), true
		}
	}
	return domain.MovieSummary{}, false
}

// menuAction is what a home menu entry opens
type menuAction int

const (
	actionBrowse menuAction = iota
	actionGenres
	actionSearch
	actionSaved
)

type menuItem struct {
	label    string
	action   menuAction
	category catalog.Category
	list     lists.Name
}

var homeMenu = []menuItem{
	{label: "Popular", action: actionBrowse, category: catalog.CategoryPopular},
	{label: "Top Rated", action: actionBrowse, category: catalog.CategoryTopRated},
	{label: "Now Playing", action: actionBrowse, category: catalog.CategoryNowPlaying},
	{label: "Upcoming", action: actionBrowse, category: catalog.CategoryUpcoming},
	{label: "Discover", action: actionBrowse, category: catalog.CategoryDiscover},
	{label: "Genres", action: actionGenres},
	{label: "Search", action: actionSearch},
	{label: "Watch Later", action: actionSaved, list: lists.WatchLater},
	{label: "Recently Viewed", action: actionSaved, list: lists.RecentlyViewed},
}
