package tui

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/movzen/internal/catalog"
	"github.com/mmcdole/movzen/internal/domain"
	"github.com/mmcdole/movzen/internal/fetch"
	"github.com/mmcdole/movzen/internal/lists"
	"github.com/mmcdole/movzen/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu       sync.Mutex
	browsed  []catalog.Browse
	detailed []int
}

func (f *fakeCatalog) Genres(context.Context) fetch.Result[*domain.GenreList] {
	return fetch.Result[*domain.GenreList]{Data: &domain.GenreList{Genres: []domain.Genre{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}}}}
}

func (f *fakeCatalog) Browse(_ context.Context, b catalog.Browse) fetch.Result[*catalog.Page] {
	f.mu.Lock()
	f.browsed = append(f.browsed, b)
	f.mu.Unlock()
	return fetch.Result[*catalog.Page]{Data: testPage(b)}
}

func (f *fakeCatalog) Detail(_ context.Context, id int) (*catalog.Detail, error) {
	f.mu.Lock()
	f.detailed = append(f.detailed, id)
	f.mu.Unlock()
	return testDetail(id), nil
}

func testPage(b catalog.Browse) *catalog.Page {
	return &catalog.Page{
		Browse: b.Normalize(),
		Movies: []domain.Movie{
			{ID: 1, Title: "Alien", ReleaseDate: "1979-05-25", VoteAverage: 8.1},
			{ID: 2, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 7.9},
			{ID: 3, Title: "Aliens", ReleaseDate: "1986-07-18", VoteAverage: 7.9},
		},
		TotalPages:   3,
		TotalResults: 60,
	}
}

func testDetail(id int) *catalog.Detail {
	return &catalog.Detail{
		Movie:  &domain.MovieDetails{ID: id, Title: "Alien", Runtime: 117, ReleaseDate: "1979-05-25", Overview: "In space no one can hear you scream."},
		Region: "US",
		Errors: map[catalog.Section]error{},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestModel(t *testing.T) (Model, *fakeCatalog, *lists.Store) {
	t.Helper()
	kv, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	ls := lists.NewStore(kv, quietLogger())
	cat := &fakeCatalog{}
	m := NewModel(cat, ls, quietLogger())
	m.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), cat, ls
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
)

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// openCategory moves the home cursor to the menu entry labeled label and
// loads its first page
func openCategory(t *testing.T, m Model, label string) Model {
	t.Helper()
	for i, item := range homeMenu {
		if item.label == label {
			m.top().cursor = i
		}
	}
	m = send(t, m, enterKey)
	s := m.top()
	if s.kind == screenMovies {
		m = send(t, m, PageLoadedMsg{ReqID: s.reqID, Result: fetch.Result[*catalog.Page]{Data: testPage(s.browse)}})
	}
	return m
}

func TestOpenCategoryLoadsFirstPage(t *testing.T) {
	m, cat, _ := newTestModel(t)

	m.top().cursor = 1 // Top Rated
	next, cmd := m.Update(enterKey)
	m = next.(Model)
	require.NotNil(t, cmd)

	s := m.top()
	assert.Equal(t, screenMovies, s.kind)
	assert.True(t, s.loading)
	assert.Equal(t, catalog.CategoryTopRated, s.browse.Category)
	assert.Equal(t, "Top Rated Movies", s.title)

	// Run the load directly
	msg := LoadPageCmd(cat, s.reqID, s.browse)()
	m = send(t, m, msg)

	s = m.top()
	assert.False(t, s.loading)
	require.NotNil(t, s.page)
	assert.Len(t, s.page.Movies, 3)
	require.Len(t, cat.browsed, 1)
	assert.Equal(t, 1, cat.browsed[0].Page)
}

func TestStaleResultIsDropped(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = send(t, m, enterKey) // Popular, loading
	reqID := m.top().reqID
	m = send(t, m, escKey) // back home before it arrives

	m = send(t, m, PageLoadedMsg{ReqID: reqID, Result: fetch.Result[*catalog.Page]{Data: testPage(catalog.Browse{})}})
	assert.Equal(t, screenHome, m.top().kind)
	assert.Len(t, m.stack, 1)
}

func TestListingLeftMidLoadReloadsOnReturn(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openCategory(t, m, "Popular")

	m = send(t, m, runes("n"))
	listing := m.top()
	staleID := listing.reqID
	require.True(t, listing.loading)

	// rows of the old page can't be opened while the next one loads
	next, cmd := m.Update(enterKey)
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Same(t, listing, m.top())

	m = send(t, m, runes("s"), runes("x"), enterKey)
	require.Equal(t, catalog.CategorySearch, m.top().browse.Category)
	m = send(t, m, PageLoadedMsg{ReqID: staleID, Result: fetch.Result[*catalog.Page]{Data: testPage(listing.browse)}})

	next, cmd = m.Update(escKey)
	m = next.(Model)
	require.Same(t, listing, m.top())
	require.NotNil(t, cmd, "the dropped load is issued again")
	assert.True(t, listing.loading)
	assert.NotEqual(t, staleID, listing.reqID)
	assert.Equal(t, 2, listing.browse.Page)

	m = send(t, m, PageLoadedMsg{ReqID: listing.reqID, Result: fetch.Result[*catalog.Page]{Data: testPage(listing.browse)}})
	assert.False(t, listing.loading)
	assert.Equal(t, 2, listing.page.Browse.Page)

	_, cmd = m.Update(runes("n"))
	assert.NotNil(t, cmd, "paging works again")
}

func TestGenresLeftMidLoadReloadsOnReturn(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openCategory(t, m, "Genres")
	genres := m.top()
	require.True(t, genres.loading)
	staleID := genres.reqID

	m = send(t, m, runes("s"), runes("x"), enterKey)
	m = send(t, m, GenresLoadedMsg{ReqID: staleID, Result: (&fakeCatalog{}).Genres(context.Background())})

	next, cmd := m.Update(escKey)
	m = next.(Model)
	require.Same(t, genres, m.top())
	require.NotNil(t, cmd)
	assert.NotEqual(t, staleID, genres.reqID)

	m = send(t, m, GenresLoadedMsg{ReqID: genres.reqID, Result: (&fakeCatalog{}).Genres(context.Background())})
	assert.False(t, genres.loading)
	assert.Len(t, genres.genres, 2)
}

func TestLoadedScreenIsNotReloadedOnReturn(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openCategory(t, m, "Popular")
	listing := m.top()
	reqID := listing.reqID

	m = send(t, m, enterKey)
	next, cmd := m.Update(escKey)
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, reqID, m.top().reqID)
}

func TestSortIgnoredWhileLoading(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openCategory(t, m, "Genres")
	s := m.top()
	m = send(t, m, GenresLoadedMsg{ReqID: s.reqID, Result: (&fakeCatalog{}).Genres(context.Background())})
	m = send(t, m, enterKey)

	require.True(t, m.top().loading)
	_, cmd := m.Update(runes("o"))
	assert.Nil(t, cmd)
	assert.Equal(t, catalog.DefaultSort, m.top().browse.Sort)
}

func TestLoadErrorShowsStatus(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = send(t, m, enterKey)
	s := m.top()
	m = send(t, m, PageLoadedMsg{ReqID: s.reqID, Result: fetch.Result[*catalog.Page]{Err: domain.ErrCatalogUnreachable, Attempts: 4}})

	assert.True(t, m.StatusIsErr)
	assert.Contains(t, m.StatusMsg, "unreachable")
	assert.ErrorIs(t, m.top().err, domain.ErrCatalogUnreachable)
	assert.Contains(t, m.View(), "Error:")
}

func TestPaging(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openCategory(t, m, "Popular")

	// previous page is a no-op on page 1
	_, cmd := m.Update(runes("p"))
	assert.Nil(t, cmd)

	next, cmd := m.Update(runes("n"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, 2, m.top().browse.Page)
	assert.True(t, m.top().loading)

	// ignored while loading
	next, _ = m.Update(runes("n"))
	m = next.(Model)
	assert.Equal(t, 2, m.top().browse.Page)

	s := m.top()
	m = send(t, m, PageLoadedMsg{ReqID: s.reqID, Result: fetch.Result[*catalog.Page]{Data: testPage(s.browse)}})
	m = send(t, m, runes("n"))
	s = m.top()
	m = send(t, m, PageLoadedMsg{ReqID: s.reqID, Result: fetch.Result[*catalog.Page]{Data: testPage(s.browse)}})
	assert.Equal(t, 3, m.top().browse.Page)

	// last page
	_, cmd = m.Update(runes("n"))
	assert.Nil(t, cmd)
}

func TestToggleWatchLaterFromListing(t *testing.T) {
	m, _, ls := newTestModel(t)
	m = openCategory(t, m, "Popular")

	m = send(t, m, runes("j"), runes("w"))
	assert.True(t, ls.IsInWatchLater(2))
	assert.Contains(t, m.StatusMsg, "Added to Watch Later: Heat")

	m = send(t, m, runes("w"))
	assert.False(t, ls.IsInWatchLater(2))
	assert.Contains(t, m.StatusMsg, "Removed from Watch Later")
}

func TestGenreSortCycles(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openCategory(t, m, "Genres")
	s := m.top()
	require.Equal(t, screenGenres, s.kind)

	m = send(t, m, GenresLoadedMsg{ReqID: s.reqID, Result: (&fakeCatalog{}).Genres(context.Background())})
	m = send(t, m, runes("j"), enterKey)

	s = m.top()
	require.Equal(t, screenMovies, s.kind)
	assert.Equal(t, 35, s.browse.GenreID)
	assert.Equal(t, "Comedy Movies", s.title)
	assert.Equal(t, catalog.DefaultSort, s.browse.Sort)

	m = send(t, m, PageLoadedMsg{ReqID: s.reqID, Result: fetch.Result[*catalog.Page]{Data: testPage(s.browse)}})
	m = send(t, m, runes("n"))
	s = m.top()
	m = send(t, m, PageLoadedMsg{ReqID: s.reqID, Result: fetch.Result[*catalog.Page]{Data: testPage(s.browse)}})

	m = send(t, m, runes("o"))
	s = m.top()
	assert.Equal(t, "vote_average.desc", s.browse.Sort)
	assert.Equal(t, 1, s.browse.Page)
	assert.Contains(t, m.StatusMsg, "Highest Rated")
}

func TestSearchFromAnywhere(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openCategory(t, m, "Popular")

	m = send(t, m, runes("s"))
	assert.Equal(t, InputSearch, m.InputMode)

	m = send(t, m, runes("h"), runes("e"), runes("a"), runes("t"), enterKey)
	assert.Equal(t, InputNone, m.InputMode)

	s := m.top()
	assert.Equal(t, catalog.CategorySearch, s.browse.Category)
	assert.Equal(t, "heat", s.browse.Query)
	assert.Len(t, m.stack, 3)
}

func TestEmptySearchDoesNothing(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = send(t, m, runes("s"), enterKey)
	assert.Len(t, m.stack, 1)
	assert.Equal(t, InputNone, m.InputMode)
}

func TestDetailScreen(t *testing.T) {
	m, cat, ls := newTestModel(t)
	m = openCategory(t, m, "Popular")

	m = send(t, m, enterKey)
	s := m.top()
	require.Equal(t, screenDetail, s.kind)
	assert.Equal(t, 1, s.movieID)

	msg := LoadDetailCmd(cat, s.reqID, s.movieID)()
	m = send(t, m, msg)
	assert.Equal(t, "Alien", m.top().title)
	assert.Contains(t, m.View(), "1h 57m")

	m = send(t, m, runes("w"))
	assert.True(t, ls.IsInWatchLater(1))

	m = send(t, m, runes("m"))
	s = m.top()
	assert.Equal(t, catalog.CategorySimilar, s.browse.Category)
	assert.Equal(t, 1, s.browse.MovieID)
	assert.Equal(t, "Similar to Alien", s.title)
}

type fakeOpener struct{ opened []string }

func (f *fakeOpener) Open(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

func TestTrailerOpensFirstPlayableVideo(t *testing.T) {
	m, _, _ := newTestModel(t)
	opener := &fakeOpener{}
	m.Opener = opener
	m = openCategory(t, m, "Popular")
	m = send(t, m, enterKey)

	s := m.top()
	m = send(t, m, runes("t"))
	assert.Empty(t, opener.opened, "nothing to open before the movie loads")

	d := testDetail(s.movieID)
	d.Videos = []domain.Video{
		{Name: "Vimeo cut", Site: "Vimeo", Key: "v1", Type: "Trailer"},
		{Name: "Official Trailer", Site: "YouTube", Key: "abc", Type: "Trailer"},
	}
	m = send(t, m, DetailLoadedMsg{ReqID: s.reqID, Detail: d})
	m = send(t, m, runes("t"))

	assert.Equal(t, []string{"https://www.youtube.com/watch?v=abc"}, opener.opened)
	assert.Equal(t, "Opening Official Trailer", m.StatusMsg)

	// no playable video
	m.top().detail = testDetail(s.movieID)
	m = send(t, m, runes("t"))
	assert.Equal(t, "No trailer available", m.StatusMsg)
}

func TestDetailErrorStaysOnScreen(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openCategory(t, m, "Popular")
	m = send(t, m, enterKey)

	s := m.top()
	m = send(t, m, ErrMsg{Err: domain.ErrNotFound, Context: "loading movie", ReqID: s.reqID})
	assert.Equal(t, screenDetail, m.top().kind)
	assert.Equal(t, "loading movie: resource not found", m.StatusMsg)
}

func seedWatchLater(ls *lists.Store) {
	for _, mv := range []domain.MovieSummary{
		{ID: 10, Title: "The Thing"},
		{ID: 11, Title: "Alien"},
		{ID: 12, Title: "Aliens"},
	} {
		ls.AddWatchLater(mv)
	}
}

func TestSavedListRemoveAndClear(t *testing.T) {
	m, _, ls := newTestModel(t)
	seedWatchLater(ls)

	m = openCategory(t, m, "Watch Later")
	s := m.top()
	require.Equal(t, screenSaved, s.kind)
	require.Len(t, s.entries, 3)
	assert.Equal(t, "Aliens", s.entries[0].Title)

	m = send(t, m, runes("d"))
	assert.False(t, ls.IsInWatchLater(12))
	assert.Len(t, m.top().entries, 2)

	// declined clear keeps the list
	m = send(t, m, runes("C"))
	assert.True(t, m.ConfirmClear)
	assert.Contains(t, m.View(), "Clear Watch Later?")
	m = send(t, m, runes("n"))
	assert.False(t, m.ConfirmClear)
	assert.Len(t, ls.WatchLater(), 2)

	m = send(t, m, runes("C"), runes("y"))
	assert.Empty(t, ls.WatchLater())
	assert.Empty(t, m.top().entries)

	// nothing to clear
	m = send(t, m, runes("C"))
	assert.False(t, m.ConfirmClear)
}

func TestSavedListFilter(t *testing.T) {
	m, _, ls := newTestModel(t)
	seedWatchLater(ls)
	m = openCategory(t, m, "Watch Later")

	m = send(t, m, runes("/"), runes("a"), runes("l"), runes("i"))
	assert.Equal(t, InputFilter, m.InputMode)

	entries := m.top().entries
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Contains(t, e.Title, "Alien")
	}

	// enter keeps the filter, esc clears it
	m = send(t, m, enterKey)
	assert.Equal(t, "ali", m.top().filter)
	assert.Len(t, m.top().entries, 2)

	m = send(t, m, runes("/"), escKey)
	assert.Empty(t, m.top().filter)
	assert.Len(t, m.top().entries, 3)
}

func TestRecentlyViewedRefreshesOnReturn(t *testing.T) {
	m, _, ls := newTestModel(t)
	m = openCategory(t, m, "Recently Viewed")
	assert.Empty(t, m.top().entries)

	// another screen records a view while this one is covered
	m = send(t, m, runes("s"), runes("x"), enterKey)
	ls.AddRecentlyViewed(domain.MovieSummary{ID: 99, Title: "Heat"})
	m = send(t, m, escKey)

	require.Equal(t, screenSaved, m.top().kind)
	assert.Len(t, m.top().entries, 1)
}

func TestHelpAndQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = send(t, m, runes("?"))
	assert.True(t, m.ShowHelp)
	assert.Contains(t, m.View(), "NAVIGATION")

	m = send(t, m, runes("x"))
	assert.False(t, m.ShowHelp)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHomeViewShowsListCounts(t *testing.T) {
	m, _, ls := newTestModel(t)
	seedWatchLater(ls)
	assert.Contains(t, m.View(), "Watch Later (3)")
	assert.Contains(t, m.View(), "Recently Viewed (0)")
}

func TestWindow(t *testing.T) {
	start, end := window(0, 5, 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)

	start, end = window(50, 100, 10)
	assert.Equal(t, 45, start)
	assert.Equal(t, 55, end)

	start, end = window(99, 100, 10)
	assert.Equal(t, 90, start)
	assert.Equal(t, 100, end)
}
