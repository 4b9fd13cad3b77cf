package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/movzen/internal/catalog"
)

// handleKeyMsg routes key presses: modal states first, then global keys,
// then the keys of the current screen
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.ConfirmClear {
		return m.handleConfirmClear(msg)
	}

	if m.InputMode != InputNone {
		return m.handleInput(msg)
	}

	s := m.top()

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
		return m, nil

	case key.Matches(msg, Keys.Back):
		cmd := m.pop()
		return m, cmd

	case key.Matches(msg, Keys.Search):
		cmd := m.startInput(InputSearch, "")
		return m, cmd
	}

	if s.kind == screenDetail {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Up):
		s.move(-1)
	case key.Matches(msg, Keys.Down):
		s.move(1)
	case key.Matches(msg, Keys.Top):
		s.cursor = 0
	case key.Matches(msg, Keys.Bottom):
		s.cursor = s.len() - 1
		s.clampCursor(s.len())
	case key.Matches(msg, Keys.Enter):
		return m.handleEnter()
	case key.Matches(msg, Keys.NextPage):
		return m.changePage(1)
	case key.Matches(msg, Keys.PrevPage):
		return m.changePage(-1)
	case key.Matches(msg, Keys.Sort):
		return m.cycleSort()
	case key.Matches(msg, Keys.WatchLater):
		m.toggleWatchLater()
	case key.Matches(msg, Keys.Remove):
		m.removeSelected()
	case key.Matches(msg, Keys.Clear):
		if s.kind == screenSaved && m.Lists.Len(s.list) > 0 {
			m.ConfirmClear = true
		}
	case key.Matches(msg, Keys.Filter):
		if s.kind == screenSaved {
			cmd := m.startInput(InputFilter, s.filter)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	s := m.top()
	if s.loading {
		return m, nil
	}

	switch s.kind {
	case screenHome:
		item := homeMenu[s.cursor]
		switch item.action {
		case actionBrowse:
			cmd := m.openBrowse(catalog.Browse{Category: item.category, Page: 1})
			return m, cmd
		case actionGenres:
			cmd := m.openGenres()
			return m, cmd
		case actionSearch:
			cmd := m.startInput(InputSearch, "")
			return m, cmd
		case actionSaved:
			m.openSaved(item.list)
		}

	case screenMovies:
		if movie, ok := s.selectedMovie(); ok {
			cmd := m.openDetail(movie.ID, movie.Title)
			return m, cmd
		}

	case screenGenres:
		if s.cursor < len(s.genres) {
			g := s.genres[s.cursor]
			cmd := m.openBrowse(catalog.Browse{
				Category:  catalog.CategoryGenre,
				GenreID:   g.ID,
				GenreName: g.Name,
				Sort:      catalog.DefaultSort,
				Page:      1,
			})
			return m, cmd
		}

	case screenSaved:
		if entry, ok := s.selectedSummary(); ok {
			cmd := m.openDetail(entry.ID, entry.Title)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.top()

	switch {
	case key.Matches(msg, Keys.WatchLater):
		m.toggleWatchLater()
		m.refreshDetail()
		return m, nil
	case key.Matches(msg, Keys.Similar):
		if s.detail != nil {
			cmd := m.openBrowse(catalog.Browse{
				Category:  catalog.CategorySimilar,
				MovieID:   s.detail.Movie.ID,
				MovieName: s.detail.Movie.Title,
				Page:      1,
			})
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, Keys.Trailer):
		m.openTrailer()
		return m, nil
	}

	// Everything else scrolls
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// changePage moves a paged listing by delta pages, staying in range
func (m Model) changePage(delta int) (tea.Model, tea.Cmd) {
	s := m.top()
	if s.kind != screenMovies || s.loading || s.page == nil {
		return m, nil
	}

	next := s.browse.Page + delta
	if next < 1 || next > s.page.TotalPages {
		return m, nil
	}
	cmd := m.loadPage(s, s.browse.WithPage(next))
	return m, cmd
}

// cycleSort switches a genre listing to the next order and returns to page 1
func (m Model) cycleSort() (tea.Model, tea.Cmd) {
	s := m.top()
	if s.kind != screenMovies || s.loading || s.browse.Category != catalog.CategoryGenre {
		return m, nil
	}

	b := s.browse
	b.Sort = catalog.NextSort(b.Sort)
	b.Page = 1
	m.setStatus("Sort: " + catalog.SortLabel(b.Sort))
	cmd := m.loadPage(s, b)
	return m, cmd
}

func (m *Model) toggleWatchLater() {
	s := m.top()
	movie, ok := s.selectedSummary()
	if !ok {
		return
	}

	if m.Lists.ToggleWatchLater(movie) {
		m.setStatus("Added to Watch Later: " + movie.Title)
	} else {
		m.setStatus("Removed from Watch Later: " + movie.Title)
	}
	if s.kind == screenSaved {
		m.refreshSaved(s)
	}
}

// openTrailer opens the first playable video of the movie on screen
func (m *Model) openTrailer() {
	s := m.top()
	if s.detail == nil || m.Opener == nil {
		return
	}

	for _, v := range s.detail.Videos {
		if url := v.URL(); url != "" {
			if err := m.Opener.Open(url); err != nil {
				m.setError(ErrMsg{Err: err, Context: "opening trailer"})
				return
			}
			m.setStatus("Opening " + v.Name)
			return
		}
	}
	m.setStatus("No trailer available")
}

func (m *Model) removeSelected() {
	s := m.top()
	if s.kind != screenSaved {
		return
	}
	entry, ok := s.selectedSummary()
	if !ok {
		return
	}
	m.Lists.Remove(s.list, entry.ID)
	m.setStatus("Removed " + entry.Title)
	m.refreshSaved(s)
}

func (m Model) handleConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.top()
	switch {
	case key.Matches(msg, Keys.Confirm):
		m.ConfirmClear = false
		m.Lists.Clear(s.list)
		s.filter = ""
		m.refreshSaved(s)
		m.setStatus("Cleared " + s.list.Title())
	case key.Matches(msg, Keys.Deny):
		m.ConfirmClear = false
	}
	return m, nil
}

// === Text input ===

func (m *Model) startInput(mode InputMode, value string) tea.Cmd {
	m.InputMode = mode
	switch mode {
	case InputSearch:
		m.Input.Prompt = "Search: "
		m.Input.Placeholder = "movie title..."
	case InputFilter:
		m.Input.Prompt = "/"
		m.Input.Placeholder = "filter titles..."
	}
	m.Input.SetValue(value)
	m.Input.CursorEnd()
	return m.Input.Focus()
}

func (m *Model) stopInput() {
	m.InputMode = InputNone
	m.Input.Blur()
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.InputMode == InputFilter {
			s := m.top()
			s.filter = ""
			m.refreshSaved(s)
		}
		m.stopInput()
		return m, nil

	case tea.KeyEnter:
		mode := m.InputMode
		value := strings.TrimSpace(m.Input.Value())
		m.stopInput()

		if mode == InputSearch {
			if value == "" {
				return m, nil
			}
			cmd := m.openBrowse(catalog.Browse{Category: catalog.CategorySearch, Query: value, Page: 1})
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)

	// Filter live as the user types
	if m.InputMode == InputFilter {
		s := m.top()
		s.filter = m.Input.Value()
		s.cursor = 0
		m.refreshSaved(s)
	}
	return m, cmd
}

