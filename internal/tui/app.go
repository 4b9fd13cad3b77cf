package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/movzen/internal/catalog"
	"github.com/mmcdole/movzen/internal/domain"
	"github.com/mmcdole/movzen/internal/fetch"
	"github.com/mmcdole/movzen/internal/lists"
	"github.com/mmcdole/movzen/internal/tui/styles"
)

// Catalog is the remote side of the app
type Catalog interface {
	Genres(ctx context.Context) fetch.Result[*domain.GenreList]
	Browse(ctx context.Context, b catalog.Browse) fetch.Result[*catalog.Page]
	Detail(ctx context.Context, movieID int) (*catalog.Detail, error)
}

// Lists is the local side of the app
type Lists interface {
	Len(name lists.Name) int
	Filter(name lists.Name, query string) []domain.MovieSummary
	Remove(name lists.Name, id int)
	Clear(name lists.Name)
	ToggleWatchLater(movie domain.MovieSummary) bool
	IsInWatchLater(id int) bool
}

// Opener opens links outside the terminal
type Opener interface {
	Open(url string) error
}

// InputMode is what the text input is currently collecting
type InputMode int

const (
	InputNone InputMode = iota
	InputSearch
	InputFilter
)

// ChromeHeight is the header line plus the footer line
const ChromeHeight = 2

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	Catalog Catalog
	Lists   Lists
	Opener  Opener // nil disables trailers
	logger  *slog.Logger

	// Navigation stack, home at the bottom
	stack  []*screen
	nextID int

	// UI Components
	Viewport viewport.Model // detail view
	Spinner  spinner.Model
	Input    textinput.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	InputMode    InputMode
	ConfirmClear bool
	ShowHelp     bool
	StatusMsg    string
	StatusIsErr  bool

	now func() time.Time
}

// NewModel creates a new application model on the home menu
func NewModel(svc Catalog, store Lists, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.SpinnerStyle

	ti := textinput.New()
	ti.CharLimit = 100
	ti.Width = 40
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.PromptStyle = styles.FilterPromptStyle

	m := Model{
		Catalog:  svc,
		Lists:    store,
		logger:   logger,
		Viewport: viewport.New(80, 20),
		Spinner:  sp,
		Input:    ti,
		now:      time.Now,
	}
	m.push(&screen{kind: screenHome, title: "movzen"})
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case PageLoadedMsg:
		s := m.screenFor(msg.ReqID)
		if s == nil {
			return m, nil
		}
		s.loading = false
		if msg.Result.IsError() {
			s.err = msg.Result.Err
			m.setError(ErrMsg{Err: msg.Result.Err, Context: "loading movies"})
			return m, nil
		}
		s.err = nil
		s.page = msg.Result.Data
		s.browse = s.page.Browse
		s.cursor = 0
		m.clearStatus()
		return m, nil

	case GenresLoadedMsg:
		s := m.screenFor(msg.ReqID)
		if s == nil {
			return m, nil
		}
		s.loading = false
		if msg.Result.IsError() {
			s.err = msg.Result.Err
			m.setError(ErrMsg{Err: msg.Result.Err, Context: "loading genres"})
			return m, nil
		}
		s.err = nil
		s.genres = msg.Result.Data.Genres
		m.clearStatus()
		return m, nil

	case DetailLoadedMsg:
		s := m.screenFor(msg.ReqID)
		if s == nil {
			return m, nil
		}
		s.loading = false
		s.err = nil
		s.detail = msg.Detail
		s.title = msg.Detail.Movie.Title
		m.refreshDetail()
		m.Viewport.GotoTop()
		m.clearStatus()
		return m, nil

	case ErrMsg:
		s := m.screenFor(msg.ReqID)
		if s == nil {
			return m, nil
		}
		s.loading = false
		s.err = msg.Err
		m.setError(msg)
		return m, nil
	}

	return m, nil
}

// === Stack ===

func (m *Model) top() *screen {
	return m.stack[len(m.stack)-1]
}

func (m *Model) push(s *screen) {
	m.nextID++
	s.id = m.nextID
	m.stack = append(m.stack, s)
}

// pop returns to the previous screen. A screen that was left while loading
// lost its result to screenFor, so its load is issued again.
func (m *Model) pop() tea.Cmd {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
	}
	m.clearStatus()

	// The lists may have changed while the screen was covered
	top := m.top()
	switch top.kind {
	case screenSaved:
		m.refreshSaved(top)
	case screenDetail:
		m.refreshDetail()
	}

	if top.loading {
		m.logger.Debug("reloading screen", "title", top.title)
		return m.reload(top)
	}
	return nil
}

// screenFor returns the screen still waiting for reqID, or nil when the
// user navigated away or the screen issued a newer request
func (m *Model) screenFor(reqID int) *screen {
	top := m.top()
	if top.reqID != reqID {
		m.logger.Debug("dropping stale result", "reqID", reqID)
		return nil
	}
	return top
}

// request stamps s with a fresh request id and marks it loading
func (m *Model) request(s *screen) int {
	m.nextID++
	s.reqID = m.nextID
	s.loading = true
	s.err = nil
	return s.reqID
}

// === Loads ===

func (m *Model) openBrowse(b catalog.Browse) tea.Cmd {
	s := &screen{kind: screenMovies, browse: b.Normalize(), title: b.Title()}
	m.push(s)
	return m.loadPage(s, s.browse)
}

func (m *Model) loadPage(s *screen, b catalog.Browse) tea.Cmd {
	reqID := m.request(s)
	s.browse = b
	return tea.Batch(LoadPageCmd(m.Catalog, reqID, b), m.Spinner.Tick)
}

func (m *Model) openGenres() tea.Cmd {
	s := &screen{kind: screenGenres, title: "Genres"}
	m.push(s)
	return m.reload(s)
}

func (m *Model) openDetail(movieID int, title string) tea.Cmd {
	s := &screen{kind: screenDetail, movieID: movieID, title: title}
	m.push(s)
	m.Viewport.SetContent("")
	return m.reload(s)
}

// reload issues the load of s under a fresh request id
func (m *Model) reload(s *screen) tea.Cmd {
	switch s.kind {
	case screenMovies:
		return m.loadPage(s, s.browse)
	case screenGenres:
		reqID := m.request(s)
		return tea.Batch(LoadGenresCmd(m.Catalog, reqID), m.Spinner.Tick)
	case screenDetail:
		reqID := m.request(s)
		return tea.Batch(LoadDetailCmd(m.Catalog, reqID, s.movieID), m.Spinner.Tick)
	default:
		return nil
	}
}

func (m *Model) openSaved(name lists.Name) {
	s := &screen{kind: screenSaved, list: name, title: name.Title()}
	m.push(s)
	m.refreshSaved(s)
}

func (m *Model) refreshSaved(s *screen) {
	s.entries = m.Lists.Filter(s.list, s.filter)
	s.clampCursor(len(s.entries))
}

func (m *Model) refreshDetail() {
	s := m.top()
	if s.kind != screenDetail || s.detail == nil {
		return
	}
	m.Viewport.SetContent(renderDetail(s.detail, m.Lists.IsInWatchLater(s.detail.Movie.ID), m.Viewport.Width, m.now()))
}

// === Status ===

func (m *Model) setStatus(text string) {
	m.StatusMsg = text
	m.StatusIsErr = false
}

func (m *Model) setError(err ErrMsg) {
	m.logger.Error("tui error", "context", err.Context, "error", err.Err)
	m.StatusMsg = err.Error()
	m.StatusIsErr = true
}

func (m *Model) clearStatus() {
	m.StatusMsg = ""
	m.StatusIsErr = false
}

// updateLayout resizes the components after a window change
func (m *Model) updateLayout() {
	bodyHeight := m.Height - ChromeHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.Viewport.Width = m.Width
	m.Viewport.Height = bodyHeight
	m.refreshDetail()
}

// bodyHeight is the number of list rows that fit on screen
func (m Model) bodyHeight() int {
	h := m.Height - ChromeHeight - 4 // padding + pager
	if h < 3 {
		return 3
	}
	return h
}
