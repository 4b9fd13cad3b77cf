package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mmcdole/movzen/internal/catalog"
	"github.com/mmcdole/movzen/internal/domain"
	"github.com/mmcdole/movzen/internal/lists"
	"github.com/mmcdole/movzen/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if m.ShowHelp {
		return m.renderHelp()
	}
	if m.ConfirmClear {
		return m.renderClearConfirmation()
	}

	s := m.top()

	var body string
	switch s.kind {
	case screenHome:
		body = m.renderHome(s)
	case screenMovies:
		body = m.renderMovies(s)
	case screenGenres:
		body = m.renderGenres(s)
	case screenDetail:
		body = m.renderDetailScreen(s)
	case screenSaved:
		body = m.renderSaved(s)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

// renderHeader renders the breadcrumb of the navigation stack
func (m Model) renderHeader() string {
	parts := make([]string, len(m.stack))
	for i, s := range m.stack {
		parts[i] = s.title
	}
	crumb := strings.Join(parts, " › ")
	return styles.HeaderStyle.Render(styles.Truncate(crumb, max(m.Width-2, 10)))
}

func (m Model) renderHome(s *screen) string {
	rows := make([]string, len(homeMenu))
	for i, item := range homeMenu {
		label := item.label
		if item.action == actionSaved {
			label = fmt.Sprintf("%s (%d)", label, m.Lists.Len(item.list))
		}
		rows[i] = renderRow(label, i == s.cursor, m.Width-4)
	}
	return styles.BodyStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderMovies(s *screen) string {
	if s.page == nil {
		return styles.BodyStyle.Render(m.renderLoadState(s, "Loading movies..."))
	}
	if len(s.page.Movies) == 0 {
		return styles.BodyStyle.Render(styles.DimStyle.Render("No movies found"))
	}

	var b strings.Builder
	summary := fmt.Sprintf("%s results", humanize.Comma(int64(s.page.TotalResults)))
	if s.browse.Category == catalog.CategoryGenre {
		summary += " · sorted by " + catalog.SortLabel(s.browse.Sort)
	}
	b.WriteString(styles.DimStyle.Render(summary))
	b.WriteString("\n\n")

	start, end := window(s.cursor, len(s.page.Movies), m.bodyHeight())
	for i := start; i < end; i++ {
		movie := s.page.Movies[i]
		b.WriteString(renderRow(m.movieLine(movie.Summary()), i == s.cursor, m.Width-4))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderPager(s.browse.Page, s.page.TotalPages))
	if s.loading {
		b.WriteString("  " + m.Spinner.View())
	}
	return styles.BodyStyle.Render(b.String())
}

func (m Model) renderGenres(s *screen) string {
	if len(s.genres) == 0 {
		return styles.BodyStyle.Render(m.renderLoadState(s, "Loading genres..."))
	}

	start, end := window(s.cursor, len(s.genres), m.bodyHeight())
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, renderRow(s.genres[i].Name, i == s.cursor, m.Width-4))
	}
	return styles.BodyStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderDetailScreen(s *screen) string {
	if s.detail == nil {
		return styles.BodyStyle.Render(m.renderLoadState(s, "Loading movie..."))
	}
	return m.Viewport.View()
}

func (m Model) renderSaved(s *screen) string {
	var b strings.Builder

	if m.InputMode == InputFilter || s.filter != "" {
		b.WriteString(styles.FilterPromptStyle.Render("/") + s.filter)
		b.WriteString("\n\n")
	}

	if len(s.entries) == 0 {
		empty := "Nothing here yet"
		switch {
		case s.filter != "":
			empty = "No titles match " + fmt.Sprintf("%q", s.filter)
		case s.list == lists.WatchLater:
			empty = "Press w on any movie to save it for later"
		}
		b.WriteString(styles.DimStyle.Render(empty))
		return styles.BodyStyle.Render(b.String())
	}

	now := m.now()
	start, end := window(s.cursor, len(s.entries), m.bodyHeight())
	for i := start; i < end; i++ {
		entry := s.entries[i]
		line := m.movieLine(entry)
		if added := catalog.FormatAdded(entry.AddedAt, now); added != "" {
			line += "  " + styles.DimStyle.Render(added)
		}
		b.WriteString(renderRow(line, i == s.cursor, m.Width-4))
		b.WriteString("\n")
	}
	return styles.BodyStyle.Render(b.String())
}

// movieLine renders "★ Title (1999)  8.4"
func (m Model) movieLine(movie domain.MovieSummary) string {
	mark := " "
	if m.Lists.IsInWatchLater(movie.ID) {
		mark = styles.SavedMark
	}
	return fmt.Sprintf("%s %s (%s)  %s", mark, movie.Title, movie.Year(), styles.AccentStyle.Render(movie.Rating()))
}

func (m Model) renderLoadState(s *screen, loading string) string {
	if s.err != nil {
		return renderError(s.err, m.Width-4)
	}
	if s.loading {
		return m.Spinner.View() + " " + styles.DimStyle.Render(loading)
	}
	return ""
}

// renderFooter renders the status line and the key hints
func (m Model) renderFooter() string {
	if m.InputMode != InputNone {
		return m.Input.View()
	}

	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	hints := m.hints()
	right := strings.Join(hints, "  ")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// hints returns the key hints relevant to the current screen
func (m Model) hints() []string {
	s := m.top()
	hints := []string{}

	switch s.kind {
	case screenMovies:
		hints = append(hints, styles.Hint("n/p", "page"), styles.Hint("w", "watch later"))
		if s.browse.Category == catalog.CategoryGenre {
			hints = append(hints, styles.Hint("o", "sort"))
		}
	case screenDetail:
		hints = append(hints, styles.Hint("w", "watch later"), styles.Hint("m", "similar"))
		if m.Opener != nil {
			hints = append(hints, styles.Hint("t", "trailer"))
		}
	case screenSaved:
		hints = append(hints, styles.Hint("/", "filter"), styles.Hint("d", "remove"), styles.Hint("C", "clear"))
	}
	return append(hints, styles.Hint("?", "help"))
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      MOVIES
  j/k        Up/down              w      Toggle watch later
  g/G        First/last item      m      More like this
  Enter/l    Open                 n/p    Next/previous page
  h/Esc      Back                 o      Cycle genre sort
                                  t      Play trailer

SEARCH & LISTS                  OTHER
  s          Search movies        ?      This help
  /          Filter saved list    q      Quit
  d          Remove from list
  C          Clear list

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderClearConfirmation renders the clear list confirmation modal
func (m Model) renderClearConfirmation() string {
	s := m.top()
	modal := fmt.Sprintf(`
       Clear %s?

  This removes all %d movies.

      [Y] Yes      [N] No
`, s.list.Title(), m.Lists.Len(s.list))

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}

// === Detail ===

// renderDetail renders the full movie page for the viewport
func renderDetail(d *catalog.Detail, saved bool, width int, now time.Time) string {
	movie := d.Movie
	wrap := max(width-4, 20)

	var b strings.Builder

	title := styles.TitleStyle.Render(movie.Title)
	if saved {
		title = styles.SavedMark + " " + title
	}
	b.WriteString(title + "\n")
	if movie.Tagline != "" {
		b.WriteString(styles.SubtitleStyle.Render(movie.Tagline) + "\n")
	}

	facts := []string{
		movie.Year(),
		catalog.FormatRuntime(movie.Runtime),
		fmt.Sprintf("%.1f/10 (%s)", movie.VoteAverage, catalog.FormatVotes(movie.VoteCount)),
	}
	if genres := movie.GenreNames(); genres != "" {
		facts = append(facts, genres)
	}
	b.WriteString(styles.DimStyle.Render(strings.Join(facts, " · ")) + "\n")

	if movie.Overview != "" {
		b.WriteString(section("Overview"))
		b.WriteString(styles.WordWrap(movie.Overview, wrap) + "\n")
	}

	b.WriteString(section("Details"))
	b.WriteString(fact("Status", movie.Status))
	b.WriteString(fact("Release date", movie.ReleaseDate))
	b.WriteString(fact("Original language", strings.ToUpper(movie.OriginalLanguage)))
	b.WriteString(fact("Budget", catalog.FormatCurrency(movie.Budget)))
	b.WriteString(fact("Revenue", catalog.FormatCurrency(movie.Revenue)))
	if len(movie.ProductionCompanies) > 0 {
		names := make([]string, len(movie.ProductionCompanies))
		for i, c := range movie.ProductionCompanies {
			names[i] = c.Name
		}
		b.WriteString(fact("Production", strings.Join(names, ", ")))
	}

	if d.Providers != nil {
		b.WriteString(section("Where to Watch (" + d.Region + ")"))
		b.WriteString(providerLine("Stream", d.Providers.Flatrate))
		b.WriteString(providerLine("Free", d.Providers.Free))
		b.WriteString(providerLine("With ads", d.Providers.Ads))
		b.WriteString(providerLine("Rent", d.Providers.Rent))
		b.WriteString(providerLine("Buy", d.Providers.Buy))
	}

	if len(d.Crew) > 0 {
		b.WriteString(section("Crew"))
		for _, c := range d.Crew {
			b.WriteString(fact(c.Job, c.Name))
		}
	}

	if len(d.Cast) > 0 {
		b.WriteString(section("Top Cast"))
		for _, c := range d.Cast {
			line := c.Name
			if c.Character != "" {
				line += styles.DimStyle.Render(" as " + c.Character)
			}
			b.WriteString("  " + line + "\n")
		}
	}

	if len(d.Videos) > 0 {
		b.WriteString(section("Videos"))
		for _, v := range d.Videos {
			b.WriteString(fmt.Sprintf("  %s %s\n    %s\n", styles.AccentStyle.Render(v.Type), v.Name, styles.DimStyle.Render(v.URL())))
		}
	}

	if len(d.Reviews) > 0 {
		b.WriteString(section(fmt.Sprintf("Reviews (%d)", d.TotalReviews)))
		for _, r := range d.Reviews {
			header := r.Author
			if r.AuthorDetails.Rating != nil {
				header += fmt.Sprintf("  %.0f/10", *r.AuthorDetails.Rating)
			}
			if created, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
				header += styles.DimStyle.Render("  " + humanize.RelTime(created, now, "ago", "from now"))
			}
			b.WriteString("  " + styles.AccentStyle.Render(header) + "\n")
			b.WriteString(indent(styles.WordWrap(excerpt(r.Content, 400), wrap-2), "  ") + "\n\n")
		}
	}

	if len(d.Backdrops) > 0 {
		b.WriteString(section(fmt.Sprintf("Images (%d)", len(d.Backdrops))))
		for _, img := range d.Backdrops {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %s  %dx%d", img.FilePath, img.Width, img.Height)) + "\n")
		}
	}

	if len(d.Similar) > 0 {
		b.WriteString(section("Similar Movies"))
		for _, s := range d.Similar {
			b.WriteString(fmt.Sprintf("  %s (%s)  %s\n", s.Title, s.Year(), styles.AccentStyle.Render(fmt.Sprintf("%.1f", s.VoteAverage))))
		}
		b.WriteString(styles.DimStyle.Render("  press m for more") + "\n")
	}

	if len(d.Errors) > 0 {
		missing := make([]string, 0, len(d.Errors))
		for _, sec := range []catalog.Section{
			catalog.SectionImages, catalog.SectionCredits, catalog.SectionReviews,
			catalog.SectionProviders, catalog.SectionVideos, catalog.SectionSimilar,
		} {
			if _, failed := d.Errors[sec]; failed {
				missing = append(missing, string(sec))
			}
		}
		b.WriteString("\n" + styles.ErrorStyle.Render("Unavailable: "+strings.Join(missing, ", ")) + "\n")
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func section(title string) string {
	return styles.SectionStyle.Render(title) + "\n"
}

func fact(label, value string) string {
	if value == "" {
		return ""
	}
	return "  " + styles.DimStyle.Render(label+": ") + value + "\n"
}

func providerLine(label string, providers []domain.Provider) string {
	if len(providers) == 0 {
		return ""
	}
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.ProviderName
	}
	return fact(label, strings.Join(names, ", "))
}

func excerpt(text string, n int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "…"
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// === Shared pieces ===

func renderRow(text string, selected bool, width int) string {
	style := styles.NormalItemStyle
	if selected {
		style = styles.SelectedItemStyle
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(text)
}

// renderPager renders the page window, e.g. "1 … 4 5 6 … 500"
func renderPager(current, total int) string {
	pages := catalog.PageNumbers(current, total)
	parts := make([]string, len(pages))
	for i, p := range pages {
		switch {
		case p == catalog.Ellipsis:
			parts[i] = styles.DimStyle.Render("…")
		case p == current:
			parts[i] = styles.PageCurrentStyle.Render(fmt.Sprint(p))
		default:
			parts[i] = styles.PageStyle.Render(fmt.Sprint(p))
		}
	}
	return strings.Join(parts, "")
}

// window returns the [start, end) slice of n rows that keeps cursor visible
// in height rows
func window(cursor, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

// renderError renders an error message
func renderError(err error, width int) string {
	msg := styles.WordWrap(err.Error(), width-4)
	return styles.ErrorStyle.Render("Error: " + msg)
}
