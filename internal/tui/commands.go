package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/movzen/internal/catalog"
)

// Command factories for async operations

// loadTimeout bounds a load including its retries
const loadTimeout = 2 * time.Minute

// LoadPageCmd loads one page of a listing
func LoadPageCmd(svc Catalog, reqID int, b catalog.Browse) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		return PageLoadedMsg{ReqID: reqID, Result: svc.Browse(ctx, b)}
	}
}

// LoadGenresCmd loads the genre list
func LoadGenresCmd(svc Catalog, reqID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		return GenresLoadedMsg{ReqID: reqID, Result: svc.Genres(ctx)}
	}
}

// LoadDetailCmd loads a movie and its sections
func LoadDetailCmd(svc Catalog, reqID, movieID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		detail, err := svc.Detail(ctx, movieID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading movie", ReqID: reqID}
		}
		return DetailLoadedMsg{ReqID: reqID, Detail: detail}
	}
}
