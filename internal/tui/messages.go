package tui

import (
	"github.com/mmcdole/movzen/internal/catalog"
	"github.com/mmcdole/movzen/internal/domain"
	"github.com/mmcdole/movzen/internal/fetch"
)

// Message types for the TUI. Every load carries the request id of the
// screen that asked for it; results for a screen that is gone are dropped.

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
	ReqID   int
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg signals that a listing page has been loaded
type PageLoadedMsg struct {
	ReqID  int
	Result fetch.Result[*catalog.Page]
}

// GenresLoadedMsg signals that the genre list has been loaded
type GenresLoadedMsg struct {
	ReqID  int
	Result fetch.Result[*domain.GenreList]
}

// DetailLoadedMsg signals that a movie detail has been loaded
type DetailLoadedMsg struct {
	ReqID  int
	Detail *catalog.Detail
}
