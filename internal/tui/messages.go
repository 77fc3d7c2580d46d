package tui

import (
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/favorites"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ChangeMsg signals that application state changed and the view should re-read it
type ChangeMsg struct {
	Change domain.Change
}

// StartedMsg signals the initial loads settled
type StartedMsg struct {
	Err error
}

// FavoriteToggledMsg carries the settled mutation
type FavoriteToggledMsg struct {
	Mutation favorites.Mutation
	Title    string
	Err      error
}

// PlaybackStartedMsg signals that the player was launched
type PlaybackStartedMsg struct {
	Title string
}

// RefreshedMsg signals a refresh finished
type RefreshedMsg struct {
	Err error
}

// ClearStatusMsg clears the footer status
type ClearStatusMsg struct{}
