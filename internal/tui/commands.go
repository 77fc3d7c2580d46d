package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/app"
	"github.com/mmcdole/marquee/internal/domain"
)

// WaitForChangeCmd blocks until the next state change arrives
func WaitForChangeCmd(ch <-chan domain.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return ChangeMsg{Change: change}
	}
}

// StartCmd runs the initial catalog, billboard and favorites loads
func StartCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return StartedMsg{Err: a.Start(ctx)}
	}
}

// ToggleFavoriteCmd adds or removes a title from My List
func ToggleFavoriteCmd(a *app.App, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		m, err := a.ToggleFavorite(ctx, id)
		return FavoriteToggledMsg{Mutation: m, Title: title, Err: err}
	}
}

// PlayCmd launches the external player for a title
func PlayCmd(a *app.App, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Play(ctx, id); err != nil {
			return ErrMsg{Err: err, Context: "starting playback"}
		}
		return PlaybackStartedMsg{Title: title}
	}
}

// RefreshCmd revalidates the catalog and favorites
func RefreshCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return RefreshedMsg{Err: a.Refresh(ctx)}
	}
}

// RerollCmd picks a new billboard title
func RerollCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := a.Reroll(ctx); err != nil {
			return ErrMsg{Err: err, Context: "loading billboard"}
		}
		return nil
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
