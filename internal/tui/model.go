package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/app"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/mmcdole/marquee/internal/modal"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Tab selects which list the browser shows
type Tab int

const (
	TabBrowse Tab = iota
	TabMyList
)

func (t Tab) String() string {
	if t == TabMyList {
		return "My List"
	}
	return "Browse"
}

// statusTTL is how long footer messages stay up
const statusTTL = 3 * time.Second

// Model is the main Bubble Tea model for the application
type Model struct {
	App     *app.App
	Changes <-chan domain.Change

	// UI state
	Tab         Tab
	Cursor      int
	Search      textinput.Model
	Spinner     spinner.Model
	ShowHelp    bool
	StatusMsg   string
	StatusIsErr bool

	// Dimensions
	Width  int
	Height int
	Ready  bool
}

// NewModel creates a new application model. changes must be the channel
// the App's ChannelObserver writes to.
func NewModel(a *app.App, changes <-chan domain.Change) Model {
	ti := textinput.New()
	ti.Placeholder = "Titles"
	ti.CharLimit = 100
	ti.Width = 30
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Model{
		App:     a,
		Changes: changes,
		Tab:     TabBrowse,
		Search:  ti,
		Spinner: sp,
	}
}

// Init starts the initial loads and begins listening for changes
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		StartCmd(m.App),
		WaitForChangeCmd(m.Changes),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Search.Width = max(10, msg.Width/3)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case ChangeMsg:
		m.clampCursor()
		return m, WaitForChangeCmd(m.Changes)

	case StartedMsg:
		if msg.Err != nil {
			return m.setStatus(describeError("Couldn't load everything", msg.Err), true)
		}
		return m, nil

	case FavoriteToggledMsg:
		return m.handleToggled(msg)

	case PlaybackStartedMsg:
		return m.setStatus("Playing "+msg.Title, false)

	case RefreshedMsg:
		if msg.Err != nil {
			return m.setStatus(describeError("Refresh failed", msg.Err), true)
		}
		return m.setStatus("Up to date", false)

	case ErrMsg:
		return m.setStatus(describeError(msg.Context, msg.Err), true)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Quit) && (msg.String() == "ctrl+c" || !m.Search.Focused()) {
		return m, tea.Quit
	}

	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.Search.Focused() {
		return m.handleSearchKey(msg)
	}

	// The overlay captures keys until it starts closing; a closing overlay
	// lets the list take over so a new title can be opened right away.
	if state := m.App.Modal(); state.Phase == modal.PhaseOpening || state.Phase == modal.PhaseOpen {
		return m.handleOverlayKey(msg, state.TitleID)
	}

	return m.handleListKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape):
		m.Search.Blur()
		m.Search.SetValue("")
		m.App.SetSearchQuery("")
		m.Cursor = 0
		return m, nil
	case key.Matches(msg, Keys.Enter), msg.Type == tea.KeyDown:
		m.Search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	// Surrounding spaces in the box never narrow the list
	if query := strings.TrimSpace(m.Search.Value()); query != m.App.SearchQuery() {
		m.App.SetSearchQuery(query)
		m.Cursor = 0
	}
	return m, cmd
}

func (m Model) handleOverlayKey(msg tea.KeyMsg, id string) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape), key.Matches(msg, Keys.Enter):
		m.App.CloseModal()
	case key.Matches(msg, Keys.Favorite):
		return m, ToggleFavoriteCmd(m.App, id, m.titleName(id))
	case key.Matches(msg, Keys.Play):
		return m, PlayCmd(m.App, id, m.titleName(id))
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()

	switch {
	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
	case key.Matches(msg, Keys.Search):
		m.Search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, Keys.Escape):
		if m.App.Searching() {
			m.Search.SetValue("")
			m.App.SetSearchQuery("")
			m.Cursor = 0
		}
	case key.Matches(msg, Keys.NextTab):
		m.Tab = (m.Tab + 1) % 2
		m.Cursor = 0
	case key.Matches(msg, Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(msg, Keys.Down):
		if m.Cursor < len(rows)-1 {
			m.Cursor++
		}
	case key.Matches(msg, Keys.Home):
		m.Cursor = 0
	case key.Matches(msg, Keys.End):
		m.Cursor = max(0, len(rows)-1)
	case key.Matches(msg, Keys.Refresh):
		return m, RefreshCmd(m.App)
	case key.Matches(msg, Keys.Reroll):
		return m, RerollCmd(m.App)
	case key.Matches(msg, Keys.Enter):
		if t, ok := m.selected(); ok {
			m.App.OpenModal(t.ID)
		}
	case key.Matches(msg, Keys.Favorite):
		if t, ok := m.selected(); ok {
			return m, ToggleFavoriteCmd(m.App, t.ID, t.Title)
		}
	case key.Matches(msg, Keys.Play):
		if t, ok := m.selected(); ok {
			return m, PlayCmd(m.App, t.ID, t.Title)
		}
	}
	return m, nil
}

func (m Model) handleToggled(msg FavoriteToggledMsg) (tea.Model, tea.Cmd) {
	m.clampCursor()
	switch {
	case errors.Is(msg.Err, domain.ErrMutationInProgress):
		return m.setStatus("Still saving "+msg.Title, false)
	case msg.Err != nil:
		return m.setStatus(describeError("Couldn't update My List", msg.Err), true)
	case msg.Mutation.Op == favorites.OpAdd:
		return m.setStatus("Added "+msg.Title+" to My List", false)
	default:
		return m.setStatus("Removed "+msg.Title+" from My List", false)
	}
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(statusTTL)
}

// rows returns the titles the list currently shows
func (m Model) rows() []domain.Title {
	switch {
	case m.App.Searching():
		return m.App.SearchResults()
	case m.Tab == TabMyList:
		return m.App.FavoriteTitles()
	default:
		return m.App.Catalog().Value
	}
}

func (m Model) selected() (domain.Title, bool) {
	rows := m.rows()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return domain.Title{}, false
	}
	return rows[m.Cursor], true
}

// clampCursor keeps the cursor on a row after the list shrinks
func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.Cursor >= n {
		m.Cursor = max(0, n-1)
	}
}

// titleName finds a display name for id from the detail or catalog
func (m Model) titleName(id string) string {
	if e := m.App.Detail(id); e.HasValue {
		return e.Value.Title
	}
	for _, t := range m.App.Catalog().Value {
		if t.ID == id {
			return t.Title
		}
	}
	return id
}

// describeError renders err with a hint based on its kind
func describeError(context string, err error) string {
	var hint string
	switch domain.KindOf(err) {
	case domain.KindNetwork:
		hint = " (offline? press r to retry)"
	case domain.KindAuth:
		hint = " (check server.token)"
	}
	if context == "" {
		return fmt.Sprintf("%v%s", err, hint)
	}
	return fmt.Sprintf("%s: %v%s", context, err, hint)
}
