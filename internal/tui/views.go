package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/modal"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Vertical chrome: header line, blank line and footer
const chromeHeight = 3

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	if m.ShowHelp {
		return m.renderHelp()
	}

	if state := m.App.Modal(); state.Visible() {
		overlay := lipgloss.Place(m.Width, m.Height-1, lipgloss.Center, lipgloss.Center, m.renderOverlay(state))
		return lipgloss.JoinVertical(lipgloss.Left, overlay, m.renderFooter())
	}

	var sections []string
	sections = append(sections, m.renderHeader(), "")
	if m.Tab == TabBrowse && !m.App.Searching() {
		sections = append(sections, m.renderBillboard())
	}
	used := lipgloss.Height(strings.Join(sections, "\n")) + 1
	sections = append(sections, m.renderList(max(1, m.Height-used)))

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	body = lipgloss.NewStyle().Height(max(1, m.Height-1)).MaxHeight(max(1, m.Height-1)).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

// renderHeader renders the tabs and the search box
func (m Model) renderHeader() string {
	var tabs []string
	for _, t := range []Tab{TabBrowse, TabMyList} {
		label := t.String()
		if t == TabMyList {
			label = fmt.Sprintf("%s (%d)", label, m.App.Favorites().Value.Len())
		}
		if t == m.Tab {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	left := styles.AccentStyle.Bold(true).Render("MARQUEE") + "  " + strings.Join(tabs, " ")

	right := m.Search.View()
	gap := max(1, m.Width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderBillboard renders the featured pick
func (m Model) renderBillboard() string {
	entry := m.App.Featured()
	switch {
	case entry.HasValue:
		t := entry.Value
		lines := []string{
			styles.BillboardTitleStyle.Render(t.Title),
			styles.SubtitleStyle.Render(joinMeta(t.GenreLabel(), t.Duration)),
			styles.DimStyle.Render(styles.Truncate(t.Description, max(20, m.Width-8))),
		}
		return styles.BillboardStyle.Render(strings.Join(lines, "\n"))
	case entry.Status == cache.StatusLoading || entry.Status == cache.StatusIdle:
		return styles.BillboardStyle.Render(m.Spinner.View() + styles.DimStyle.Render(" Loading billboard..."))
	default:
		return styles.BillboardStyle.Render(styles.DimStyle.Render(describeError("No billboard", entry.Err)))
	}
}

// renderList renders the current rows, scrolled so the cursor is visible
func (m Model) renderList(height int) string {
	if msg, ok := m.listPlaceholder(); ok {
		return msg
	}

	rows := m.rows()
	query := m.App.SearchQuery()
	if len(rows) == 0 {
		return m.renderEmpty(query)
	}

	offset := 0
	if m.Cursor >= height {
		offset = m.Cursor - height + 1
	}
	end := min(len(rows), offset+height)

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], query, i == m.Cursor))
	}
	return strings.Join(lines, "\n")
}

// listPlaceholder covers the catalog states that show no rows
func (m Model) listPlaceholder() (string, bool) {
	entry := m.App.Catalog()
	if entry.HasValue {
		return "", false
	}
	if entry.Status == cache.StatusError {
		return styles.ErrorStyle.Render(describeError("Couldn't load the catalog", entry.Err)), true
	}
	return m.Spinner.View() + styles.DimStyle.Render(" Loading catalog..."), true
}

func (m Model) renderEmpty(query string) string {
	if query == "" {
		if m.Tab == TabMyList {
			return styles.DimStyle.Render("Nothing in My List yet. Press f on a title to add it.")
		}
		return styles.DimStyle.Render("The catalog is empty.")
	}

	out := styles.DimStyle.Render(fmt.Sprintf("No titles match %q.", query))
	if suggestions := m.App.Suggestions(); len(suggestions) > 0 {
		names := make([]string, len(suggestions))
		for i, s := range suggestions {
			names[i] = styles.SubtitleStyle.Render(s.Title)
		}
		out += "\n" + styles.DimStyle.Render("Did you mean: ") + strings.Join(names, styles.DimStyle.Render(", "))
	}
	return out
}

func (m Model) renderRow(t domain.Title, query string, selected bool) string {
	marker := styles.DimStyle.Render(styles.NotFavoriteChar)
	switch {
	case m.App.FavoritePending(t.ID):
		marker = styles.PendingStyle.Render(favoriteChar(m.App.IsFavorite(t.ID)))
	case m.App.IsFavorite(t.ID):
		marker = styles.AccentStyle.Render(styles.FavoriteChar)
	}

	width := max(10, m.Width-30)
	name := styles.Truncate(t.Title, width)
	title := styles.RenderHighlighted(name, search.Highlight(name, query), selected)

	meta := styles.DimStyle.Render(joinMeta(t.GenreLabel(), t.Duration))
	line := marker + " " + title + "  " + meta
	if selected {
		return styles.AccentStyle.Render("▌") + line
	}
	return " " + line
}

// renderOverlay renders the info overlay for the modal title
func (m Model) renderOverlay(state modal.State) string {
	width := min(70, max(30, m.Width-10))
	detail := m.App.Detail(state.TitleID)

	t := detail.Value
	if !detail.HasValue {
		t = domain.Title{ID: state.TitleID, Title: m.titleName(state.TitleID)}
	}

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render(t.Title))
	b.WriteString("\n")

	switch {
	case detail.HasValue:
		if meta := joinMeta(t.GenreLabel(), t.Duration); meta != "" {
			b.WriteString(styles.SubtitleStyle.Render(meta) + "\n\n")
		}
		b.WriteString(lipgloss.NewStyle().Width(width - 4).Render(t.Description))
		b.WriteString("\n")
	case detail.Status == cache.StatusError:
		b.WriteString(styles.ErrorStyle.Render(describeError("Couldn't load details", detail.Err)) + "\n")
	default:
		b.WriteString(m.Spinner.View() + styles.DimStyle.Render(" Loading details...") + "\n")
	}
	if detail.HasValue && detail.Status == cache.StatusError {
		b.WriteString(styles.DimStyle.Render("(showing saved details)") + "\n")
	}

	b.WriteString("\n")
	fav := "Add to My List"
	if m.App.IsFavorite(state.TitleID) {
		fav = "Remove from My List"
	}
	if m.App.FavoritePending(state.TitleID) {
		fav = styles.PendingStyle.Render("Saving...")
	}
	b.WriteString(helpPair("p", "Play") + "   " + helpPair("f", fav) + "   " + helpPair("esc", "Close"))

	style := styles.ModalStyle
	if state.Phase == modal.PhaseClosing {
		style = styles.ClosingModalStyle
	}
	return style.Width(width).Render(b.String())
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	case m.App.Catalog().Loading() || m.App.Favorites().Loading():
		left = m.Spinner.View() + styles.DimStyle.Render(" Syncing...")
	case m.App.Catalog().Status == cache.StatusError && m.App.Catalog().HasValue:
		left = styles.DimStyle.Render("Offline: showing saved catalog")
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")
	gap := max(1, m.Width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	bindings := [][]string{
		{"j/k", "Move down/up"},
		{"g/G", "First/last title"},
		{"tab", "Browse / My List"},
		{"/", "Search titles"},
		{"enter", "More info"},
		{"f", "Add to / remove from My List"},
		{"p", "Play"},
		{"b", "New billboard pick"},
		{"r", "Refresh catalog and My List"},
		{"esc", "Close info / clear search"},
		{"q", "Quit"},
	}
	lines := []string{styles.ModalTitleStyle.Render("Keys")}
	for _, kb := range bindings {
		lines = append(lines, helpPair(fmt.Sprintf("%-6s", kb[0]), kb[1]))
	}
	lines = append(lines, "", styles.DimStyle.Render("Press any key to close"))

	box := styles.ModalStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box)
}

func helpPair(k, desc string) string {
	return styles.HelpKeyStyle.Render(k) + " " + styles.HelpDescStyle.Render(desc)
}

func favoriteChar(member bool) string {
	if member {
		return styles.FavoriteChar
	}
	return styles.NotFavoriteChar
}

func joinMeta(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " · ")
}
