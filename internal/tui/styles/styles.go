package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	MarqueeRed = lipgloss.Color("#E50914")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Amber      = lipgloss.Color("#F59E0B")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(MarqueeRed)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(MarqueeRed).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	PendingStyle = lipgloss.NewStyle().
			Foreground(Amber)
)

// Favorite markers
const (
	FavoriteChar    = "♥"
	NotFavoriteChar = "♡"
)

// Billboard (featured title) styles
var (
	BillboardStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(MarqueeRed).
			Padding(0, 2).
			MarginBottom(1)

	BillboardTitleStyle = lipgloss.NewStyle().
				Foreground(White).
				Bold(true).
				Underline(true)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(MarqueeRed).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Padding(0, 1)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Overlay styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MarqueeRed).
			Padding(1, 2).
			Background(SlateDark)

	ClosingModalStyle = ModalStyle.
				BorderForeground(DimGray)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(MarqueeRed)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(MarqueeRed)
)

// Search styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(MarqueeRed).
				Bold(true)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(MarqueeRed).
				Bold(true)

	MatchHighlightSelectedStyle = lipgloss.NewStyle().
					Foreground(MarqueeRed).
					Background(SlateLight).
					Bold(true)
)

// Helper functions

// Truncate shortens s to width runes with an ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// RenderHighlighted renders title with the runes at matched styled as
// matches. matched must be sorted rune offsets.
func RenderHighlighted(title string, matched []int, selected bool) string {
	base, hl := NormalItemStyle.UnsetPadding(), MatchHighlightStyle
	if selected {
		base = SelectedItemStyle.UnsetPadding()
		hl = MatchHighlightSelectedStyle
	}
	if len(matched) == 0 {
		return base.Render(title)
	}

	var b strings.Builder
	next := 0
	for i, r := range []rune(title) {
		if next < len(matched) && matched[next] == i {
			b.WriteString(hl.Render(string(r)))
			next++
			continue
		}
		b.WriteString(base.Render(string(r)))
	}
	return b.String()
}
