package ui

import "github.com/charmbracelet/lipgloss"

var (
	amber     = lipgloss.AdaptiveColor{Light: "#F2B155", Dark: "#F2B155"}
	darkAmber = lipgloss.AdaptiveColor{Light: "#8A5D12", Dark: "#8A5D12"}
	fuchsia   = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(fuchsia).
			Bold(true).
			Render

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(darkAmber).
				Background(amber).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	// The word currently being spoken. Yellow background, dark
	// foreground, readable on both light and dark terminals.
	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1B1B1B")).
			Background(lipgloss.Color("#F5E642")).
			Render

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#230F0F")).
			Background(lipgloss.Color("#FF5555")).
			Padding(0, 1).
			Render

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}).
			Render

	chooserItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Render

	chooserSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(0).
				Foreground(fuchsia).
				Render

	chooserTimeStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Render

	paletteCursorStyle = lipgloss.NewStyle().
				Reverse(true).
				Bold(true)
)

func logoView() string {
	return logoStyle(" Sotto ")
}
