package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	GameLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	SlotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Width(14).
			Height(3).
			Align(lipgloss.Center)

	HintSlotStyle = SlotStyle.
			BorderForeground(lipgloss.Color("#FFD700"))

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	PlayerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// featureColors colour the first feature of a card.
var featureColors = []lipgloss.Color{"#FF6B6B", "#96CEB4", "#A78BFA", "#FFD700", "#4FC3F7"}

// playerColors mark each seat's tokens.
var playerColors = []lipgloss.Color{"#4FC3F7", "#FF8A65", "#AED581", "#F06292", "#FFD54F", "#9575CD", "#4DB6AC", "#E0E0E0"}

func playerStyle(player int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(playerColors[player%len(playerColors)]).
		Bold(true)
}
