package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy   = lipgloss.Color("#1B2A49")
	ColorBlue   = lipgloss.Color("#4A90D9")
	ColorWhite  = lipgloss.Color("#FFFFFF")
	ColorGray   = lipgloss.Color("#808080")
	ColorGreen  = lipgloss.Color("#44FF44")
	ColorYellow = lipgloss.Color("#FFAA00")
	ColorRed    = lipgloss.Color("#FF4444")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorNavy).
			Padding(0, 1)

	chartTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	labelStyle = lipgloss.NewStyle().Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1)

	disabledButtonStyle = buttonStyle.
				Foreground(ColorGray).
				Background(ColorNavy)

	chipStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

// drawColor maps a color name reported by the service to a terminal color.
func drawColor(name string) lipgloss.Color {
	switch name {
	case "red", "Red":
		return lipgloss.Color("196")
	case "green", "Green":
		return lipgloss.Color("40")
	case "violet", "Violet":
		return lipgloss.Color("129")
	default:
		return lipgloss.Color("250")
	}
}
