package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const fetchErrorVisibleFor = 30 * time.Second

// renderStatusLine renders the status line at the bottom of the live page.
func (m *LiveModel) renderStatusLine(w int) string {
	baseStyle := lipgloss.NewStyle().
		Background(ColorNavy).
		Foreground(ColorWhite)

	veryNarrow := w < 60
	narrow := w < 80
	now := m.clock.Now()

	leftText := "[Live]"
	if veryNarrow {
		leftText = "Live"
	}

	var statusText string
	switch {
	case m.state.LastUpdated.IsZero():
		statusText = "Waiting for first prediction"
	case narrow:
		statusText = "Updated " + m.state.LastUpdated.Format("15:04:05")
	default:
		statusText = fmt.Sprintf("Last updated %s (%s ago)",
			m.state.LastUpdated.Format("15:04:05"), formatAge(now.Sub(m.state.LastUpdated)))
	}

	var rightParts []string

	if m.lastError != "" && now.Sub(m.lastErrorAt) < fetchErrorVisibleFor {
		errStyle := lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(lipgloss.Color("#FF6666")).
			Faint(true)
		label := "fetch error"
		if !narrow {
			label = fmt.Sprintf("fetch error: %s", m.lastError)
			if m.consecutiveErrors > 1 {
				label += fmt.Sprintf(" ×%d", m.consecutiveErrors)
			}
		}
		rightParts = append(rightParts, errStyle.Render(label))
	}

	if m.sourceLabel != "" && !veryNarrow {
		var dot string
		stale := !m.state.LastUpdated.IsZero() && now.Sub(m.state.LastUpdated) > 3*m.interval
		switch {
		case !m.lastFetchOK:
			dot = lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorRed).Render("●")
		case stale:
			dot = lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorYellow).Render("●")
		default:
			dot = lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorGreen).Render("●")
		}
		rightParts = append(rightParts, dot+" "+m.sourceLabel)
	}

	if !veryNarrow {
		interval := formatAge(m.interval)
		if narrow {
			rightParts = append(rightParts, interval)
		} else {
			rightParts = append(rightParts, "Update: "+interval)
		}
	}

	if w >= 30 {
		rightParts = append(rightParts, renderBranding())
	}
	rightText := strings.Join(rightParts, "  ")

	leftWidth := lipgloss.Width(leftText) + 2
	rightWidth := lipgloss.Width(rightText) + 2
	if leftWidth+rightWidth >= w {
		if w < 20 {
			return baseStyle.Width(w).Render(leftText)
		}
		leftWidth = min(10, w/3)
		rightWidth = min(15, w/3)
		rightText = ""
	}
	centerWidth := max(0, w-leftWidth-rightWidth)

	if lipgloss.Width(statusText) > centerWidth {
		statusText = statusText[:max(0, centerWidth-1)]
	}

	leftPart := baseStyle.Align(lipgloss.Left).Width(leftWidth).Render(leftText)
	centerPart := baseStyle.Align(lipgloss.Center).Width(centerWidth).Render(statusText)
	rightPart := baseStyle.Align(lipgloss.Right).Width(rightWidth).Render(rightText)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPart, centerPart, rightPart)
}

func renderBranding() string {
	return lipgloss.NewStyle().
		Background(ColorBlue).
		Foreground(ColorWhite).
		Bold(true).
		Padding(0, 1).
		Render("wingo")
}

// formatAge renders a duration the way the status line shows intervals.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}
