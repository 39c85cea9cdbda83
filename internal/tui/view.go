package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

const (
	noPrediction = "No prediction"
	noRecent     = "No recent"

	// controlsRow is the screen row holding the toggle and the Refresh button.
	controlsRow = 1
)

// View renders the live page.
func (m *LiveModel) View(width, height int) string {
	if width <= 0 {
		width = 80
	}

	title := titleStyle.Render("Wingo live prediction")
	controls := m.renderControls()

	bodyWidth := max(20, width-2)
	pred := sectionStyle.Width(bodyWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
		chartTitleStyle.Render("Prediction"),
		renderPrediction(m.state.Prediction),
	))

	recentBody := renderRecent(m.state.Recent)
	if len(m.state.Recent) > 0 {
		recentBody = lipgloss.JoinVertical(lipgloss.Left, recentBody, "", renderRecentChart(m.state.Recent, bodyWidth-4))
	}
	recent := sectionStyle.Width(bodyWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
		chartTitleStyle.Render("Recent"),
		recentBody,
	))

	m.help.Width = width
	footer := helpStyle.Render(m.help.View(liveHelp{m.keys}))

	body := lipgloss.JoinVertical(lipgloss.Left, title, controls, pred, recent)
	if height > 0 {
		fill := height - lipgloss.Height(body) - 2
		if fill > 0 {
			body += strings.Repeat("\n", fill)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer, m.renderStatusLine(width))
}

// controlsLayout returns the width of the toggle, and the column and width of
// the Refresh button, on the controls row.
func (m *LiveModel) controlsLayout() (toggleW, refreshX, refreshW int) {
	toggle := toggleLabel(m.state.UseModel) + m.modelHint()
	toggleW = lipgloss.Width(toggle)
	refreshX = toggleW + 2
	refreshW = lipgloss.Width(buttonStyle.Render("Refresh"))
	return toggleW, refreshX, refreshW
}

func (m *LiveModel) renderControls() string {
	toggle := toggleLabel(m.state.UseModel) + m.modelHint()

	button := buttonStyle.Render("Refresh")
	if m.state.Loading {
		button = disabledButtonStyle.Render("Refresh")
	}

	row := toggle + "  " + button
	if m.state.Loading {
		row += " " + m.spinner.View() + helpStyle.Render(" loading")
	}
	return row
}

func toggleLabel(useModel bool) string {
	box := "[ ]"
	if useModel {
		box = "[x]"
	}
	return box + " Use trained model (if available)"
}

func (m *LiveModel) modelHint() string {
	if m.service == nil {
		return ""
	}
	if m.service.ModelLoaded {
		return helpStyle.Render(" · model loaded")
	}
	return helpStyle.Render(" · no trained model, heuristic used")
}

// renderPrediction maps a prediction to text. No I/O.
func renderPrediction(p *model.PredictionResult) string {
	if p == nil {
		return helpStyle.Render(noPrediction)
	}
	lines := []string{
		labelStyle.Render("Method:") + " " + p.Method,
		labelStyle.Render("Size:") + " " + p.Size,
		labelStyle.Render("Color:") + " " + lipgloss.NewStyle().Foreground(drawColor(p.Color)).Render(p.Color),
		labelStyle.Render("Numbers:") + " " + formatNumbers(p.Numbers),
	}
	return strings.Join(lines, "\n")
}

func formatNumbers(ns []int) string {
	if ns == nil {
		return "N/A"
	}
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// renderRecent maps the recent draws to a row of chips. No I/O.
func renderRecent(recent []model.RecentEntry) string {
	if len(recent) == 0 {
		return helpStyle.Render(noRecent)
	}
	chips := make([]string, 0, len(recent))
	for _, r := range recent {
		chips = append(chips, renderRecentChip(r))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func renderRecentChip(r model.RecentEntry) string {
	number := labelStyle.Render(r.Number.String())

	colors := make([]string, 0, len(r.Colors))
	for _, c := range r.Colors {
		colors = append(colors, lipgloss.NewStyle().Foreground(drawColor(c)).Render(c))
	}
	colorLine := strings.Join(colors, "/")
	if colorLine == "" {
		colorLine = "-"
	}

	size := "?"
	if r.Number.Valid {
		size = model.SizeOf(r.Number.Value)
	}

	return chipStyle.Render(lipgloss.JoinVertical(lipgloss.Center, number, colorLine, helpStyle.Render(size)))
}
