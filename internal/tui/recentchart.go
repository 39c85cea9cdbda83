package tui

import (
	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

const recentChartHeight = 6

// renderRecentChart draws the recent numbers oldest-first as bars colored by
// their first draw color. Entries without a numeric value are skipped.
func renderRecentChart(recent []model.RecentEntry, width int) string {
	if width < 10 {
		width = 10
	}
	bc := barchart.New(width, recentChartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(3),
	)

	for i := len(recent) - 1; i >= 0; i-- {
		r := recent[i]
		if !r.Number.Valid {
			continue
		}
		color := lipgloss.Color("250")
		if len(r.Colors) > 0 {
			color = drawColor(r.Colors[0])
		}
		style := lipgloss.NewStyle().Foreground(color).Background(color)
		bc.Push(barchart.BarData{
			Label: r.Number.String(),
			Values: []barchart.BarValue{
				// +1 keeps a zero draw visible
				{Name: r.Number.String(), Value: float64(r.Number.Value + 1), Style: style},
			},
		})
	}

	bc.Draw()
	return bc.View()
}
