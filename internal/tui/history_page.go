package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/wingo-live/internal/history"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

const (
	historyLimit   = 50
	historyTimeout = 5 * time.Second
)

type historyLoadedMsg struct {
	snaps []model.Snapshot
	err   error
}

// HistoryPage lists committed snapshots and the size-call track record.
type HistoryPage struct {
	reader model.SnapshotReader
	keys   KeyMap
	help   help.Model
	logf   func(format string, args ...any)

	// unavailable explains a nil reader.
	unavailable string

	snaps   []model.Snapshot
	acc     history.Accuracy
	loading bool
	err     error
}

// HistoryOption customises a HistoryPage.
type HistoryOption func(*HistoryPage)

// WithUnavailableReason replaces the notice shown when there is no reader,
// e.g. because the store failed to open.
func WithUnavailableReason(reason string) HistoryOption {
	return func(p *HistoryPage) { p.unavailable = reason }
}

// NewHistoryPage creates the history page. A nil reader renders a notice
// saying why history is unavailable.
func NewHistoryPage(reader model.SnapshotReader, opts ...HistoryOption) *HistoryPage {
	p := &HistoryPage{
		reader:      reader,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		logf:        log.Printf,
		unavailable: "History recording is off (history-enabled is false)",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HistoryPage) ID() string { return "history" }

func (p *HistoryPage) Init() tea.Cmd {
	return p.load()
}

func (p *HistoryPage) load() tea.Cmd {
	if p.reader == nil || p.loading {
		return nil
	}
	p.loading = true
	reader := p.reader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		snaps, err := reader.RecentSnapshots(ctx, historyLimit)
		return historyLoadedMsg{snaps: snaps, err: err}
	}
}

func (p *HistoryPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Reload):
			return p.load(), nil
		case key.Matches(msg, p.keys.Back):
			return nil, &PageNav{PageID: "live"}
		}

	case historyLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.logf("history: load snapshots: %v", msg.err)
			p.err = msg.err
			return nil, nil
		}
		p.err = nil
		p.snaps = msg.snaps
		p.acc = history.ScoreSizes(msg.snaps)
	}
	return nil, nil
}

func (p *HistoryPage) View(width, height int) string {
	if width <= 0 {
		width = 80
	}
	title := titleStyle.Render("Track record")

	var body string
	switch {
	case p.reader == nil:
		body = helpStyle.Render(p.unavailable)
	case p.err != nil:
		body = helpStyle.Render("Could not load history: " + p.err.Error())
	case p.loading && len(p.snaps) == 0:
		body = helpStyle.Render("Loading...")
	case len(p.snaps) == 0:
		body = helpStyle.Render("No snapshots recorded yet")
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			renderAccuracy(p.acc),
			"",
			renderSnapshotTable(p.snaps),
		)
	}

	section := sectionStyle.Width(max(20, width-2)).Render(body)

	p.help.Width = width
	footer := helpStyle.Render(p.help.View(historyHelp{p.keys}))

	out := lipgloss.JoinVertical(lipgloss.Left, title, section)
	if height > 0 {
		if fill := height - lipgloss.Height(out) - 1; fill > 0 {
			out += strings.Repeat("\n", fill)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, out, footer)
}

func renderAccuracy(acc history.Accuracy) string {
	rate, ok := acc.Rate()
	if !ok {
		return labelStyle.Render("Size hit rate:") + " no completed draws yet"
	}
	return fmt.Sprintf("%s %.0f%% (%d/%d)", labelStyle.Render("Size hit rate:"), rate*100, acc.Hits, acc.Total)
}

func renderSnapshotTable(snaps []model.Snapshot) string {
	header := labelStyle.Render(fmt.Sprintf("%-8s %5s %-6s %-9s %-5s %-6s %-10s %s",
		"Time", "Seq", "Model", "Method", "Size", "Color", "Latest", "Numbers"))
	lines := []string{header}
	for _, s := range snaps {
		mdl := "no"
		if s.UseModel {
			mdl = "yes"
		}
		latest := s.LatestNumber.String()
		if s.LatestIssue != "" {
			latest = s.LatestIssue + ":" + latest
		}
		numbers := formatNumbers(s.Numbers)
		if len(s.Numbers) == 0 {
			numbers = "N/A"
		}
		lines = append(lines, fmt.Sprintf("%-8s %5d %-6s %-9s %-5s %-6s %-10s %s",
			s.CommittedAt.Local().Format("15:04:05"), s.Seq, mdl, s.Method, s.Size, s.Color, latest, numbers))
	}
	return strings.Join(lines, "\n")
}
