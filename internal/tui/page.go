package tui

import tea "github.com/charmbracelet/bubbletea"

// Page represents a top-level screen in the TUI (live view, history).
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// Detacher is implemented by pages that hold timers which must stop when the
// page is no longer shown.
type Detacher interface {
	Detach()
}

// PageNav is returned from Update to request a page switch.
type PageNav struct {
	PageID string
}
