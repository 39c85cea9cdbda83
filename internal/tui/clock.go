package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Clock schedules timer messages. The live page takes one so tests can drive
// time by hand.
type Clock interface {
	Now() time.Time
	Tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd
}

type teaClock struct{}

func (teaClock) Now() time.Time { return time.Now() }

func (teaClock) Tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return tea.Tick(d, fn)
}

// SystemClock returns the wall clock backed by tea.Tick.
func SystemClock() Clock { return teaClock{} }
