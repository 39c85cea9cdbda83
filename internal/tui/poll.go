package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

// pollTickMsg fires when the repeating poll timer elapses.
type pollTickMsg struct {
	gen uint64
	at  time.Time
}

// statusLoadedMsg carries the result of a status call.
type statusLoadedMsg struct {
	status model.ServiceStatus
	err    error
}

// Attach starts polling: one immediate fetch and a fresh repeating timer.
// Calling it while already attached restarts the timer.
func (m *LiveModel) Attach() tea.Cmd {
	m.attached = true
	return tea.Batch(m.restartPolling(), m.checkStatus())
}

// Detach cancels the repeating timer. Fetches already in flight still report
// back and commit. Safe to call repeatedly.
func (m *LiveModel) Detach() {
	m.attached = false
	m.pollGen++
}

// Attached reports whether the poll driver is running.
func (m *LiveModel) Attached() bool {
	return m.attached
}

// SetUseModel changes the model toggle. A change restarts polling with an
// immediate fetch carrying the new value; setting the same value is a no-op.
func (m *LiveModel) SetUseModel(v bool) tea.Cmd {
	if m.state.UseModel == v {
		return nil
	}
	m.state.UseModel = v
	if !m.attached {
		return nil
	}
	return m.restartPolling()
}

// Refresh fetches out of band without touching the timer. It is ignored while
// a fetch is in flight.
func (m *LiveModel) Refresh() tea.Cmd {
	if !m.attached || m.state.Loading {
		return nil
	}
	return m.startFetch()
}

// restartPolling cancels the current tick chain and starts a new one.
func (m *LiveModel) restartPolling() tea.Cmd {
	m.pollGen++
	return tea.Batch(m.startFetch(), m.armTick())
}

func (m *LiveModel) armTick() tea.Cmd {
	gen := m.pollGen
	return m.clock.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollTickMsg{gen: gen, at: t}
	})
}

func (m *LiveModel) handlePollTick(msg pollTickMsg) tea.Cmd {
	if !m.attached || msg.gen != m.pollGen {
		return nil
	}
	return tea.Batch(m.startFetch(), m.armTick())
}

// checkStatus asks the service for its status. It runs on attach and again
// after each successful fetch until an answer arrives, so a service that was
// down at startup still gets its hint once it comes back.
func (m *LiveModel) checkStatus() tea.Cmd {
	sc := m.status
	if sc == nil || m.service != nil || m.checkingStatus {
		return nil
	}
	m.checkingStatus = true
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		st, err := sc.Status(ctx)
		return statusLoadedMsg{status: st, err: err}
	}
}
