package tui

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

// fakeClock fires tick callbacks only when advanced by hand.
type fakeClock struct {
	now    time.Time
	timers []fakeTimer
}

type fakeTimer struct {
	due time.Time
	fn  func(time.Time) tea.Msg
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	c.timers = append(c.timers, fakeTimer{due: c.now.Add(d), fn: fn})
	return nil
}

// Advance moves time forward and returns the messages of every timer that
// came due, in due order.
func (c *fakeClock) Advance(d time.Duration) []tea.Msg {
	c.now = c.now.Add(d)
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].due.Before(c.timers[j].due) })

	var fired []tea.Msg
	kept := c.timers[:0]
	for _, t := range c.timers {
		if t.due.After(c.now) {
			kept = append(kept, t)
			continue
		}
		fired = append(fired, t.fn(t.due))
	}
	c.timers = kept
	return fired
}

func (c *fakeClock) Pending() int { return len(c.timers) }

// fakePredictor answers predict calls through respond and records requests.
type fakePredictor struct {
	mu       sync.Mutex
	requests []model.PredictRequest
	respond  func(call int, req model.PredictRequest) (*model.PredictResponse, error)
}

func (p *fakePredictor) Predict(_ context.Context, req model.PredictRequest) (*model.PredictResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	call := len(p.requests)
	p.mu.Unlock()
	if p.respond == nil {
		return response("heuristic", 1), nil
	}
	return p.respond(call, req)
}

func (p *fakePredictor) Requests() []model.PredictRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.PredictRequest(nil), p.requests...)
}

// statusPredictor also reports service status.
type statusPredictor struct {
	fakePredictor
	status model.ServiceStatus
	err    error
}

func (p *statusPredictor) Status(context.Context) (model.ServiceStatus, error) {
	return p.status, p.err
}

type fakeRecorder struct {
	mu    sync.Mutex
	snaps []model.Snapshot
	err   error
}

func (r *fakeRecorder) RecordSnapshot(_ context.Context, s model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.snaps = append(r.snaps, s)
	return nil
}

// logSink captures diagnostic log lines.
type logSink struct {
	mu    sync.Mutex
	lines []string
}

func (l *logSink) Logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *logSink) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// response builds a valid predict response whose method and first number
// identify it.
func response(method string, first int) *model.PredictResponse {
	return &model.PredictResponse{
		Prediction: &model.PredictionResult{
			Method:  method,
			Size:    model.SizeOf(first),
			Color:   "Green",
			Numbers: []int{first, first + 1},
		},
		Recent: []model.RecentEntry{
			{Number: model.IntNumber(first), Colors: []string{"green"}},
			{Number: model.IntNumber(0), Colors: []string{"red", "violet"}},
		},
	}
}

// collect runs cmd and every command batched inside it, returning the
// resulting messages. Spinner ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// fetchResults filters fetch results out of msgs.
func fetchResults(msgs []tea.Msg) []fetchResultMsg {
	var out []fetchResultMsg
	for _, m := range msgs {
		if r, ok := m.(fetchResultMsg); ok {
			out = append(out, r)
		}
	}
	return out
}

type liveHarness struct {
	m     *LiveModel
	clock *fakeClock
	pred  *fakePredictor
	logs  *logSink
}

func newLiveHarness(t *testing.T, cfg LiveConfig, opts ...LiveOption) *liveHarness {
	t.Helper()
	h := &liveHarness{
		clock: newFakeClock(),
		pred:  &fakePredictor{},
		logs:  &logSink{},
	}
	all := append([]LiveOption{WithClock(h.clock), WithLogf(h.logs.Logf)}, opts...)
	h.m = NewLiveModel(h.pred, cfg, all...)
	return h
}

// send delivers msg to the live page and returns the messages its command
// produces.
func (h *liveHarness) send(msg tea.Msg) []tea.Msg {
	cmd, _ := h.m.Update(msg)
	return collect(cmd)
}

// deliver feeds fetch results back to the page, dropping follow-up commands.
func (h *liveHarness) deliver(results ...fetchResultMsg) {
	for _, r := range results {
		h.send(r)
	}
}

// advance moves the clock and delivers every fired tick, returning the fetch
// results those ticks started (undelivered).
func (h *liveHarness) advance(d time.Duration) []fetchResultMsg {
	var out []fetchResultMsg
	for _, tick := range h.clock.Advance(d) {
		out = append(out, fetchResults(h.send(tick))...)
	}
	return out
}
