package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

func TestAttach_FetchesImmediatelyAndArmsTimer(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{PollInterval: 5 * time.Second})

	results := fetchResults(collect(h.m.Init()))
	if len(results) != 1 {
		t.Fatalf("expected 1 immediate fetch, got %d", len(results))
	}
	if h.clock.Pending() != 1 {
		t.Fatalf("expected 1 armed timer, got %d", h.clock.Pending())
	}
	req := h.pred.Requests()[0]
	if req.Source != "storage" || req.Take != 8 || req.UseModel {
		t.Fatalf("unexpected request %+v", req)
	}
	if !h.m.Attached() {
		t.Fatal("expected attached")
	}
}

func TestPoll_TickFetchesAndRearms(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{PollInterval: 5 * time.Second})
	h.deliver(fetchResults(collect(h.m.Init()))...)

	for i := 1; i <= 3; i++ {
		results := h.advance(5 * time.Second)
		if len(results) != 1 {
			t.Fatalf("tick %d: expected 1 fetch, got %d", i, len(results))
		}
		h.deliver(results...)
		if h.clock.Pending() != 1 {
			t.Fatalf("tick %d: expected exactly one armed timer, got %d", i, h.clock.Pending())
		}
	}
	if got := len(h.pred.Requests()); got != 4 {
		t.Fatalf("expected 4 requests, got %d", got)
	}
}

func TestSetUseModel_OneImmediateFetchWithNewValue(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{PollInterval: 5 * time.Second})
	h.deliver(fetchResults(collect(h.m.Init()))...)
	h.clock.Advance(2 * time.Second)

	results := fetchResults(collect(h.m.SetUseModel(true)))
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 immediate fetch, got %d", len(results))
	}
	reqs := h.pred.Requests()
	if len(reqs) != 2 || !reqs[1].UseModel {
		t.Fatalf("expected second request with use_model=true, got %+v", reqs)
	}
	if !h.m.State().UseModel {
		t.Fatal("expected UseModel=true in state")
	}
	h.deliver(results...)

	// The timer armed on attach fires at t=5s and must be ignored.
	if got := h.advance(3 * time.Second); len(got) != 0 {
		t.Fatalf("stale tick started %d fetches", len(got))
	}
	// The restarted timer fires at t=7s.
	got := h.advance(2 * time.Second)
	if len(got) != 1 {
		t.Fatalf("expected 1 fetch from restarted timer, got %d", len(got))
	}
	if !got[0].req.UseModel {
		t.Fatal("restarted timer should carry use_model=true")
	}
}

func TestSetUseModel_SameValueIsNoop(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{})
	collect(h.m.Init())

	if cmd := h.m.SetUseModel(false); cmd != nil {
		t.Fatal("expected nil cmd for unchanged value")
	}
	if got := len(h.pred.Requests()); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}
}

func TestSetUseModel_WhileDetachedDoesNotFetch(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{})

	if cmd := h.m.SetUseModel(true); cmd != nil {
		t.Fatal("expected no fetch before attach")
	}
	collect(h.m.Init())
	reqs := h.pred.Requests()
	if len(reqs) != 1 || !reqs[0].UseModel {
		t.Fatalf("attach should fetch with the toggled value, got %+v", reqs)
	}
}

func TestToggleKey_FlipsUseModel(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{})
	h.deliver(fetchResults(collect(h.m.Init()))...)

	results := fetchResults(h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")}))
	if len(results) != 1 || !results[0].req.UseModel {
		t.Fatalf("expected one fetch with use_model=true, got %+v", results)
	}
}

func TestDetach_NoFurtherRequests(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{PollInterval: time.Second})
	h.deliver(fetchResults(collect(h.m.Init()))...)

	h.m.Detach()
	h.m.Detach()

	before := len(h.pred.Requests())
	for i := 0; i < 20; i++ {
		if got := h.advance(time.Second); len(got) != 0 {
			t.Fatalf("detached page started %d fetches", len(got))
		}
	}
	if cmd := h.m.Refresh(); cmd != nil {
		t.Fatal("refresh should do nothing while detached")
	}
	if got := len(h.pred.Requests()); got != before {
		t.Fatalf("expected %d requests, got %d", before, got)
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("expected no armed timers, got %d", h.clock.Pending())
	}
}

func TestReattach_SingleTimerChain(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{PollInterval: time.Second})
	h.deliver(fetchResults(collect(h.m.Init()))...)

	h.m.Detach()
	h.deliver(fetchResults(collect(h.m.Attach()))...)

	// The timer from the first attach and the one from the reattach both come
	// due; only the current one may fetch.
	if got := h.advance(time.Second); len(got) != 1 {
		t.Fatalf("expected 1 fetch after reattach, got %d", len(got))
	}
}

func TestRefresh_DoesNotResetTimer(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{PollInterval: 5 * time.Second})
	h.deliver(fetchResults(collect(h.m.Init()))...)
	h.clock.Advance(3 * time.Second)

	results := fetchResults(h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}))
	if len(results) != 1 {
		t.Fatalf("expected 1 refresh fetch, got %d", len(results))
	}
	h.deliver(results...)

	if got := h.advance(2 * time.Second); len(got) != 1 {
		t.Fatalf("timer should still fire at t=5s, got %d fetches", len(got))
	}
}

func TestRefresh_DisabledWhileLoading(t *testing.T) {
	t.Parallel()
	h := newLiveHarness(t, LiveConfig{})
	pending := fetchResults(collect(h.m.Init()))

	if cmd := h.m.Refresh(); cmd != nil {
		t.Fatal("refresh should be ignored while loading")
	}
	if got := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); len(got) != 0 {
		t.Fatalf("refresh key should be disabled while loading, got %d msgs", len(got))
	}

	h.deliver(pending...)
	if cmd := h.m.Refresh(); cmd == nil {
		t.Fatal("refresh should work once loading clears")
	}
}

func TestStatusCheck_OnAttach(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	pred := &statusPredictor{}
	pred.status.Status = "ok"
	pred.status.ModelLoaded = true
	m := NewLiveModel(pred, LiveConfig{}, WithClock(clock), WithLogf(func(string, ...any) {}))

	var gotStatus bool
	for _, msg := range collect(m.Init()) {
		if _, ok := msg.(statusLoadedMsg); ok {
			gotStatus = true
		}
		m.Update(msg)
	}
	if !gotStatus {
		t.Fatal("expected a status check on attach")
	}
	if m.service == nil || !m.service.ModelLoaded {
		t.Fatalf("expected model loaded status, got %+v", m.service)
	}

	// Known status is not asked for again on reattach.
	m.Detach()
	for _, msg := range collect(m.Attach()) {
		if _, ok := msg.(statusLoadedMsg); ok {
			t.Fatal("status should be checked once")
		}
	}
}

func TestStatusCheck_RetriedAfterSuccessfulFetch(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	pred := &statusPredictor{err: errors.New("connection refused")}
	logs := &logSink{}
	m := NewLiveModel(pred, LiveConfig{}, WithClock(clock), WithLogf(logs.Logf))

	var pending []fetchResultMsg
	for _, msg := range collect(m.Init()) {
		switch msg := msg.(type) {
		case fetchResultMsg:
			pending = append(pending, msg)
		default:
			m.Update(msg)
		}
	}
	if m.service != nil {
		t.Fatalf("status should be unknown after a failed check, got %+v", m.service)
	}

	// The service comes up: the next good fetch asks again.
	pred.err = nil
	pred.status = model.ServiceStatus{Status: "ok", ModelLoaded: true}
	var checked bool
	for _, r := range pending {
		cmd, _ := m.Update(r)
		for _, msg := range collect(cmd) {
			if _, ok := msg.(statusLoadedMsg); ok {
				checked = true
			}
			m.Update(msg)
		}
	}
	if !checked {
		t.Fatal("expected a status check after a successful fetch")
	}
	if m.service == nil || !m.service.ModelLoaded {
		t.Fatalf("expected model loaded status, got %+v", m.service)
	}
	if view := m.View(100, 30); !strings.Contains(view, "model loaded") {
		t.Errorf("controls should show the model hint:\n%s", view)
	}

	// Once known, later fetches do not ask again.
	next := fetchResults(collect(m.Refresh()))
	for _, r := range next {
		cmd, _ := m.Update(r)
		for _, msg := range collect(cmd) {
			if _, ok := msg.(statusLoadedMsg); ok {
				t.Fatal("status should not be checked again once known")
			}
		}
	}
}
