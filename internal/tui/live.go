package tui

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/tinytelemetry/wingo-live/internal/metrics"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

// CommitPolicy decides which of several overlapping fetch results is shown.
type CommitPolicy int

const (
	// CommitLastCompleted commits every successful response in the order the
	// responses arrive, so the last one to complete wins even if it was issued
	// earlier than the one it overwrites.
	CommitLastCompleted CommitPolicy = iota
	// CommitLatestIssued discards a response whose request was issued before
	// the request that produced the currently committed data.
	CommitLatestIssued
)

// ParseCommitPolicy parses the commit-policy config value.
func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch s {
	case "", "completion":
		return CommitLastCompleted, nil
	case "issue-order":
		return CommitLatestIssued, nil
	default:
		return 0, fmt.Errorf("unknown commit policy %q (want completion or issue-order)", s)
	}
}

func (p CommitPolicy) String() string {
	if p == CommitLatestIssued {
		return "issue-order"
	}
	return "completion"
}

// LiveConfig holds the live page settings.
type LiveConfig struct {
	PollInterval   time.Duration
	RequestTimeout time.Duration
	UseModel       bool
	Take           int
	Policy         CommitPolicy
	SourceLabel    string // shown next to the connectivity dot
}

// LiveOption customises a LiveModel.
type LiveOption func(*LiveModel)

// WithClock replaces the wall clock.
func WithClock(c Clock) LiveOption {
	return func(m *LiveModel) { m.clock = c }
}

// WithRecorder persists every committed response.
func WithRecorder(r model.SnapshotRecorder) LiveOption {
	return func(m *LiveModel) { m.recorder = r }
}

// WithMetrics records fetch metrics.
func WithMetrics(fm *metrics.FetchMetrics) LiveOption {
	return func(m *LiveModel) { m.metrics = fm }
}

// WithLogf replaces the diagnostic logger (log.Printf).
func WithLogf(logf func(format string, args ...any)) LiveOption {
	return func(m *LiveModel) { m.logf = logf }
}

// LiveModel is the live prediction page: poll driver, fetch/state-sync unit
// and view mapping over one UIState.
type LiveModel struct {
	predictor model.Predictor
	status    model.StatusChecker // nil when the predictor can't report status
	recorder  model.SnapshotRecorder
	metrics   *metrics.FetchMetrics
	clock     Clock
	logf      func(format string, args ...any)
	session   string // tags recorded snapshots, seq restarts per run

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	state model.UIState

	interval    time.Duration
	timeout     time.Duration
	take        int
	policy      CommitPolicy
	sourceLabel string

	// Poll driver. Every armed tick carries pollGen; bumping it cancels the
	// pending tick.
	attached bool
	pollGen  uint64

	// Fetch unit.
	nextSeq          uint64
	inFlight         int
	lastCommittedSeq uint64

	// Connectivity, for the status line only. checkingStatus is set while a
	// status call is outstanding.
	service           *model.ServiceStatus
	checkingStatus    bool
	lastFetchOK       bool
	lastError         string
	lastErrorAt       time.Time
	consecutiveErrors int

	width  int
	height int
}

// NewLiveModel creates the live page. It does nothing until Attach (Init).
func NewLiveModel(predictor model.Predictor, cfg LiveConfig, opts ...LiveOption) *LiveModel {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = model.DefaultPollInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = model.DefaultRequestTimeout
	}
	if cfg.Take <= 0 {
		cfg.Take = model.DefaultTake
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := &LiveModel{
		predictor:   predictor,
		clock:       SystemClock(),
		logf:        log.Printf,
		session:     uuid.NewString(),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		state:       model.UIState{Recent: []model.RecentEntry{}, UseModel: cfg.UseModel},
		interval:    cfg.PollInterval,
		timeout:     cfg.RequestTimeout,
		take:        cfg.Take,
		policy:      cfg.Policy,
		sourceLabel: cfg.SourceLabel,
		lastFetchOK: true,
	}
	if sc, ok := predictor.(model.StatusChecker); ok {
		m.status = sc
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a copy of the current UI state.
func (m *LiveModel) State() model.UIState {
	return m.state
}

func (m *LiveModel) ID() string { return "live" }

// Init attaches the page.
func (m *LiveModel) Init() tea.Cmd {
	return m.Attach()
}

// Update handles messages for the live page.
func (m *LiveModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ToggleModel):
			return m.SetUseModel(!m.state.UseModel), nil
		case key.Matches(msg, m.keys.Refresh):
			return m.Refresh(), nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case pollTickMsg:
		return m.handlePollTick(msg), nil

	case fetchResultMsg:
		return m.applyFetchResult(msg), nil

	case statusLoadedMsg:
		m.checkingStatus = false
		if msg.err != nil {
			m.logf("predict: status check failed: %v", msg.err)
			return nil, nil
		}
		st := msg.status
		m.service = &st

	case spinner.TickMsg:
		if !m.state.Loading {
			return nil, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd, nil
	}
	return nil, nil
}

// handleMouse treats clicks on the controls row like the matching keys.
func (m *LiveModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if msg.Y != controlsRow {
		return nil
	}
	toggleW, refreshX, refreshW := m.controlsLayout()
	switch {
	case msg.X < toggleW:
		return m.SetUseModel(!m.state.UseModel)
	case msg.X >= refreshX && msg.X < refreshX+refreshW:
		return m.Refresh()
	}
	return nil
}
