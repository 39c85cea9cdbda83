package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/wingo-live/internal/metrics"
	"github.com/tinytelemetry/wingo-live/internal/model"
	"github.com/tinytelemetry/wingo-live/internal/predictapi"
)

const recordTimeout = 5 * time.Second

var errNoPredictor = errors.New("no predictor configured")

// fetchResultMsg carries the outcome of one predict call.
type fetchResultMsg struct {
	seq     uint64
	req     model.PredictRequest
	started time.Time
	resp    *model.PredictResponse
	err     error
}

// startFetch issues one predict call for the current configuration.
func (m *LiveModel) startFetch() tea.Cmd {
	m.nextSeq++
	m.inFlight++
	m.syncLoading()

	seq := m.nextSeq
	req := model.NewPredictRequest(m.state.UseModel)
	req.Take = m.take
	started := m.clock.Now()
	predictor := m.predictor
	timeout := m.timeout

	fetch := func() tea.Msg {
		if predictor == nil {
			return fetchResultMsg{seq: seq, req: req, started: started, err: errNoPredictor}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := predictor.Predict(ctx, req)
		return fetchResultMsg{seq: seq, req: req, started: started, resp: resp, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// applyFetchResult commits or logs a finished fetch. Clearing the in-flight
// slot is always the last step.
func (m *LiveModel) applyFetchResult(msg fetchResultMsg) tea.Cmd {
	defer m.finishFetch()

	now := m.clock.Now()
	took := now.Sub(msg.started)

	err := msg.err
	if err == nil {
		if msg.resp == nil {
			err = fmt.Errorf("%w: empty response", predictapi.ErrDecode)
		} else if verr := msg.resp.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", predictapi.ErrDecode, verr)
		}
	}

	if err != nil {
		kind := predictapi.Classify(err)
		m.logf("predict: fetch #%d failed (%s, use_model=%t): %v", msg.seq, kind, msg.req.UseModel, err)
		m.lastFetchOK = false
		m.lastError = kind
		m.lastErrorAt = now
		m.consecutiveErrors++
		m.metrics.RecordFetch(kind, took)
		return nil
	}

	m.lastFetchOK = true
	m.consecutiveErrors = 0
	statusCmd := m.checkStatus()

	if m.policy == CommitLatestIssued && msg.seq < m.lastCommittedSeq {
		m.logf("predict: fetch #%d superseded by #%d, discarded", msg.seq, m.lastCommittedSeq)
		m.metrics.RecordFetch(metrics.OutcomeDiscarded, took)
		return statusCmd
	}

	// Responses commit in completion order: whichever finishes last is shown,
	// even when an older request overtakes a newer one.
	m.state.Prediction, m.state.Recent = msg.resp.Prediction, msg.resp.Recent
	m.state.LastUpdated = now
	if msg.seq > m.lastCommittedSeq {
		m.lastCommittedSeq = msg.seq
	}
	m.metrics.RecordFetch(metrics.OutcomeOK, took)
	m.metrics.RecordCommit(now)

	snap := model.NewSnapshot(msg.seq, msg.req.UseModel, msg.resp, now)
	snap.Session = m.session
	return tea.Batch(statusCmd, m.recordSnapshot(snap))
}

func (m *LiveModel) finishFetch() {
	if m.inFlight > 0 {
		m.inFlight--
	}
	m.syncLoading()
}

// syncLoading derives the loading flag from the in-flight count.
func (m *LiveModel) syncLoading() {
	m.state.Loading = m.inFlight > 0
	m.keys.Refresh.SetEnabled(!m.state.Loading)
	m.metrics.SetInFlight(m.inFlight)
}

func (m *LiveModel) recordSnapshot(snap model.Snapshot) tea.Cmd {
	rec := m.recorder
	if rec == nil {
		return nil
	}
	logf := m.logf
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := rec.RecordSnapshot(ctx, snap); err != nil {
			logf("history: record snapshot #%d: %v", snap.Seq, err)
		}
		return nil
	}
}
