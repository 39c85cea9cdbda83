package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// PredictionResult is the prediction artifact produced by the service.
// It is replaced wholesale on every successful fetch, never merged.
type PredictionResult struct {
	Method  string `json:"method"`
	Size    string `json:"size"`
	Color   string `json:"color"`
	Numbers []int  `json:"numbers"` // nil = absent
}

// HasNumbers reports whether the service suggested any numbers.
func (p PredictionResult) HasNumbers() bool {
	return p.Numbers != nil
}

// RecentEntry is one observed draw, in the order the service returned it.
type RecentEntry struct {
	Number Number   `json:"number"`
	Colors []string `json:"colors"`
	Issue  string   `json:"issue,omitempty"`
}

// Number is a draw result as reported by the service. Integers and numeric
// strings decode into Value; other strings are kept verbatim in Text; null
// leaves the zero value.
type Number struct {
	Value int
	Valid bool
	Text  string
}

// IntNumber returns a valid Number holding n.
func IntNumber(n int) Number {
	return Number{Value: n, Valid: true}
}

func (n Number) String() string {
	switch {
	case n.Valid:
		return strconv.Itoa(n.Value)
	case n.Text != "":
		return n.Text
	default:
		return "?"
	}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = Number{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if v, err := strconv.Atoi(s); err == nil {
			*n = IntNumber(v)
			return nil
		}
		n.Text = s
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.New("number: expected integer, string or null")
	}
	// Fractional or huge values have no draw meaning; keep the literal.
	if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		n.Text = string(data)
		return nil
	}
	*n = IntNumber(int(f))
	return nil
}

// maxExactInt is the largest magnitude a float64 holds without losing integer
// precision.
const maxExactInt = 1 << 53

func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case n.Valid:
		return []byte(strconv.Itoa(n.Value)), nil
	case n.Text != "":
		return json.Marshal(n.Text)
	default:
		return []byte("null"), nil
	}
}

// PredictRequest is the configuration record sent as the request body.
type PredictRequest struct {
	Source   string `json:"source"`
	Take     int    `json:"take"`
	UseModel bool   `json:"use_model"`
}

// NewPredictRequest builds the request body used by the dashboard.
func NewPredictRequest(useModel bool) PredictRequest {
	return PredictRequest{
		Source:   DefaultSource,
		Take:     DefaultTake,
		UseModel: useModel,
	}
}

// PredictResponse is the expected body of a successful predict call.
type PredictResponse struct {
	Prediction *PredictionResult `json:"prediction"`
	Recent     []RecentEntry     `json:"recent"`
}

var (
	ErrMissingPrediction = errors.New("response has no prediction")
	ErrMissingRecent     = errors.New("response has no recent list")
)

// Validate checks the response carries both fields a commit needs.
func (r *PredictResponse) Validate() error {
	if r.Prediction == nil {
		return ErrMissingPrediction
	}
	if r.Recent == nil {
		return ErrMissingRecent
	}
	return nil
}

// ServiceStatus is the body of GET /api/status.
type ServiceStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// UIState is everything the live view renders.
// Prediction and Recent only ever change together, from one response.
type UIState struct {
	Prediction  *PredictionResult
	Recent      []RecentEntry
	Loading     bool
	UseModel    bool
	LastUpdated time.Time // zero until the first commit
}

// Snapshot is one committed response as kept by the local history store.
type Snapshot struct {
	CommittedAt  time.Time
	// Session identifies the dashboard run that committed the snapshot. Seq
	// restarts with every run, so it is only ordered within one session.
	Session      string
	Seq          uint64
	UseModel     bool
	Method       string
	Size         string
	Color        string
	Numbers      []int
	LatestIssue  string
	LatestNumber Number
}

// NewSnapshot flattens a committed response. The first recent entry is the
// latest draw.
func NewSnapshot(seq uint64, useModel bool, resp *PredictResponse, at time.Time) Snapshot {
	s := Snapshot{
		CommittedAt: at,
		Seq:         seq,
		UseModel:    useModel,
	}
	if resp.Prediction != nil {
		s.Method = resp.Prediction.Method
		s.Size = resp.Prediction.Size
		s.Color = resp.Prediction.Color
		s.Numbers = append([]int(nil), resp.Prediction.Numbers...)
	}
	if len(resp.Recent) > 0 {
		s.LatestIssue = resp.Recent[0].Issue
		s.LatestNumber = resp.Recent[0].Number
	}
	return s
}

// SizeOf classifies a draw: 5 and above is Big, below is Small.
func SizeOf(n int) string {
	if n >= 5 {
		return "Big"
	}
	return "Small"
}
