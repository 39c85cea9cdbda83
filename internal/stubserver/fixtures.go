package stubserver

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tinytelemetry/wingo-live/internal/model"
	"gopkg.in/yaml.v3"
)

// Fixtures is the canned data the stub serves.
//
//	model_loaded: true
//	fail_every: 4        # every 4th predict call answers 500
//	delay: 250ms         # added to every predict call
//	heuristic:
//	  - prediction: {method: heuristic, size: Big, color: Green, numbers: [6, 7, 8]}
//	    recent:
//	      - {issue: "20261019-0101", number: 3, colors: [red, violet]}
//	model: [...]         # same shape, served when use_model is true
type Fixtures struct {
	ModelLoaded bool          `yaml:"model_loaded"`
	FailEvery   int           `yaml:"fail_every" validate:"gte=0"`
	Delay       time.Duration `yaml:"delay" validate:"gte=0"`
	Heuristic   []Frame       `yaml:"heuristic" validate:"min=1,dive"`
	Model       []Frame       `yaml:"model" validate:"dive"`
}

// Frame is one predict response.
type Frame struct {
	Prediction PredictionFixture `yaml:"prediction"`
	Recent     []RecentFixture   `yaml:"recent" validate:"dive"`
}

type PredictionFixture struct {
	Method  string `yaml:"method" validate:"required"`
	Size    string `yaml:"size"`
	Color   string `yaml:"color"`
	Numbers []int  `yaml:"numbers"`
}

type RecentFixture struct {
	Issue  string   `yaml:"issue"`
	Number *int     `yaml:"number" validate:"omitempty,gte=0"`
	Colors []string `yaml:"colors"`
}

var validate = validator.New()

// LoadFixtures reads a YAML fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stubserver: read fixtures: %w", err)
	}
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("stubserver: parse fixtures %s: %w", path, err)
	}
	if err := validate.Struct(fx); err != nil {
		return nil, fmt.Errorf("stubserver: invalid fixtures %s: %w", path, err)
	}
	return &fx, nil
}

// DefaultFixtures returns a small built-in rotation.
func DefaultFixtures() *Fixtures {
	n := func(v int) *int { return &v }
	return &Fixtures{
		ModelLoaded: false,
		Heuristic: []Frame{
			{
				Prediction: PredictionFixture{Method: "heuristic", Size: "Big", Color: "Green", Numbers: []int{6, 7, 8}},
				Recent: []RecentFixture{
					{Issue: "20261019-0103", Number: n(2), Colors: []string{"red"}},
					{Issue: "20261019-0102", Number: n(0), Colors: []string{"red", "violet"}},
					{Issue: "20261019-0101", Number: n(9), Colors: []string{"green"}},
				},
			},
			{
				Prediction: PredictionFixture{Method: "heuristic", Size: "Small", Color: "Red", Numbers: []int{1, 2, 3}},
				Recent: []RecentFixture{
					{Issue: "20261019-0104", Number: n(7), Colors: []string{"green"}},
					{Issue: "20261019-0103", Number: n(2), Colors: []string{"red"}},
					{Issue: "20261019-0102", Number: n(0), Colors: []string{"red", "violet"}},
				},
			},
		},
	}
}

func (f Frame) response(take int) model.PredictResponse {
	pred := model.PredictionResult{
		Method: f.Prediction.Method,
		Size:   f.Prediction.Size,
		Color:  f.Prediction.Color,
	}
	if f.Prediction.Numbers != nil {
		pred.Numbers = append([]int(nil), f.Prediction.Numbers...)
	}

	recent := make([]model.RecentEntry, 0, len(f.Recent))
	for i, r := range f.Recent {
		if take > 0 && i >= take {
			break
		}
		entry := model.RecentEntry{Issue: r.Issue, Colors: append([]string{}, r.Colors...)}
		if r.Number != nil {
			entry.Number = model.IntNumber(*r.Number)
		}
		recent = append(recent, entry)
	}
	return model.PredictResponse{Prediction: &pred, Recent: recent}
}
