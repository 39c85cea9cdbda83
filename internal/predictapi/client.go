package predictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

const maxErrorBody = 4 * 1024

// Failure classes. Every error returned by Client wraps exactly one of these.
var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("unexpected status")
	ErrDecode    = errors.New("malformed response")
)

// StatusError carries a non-success HTTP response.
type StatusError struct {
	Code    int
	Message string // "error" field of the body, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Client implements model.PredictAPI over HTTP+JSON.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ model.PredictAPI = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict posts req to /api/predict and decodes the prediction payload.
func (c *Client) Predict(ctx context.Context, req model.PredictRequest) (*model.PredictResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("predictapi: marshal request: %w", err)
	}

	var resp model.PredictResponse
	if err := c.do(ctx, http.MethodPost, "/api/predict", body, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("predictapi: %w: %w", ErrDecode, err)
	}
	return &resp, nil
}

// Status reads /api/status.
func (c *Client) Status(ctx context.Context) (model.ServiceStatus, error) {
	var st model.ServiceStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &st)
	return st, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("predictapi: build request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("predictapi: %w: %w", ErrTransport, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return fmt.Errorf("predictapi: %s %s: %w", method, path, statusError(httpResp))
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("predictapi: %w: read body: %w", ErrTransport, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("predictapi: %w: %w", ErrDecode, err)
	}
	return nil
}

func statusError(resp *http.Response) *StatusError {
	se := &StatusError{Code: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return se
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		se.Message = payload.Error
	}
	return se
}

// Classify maps an error returned by Client to a short label for logs and
// metrics: "transport", "status", "decode" or "unknown".
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return "transport"
	default:
		return "unknown"
	}
}
