package stubserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

// Server serves /api/status and /api/predict from fixtures.
type Server struct {
	addr      string
	fixtures  *Fixtures
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	requests  atomic.Uint64
	startTime time.Time
}

// NewServer creates a stub server. A nil fixtures uses DefaultFixtures.
func NewServer(addr string, fixtures *Fixtures) *Server {
	if addr == "" {
		addr = "127.0.0.1:5000"
	}
	if fixtures == nil {
		fixtures = DefaultFixtures()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:     addr,
		fixtures: fixtures,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/status", s.handleStatus)
	r.POST("/api/predict", s.handlePredict)
	return r
}

// Start binds the listener. Serve blocks until Stop.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()
	return nil
}

// Addr returns the bound address, useful when addr used port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Serve runs until Stop is called.
func (s *Server) Serve() error {
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, model.ServiceStatus{
		Status:      "ok",
		ModelLoaded: s.fixtures.ModelLoaded && len(s.fixtures.Model) > 0,
	})
}

type predictBody struct {
	Source   string `json:"source" binding:"omitempty,oneof=storage api"`
	Take     int    `json:"take" binding:"omitempty,min=1,max=500"`
	UseModel bool   `json:"use_model"`
}

func (s *Server) handlePredict(c *gin.Context) {
	var req predictBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Source == "" {
		req.Source = model.DefaultSource
	}
	if req.Take == 0 {
		req.Take = model.DefaultTake
	}

	n := s.requests.Add(1)

	if d := s.fixtures.Delay; d > 0 {
		select {
		case <-time.After(d):
		case <-c.Request.Context().Done():
			return
		}
	}

	if every := uint64(s.fixtures.FailEvery); every > 0 && n%every == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "injected failure"})
		return
	}

	// Only the storage source has canned history.
	if req.Source != model.DefaultSource {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no history available"})
		return
	}

	frames := s.fixtures.Heuristic
	if req.UseModel && s.fixtures.ModelLoaded && len(s.fixtures.Model) > 0 {
		frames = s.fixtures.Model
	}
	if len(frames) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no history available"})
		return
	}

	frame := frames[(n-1)%uint64(len(frames))]
	c.JSON(http.StatusOK, frame.response(req.Take))
}
