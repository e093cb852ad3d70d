// Package api exposes the match simulator and optimizers over HTTP/JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"troopcalc/internal/combat"
	"troopcalc/internal/config"
	"troopcalc/internal/observability"
	"troopcalc/internal/snapshot"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
	runIDHeader    = "X-Run-ID"
)

type Options struct {
	// Timeout bounds each optimisation; zero means ten seconds.
	Timeout  time.Duration
	Seed     int64
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

type Server struct {
	cfg      *config.Config
	rules    *combat.Rules
	timeout  time.Duration
	seed     int64
	logger   *zap.Logger
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	mux      *http.ServeMux
}

func NewServer(cfg *config.Config, opts Options) (*Server, error) {
	rules, err := combat.NewRules(&cfg.Balance)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		rules:    rules,
		timeout:  opts.Timeout,
		seed:     opts.Seed,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		mux:      http.NewServeMux(),
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.handle("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.handle("POST /v1/match", s.handleMatch)
	s.handle("POST /v1/optimize", s.handleOptimize)
	s.handle("POST /v1/snapshot", s.handleSnapshot)
	s.handle("GET /v1/template", s.handleTemplate)
	if s.gatherer != nil {
		s.mux.Handle("GET /metrics", observability.Handler(s.gatherer))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handle registers h with request counting and latency tracking under pattern.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		elapsed := time.Since(start)
		s.metrics.RecordRequest(pattern, sw.code, elapsed.Seconds())
		s.logger.Debug("request",
			zap.String("route", pattern),
			zap.Int("code", sw.code),
			zap.Duration("elapsed", elapsed))
	}))
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, snapshot.ErrInvalidFormation),
		errors.Is(err, snapshot.ErrInvalidTroops),
		errors.Is(err, snapshot.ErrInvalidStats),
		errors.Is(err, snapshot.ErrNotEnoughRows):
		return http.StatusBadRequest
	case errors.Is(err, errTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
