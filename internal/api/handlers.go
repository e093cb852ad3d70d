package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"troopcalc/internal/combat"
	"troopcalc/internal/optimizer"
	"troopcalc/internal/snapshot"
	"troopcalc/internal/util"
)

var errTimeout = errors.New("optimization timed out")

type MatchRequest struct {
	You   combat.Side `json:"you"`
	Enemy combat.Side `json:"enemy"`
	// Alpha, Beta and Synergy override the configured rules when set.
	Alpha   *float64 `json:"alpha,omitempty"`
	Beta    *float64 `json:"beta,omitempty"`
	Synergy *bool    `json:"synergy,omitempty"`
}

type OptimizeRequest struct {
	You   combat.Side `json:"you"`
	Enemy combat.Side `json:"enemy"`
	// Grid selects the exhaustive 5% grid instead of the genetic or blind search.
	Grid  bool     `json:"grid,omitempty"`
	Seed  *int64   `json:"seed,omitempty"`
	Alpha *float64 `json:"alpha,omitempty"`
	Beta  *float64 `json:"beta,omitempty"`
}

type OptimizeResponse struct {
	RunID  string            `json:"run_id"`
	Report *optimizer.Report `json:"report"`
}

func decode(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) rulesFor(alpha, beta *float64) *combat.Rules {
	r := s.rules
	if alpha != nil || beta != nil {
		a, b := r.Alpha, r.Beta
		if alpha != nil {
			a = *alpha
		}
		if beta != nil {
			b = *beta
		}
		r = r.WithExponents(a, b)
	}
	return r
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decode(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	snap := snapshot.Snapshot{You: req.You, Enemy: req.Enemy}
	if err := snap.Validate(true); err != nil {
		writeError(w, err)
		return
	}
	rules := s.rulesFor(req.Alpha, req.Beta)
	if req.Synergy != nil && !*req.Synergy {
		rules = rules.WithoutSynergy()
	}
	res := rules.RunMatch(req.You, req.Enemy)
	s.metrics.RecordMatch()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := decode(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	snap := snapshot.Snapshot{You: req.You, Enemy: req.Enemy}
	if err := snap.ValidateOptimize(req.Grid); err != nil {
		writeError(w, err)
		return
	}

	runID := uuid.Must(uuid.NewV4()).String()
	w.Header().Set(runIDHeader, runID)
	logger := s.logger.With(zap.String("run_id", runID))

	seed := s.seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	opt, err := optimizer.New(s.cfg, util.New(seed), logger)
	if err != nil {
		writeError(w, err)
		return
	}
	opt.Rules = s.rulesFor(req.Alpha, req.Beta)

	mode := string(optimizer.ModeKnown)
	switch {
	case req.Grid:
		mode = string(optimizer.ModeGrid)
	case req.Enemy.Stats.IsZero():
		mode = string(optimizer.ModeBlind)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	type outcome struct {
		report *optimizer.Report
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		if req.Grid {
			done <- outcome{report: opt.GridSearch(req.You, req.Enemy)}
			return
		}
		rep, err := opt.Recommend(ctx, req.You, req.Enemy)
		done <- outcome{report: rep, err: err}
	}()

	select {
	case <-ctx.Done():
		s.metrics.RecordOptimization(mode, "timeout", 0)
		logger.Warn("optimization timed out", zap.String("mode", mode), zap.Duration("timeout", s.timeout))
		writeError(w, errTimeout)
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) || errors.Is(out.err, context.Canceled) {
				s.metrics.RecordOptimization(mode, "timeout", 0)
				writeError(w, errTimeout)
				return
			}
			s.metrics.RecordOptimization(mode, "error", 0)
			writeError(w, out.err)
			return
		}
		s.metrics.RecordOptimization(mode, "ok", time.Since(start).Seconds())
		writeJSON(w, http.StatusOK, OptimizeResponse{RunID: runID, Report: out.report})
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := snapshot.Import(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.RecordSnapshot()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="troopcalc_snapshot.csv"`)
	if err := snapshot.Export(w, snapshot.Template()); err != nil {
		s.logger.Error("write template", zap.Error(err))
	}
}
