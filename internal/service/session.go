package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/report"
	"github.com/alexanderramin/reqreport/internal/telemetry"
)

// ErrNoSnapshot is returned when an operation needs a completed pass and
// none has committed yet.
var ErrNoSnapshot = errors.New("no report has been generated yet")

// Snapshot is one committed report pass. Snapshots are immutable; a toggle
// produces a new one.
type Snapshot struct {
	Seq      uint64
	Request  app.ReportRequest
	Response *app.ReportResponse
	Report   *report.Report
}

// Session serialises user selections into report passes. The latest
// selection always wins: starting a pass cancels the one in flight, and a
// pass that still completes after being superseded is discarded.
type Session struct {
	reports app.ReportUseCase
	metrics *telemetry.Metrics
	logger  *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc

	current atomic.Pointer[Snapshot]
}

func NewSession(reports app.ReportUseCase, metrics *telemetry.Metrics, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{reports: reports, metrics: metrics, logger: logger}
}

// Select runs a pass for req. On failure the previous snapshot stays
// current. A superseded pass returns app.ErrStaleResult.
func (s *Session) Select(ctx context.Context, req app.ReportRequest) (*Snapshot, error) {
	start := time.Now()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	passCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	resp, err := s.reports.Generate(passCtx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.metrics.ObservePass(passStale, time.Since(start))
		s.logger.Debug("discarding stale report pass", "seq", seq, "latest", s.seq, "release", req.ReleaseName)
		return nil, app.ErrStaleResult
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Seq: seq, Request: req, Response: resp, Report: resp.Report}
	s.current.Store(snap)
	return snap, nil
}

// ToggleTestPlan re-assembles the current snapshot with or without the
// test plan column. No fetch happens.
func (s *Session) ToggleTestPlan(include bool) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if cur == nil {
		return nil, ErrNoSnapshot
	}
	req := cur.Request
	req.IncludeTestPlanColumn = include
	next := &Snapshot{
		Seq:      cur.Seq,
		Request:  req,
		Response: cur.Response,
		Report:   report.Build(cur.Response.Release, cur.Response.Results, report.Options{IncludeTestPlanColumn: include}),
	}
	s.current.Store(next)
	return next, nil
}

// Snapshot returns the latest committed pass, or nil.
func (s *Session) Snapshot() *Snapshot {
	return s.current.Load()
}

// Close cancels any pass still in flight.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	// Bump the sequence so an in-flight pass is discarded.
	s.seq++
}
