package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/rally"
	"github.com/alexanderramin/reqreport/internal/report"
	"github.com/alexanderramin/reqreport/internal/repository"
	"github.com/alexanderramin/reqreport/internal/resolver"
)

const (
	passOK    = "ok"
	passEmpty = "empty"
	passError = "error"
	passStale = "stale"
)

type reportService struct {
	backend  repository.Backend
	cfg      ReportConfig
	observer UseCaseObserver
}

func NewReportService(backend repository.Backend, cfg ReportConfig, observers ...UseCaseObserver) ReportService {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &reportService{
		backend:  backend,
		cfg:      cfg,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Generate runs one report pass: fetch, resolve, assemble. Either fetch
// failing fails the whole pass; nothing partial is returned.
func (s *reportService) Generate(ctx context.Context, req app.ReportRequest) (resp *app.ReportResponse, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	ctx = rally.ContextWithRequestID(ctx, requestID)

	fields := map[string]any{"release": req.ReleaseName}
	defer func() {
		outcome := passOK
		switch {
		case err != nil:
			outcome = passError
		case resp.Report.AllEmpty():
			outcome = passEmpty
		}
		fields["outcome"] = outcome
		s.cfg.Metrics.ObservePass(outcome, time.Since(start))
		observeUseCase(ctx, s.observer, "report.generate", requestID, start, err, fields)
	}()

	if strings.TrimSpace(req.ReleaseName) == "" {
		return nil, &app.ReportError{Code: app.ReportErrInvalidRelease, Message: "release name is required"}
	}
	tags := req.EffectiveTags()
	for _, tag := range tags {
		if !domain.ValidRequirementTags[string(tag)] {
			return nil, &app.ReportError{Code: app.ReportErrInvalidTag, Message: fmt.Sprintf("unknown requirement tag %q", tag)}
		}
	}

	scope := s.cfg.Scope
	if req.Scope != nil {
		scope = *req.Scope
	}

	release, items, err := s.fetch(ctx, scope, req, tags)
	if err != nil {
		return nil, err
	}
	fetched := time.Since(start)

	coll := domain.NewCollection(items)
	s.cfg.Metrics.ObserveItemsLoaded(coll.Len())
	fields["items"] = coll.Len()

	res := resolver.New(coll, resolver.Options{
		MaxDepth:                s.cfg.MaxDepth,
		ExpectCompleteHierarchy: req.FullHierarchy,
		Logger:                  s.cfg.Logger.With("request_id", requestID),
		Metrics:                 s.cfg.Metrics,
	})
	results := make([]*resolver.Result, 0, len(tags))
	for _, tag := range tags {
		r, err := res.Resolve(tag, req.ReleaseName)
		if err != nil {
			return nil, fmt.Errorf("resolving %s items: %w", tag, err)
		}
		results = append(results, r)
		fields[strings.ToLower(string(tag))+"_rows"] = len(r.Members)
	}

	diags := res.Diagnostics()
	fields["diagnostics"] = len(diags)
	if req.Strict && len(diags) > 0 {
		return nil, fmt.Errorf("%w: %d items (first: %s)", app.ErrInconsistentHierarchy, len(diags), diags[0])
	}

	return &app.ReportResponse{
		RequestID:       requestID,
		Report:          report.Build(release, results, report.Options{IncludeTestPlanColumn: req.IncludeTestPlanColumn}),
		Diagnostics:     diags,
		Warnings:        passWarnings(coll, diags, req.FullHierarchy),
		ItemsLoaded:     coll.Len(),
		Duplicates:      coll.Duplicates(),
		FetchDuration:   fetched,
		ResolveDuration: time.Since(start) - fetched,
		Release:         release,
		Results:         results,
	}, nil
}

// fetch loads the release and the items concurrently.
func (s *reportService) fetch(ctx context.Context, scope repository.ProjectScope, req app.ReportRequest, tags []domain.RequirementTag) (*domain.Release, []domain.WorkItem, error) {
	var (
		release *domain.Release
		items   []domain.WorkItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.backend.FetchRelease(gctx, scope, req.ReleaseName)
		if err != nil {
			return fmt.Errorf("fetching release %q: %w", req.ReleaseName, err)
		}
		release = r
		return nil
	})
	g.Go(func() error {
		got, err := s.backend.FetchItems(gctx, repository.ItemQuery{
			Scope:         scope,
			Tags:          tags,
			Release:       req.ReleaseName,
			FullHierarchy: req.FullHierarchy,
		})
		if err != nil {
			return fmt.Errorf("fetching items: %w", err)
		}
		items = got
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrReleaseNotFound) {
			return nil, nil, &app.ReportError{
				Code:    app.ReportErrInvalidRelease,
				Message: fmt.Sprintf("release %q not found", req.ReleaseName),
			}
		}
		return nil, nil, fmt.Errorf("%w: %w", app.ErrFetch, err)
	}
	return release, items, nil
}

func passWarnings(coll *domain.Collection, diags []resolver.Diagnostic, full bool) []string {
	var warnings []string
	if n := coll.Duplicates(); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d duplicate items ignored", n))
	}
	for _, d := range diags {
		warnings = append(warnings, d.String())
	}
	if len(diags) > 0 && !full {
		warnings = append(warnings, "some hierarchies were not fully loaded; rerun with --full-hierarchy for an exact report")
	}
	return warnings
}
