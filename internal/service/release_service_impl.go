package service

import (
	"context"
	"time"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/repository"
)

type releaseService struct {
	source   repository.ReleaseSource
	scope    repository.ProjectScope
	observer UseCaseObserver
}

func NewReleaseService(source repository.ReleaseSource, scope repository.ProjectScope, observers ...UseCaseObserver) ReleaseService {
	return &releaseService{
		source:   source,
		scope:    scope,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *releaseService) ListReleases(ctx context.Context, scope *repository.ProjectScope) (releases []domain.Release, err error) {
	start := time.Now()
	effective := s.scope
	if scope != nil {
		effective = *scope
	}
	defer func() {
		observeUseCase(ctx, s.observer, "release.list", "", start, err, map[string]any{
			"project":  effective.Project,
			"releases": len(releases),
		})
	}()
	return s.source.ListReleases(ctx, effective)
}
