package app

import (
	"context"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/importer"
	"github.com/alexanderramin/reqreport/internal/repository"
)

type ReportUseCase interface {
	Generate(ctx context.Context, req ReportRequest) (*ReportResponse, error)
}

// ReleaseListUseCase lists releases visible from scope, newest first. A nil
// scope uses the configured one.
type ReleaseListUseCase interface {
	ListReleases(ctx context.Context, scope *repository.ProjectScope) ([]domain.Release, error)
}

type ImportResult struct {
	RunID        string
	Workspace    string
	ProjectCount int
	ReleaseCount int
	ItemCount    int
	// Warnings lists non-fatal findings, such as items whose declared
	// children are missing from the export.
	Warnings []string
}

type ImportUseCase interface {
	ImportWorkspace(ctx context.Context, filePath string) (*ImportResult, error)
	ImportWorkspaceFromSchema(ctx context.Context, schema *importer.ExportSchema) (*ImportResult, error)
}
