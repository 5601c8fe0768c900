package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/db"
	"github.com/alexanderramin/reqreport/internal/importer"
	"github.com/alexanderramin/reqreport/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

// NewImportService loads Rally exports into the local workspace. Every
// import replaces the previous contents inside one transaction.
func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *importService) ImportWorkspace(ctx context.Context, filePath string) (*app.ImportResult, error) {
	schema, err := importer.LoadExportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema, filepath.Base(filePath))
}

func (s *importService) ImportWorkspaceFromSchema(ctx context.Context, schema *importer.ExportSchema) (*app.ImportResult, error) {
	return s.importSchema(ctx, schema, "schema")
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ExportSchema, source string) (result *app.ImportResult, err error) {
	start := time.Now()
	runID := uuid.NewString()
	defer func() {
		fields := map[string]any{"source": source}
		if result != nil {
			fields["items"] = result.ItemCount
			fields["releases"] = result.ReleaseCount
		}
		observeUseCase(ctx, s.observer, "workspace.import", runID, start, err, fields)
	}()

	if errs := importer.ValidateExportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	ws, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting export: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		w := repository.NewWorkspaceWriter(tx)
		if err := w.Clear(ctx); err != nil {
			return err
		}
		for _, p := range ws.Projects {
			if err := w.InsertProject(ctx, p); err != nil {
				return err
			}
		}
		for i := range ws.Releases {
			if err := w.InsertRelease(ctx, ws.Releases[i].ProjectID, &ws.Releases[i].Release); err != nil {
				return err
			}
		}
		for i := range ws.Stories {
			if err := w.InsertWorkItem(ctx, ws.Stories[i].ProjectID, &ws.Stories[i].Item); err != nil {
				return err
			}
		}
		return w.RecordImport(ctx, repository.ImportRun{
			ID:           runID,
			Source:       source,
			Workspace:    ws.Name,
			ItemCount:    len(ws.Stories),
			ReleaseCount: len(ws.Releases),
			ImportedAt:   s.now(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("importing workspace: %w", err)
	}

	return &app.ImportResult{
		RunID:        runID,
		Workspace:    ws.Name,
		ProjectCount: len(ws.Projects),
		ReleaseCount: len(ws.Releases),
		ItemCount:    len(ws.Stories),
		Warnings:     importer.IncompleteHierarchies(schema),
	}, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
