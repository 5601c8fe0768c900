package cli

import (
	"fmt"

	"github.com/alexanderramin/reqreport/internal/config"
	"github.com/alexanderramin/reqreport/internal/db"
	"github.com/alexanderramin/reqreport/internal/rally"
	"github.com/alexanderramin/reqreport/internal/repository"
	"github.com/alexanderramin/reqreport/internal/service"
)

// DefaultWire opens the configured backend and builds the services.
func DefaultWire(a *App, cfg *config.Config, workspace bool) error {
	observer := service.NewLogUseCaseObserver(a.Logger)

	var backend repository.Backend
	if cfg.Backend == config.BackendLocal || workspace {
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening workspace: %w", err)
		}
		a.OnClose(database.Close)

		a.Import = service.NewImportService(db.NewSQLiteUnitOfWork(database), observer)
		if cfg.Backend == config.BackendLocal {
			backend = repository.NewSQLiteBackend(database, cfg.Rally.PageSize)
		}
	}

	if cfg.Backend == config.BackendRally {
		var rallyObserver rally.Observer = rally.NoopObserver{}
		if cfg.Rally.LogCalls {
			rallyObserver = rally.NewLogObserver(a.Logger)
		}
		client := rally.NewClient(cfg.Rally,
			rally.WithObserver(rallyObserver),
			rally.WithMetrics(a.Metrics),
			rally.WithLogger(a.Logger),
		)
		backend = client
	}

	if backend == nil {
		return fmt.Errorf("unsupported backend %q", cfg.Backend)
	}

	a.Reports = service.NewReportService(backend, service.ReportConfig{
		Scope:    cfg.Scope(),
		MaxDepth: cfg.Report.MaxDepth,
		Logger:   a.Logger,
		Metrics:  a.Metrics,
	}, observer)
	a.Releases = service.NewReleaseService(backend, cfg.Scope(), observer)
	return nil
}
