package service

import (
	"log/slog"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/repository"
	"github.com/alexanderramin/reqreport/internal/telemetry"
)

// The services implement the app use cases; these aliases keep the
// constructors readable.
type (
	ReportService  = app.ReportUseCase
	ReleaseService = app.ReleaseListUseCase
	ImportService  = app.ImportUseCase
)

// ReportConfig carries what a report service needs besides its backend.
type ReportConfig struct {
	// Scope is used when a request carries no scope of its own.
	Scope repository.ProjectScope
	// MaxDepth bounds hierarchy walks; zero uses the resolver default.
	MaxDepth int

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}
