package cli

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/cli/formatter"
	"github.com/alexanderramin/reqreport/internal/config"
	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/telemetry"
)

// App holds the configuration and services CLI commands use. Services are
// built by Wire once flags and config are resolved.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *telemetry.Metrics

	Reports  app.ReportUseCase
	Releases app.ReleaseListUseCase
	Import   app.ImportUseCase

	// Wire builds the services for cfg. workspace is true when the command
	// needs the local workspace database regardless of backend.
	Wire func(a *App, cfg *config.Config, workspace bool) error

	// PickRelease asks the user to choose a release. Only called when
	// IsInteractive reports a terminal.
	PickRelease func(releases []domain.Release) (string, error)

	IsInteractive func() bool
	Now           func() time.Time
	Width         func() int

	logLevel *slog.LevelVar
	closers  []func() error
}

// NewApp returns an App with production wiring.
func NewApp() *App {
	return &App{
		Wire:          DefaultWire,
		PickRelease:   pickReleaseForm,
		IsInteractive: func() bool { return false },
		Now:           time.Now,
		Width:         terminalWidth,
	}
}

// OnClose registers cleanup run after the command finishes.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close runs registered cleanup in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

const annotationWorkspace = "workspace"

// NewRootCmd creates the top-level "reqreport" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *App) *cobra.Command {
	var (
		configPath  string
		backend     string
		dbPath      string
		verbose     bool
		metricsFile string
	)

	root := &cobra.Command{
		Use:           "reqreport",
		Short:         "Release requirements reports from Rally",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("backend") {
				cfg.Backend = config.Backend(backend)
			}
			if flags.Changed("db") {
				cfg.DBPath = dbPath
			}
			if flags.Changed("verbose") {
				cfg.Verbose = verbose
			}
			if flags.Changed("metrics-file") {
				cfg.MetricsFile = metricsFile
			}
			workspace := cmd.Annotations[annotationWorkspace] == "true"
			if workspace {
				// Workspace commands never talk to Rally.
				cfg.Backend = config.BackendLocal
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a.Config = cfg
			a.logLevel = new(slog.LevelVar)
			if cfg.Verbose {
				a.logLevel.Set(slog.LevelDebug)
			}
			a.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.logLevel}))
			a.Metrics = telemetry.New()
			return a.Wire(a, cfg, workspace)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
				a.Logger.Warn("metrics not written", "path", a.Config.MetricsFile, "error", err)
			}
			return a.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ~/.reqreport/config.yaml)")
	pf.StringVar(&backend, "backend", "", "Data source: rally or local")
	pf.StringVar(&dbPath, "db", "", "Local workspace database path")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	pf.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile on exit")

	root.AddCommand(
		newReleasesCmd(a),
		newReportCmd(a),
		newBrowseCmd(a),
		newImportCmd(a),
	)

	return root
}

// quietLogs mutes the logger until the returned func is called. The
// browser owns the terminal while it runs.
func (a *App) quietLogs() (restore func()) {
	if a.logLevel == nil {
		return func() {}
	}
	prev := a.logLevel.Level()
	a.logLevel.Set(slog.LevelError + 4)
	return func() { a.logLevel.Set(prev) }
}

// terminalWidth reads COLUMNS, falling back to the formatter default.
func terminalWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return formatter.DefaultWidth
}
