// Package wire provides dependency injection for the jsnb application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"

	cliadapter "github.com/kdougan/js-notebook/internal/adapters/cli"
	"github.com/kdougan/js-notebook/internal/adapters/idgen"
	"github.com/kdougan/js-notebook/internal/adapters/remote"
	"github.com/kdougan/js-notebook/internal/adapters/sandbox"
	"github.com/kdougan/js-notebook/internal/adapters/sqlite"
	"github.com/kdougan/js-notebook/internal/app"
	"github.com/kdougan/js-notebook/internal/config"
	"github.com/kdougan/js-notebook/internal/ctxutil"
	"github.com/kdougan/js-notebook/internal/db"
	"github.com/kdougan/js-notebook/internal/ports/primary"
	"github.com/kdougan/js-notebook/internal/ports/secondary"
	"github.com/kdougan/js-notebook/internal/telemetry"
)

var (
	cfg    = config.Default()
	logger *slog.Logger

	database          *sql.DB
	telemetryProvider *telemetry.Provider
	notebookService   primary.NotebookService
	executionService  primary.ExecutionService
	once              sync.Once
)

// Configure sets the configuration used when services are first created.
// It must be called before any service accessor.
func Configure(c *config.Config) {
	cfg = c
	logger = c.Logger(os.Stderr)
}

// Config returns the active configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	if logger == nil {
		logger = cfg.Logger(os.Stderr)
	}
	return logger
}

// NotebookService returns the singleton NotebookService instance.
func NotebookService() primary.NotebookService {
	once.Do(initServices)
	return notebookService
}

// ExecutionService returns the singleton ExecutionService instance.
func ExecutionService() primary.ExecutionService {
	once.Do(initServices)
	return executionService
}

// LocalEvaluator returns an in-process sandbox evaluator honoring the configured latency.
// The evaluation server always uses it, whatever the configured mode.
func LocalEvaluator() *sandbox.Evaluator {
	return sandbox.NewEvaluator(sandbox.WithLatency(cfg.Evaluator.Latency))
}

// Evaluator returns the evaluator selected by the configuration.
func Evaluator() secondary.Evaluator {
	if cfg.Evaluator.Mode == config.ModeRemote {
		return remote.NewClient(cfg.Evaluator.URL, &http.Client{})
	}
	return LocalEvaluator()
}

// Telemetry returns the telemetry provider, starting exporters on first use.
func Telemetry() *telemetry.Provider {
	if telemetryProvider != nil {
		return telemetryProvider
	}
	p, err := telemetry.New(context.Background(), &telemetry.Config{
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     cfg.Telemetry.Insecure,
		SampleRate:   cfg.Telemetry.SampleRate,
	})
	if err != nil {
		Logger().Warn("telemetry disabled", "error", err)
		p = telemetry.Noop()
	}
	telemetryProvider = p
	return p
}

// Shutdown flushes telemetry and closes the database.
func Shutdown(ctx context.Context) {
	if telemetryProvider != nil {
		if err := telemetryProvider.Shutdown(ctx); err != nil {
			Logger().Warn("telemetry shutdown failed", "error", err)
		}
	}
	if database != nil {
		if err := database.Close(); err != nil {
			Logger().Warn("failed to close database", "error", err)
		}
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	ctx := ctxutil.WithLogger(context.Background(), Logger())

	path := cfg.DBPath
	if path == "" {
		var err error
		if path, err = db.DefaultPath(); err != nil {
			log.Fatalf("failed to resolve database path: %v", err)
		}
	}

	var err error
	database, err = db.Open(ctx, path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Secondary adapters
	notebookRepo := sqlite.NewNotebookRepository(database)
	journal := sqlite.NewRunJournalRepository(database)
	ids := idgen.NewGenerator()

	store, err := app.LoadNotebookStore(ctx, notebookRepo, ids)
	if err != nil {
		log.Fatalf("failed to load notebook: %v", err)
	}

	notebookService = app.NewNotebookService(store)
	executionService = app.NewExecutionService(store, Evaluator(), journal, ids, Telemetry(), app.ExecutionConfig{
		Timeout: cfg.Evaluator.Timeout,
	})
}

// NotebookAdapter returns a new NotebookAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func NotebookAdapter() *cliadapter.NotebookAdapter {
	return NotebookAdapterWithOutput(os.Stdout)
}

// NotebookAdapterWithOutput returns a new NotebookAdapter writing to the given output.
func NotebookAdapterWithOutput(out io.Writer) *cliadapter.NotebookAdapter {
	once.Do(initServices)
	return cliadapter.NewNotebookAdapter(notebookService, out)
}

// RunAdapter returns a new RunAdapter writing to stdout.
func RunAdapter() *cliadapter.RunAdapter {
	return RunAdapterWithOutput(os.Stdout)
}

// RunAdapterWithOutput returns a new RunAdapter writing to the given output.
func RunAdapterWithOutput(out io.Writer) *cliadapter.RunAdapter {
	once.Do(initServices)
	return cliadapter.NewRunAdapter(executionService, notebookService, out)
}
