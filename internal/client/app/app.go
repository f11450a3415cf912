package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tandahq/tanda/internal/client/connectivity"
	"github.com/tandahq/tanda/internal/client/lock"
	"github.com/tandahq/tanda/internal/client/session"
	"github.com/tandahq/tanda/internal/client/store"
	"github.com/tandahq/tanda/internal/client/store/drivers/sqlite"
	"github.com/tandahq/tanda/internal/client/tui"
	"github.com/tandahq/tanda/pkg/slogx"
	"github.com/tandahq/tanda/pkg/tandasdk"
)

// BuildVersion is overridden at build time via -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application encapsulates the tanda client with all its dependencies.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	logFile *os.File

	db       store.Store
	sdk      *tandasdk.SDKClient
	sessions *session.Store
	lockCtl  *lock.Controller
	observer *connectivity.Observer

	program *tea.Program
}

// New creates an Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{cfg: cfg}

	if err := app.initLogger(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.sdk = tandasdk.NewSDKClient(cfg.APIBaseURL)
	app.sessions = session.New(app.db, app.sdk, app.logger)
	app.lockCtl = lock.New(app.sessions, app.logger)
	app.observer = connectivity.NewObserver(app.sdk, app.logger, cfg.ProbeInterval)

	installID, err := app.db.InstallID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve install id: %w", err)
	}
	app.sessions.SetInstallID(installID.String())
	app.logger = app.logger.With("install_id", installID.String())

	return app, nil
}

// Run starts the client and blocks until the user quits.
func (app *Application) Run() error {
	// Rehydrate synchronously before the first render so a persisted
	// session never flashes as unauthenticated.
	app.sessions.Rehydrate(context.Background())

	app.observer.Start()

	model := tui.NewModel(app.sessions, app.lockCtl, app.observer, app.logger)
	app.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())

	// Reactive recomputation: every store mutation and connectivity flip
	// re-enters the program as a message.
	app.sessions.Subscribe(func() {
		app.program.Send(tui.StateChangedMsg{})
	})
	app.observer.Subscribe(func(online bool) {
		app.program.Send(tui.ConnectivityMsg{Online: online})
	})

	app.logger.Info("tanda client starting", "version", BuildVersion, "api", app.cfg.APIBaseURL)

	_, err := app.program.Run()

	if shutdownErr := app.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// Shutdown stops background workers and closes the local database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tanda client")

	app.observer.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing local state database", "error", err)
		return err
	}

	if app.logFile != nil {
		_ = app.logFile.Close()
	}
	return nil
}

func (app *Application) initLogger() error {
	if err := os.MkdirAll(filepath.Dir(app.cfg.LogFile), 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(app.cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	app.logFile = f

	app.logger = slogx.New(slogx.Config{
		Service: "tanda-client",
		Version: BuildVersion,
		Env:     app.cfg.Env,
		Level:   app.cfg.LogLevel,
		Format:  app.cfg.LogFormat,
		Output:  f,
	})
	return nil
}

func (app *Application) initDatabase() error {
	if err := os.MkdirAll(filepath.Dir(app.cfg.StateFile), 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.StateFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to open local state database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply local state migrations: %w", err)
	}

	app.logger.Info("local state migrations applied")
	return nil
}
