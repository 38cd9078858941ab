// Package internal provides the App struct that wires all components of
// the roomodes server together: configuration, logging, the mode registry,
// the task orchestrator, and the session manager.
package internal

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/roomodes/roomodes/internal/config"
	"github.com/roomodes/roomodes/internal/logging"
	"github.com/roomodes/roomodes/internal/modes"
	"github.com/roomodes/roomodes/internal/orchestrator"
	"github.com/roomodes/roomodes/internal/server"
	"github.com/roomodes/roomodes/internal/session"
)

// ServerName is the implementation name advertised in initialize.
const ServerName = "roomodes-server"

// App holds all service dependencies for the roomodes server.
type App struct {
	Cfg *config.Config
	Log zerolog.Logger

	Registry     *modes.Registry
	Catalog      *orchestrator.ToolCatalog
	Orchestrator *orchestrator.Orchestrator
	Sessions     *session.Manager

	version  string
	closeLog func()
}

// NewApp creates and wires all components from the given configuration.
func NewApp(cfg *config.Config, version string) (*App, error) {
	log, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}

	registry := modes.Load(cfg.ProjectRoot, cfg.ConfigDir, log)
	catalog := orchestrator.DefaultCatalog()
	orch := orchestrator.New(registry, catalog, log)
	sessions := session.NewManager(cfg.SessionTimeout, cfg.CleanupInterval, log)

	// A destroyed session takes its task out of the arena with it; the
	// session exclusively owns the task.
	sessions.SetDestroyHook(func(s *session.Session) {
		orch.RemoveTask(s.Task.ID)
	})

	return &App{
		Cfg:          cfg,
		Log:          log,
		Registry:     registry,
		Catalog:      catalog,
		Orchestrator: orch,
		Sessions:     sessions,
		version:      version,
		closeLog:     closeLog,
	}, nil
}

// Serve runs the MCP server on stdin/stdout with the session sweeper in the
// background, until EOF or context cancellation. All sessions are destroyed
// on the way out.
func (a *App) Serve(ctx context.Context) error {
	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.Sessions.Run(sweepCtx)

	srv := server.New(ServerName, a.version, a.Registry, a.Orchestrator, a.Sessions, a.Log)
	err := srv.Run(ctx, os.Stdin, os.Stdout)

	stats := a.Sessions.Stats()
	a.Log.Info().
		Int("sessions", stats.Sessions).
		Dur("oldest_age", stats.OldestAge).
		Dur("max_idle", stats.MaxIdle).
		Msg("server shutting down")
	a.Sessions.DestroyAll()

	if err != nil {
		return fmt.Errorf("running server: %w", err)
	}
	return nil
}

// Close releases resources held by the App, such as the log file handle.
func (a *App) Close() {
	if a.closeLog != nil {
		a.closeLog()
	}
}
