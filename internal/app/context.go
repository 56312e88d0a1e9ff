package app

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"connex/internal/audit"
	"connex/internal/config"
	"connex/internal/db"
	"connex/internal/engine"
	"connex/internal/migrate"
	"connex/internal/query"
	"connex/internal/repo"
)

// Context wires the store, recorder, engine and query service for one
// workspace. Close it to drain the action queue and release the database.
type Context struct {
	Workspace string
	Config    *config.Config
	DB        *sql.DB
	Dialect   db.Dialect
	Repo      repo.Repo
	Recorder  *audit.Recorder
	Engine    engine.Engine
	Query     query.Service
	Logger    *log.Logger
}

// Options override the workspace config. Empty fields keep the file value.
type Options struct {
	Driver string
	DSN    string
	// SyncAudit writes actions inline instead of through the queue.
	SyncAudit bool
}

// Open loads the workspace config, opens and migrates the database, then
// builds the services on top of it.
func Open(workspace string, opts Options) (*Context, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(opts.Driver) != "" {
		cfg.Storage.Driver = opts.Driver
	}
	if strings.TrimSpace(opts.DSN) != "" {
		cfg.Storage.DSN = opts.DSN
	}
	if opts.SyncAudit {
		cfg.Audit.Async = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, dialect, err := db.Open(db.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN, Workspace: workspace})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate.Migrate(conn, dialect); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger := log.New(os.Stderr, "connex: ", log.LstdFlags)
	r := repo.New(conn, dialect)
	rec := audit.New(r, cfg, logger)
	eng := engine.New(r, rec, cfg)
	eng.Logger = logger
	return &Context{
		Workspace: workspace,
		Config:    cfg,
		DB:        conn,
		Dialect:   dialect,
		Repo:      r,
		Recorder:  rec,
		Engine:    eng,
		Query:     query.New(r, cfg),
		Logger:    logger,
	}, nil
}

// Close flushes pending actions before closing the database.
func (c *Context) Close() error {
	if c == nil {
		return nil
	}
	if c.Recorder != nil {
		c.Recorder.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
