// Package bootstrap wires the shared startup pipeline of list-widget bots:
// logger, optional database, migrations and seed data.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/pagekit/core/config"
	coredatabase "github.com/m3rciful/pagekit/core/database"
	"github.com/m3rciful/pagekit/core/logger"
)

// Options control the startup pipeline. The injectable funcs default to the
// real implementations and exist for tests.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
	// Seed runs after migrations, typically to install demo or reference
	// rows. Optional.
	Seed func(context.Context, *sqlx.DB) error
}

func (o Options) loggerInit() func(*coreconfig.Config) error {
	if o.LoggerInit != nil {
		return o.LoggerInit
	}
	return logger.InitLogger
}

func (o Options) connect() func(coredatabase.Config) (*sqlx.DB, error) {
	if o.Connect != nil {
		return o.Connect
	}
	return coredatabase.Connect
}

func (o Options) migrate() func(coredatabase.Config) error {
	if o.Migrate != nil {
		return o.Migrate
	}
	return coredatabase.RunMigrations
}

// Result exposes infrastructure initialized by the pipeline. DB is nil when
// no database is configured.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger and, when a database is configured, connects,
// migrates and seeds it. A failure after the connect closes the database
// before returning.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config")
	}
	if err := opts.loggerInit()(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init: %w", err)
	}

	if !opts.Database.Configured() {
		logger.Info(ctx, "app", "db.skipped")
		return &Result{}, nil
	}

	db, err := opts.connect()(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect database: %w", err)
	}
	if err := opts.migrate()(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: run migrations: %w", err)
	}
	if opts.Seed != nil {
		if err := opts.Seed(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: seed: %w", err)
		}
	}
	return &Result{DB: db}, nil
}
