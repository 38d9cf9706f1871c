// Package cmd carries the shared process scaffolding for pagekit binaries:
// config resolution, bootstrap, signal handling and logger shutdown.
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/m3rciful/pagekit/core/bootstrap"
	coreconfig "github.com/m3rciful/pagekit/core/config"
	"github.com/m3rciful/pagekit/core/logger"
)

// Options describe how to load configuration, bootstrap services, and run
// the bot loop.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (*coreconfig.Config, error)
	Bootstrap  func(ctx context.Context, cfg *coreconfig.Config) (*bootstrap.Result, error)
	Run        func(ctx context.Context, cfg *coreconfig.Config, res *bootstrap.Result) error

	ShutdownLogger func() error
}

func (o Options) validate() error {
	switch {
	case o.LoadConfig == nil:
		return fmt.Errorf("cmd: LoadConfig is required")
	case o.Bootstrap == nil:
		return fmt.Errorf("cmd: Bootstrap is required")
	case o.Run == nil:
		return fmt.Errorf("cmd: Run is required")
	}
	return nil
}

// configPath resolves the config file location: the env var named by
// ConfigEnvVar (CONFIG_PATH when unset) wins over DefaultConfigPath.
func (o Options) configPath() (string, error) {
	env := o.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	path := os.Getenv(env)
	if path == "" {
		path = o.DefaultConfigPath
	}
	if path == "" {
		return "", fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
	}
	return path, nil
}

func (o Options) shutdownLogger() func() error {
	if o.ShutdownLogger != nil {
		return o.ShutdownLogger
	}
	return logger.Shutdown
}

// Run resolves the config path, loads configuration, bootstraps services and
// hands control to the Run hook under a signal-cancelled context. The logger
// is flushed and the database closed on the way out.
func Run(opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	cfgPath, err := opts.configPath()
	if err != nil {
		return err
	}

	log.Printf("using config %s", cfgPath)
	startedAt := time.Now()

	cfg, err := opts.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	defer func() {
		if err := opts.shutdownLogger()(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()
	if res != nil && res.DB != nil {
		defer closeDB(res)
	}

	if logger.TraceEnabled() {
		logger.Warn(ctx, "app", "trace override active")
	}
	logger.Info(ctx, "app", "ready",
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	err = opts.Run(ctx, cfg, res)

	logger.Info(logger.Background(), "app", "shutdown")
	return err
}

func closeDB(res *bootstrap.Result) {
	if err := res.DB.Close(); err != nil {
		logger.Warn(logger.Background(), "db", "close failed",
			slog.String("err", logger.Sanitize(err.Error())),
		)
	}
}
