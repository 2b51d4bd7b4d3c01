// Command otcctl runs dashboard operations from the shell: CSV imports,
// calculation method switches and analytics refreshes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/otc/internal/config"
	"github.com/JonMunkholm/otc/internal/core"
	"github.com/JonMunkholm/otc/internal/database"
	"github.com/JonMunkholm/otc/internal/logging"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "otcctl",
		Short:        "Manage OTC orders and project analytics",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load before reading configuration")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(
		newImportCmd(opts),
		newProjectsCmd(opts),
		newCalcMethodCmd(opts),
		newRefreshViewsCmd(opts),
	)
	return cmd
}

// session is a connected service for one command run.
type session struct {
	cfg     *config.Config
	service *core.Service
	close   func()
}

func (o *rootOptions) connect(ctx context.Context) (*session, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	_, closer := logging.Setup(cfg.Logging)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		closer.Close()
		return nil, err
	}

	service := core.NewService(pool, core.Options{
		MaxFileSize:    cfg.Import.MaxFileSize,
		BatchSize:      cfg.Import.BatchSize,
		BatchPause:     cfg.Import.BatchPause,
		MaxConcurrent:  cfg.Import.MaxConcurrent,
		MaxWait:        cfg.Import.MaxWaitTime,
		ImportTimeout:  cfg.Import.Timeout,
		RefreshTimeout: cfg.Analytics.RefreshTimeout,
	})

	return &session{
		cfg:     cfg,
		service: service,
		close: func() {
			pool.Close()
			closer.Close()
		},
	}, nil
}

// describe renders err with its user code for the terminal.
func describe(err error) error {
	msg := core.MapError(err)
	if msg.Action == "" {
		return fmt.Errorf("%s [%s]: %w", msg.Message, msg.Code, err)
	}
	return fmt.Errorf("%s [%s]. %s: %w", msg.Message, msg.Code, msg.Action, err)
}
