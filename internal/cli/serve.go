package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joacominatel/sqlmapper/internal/api"
	"github.com/joacominatel/sqlmapper/internal/app"
	"github.com/joacominatel/sqlmapper/internal/database/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr string
	DSN  string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer and the JSON mapper over HTTP",
		Long: `Start a JSON API exposing the SQL mapper, the JSON mapper and, when a
PostgreSQL connection string is given, statement describe.`,
		Example: `  # Offline API on the configured address
  sqlmapper serve

  # With describe support
  sqlmapper serve --addr :9090 --dsn postgres://localhost/app`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default: server.addr from config)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "PostgreSQL connection string for describe (default: server.dsn from config)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	dsn := opts.DSN
	if dsn == "" {
		dsn = cfg.Server.DSN
	}

	service, err := app.NewServiceFromConfig(cfg, postgres.New(), logger)
	if err != nil {
		return err
	}
	defer func() { _ = service.Disconnect() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dsn != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := service.Connect(connectCtx, dsn)
		cancel()
		if err != nil {
			return err
		}
	} else {
		logger.Info("no database configured, describe is disabled")
	}

	srv := api.NewServer(api.Config{
		Addr:    addr,
		Service: service,
		Logger:  logger,
	})
	if err := srv.Serve(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
