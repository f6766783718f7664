package cli

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/sqlmapper/internal/app"
	"github.com/joacominatel/sqlmapper/internal/config"
	"github.com/joacominatel/sqlmapper/internal/database/postgres"
	"github.com/joacominatel/sqlmapper/internal/logging"
	"github.com/joacominatel/sqlmapper/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runTUI(cmd *cobra.Command, dsn string) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}

	// The screen owns stdout and stderr, so the TUI always logs to a file.
	logFile := cfg.Log.File
	if logFile == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		logFile = filepath.Join(dir, config.DefaultLogFile)
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: logFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	driver := postgres.New()
	service, err := app.NewServiceFromConfig(cfg, driver, logger)
	if err != nil {
		return err
	}
	defer func() { _ = service.Disconnect() }()

	logger.Info("starting terminal UI", zap.Bool("dsn", dsn != ""))

	p := tea.NewProgram(tui.NewModel(service, cfg, dsn, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	_, err = p.Run()
	return err
}
