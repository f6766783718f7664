package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joacominatel/sqlmapper/internal/app"
	"github.com/joacominatel/sqlmapper/internal/database/postgres"
	"github.com/joacominatel/sqlmapper/internal/sqlmap"
	"github.com/spf13/cobra"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	File    string
	Dialect string
	Out     string
	Format  string
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate mapping scripts and schemas for a SQL statement",
		Long: `Read a SELECT statement and print the input mapping, input schema, result
mapping, result schema, column names and attribute names derived from it.

The dialect is detected from the parameter markers (@name for PostgreSQL,
:name for MySQL) unless --dialect is given.`,
		Example: `  # Analyze a file
  sqlmapper generate --file query.sql

  # Read from stdin and print JSON
  cat query.sql | sqlmapper generate --format json

  # Write one file per artifact
  sqlmapper generate --file query.sql --out ./mapping`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "SQL file to read (default: stdin)")
	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "Force the dialect (postgres|mysql)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Directory to write the artifact files to")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "Output format (text|json)")

	_ = cmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"postgres", "mysql"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	if opts.Format != "text" && opts.Format != "json" {
		return fmt.Errorf("unknown format %q (use text or json)", opts.Format)
	}

	dialect, err := sqlmap.ParseDialect(opts.Dialect)
	if err != nil {
		return err
	}

	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sql, err := readInput(cmd, opts.File)
	if err != nil {
		return err
	}

	service, err := app.NewServiceFromConfig(cfg, postgres.New(), logger)
	if err != nil {
		return err
	}
	a := service.AnalyzeAs(sql, dialect)

	if opts.Out != "" {
		paths, err := service.Export(opts.Out, a)
		if err != nil {
			return err
		}
		for _, p := range paths {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	return renderText(cmd.OutOrStdout(), a)
}

func renderText(w io.Writer, a sqlmap.Analysis) error {
	if _, err := fmt.Fprintf(w, "Dialect: %s\n", a.Dialect.DisplayName()); err != nil {
		return err
	}
	for _, f := range app.Files(a) {
		if _, err := fmt.Fprintf(w, "\n== %s ==\n%s\n", f.Name, f.Content); err != nil {
			return err
		}
	}
	return nil
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
