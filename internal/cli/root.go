package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sleroq/things3-to-org/internal/app/console"
	"github.com/sleroq/things3-to-org/internal/app/exporter"
	"github.com/sleroq/things3-to-org/internal/config"
	"github.com/sleroq/things3-to-org/internal/infra/exportfs"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

func NewRootCmd() *cobra.Command {
	opts := config.Default()

	cmd := &cobra.Command{
		Use:           "things3-to-org",
		Short:         "Export a Things 3 database as Org mode outlines",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # One file per area in ~/Downloads/Things 3 export
  things3-to-org

  # Everything in one outline on stdout
  things3-to-org -f all -o -

  # One file per project, with debug logging in a live console
  things3-to-org -f project -o ~/org/things --console -v
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DatabasePath, "db", opts.DatabasePath, "Path to the Things database (env "+config.EnvDatabase+")")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", opts.OutputPath, `Output file for -f all ("-" for stdout), output directory otherwise (env `+config.EnvTarget+")")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", opts.Format, "Export format (all|area|project) (env "+config.EnvFormat+")")
	cmd.Flags().StringVar(&opts.FilenameEscaping, "filename-escaping", opts.FilenameEscaping, "Filename escaping rules (auto|posix|windows)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log every area, project and task")
	cmd.Flags().BoolVar(&opts.Console, "console", false, "Show the log in a live console until q is pressed")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "things3-to-org %s\n", Version)
			return err
		},
	}
}

func runExport(cmd *cobra.Command, opts config.Options) error {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	exp := exporter.Exporter{
		DatabasePath:     opts.DatabasePath,
		OutputPath:       opts.OutputPath,
		Format:           opts.Format,
		FilenameEscaping: opts.FilenameEscaping,
		Stdout:           cmd.OutOrStdout(),
	}

	var stats exporter.Stats
	var err error
	if opts.Console {
		err = console.Run(cmd.Context(), level, func(ctx context.Context, logger *slog.Logger) error {
			exp.Logger = logger
			var runErr error
			stats, runErr = exp.Run(ctx)
			return runErr
		})
	} else {
		exp.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		exp.Progress = !opts.Verbose
		stats, err = exp.Run(cmd.Context())
	}
	if err != nil {
		return classify(err)
	}

	if opts.OutputPath != exportfs.Stdout {
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d areas, %d projects, %d tasks into %d files\n",
			stats.Areas, stats.Projects, stats.Tasks, stats.Files)
	}
	return nil
}
