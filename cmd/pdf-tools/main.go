// Package main provides the PDF tools operator CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/config"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/observability"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/pdf"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/storage"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/tools"
)

// app carries the state shared by every command once flags are parsed.
type app struct {
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *observability.Logger
	ui     *UI
	store  *storage.ArtifactStore
	svc    *tools.Service
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pdf-tools",
		Short: "PDF tools CLI for local document operations and artifact retention",
		Long: `pdf-tools runs the same document operations as the API against local files
and writes the results into the configured storage root.

Use this tool to:
- Merge, split, compress, protect, and convert documents
- Run a one-off retention sweep of expired artifacts`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newSweepCmd(a))
	root.AddCommand(newMergeCmd(a))
	root.AddCommand(newSplitCmd(a))
	root.AddCommand(newCompressCmd(a))
	root.AddCommand(newProtectCmd(a))
	root.AddCommand(newConvertCmd(a))

	return root
}

func (a *app) init(stdout, stderr io.Writer) error {
	var err error
	a.cfg, err = config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.logger = observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      stderr,
		ServiceName: "pdf-tools-cli",
	})
	a.ui = NewUI(stdout, stderr, a.noColor)

	a.store, err = storage.NewArtifactStore(a.cfg.Storage.Root, a.cfg.RetentionPolicy().Categories, a.logger)
	if err != nil {
		return err
	}

	a.svc, err = tools.NewService(tools.Config{
		Store:  a.store,
		Logger: a.logger,
		Compress: pdf.CompressOptions{
			DPI:          a.cfg.Compress.DPI,
			MaxDimension: a.cfg.Compress.MaxDimension,
			JPEGQuality:  a.cfg.Compress.JPEGQuality,
		},
	})
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
