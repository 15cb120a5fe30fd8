package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/pagerange"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/retention"
	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/tools"
)

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired artifacts once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sched := retention.NewScheduler(a.store.Root(), a.cfg.RetentionPolicy(), a.logger)

			report, err := sched.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			if report.Skipped {
				a.ui.Warning("Another sweep holds the lock, nothing done")
				return nil
			}

			a.ui.Success("Sweep complete")
			a.ui.KeyValue("Root", a.store.Root())
			a.ui.KeyValue("Max age", a.cfg.Retention.MaxAge.String())
			a.ui.KeyValue("Scanned", fmt.Sprint(report.Scanned))
			a.ui.KeyValue("Deleted", fmt.Sprint(report.Deleted))
			if report.Failed > 0 {
				a.ui.Warning("%d file(s) could not be deleted", report.Failed)
			}
			return nil
		},
	}
}

func newMergeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge <file> <file> [file...]",
		Short: "Merge documents in the given order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readFiles(args)
			if err != nil {
				return err
			}
			res, err := withSpinner(a, "Merging documents...", func() (*tools.Result, error) {
				return a.svc.Merge(cmd.Context(), files)
			})
			if err != nil {
				return err
			}
			return a.report(res, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "copy the result to this path")
	return cmd
}

func newSplitCmd(a *app) *cobra.Command {
	var (
		output  string
		aliases pagerange.Aliases
	)
	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Extract the selected pages into a new document",
		Example: `  pdf-tools split report.pdf --pages "1,3-5"
  pdf-tools split report.pdf --selected-pages "[2,4]"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			res, err := withSpinner(a, "Splitting document...", func() (*tools.Result, error) {
				return a.svc.Split(cmd.Context(), file, aliases)
			})
			if err != nil {
				return err
			}
			return a.report(res, output)
		},
	}
	cmd.Flags().StringVar(&aliases.Pages, "pages", "", "page selection, e.g. 1,3-5")
	cmd.Flags().StringVar(&aliases.Ranges, "ranges", "", "alias for --pages")
	cmd.Flags().StringVar(&aliases.SelectedPages, "selected-pages", "", "JSON array of page numbers")
	cmd.Flags().StringVarP(&output, "output", "o", "", "copy the result to this path")
	return cmd
}

func newCompressCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compress <file>",
		Short: "Rasterize and recompress every page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			var bar *ProgressBar
			res, err := a.svc.CompressWithProgress(cmd.Context(), file, func(done, total int) {
				if bar == nil {
					bar = a.ui.NewProgressBar(int64(total), "Compressing")
				}
				bar.Set(int64(done))
			})
			if bar != nil {
				bar.Finish()
			}
			if err != nil {
				return err
			}
			return a.report(res, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "copy the result to this path")
	return cmd
}

func newProtectCmd(a *app) *cobra.Command {
	var output, password string
	cmd := &cobra.Command{
		Use:   "protect <file>",
		Short: "Encrypt a document with a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			res, err := withSpinner(a, "Encrypting document...", func() (*tools.Result, error) {
				return a.svc.Protect(cmd.Context(), file, password)
			})
			if err != nil {
				return err
			}
			return a.report(res, output)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "user and owner password")
	cmd.Flags().StringVarP(&output, "output", "o", "", "copy the result to this path")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var output, orientation string
	cmd := &cobra.Command{
		Use:   "convert <image> [image...]",
		Short: "Build a document with one page per image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := readFiles(args)
			if err != nil {
				return err
			}
			res, err := withSpinner(a, "Converting images...", func() (*tools.Result, error) {
				return a.svc.ConvertImages(cmd.Context(), images, orientation)
			})
			if err != nil {
				return err
			}
			return a.report(res, output)
		},
	}
	cmd.Flags().StringVar(&orientation, "orientation", "portrait", "portrait or landscape")
	cmd.Flags().StringVarP(&output, "output", "o", "", "copy the result to this path")
	return cmd
}

func readFiles(paths []string) ([][]byte, error) {
	files := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, data)
	}
	return files, nil
}

func withSpinner(a *app, msg string, fn func() (*tools.Result, error)) (*tools.Result, error) {
	s := a.ui.NewSpinner(msg)
	s.Start()
	res, err := fn()
	s.Stop()
	return res, err
}

// report prints the artifact summary and optionally copies it to output.
func (a *app) report(res *tools.Result, output string) error {
	art := res.Artifact
	path := filepath.Join(a.store.Dir(art.Category), art.Name)

	a.ui.Success("Created %s", art.Name)
	a.ui.KeyValue("Path", path)
	a.ui.KeyValue("Size", FormatBytes(art.Size))
	if res.OutputPages > 0 {
		a.ui.KeyValue("Pages", fmt.Sprint(res.OutputPages))
	}
	if res.OriginalSize > 0 {
		a.ui.KeyValue("Original", FormatBytes(res.OriginalSize))
		a.ui.KeyValue("Compressed", FormatBytes(res.CompressedSize))
		a.ui.KeyValue("Ratio", fmt.Sprintf("%.2f", res.CompressionRatio))
	}

	if output == "" {
		return nil
	}

	src, err := a.store.Open(art.Category, art.Name)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy to %s: %w", output, err)
	}
	if err := dst.Close(); err != nil {
		return err
	}
	a.ui.Info("Copied to %s", output)
	return nil
}
