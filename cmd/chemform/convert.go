package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jreel/js-chem/pkg/chemform"
	"github.com/jreel/js-chem/pkg/markdown"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

// ConvertOptions holds the flags of the convert command.
type ConvertOptions struct {
	OutDir  string
	InPlace bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert GLOB",
		Short: "Render every Markdown file matching GLOB to HTML",
		Long: `Render every Markdown file matching GLOB (which may use **) to an .html
file. With --out the files are written below DIR, keeping their path
relative to the glob's base directory. With --in-place each file is
written next to its source.`,
		Example: `  chemform convert "lessons/**/*.md" --out public/pages
  chemform convert "notes/*.md" --in-place`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.OutDir == "") == !opts.InPlace {
				return errors.New("exactly one of --out or --in-place is required")
			}
			return runConvert(cmd.OutOrStdout(), rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.OutDir, "out", "", "output directory")
	cmd.Flags().BoolVar(&opts.InPlace, "in-place", false, "write each .html file next to its source")

	return cmd
}

func runConvert(w io.Writer, rootOpts *RootOptions, opts *ConvertOptions, pattern string) error {
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	base, rel := doublestar.SplitPattern(pattern)

	matches, err := doublestar.Glob(os.DirFS(base), rel, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("expanding %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no files match %s", pattern)
	}

	md := markdown.New(chemform.NewFormatter(chemform.WithLogger(rootOpts.logger)))
	for _, match := range matches {
		src := filepath.Join(base, filepath.FromSlash(match))
		dst := strings.TrimSuffix(match, filepath.Ext(match)) + ".html"
		if opts.InPlace {
			dst = filepath.Join(base, filepath.FromSlash(dst))
		} else {
			dst = filepath.Join(opts.OutDir, filepath.FromSlash(dst))
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err = md.Convert(data, &buf); err != nil {
			return fmt.Errorf("rendering %s: %w", src, err)
		}
		if err = os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err = atomic.WriteFile(dst, &buf); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
		rootOpts.logger.Info("Converted", "src", src, "dst", dst)
		if _, err = fmt.Fprintln(w, dst); err != nil {
			return err
		}
	}
	return nil
}
