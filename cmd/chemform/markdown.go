package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jreel/js-chem/pkg/chemform"
	"github.com/jreel/js-chem/pkg/markdown"
	"github.com/spf13/cobra"
)

// NewMarkdownCommand creates the md command.
func NewMarkdownCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "md FILE",
		Short: `Render Markdown with \ce{...} formulas to HTML`,
		Long: `Render a Markdown file to HTML on standard output. Inline \ce{...}
spans are formatted as chemistry. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src []byte
			var err error
			if args[0] == "-" {
				src, err = io.ReadAll(cmd.InOrStdin())
			} else {
				src, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			md := markdown.New(chemform.NewFormatter(chemform.WithLogger(rootOpts.logger)))
			if err = md.Convert(src, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("rendering %s: %w", args[0], err)
			}
			return nil
		},
	}
	return cmd
}
