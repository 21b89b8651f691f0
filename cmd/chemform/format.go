package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jreel/js-chem/pkg/chemform"
	"github.com/spf13/cobra"
)

// FormatOptions holds the flags of the format command.
type FormatOptions struct {
	MaxSteps int
	JSON     bool
	Trim     bool
}

type formatOutput struct {
	Input string `json:"input"`
	HTML  string `json:"html"`
}

// NewFormatCommand creates the format command.
func NewFormatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormatOptions{}

	cmd := &cobra.Command{
		Use:   "format [formula...]",
		Short: "Format chemical formulas as HTML",
		Long: `Format each argument as HTML, one result per line. Without arguments
every line of standard input is formatted.`,
		Example: `  chemform format "H2SO4" "[NH4]+"
  echo "2 H2 + O2 --> 2 H2O" | chemform format`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := chemform.NewFormatter(
				chemform.WithMaxSteps(opts.MaxSteps),
				chemform.WithLogger(rootOpts.logger),
			)
			if len(args) > 0 {
				return writeFormatted(cmd.OutOrStdout(), f, opts, args)
			}
			inputs, err := readLines(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			return writeFormatted(cmd.OutOrStdout(), f, opts, inputs)
		},
	}

	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", chemform.DefaultMaxSteps, "rewrite step budget per formula")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print a JSON array of {input, html} objects")
	cmd.Flags().BoolVar(&opts.Trim, "trim", false, "drop the leading space of each result")

	return cmd
}

func writeFormatted(w io.Writer, f *chemform.Formatter, opts *FormatOptions, inputs []string) error {
	results := make([]formatOutput, 0, len(inputs))
	for _, input := range inputs {
		html := f.Format(input)
		if opts.Trim && len(html) > 0 && html[0] == ' ' {
			html = html[1:]
		}
		results = append(results, formatOutput{Input: input, HTML: html})
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		if _, err := fmt.Fprintln(w, r.HTML); err != nil {
			return err
		}
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
