package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jreel/js-chem/pkg/trends"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

// NewTrendCommand creates the trend command.
func NewTrendCommand(rootOpts *RootOptions) *cobra.Command {
	var out string
	var summary bool

	cmd := &cobra.Command{
		Use:   "trend PROPERTY",
		Short: "Plot a property against atomic number",
		Long: `Plot PROPERTY (mass, electroneg, melting, boiling or valence) against
atomic number. The chart format follows the --out extension (.svg or
.png). With --summary the distribution statistics are printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := trends.ParseProperty(args[0])
			if err != nil {
				return err
			}
			ds, err := rootOpts.dataset()
			if err != nil {
				return err
			}

			if summary {
				s, err := trends.Summarize(ds.All(), p)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			if out == "" {
				return fmt.Errorf("--out is required unless --summary is set")
			}
			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			var buf bytes.Buffer
			if err = trends.Plot(&buf, ds.All(), p, format); err != nil {
				return err
			}
			size := uint64(buf.Len())
			if err = atomic.WriteFile(out, &buf); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", out, humanize.Bytes(size))
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "chart file (.svg or .png)")
	cmd.Flags().BoolVar(&summary, "summary", false, "print summary statistics as JSON")

	return cmd
}
