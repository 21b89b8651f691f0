package main

import (
	"fmt"

	"github.com/jreel/js-chem/pkg/periodic"
	"github.com/spf13/cobra"
)

// NewTableCommand creates the table command.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	def := periodic.DefaultOptions()
	var (
		size string
		html bool
	)
	opts := def

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Render a periodic table",
		Long: `Render a periodic table in the terminal, or as an HTML fragment with
--html. Sizes: typical, long, compact, main, leftstep.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Size = periodic.Size(size)
			if err := opts.Validate(); err != nil {
				return err
			}
			ds, err := rootOpts.dataset()
			if err != nil {
				return err
			}
			grid, err := periodic.Layout(ds.All(), opts.Size)
			if err != nil {
				return err
			}
			if html {
				return periodic.RenderHTML(cmd.OutOrStdout(), grid, opts)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), periodic.RenderTerminal(grid, opts))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", def.ID, "table id of the HTML output")
	cmd.Flags().StringVar(&size, "size", string(def.Size), "table layout")
	cmd.Flags().StringSliceVar(&opts.Info, "info", def.Info, "info fields shown in each cell")
	cmd.Flags().StringVar(&opts.Shade, "shade", def.Shade, "cell shading (type|block|electroneg|bw or empty)")
	cmd.Flags().StringVar(&opts.Border, "border", def.Border, "cell border (occurrence|phase|block|type or empty)")
	cmd.Flags().BoolVar(&html, "html", false, "write an HTML fragment instead of terminal output")

	return cmd
}
