package main

import (
	"fmt"

	"github.com/jreel/js-chem/pkg/lewis"
	"github.com/spf13/cobra"
)

// NewAtomCommand creates the atom command.
func NewAtomCommand(rootOpts *RootOptions) *cobra.Command {
	var x, y int

	cmd := &cobra.Command{
		Use:   "atom SYMBOL [SYMBOL...]",
		Short: "Draw Lewis dot atoms as a draggable SVG document",
		Long: `Draw each atom as a circle with its valence electrons. Every atom is
placed at --x/--y, shifted right by three radii per preceding atom.`,
		Example: `  chemform atom O --x 40 --y 40 > oxygen.svg
  chemform atom H O H`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if x < 0 || y < 0 {
				return fmt.Errorf("position must not be negative, got %d,%d", x, y)
			}
			ds, err := rootOpts.dataset()
			if err != nil {
				return err
			}

			atoms := make([]lewis.Atom, 0, len(args))
			for i, symbol := range args {
				el, ok := ds.Get(symbol)
				if !ok {
					return fmt.Errorf("unknown element %q", symbol)
				}
				atoms = append(atoms, lewis.NewAtom(el, x+i*3*lewis.DefaultRadius, y))
			}

			last := atoms[len(atoms)-1]
			width := last.X + last.Radius*2
			height := last.Y + last.Radius*2
			ids := lewis.Document(cmd.OutOrStdout(), width, height, atoms...)
			rootOpts.logger.Debug("Drew atoms", "ids", ids, "width", width, "height", height)
			return nil
		},
	}

	cmd.Flags().IntVar(&x, "x", 2*lewis.DefaultRadius, "x of the first atom centre")
	cmd.Flags().IntVar(&y, "y", 2*lewis.DefaultRadius, "y of the atom centres")

	return cmd
}
