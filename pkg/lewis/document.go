package lewis

import (
	_ "embed"
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
)

//go:embed assets/drag.js
var dragScript string

// DragScript returns the browser script that moves atom groups.
func DragScript() string {
	return dragScript
}

// Document writes a standalone <svg> of the given size holding atoms and the
// drag script. Group ids are the symbol followed by a per-symbol counter
// ("O1", "C1", "C2"), which keeps the output stable. The ids are returned in
// the order of atoms.
func Document(w io.Writer, width, height int, atoms ...Atom) []string {
	canvas := svg.New(w)
	canvas.Start(width, height, `class="lewis"`)
	canvas.Script("application/javascript", dragScript)

	seen := make(map[string]int)
	ids := make([]string, 0, len(atoms))
	for _, a := range atoms {
		seen[a.Symbol]++
		gid := fmt.Sprintf("%s%d", a.Symbol, seen[a.Symbol])
		if a.Radius <= 0 {
			a.Radius = DefaultRadius
		}
		build(canvas, a, gid)
		ids = append(ids, gid)
	}
	canvas.End()
	return ids
}
