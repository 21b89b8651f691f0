package lewis

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/google/uuid"
	"github.com/jreel/js-chem/pkg/elements"
)

const (
	// DefaultRadius is the radius of an atom circle in pixels.
	DefaultRadius = 16
	// MaxValence is the number of dot positions around an atom.
	MaxValence = 8

	dotSize   = 3
	fontStyle = "font:bold 20px Arial;color:#000000"
)

// Atom is a drawable element.
type Atom struct {
	Symbol  string
	X       int
	Y       int
	Radius  int
	Color   string // CSS colour of the outer gradient stop
	Valence int
}

// NewAtom returns an Atom for el centred at (x, y).
func NewAtom(el elements.Element, x, y int) Atom {
	return Atom{
		Symbol:  el.Symbol,
		X:       x,
		Y:       y,
		Radius:  DefaultRadius,
		Color:   el.HexColor(),
		Valence: min(max(el.Valence, 0), MaxValence),
	}
}

// Point is an offset or position in SVG user units.
type Point struct {
	X, Y int
}

// DotPositions returns where the Lewis dots of a go, relative to its centre,
// in the order they are filled. Dots are paired on each side, right and left
// first, so that the first four electrons sit alone.
func (a Atom) DotPositions() []Point {
	r := a.Radius
	all := [MaxValence]Point{
		{r + 3, -6}, {-(r + 5), 6},
		{-6, -(r + 5)}, {6, r + 3},
		{6, -(r + 5)}, {-6, r + 3},
		{r + 3, 6}, {-(r + 5), -6},
	}
	n := min(max(a.Valence, 0), MaxValence)
	return append([]Point(nil), all[:n]...)
}

// NewID returns a random group id for an atom of the given symbol.
func NewID(symbol string) string {
	return symbol + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Build writes a as an SVG group with id gid, generating an id when gid is
// empty. The group is a fragment: it must be placed inside an <svg> element
// that also carries the drag script, see Document.
func Build(w io.Writer, a Atom, gid string) string {
	if gid == "" {
		gid = NewID(a.Symbol)
	}
	if a.Radius <= 0 {
		a.Radius = DefaultRadius
	}
	canvas := svg.New(w)
	build(canvas, a, gid)
	return gid
}

func build(canvas *svg.SVG, a Atom, gid string) {
	handlers := []string{`onmousedown="startMove(evt)"`, `onmouseup="endMove()"`}

	canvas.Group(append([]string{attr("id", gid), `transform="translate(0 0)"`}, handlers...)...)

	canvas.Def()
	canvas.RadialGradient(gid+"-grad", 50, 50, 50, 70, 30, []svg.Offcolor{
		{Offset: 0, Color: "rgb(255,255,255)", Opacity: 1},
		{Offset: 100, Color: a.Color, Opacity: 1},
	})
	canvas.DefEnd()

	canvas.Circle(a.X, a.Y, a.Radius,
		attr("id", gid+"-ball"), attr("fill", "url(#"+gid+"-grad)"), `stroke="none"`)
	canvas.Text(a.X, a.Y+2, a.Symbol,
		attr("id", gid+"-txt"), fontStyle, `text-anchor="middle"`, `dominant-baseline="middle"`)

	for i, p := range a.DotPositions() {
		canvas.Rect(a.X+p.X, a.Y+p.Y, dotSize, dotSize,
			attr("id", fmt.Sprintf("%s-dot%d", gid, i)), "fill:rgb(0,0,0)")
	}

	canvas.Rect(a.X-a.Radius, a.Y-a.Radius, 2*a.Radius, 2*a.Radius,
		append([]string{
			attr("id", gid+"-drag"), `class="draggable"`, "fill:grey;stroke-width:0;fill-opacity:0.1",
		}, handlers...)...)

	canvas.Gend()
}

// attr formats a quoted attribute for svgo, escaping the value.
func attr(name, value string) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(`="`)
	sb.WriteString(attrEscaper.Replace(value))
	sb.WriteByte('"')
	return sb.String()
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")
