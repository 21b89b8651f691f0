// Package trends charts periodic properties of the elements against atomic
// number.
package trends

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"slices"

	"github.com/jreel/js-chem/pkg/elements"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrUnknownProperty is returned for a Property that cannot be charted.
var ErrUnknownProperty = errors.New("unknown property")

// ErrNoData is returned when no element has a known value for a property.
var ErrNoData = errors.New("no data for property")

// Property is a numeric element property.
type Property string

const (
	Mass       Property = "mass"
	Electroneg Property = "electroneg"
	Melting    Property = "melting"
	Boiling    Property = "boiling"
	Valence    Property = "valence"
)

// Properties lists every chartable property.
var Properties = []Property{Mass, Electroneg, Melting, Boiling, Valence}

var labels = map[Property]string{
	Mass:       "Atomic mass (u)",
	Electroneg: "Electronegativity (Pauling)",
	Melting:    "Melting point (K)",
	Boiling:    "Boiling point (K)",
	Valence:    "Valence electrons",
}

// ParseProperty validates s as a Property.
func ParseProperty(s string) (Property, error) {
	p := Property(s)
	if !slices.Contains(Properties, p) {
		return "", fmt.Errorf("%w: %q", ErrUnknownProperty, s)
	}
	return p, nil
}

// Label returns the axis label for p.
func (p Property) Label() string {
	return labels[p]
}

// Value returns the property of e. ok is false when the value is unknown,
// which the dataset records as zero.
func (p Property) Value(e elements.Element) (v float64, ok bool) {
	switch p {
	case Mass:
		v = e.Mass
	case Electroneg:
		v = e.Electroneg
	case Melting:
		v = e.Melting
	case Boiling:
		v = e.Boiling
	case Valence:
		return float64(e.Valence), true
	}
	return v, v > 0
}

// Points returns (atomic number, value) pairs for the elements with a known
// value of p.
func Points(els []elements.Element, p Property) (plotter.XYs, error) {
	if _, err := ParseProperty(string(p)); err != nil {
		return nil, err
	}
	pts := make(plotter.XYs, 0, len(els))
	for _, e := range els {
		if v, ok := p.Value(e); ok {
			pts = append(pts, plotter.XY{X: float64(e.Number), Y: v})
		}
	}
	return pts, nil
}

// Summary describes the distribution of a property.
type Summary struct {
	Property    Property `json:"property"`
	Count       int      `json:"count"`
	Mean        float64  `json:"mean"`
	StdDev      float64  `json:"std_dev"`
	Min         float64  `json:"min"`
	Max         float64  `json:"max"`
	Correlation float64  `json:"correlation"` // with atomic number
}

// Summarize computes a Summary of p over els.
func Summarize(els []elements.Element, p Property) (Summary, error) {
	pts, err := Points(els, p)
	if err != nil {
		return Summary{}, err
	}
	if len(pts) == 0 {
		return Summary{}, fmt.Errorf("%w: %s", ErrNoData, p)
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = pt.X, pt.Y
	}
	s := Summary{Property: p, Count: len(pts), Min: slices.Min(ys), Max: slices.Max(ys)}
	s.Mean, s.StdDev = stat.MeanStdDev(ys, nil)
	if len(pts) < 2 {
		s.StdDev = 0
		return s, nil
	}
	// Zero variance in either series leaves the correlation undefined.
	if c := stat.Correlation(xs, ys, nil); !math.IsNaN(c) && !math.IsInf(c, 0) {
		s.Correlation = c
	}
	return s, nil
}

// Plot draws p against atomic number as a line with a marker per element
// and writes the chart to w. format is an image format understood by
// gonum/plot, such as "svg" or "png".
func Plot(w io.Writer, els []elements.Element, p Property, format string) error {
	pts, err := Points(els, p)
	if err != nil {
		return err
	}
	if len(pts) == 0 {
		return fmt.Errorf("%w: %s", ErrNoData, p)
	}

	pl := plot.New()
	pl.Title.Text = p.Label()
	pl.Title.Padding = vg.Millimeters(3)
	pl.X.Label.Text = "Atomic number"
	pl.Y.Label.Text = p.Label()
	pl.X.Min = 0
	pl.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("could not build chart: %w", err)
	}
	line.Color = color.RGBA{R: 0x42, G: 0x7b, B: 0xd2, A: 0xff}
	points.GlyphStyle.Color = color.RGBA{R: 0xd7, G: 0x30, B: 0x1f, A: 0xff}
	points.GlyphStyle.Radius = vg.Points(1.5)
	pl.Add(line, points)

	wt, err := pl.WriterTo(6*vg.Inch, 4*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("could not render %s chart: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}
