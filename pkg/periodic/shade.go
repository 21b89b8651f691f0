package periodic

import (
	"github.com/jreel/js-chem/pkg/elements"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	enLow    = mustHex("#fff7bc")
	enHigh   = mustHex("#d7301f")
	greyLow  = mustHex("#f7f7f7")
	greyHigh = mustHex("#525252")
)

// Fallback colours for terminals, which cannot load the stylesheet.
var (
	typeColors = map[string]string{
		"alkali-metal":          "#ff6666",
		"alkaline-earth-metal":  "#ffdead",
		"transition-metal":      "#ffc0c0",
		"post-transition-metal": "#cccccc",
		"metalloid":             "#cccc99",
		"nonmetal":              "#a0ffa0",
		"halogen":               "#ffff99",
		"noble-gas":             "#c0ffff",
		"lanthanide":            "#ffbfff",
		"actinide":              "#ff99cc",
	}
	blockColors = map[string]string{
		"s": "#ff9999",
		"p": "#ffff99",
		"d": "#99ccff",
		"f": "#99ff99",
	}
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// enRange returns the smallest and largest known electronegativity in g.
func enRange(g *Grid) (lo, hi float64) {
	for _, c := range g.cells {
		if c.Element == nil || c.Element.Electroneg <= 0 {
			continue
		}
		en := c.Element.Electroneg
		if lo == 0 || en < lo {
			lo = en
		}
		if en > hi {
			hi = en
		}
	}
	return lo, hi
}

// gradient maps an electronegativity onto a colour between low and high,
// blended in Lab space. ok is false for elements without a known value.
func gradient(e *elements.Element, lo, hi float64, low, high colorful.Color) (hex string, ok bool) {
	if e.Electroneg <= 0 {
		return "", false
	}
	t := 0.0
	if hi > lo {
		t = (e.Electroneg - lo) / (hi - lo)
	}
	return low.BlendLab(high, t).Clamped().Hex(), true
}

// background returns the fill colour for e under shade, or "" when the shade
// is left to the stylesheet.
func background(e *elements.Element, shade string, lo, hi float64, stylesheet bool) string {
	switch shade {
	case ShadeElectroneg:
		hex, _ := gradient(e, lo, hi, enLow, enHigh)
		return hex
	case ShadeBW:
		hex, _ := gradient(e, lo, hi, greyLow, greyHigh)
		return hex
	case ShadeType:
		if !stylesheet {
			return typeColors[e.Type]
		}
	case ShadeBlock:
		if !stylesheet {
			return blockColors[e.Block]
		}
	}
	return ""
}
