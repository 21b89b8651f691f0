package periodic

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jreel/js-chem/pkg/elements"
)

// RenderHTML writes grid as an HTML table. The table carries opts.ID, each
// row the id "<ID>-row-<r>" and each cell the id "<ID>r<r>c<c>". Element
// cells have the class "element" plus classes chosen by the shade and border
// options; type and block shading are left to the stylesheet while the
// electronegativity and bw gradients are written inline.
func RenderHTML(w io.Writer, grid *Grid, opts Options) error {
	if opts.Size == "" {
		opts.Size = grid.Size
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	lo, hi := enRange(grid)

	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintf(bw, "<table id=\"%s\" class=\"periodic-table size-%s\">\n", opts.ID, grid.Size)
	for r := 1; r <= grid.Rows; r++ {
		_, _ = fmt.Fprintf(bw, "<tr id=\"%s-row-%d\">", opts.ID, r)
		for _, cell := range grid.Row(r) {
			writeCell(bw, cell, opts, lo, hi)
		}
		_, _ = bw.WriteString("</tr>\n")
	}
	_, _ = bw.WriteString("</table>\n")
	return bw.Flush()
}

// RenderHTMLString is RenderHTML into a string.
func RenderHTMLString(grid *Grid, opts Options) (string, error) {
	var sb strings.Builder
	if err := RenderHTML(&sb, grid, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeCell(bw *bufio.Writer, cell Cell, opts Options, lo, hi float64) {
	id := fmt.Sprintf("%sr%dc%d", opts.ID, cell.Row, cell.Col)
	switch {
	case cell.Element != nil:
		e := cell.Element
		classes, style := cellClasses(e, opts, lo, hi), ""
		if bg := background(e, opts.Shade, lo, hi, true); bg != "" {
			style = fmt.Sprintf(` style="background-color:%s"`, bg)
		}
		_, _ = fmt.Fprintf(bw, `<td id="%s" class="%s" data-symbol="%s" title="%s"%s>`,
			id, strings.Join(classes, " "), html.EscapeString(e.Symbol), html.EscapeString(e.DisplayName()), style)
		for _, field := range opts.Info {
			value := infoValue(e, field)
			if value == "" {
				continue
			}
			_, _ = fmt.Fprintf(bw, `<span class="info-%s">%s</span>`, field, html.EscapeString(value))
		}
		_, _ = bw.WriteString("</td>")
	case cell.Marker != "":
		class := "marker"
		if cell.Series != "" {
			class += " " + cell.Series
		}
		_, _ = fmt.Fprintf(bw, `<td id="%s" class="%s">%s</td>`, id, class, cell.Marker)
	default:
		_, _ = fmt.Fprintf(bw, `<td id="%s"></td>`, id)
	}
}

func cellClasses(e *elements.Element, opts Options, lo, hi float64) []string {
	classes := []string{"element"}
	switch opts.Shade {
	case ShadeType:
		classes = append(classes, e.Type)
	case ShadeBlock:
		classes = append(classes, "block-"+e.Block)
	case ShadeElectroneg, ShadeBW:
		if e.Electroneg <= 0 {
			classes = append(classes, "no-en")
		}
	}
	switch opts.Border {
	case BorderOccurrence:
		classes = append(classes, e.Occurrence)
	case BorderPhase:
		classes = append(classes, "phase-"+e.Phase)
	case BorderBlock:
		classes = append(classes, "border-block-"+e.Block)
	case BorderType:
		classes = append(classes, "border-"+e.Type)
	}
	return classes
}

// infoValue formats one info field of e. Unknown numeric values give "".
func infoValue(e *elements.Element, field string) string {
	switch field {
	case InfoSymbol:
		return e.Symbol
	case InfoNumber:
		return strconv.Itoa(e.Number)
	case InfoName:
		return e.DisplayName()
	case InfoMass:
		return FormatMass(e.Mass)
	case InfoElectroneg:
		if e.Electroneg <= 0 {
			return ""
		}
		return strconv.FormatFloat(e.Electroneg, 'f', 2, 64)
	case InfoConfig:
		return e.Config
	case InfoValence:
		return strconv.Itoa(e.Valence)
	case InfoMelting:
		return formatKelvin(e.Melting)
	case InfoBoiling:
		return formatKelvin(e.Boiling)
	}
	return ""
}

// FormatMass formats an atomic mass. Whole numbers are the mass number of the
// most stable isotope and are shown in brackets.
func FormatMass(m float64) string {
	if m <= 0 {
		return ""
	}
	if m == float64(int64(m)) {
		return "[" + humanize.Comma(int64(m)) + "]"
	}
	return humanize.FtoaWithDigits(m, 4)
}

func formatKelvin(k float64) string {
	if k <= 0 {
		return ""
	}
	return humanize.Ftoa(k) + " K"
}
