package periodic

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

var (
	cellStyle   = lipgloss.NewStyle().Width(4).Align(lipgloss.Center).Foreground(lipgloss.Color("#000000"))
	blankStyle  = lipgloss.NewStyle().Width(4)
	markerStyle = lipgloss.NewStyle().Width(4).Align(lipgloss.Center).Faint(true)
)

// RenderTerminal renders grid as coloured text for a terminal. Only the
// symbol and number info fields are shown; the shade option picks the cell
// background.
func RenderTerminal(grid *Grid, opts Options) string {
	lo, hi := enRange(grid)
	showNumber := false
	for _, f := range opts.Info {
		if f == InfoNumber {
			showNumber = true
		}
	}

	rows := make([]string, 0, grid.Rows)
	for r := 1; r <= grid.Rows; r++ {
		cells := make([]string, 0, grid.Cols)
		for _, cell := range grid.Row(r) {
			cells = append(cells, terminalCell(cell, opts.Shade, lo, hi, showNumber))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func terminalCell(cell Cell, shade string, lo, hi float64, showNumber bool) string {
	height := 1
	if showNumber {
		height = 2
	}
	switch {
	case cell.Element != nil:
		text := cell.Element.Symbol
		if showNumber {
			text = strconv.Itoa(cell.Element.Number) + "\n" + text
		}
		style := cellStyle.Height(height)
		if bg := background(cell.Element, shade, lo, hi, false); bg != "" {
			style = style.Background(lipgloss.Color(bg))
		} else {
			style = style.UnsetForeground()
		}
		return style.Render(text)
	case cell.Marker != "":
		return markerStyle.Height(height).Render(cell.Marker)
	}
	return blankStyle.Height(height).Render("")
}
