package templating

import (
	"bytes"
	"fmt"
	"html/template"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jreel/js-chem/pkg/elements"
	"github.com/jreel/js-chem/pkg/lewis"
	"github.com/jreel/js-chem/pkg/periodic"
	"github.com/jreel/js-chem/pkg/trends"
)

// atomMargin leaves room around an atom for its outermost dots.
const atomMargin = 12

// chemform formats a formula or equation. Input over MaxFormulaLength is
// escaped and returned unformatted.
func (tm *TemplateManager) chemform(input string) template.HTML {
	if len(input) > tm.config.MaxFormulaLength {
		tm.logger.Warn("Formula exceeds length limit, not formatted",
			"length", len(input), "limit", tm.config.MaxFormulaLength)
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(strings.TrimPrefix(tm.formatter.Format(input), " "))
}

// periodicTable renders a table with the given id. Each option is a
// key=value pair overriding the configured defaults: size, info (comma
// separated), shade or border.
func (tm *TemplateManager) periodicTable(id string, options ...string) (template.HTML, error) {
	opts := tm.config.Table
	opts.ID = id
	opts.Info = slices.Clone(opts.Info)
	for _, o := range options {
		key, value, ok := strings.Cut(o, "=")
		if !ok {
			return "", fmt.Errorf("periodicTable: option %q is not key=value", o)
		}
		switch key {
		case "size":
			opts.Size = periodic.Size(value)
		case "info":
			opts.Info = strings.Split(value, ",")
		case "shade":
			opts.Shade = value
		case "border":
			opts.Border = value
		default:
			return "", fmt.Errorf("periodicTable: unknown option %q", key)
		}
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	grid, err := periodic.Layout(tm.dataset.All(), opts.Size)
	if err != nil {
		return "", err
	}
	out, err := periodic.RenderHTMLString(grid, opts)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

// atom draws a single draggable atom centred at (x, y) on a canvas just
// large enough to hold it.
func (tm *TemplateManager) atom(symbol string, x, y int) (template.HTML, error) {
	el, err := tm.element(symbol)
	if err != nil {
		return "", err
	}
	a := lewis.NewAtom(el, x, y)
	extent := a.Radius + atomMargin
	return tm.drawAtoms(x+extent, y+extent, []lewis.Atom{a})
}

// lewis draws several draggable atoms on one canvas. Each placement has the form
// SYMBOL@X,Y, for example "O@120,80".
func (tm *TemplateManager) lewis(width, height int, placements ...string) (template.HTML, error) {
	if len(placements) > tm.config.MaxAtoms {
		return "", fmt.Errorf("lewis: %d atoms requested, limit is %d", len(placements), tm.config.MaxAtoms)
	}
	atoms := make([]lewis.Atom, 0, len(placements))
	for _, p := range placements {
		symbol, pos, ok := strings.Cut(p, "@")
		if !ok {
			return "", fmt.Errorf("lewis: atom %q is not SYMBOL@X,Y", p)
		}
		xs, ys, ok := strings.Cut(pos, ",")
		if !ok {
			return "", fmt.Errorf("lewis: atom %q is not SYMBOL@X,Y", p)
		}
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX != nil || errY != nil {
			return "", fmt.Errorf("lewis: atom %q has a non-integer position", p)
		}
		el, err := tm.element(symbol)
		if err != nil {
			return "", err
		}
		atoms = append(atoms, lewis.NewAtom(el, x, y))
	}
	return tm.drawAtoms(width, height, atoms)
}

func (tm *TemplateManager) drawAtoms(width, height int, atoms []lewis.Atom) (template.HTML, error) {
	limit := tm.config.MaxCanvasSize
	if width <= 0 || height <= 0 || width > limit || height > limit {
		return "", fmt.Errorf("lewis: canvas %dx%d outside 1..%d", width, height, limit)
	}
	var buf bytes.Buffer
	lewis.Document(&buf, width, height, atoms...)
	return inlineSVG(buf.Bytes()), nil
}

// element looks up an element by symbol.
func (tm *TemplateManager) element(symbol string) (elements.Element, error) {
	el, ok := tm.dataset.Get(symbol)
	if !ok {
		return elements.Element{}, fmt.Errorf("%w: %q", elements.ErrNotFound, symbol)
	}
	return el, nil
}

// elements returns every element in atomic number order.
func (tm *TemplateManager) elements() []elements.Element {
	return tm.dataset.All()
}

// elementsWhere returns the elements whose field equals value. Supported
// fields are type, block, phase, occurrence, period and group.
func (tm *TemplateManager) elementsWhere(field, value string) ([]elements.Element, error) {
	var get func(elements.Element) string
	switch field {
	case "type":
		get = func(e elements.Element) string { return e.Type }
	case "block":
		get = func(e elements.Element) string { return e.Block }
	case "phase":
		get = func(e elements.Element) string { return e.Phase }
	case "occurrence":
		get = func(e elements.Element) string { return e.Occurrence }
	case "period":
		get = func(e elements.Element) string { return strconv.Itoa(e.Period) }
	case "group":
		get = func(e elements.Element) string { return e.Group }
	default:
		return nil, fmt.Errorf("elementsWhere: unknown field %q", field)
	}
	return tm.dataset.Filter(func(e elements.Element) bool {
		return strings.EqualFold(get(e), value)
	}), nil
}

// trend draws a property against atomic number as an inline SVG chart.
func (tm *TemplateManager) trend(property string) (template.HTML, error) {
	p, err := trends.ParseProperty(property)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err = trends.Plot(&buf, tm.dataset.All(), p, "svg"); err != nil {
		return "", err
	}
	return inlineSVG(buf.Bytes()), nil
}

// markdown renders src with \ce{...} formula spans.
func (tm *TemplateManager) markdown(src string) (template.HTML, error) {
	if len(src) > tm.config.MaxMarkdownSize {
		return "", fmt.Errorf("markdown: source of %d bytes exceeds limit of %d", len(src), tm.config.MaxMarkdownSize)
	}
	var buf bytes.Buffer
	if err := tm.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func formatMass(m float64) string {
	return periodic.FormatMass(m)
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

func ordinal(n int) string {
	return humanize.Ordinal(n)
}

// inlineSVG drops anything before the <svg> tag, such as the XML prolog,
// so the drawing can sit inside an HTML document.
func inlineSVG(b []byte) template.HTML {
	if i := bytes.Index(b, []byte("<svg")); i > 0 {
		b = b[i:]
	}
	return template.HTML(b)
}
