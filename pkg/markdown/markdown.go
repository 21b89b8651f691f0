// Package markdown renders lesson pages written in Markdown, turning inline
// \ce{...} spans into formatted chemical formulas.
//
//	The reaction \ce{2 H2 + O2 -> 2 H2O} releases heat.
//
// renders the formula with subscripts and an arrow inside
// <span class="chem">.
package markdown

import (
	"bytes"
	"io"
	"strings"

	"github.com/jreel/js-chem/pkg/chemform"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindFormula is the node kind of a \ce{...} span.
var KindFormula = ast.NewNodeKind("Formula")

// Formula is an inline node holding the raw text of a \ce{...} span.
type Formula struct {
	ast.BaseInline
	Source string
}

// Kind implements ast.Node.
func (n *Formula) Kind() ast.NodeKind {
	return KindFormula
}

// Dump implements ast.Node.
func (n *Formula) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Source": n.Source}, nil)
}

var openTag = []byte(`\ce{`)

type formulaParser struct{}

func (formulaParser) Trigger() []byte {
	return []byte{'\\'}
}

// Parse reads \ce{...} up to the brace that balances the opening one. Spans
// that are not closed on the same line are left as text.
func (formulaParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, openTag) {
		return nil
	}
	depth := 0
	for i := len(openTag); i < len(line); i++ {
		switch line[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
				continue
			}
			src := string(line[len(openTag):i])
			block.Advance(i + 1)
			return &Formula{Source: src}
		case '\n':
			return nil
		}
	}
	return nil
}

type formulaRenderer struct {
	formatter *chemform.Formatter
}

func (r *formulaRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFormula, r.render)
}

func (r *formulaRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Formula)
	_, _ = w.WriteString(`<span class="chem">`)
	_, _ = w.WriteString(strings.TrimPrefix(r.formatter.Format(n.Source), " "))
	_, _ = w.WriteString(`</span>`)
	return ast.WalkSkipChildren, nil
}

// Chem is a goldmark extension for \ce{...} spans.
type Chem struct {
	Formatter *chemform.Formatter
}

// Extension is the \ce{...} extension using the default rule table.
var Extension = &Chem{}

// Extend implements goldmark.Extender.
func (e *Chem) Extend(m goldmark.Markdown) {
	f := e.Formatter
	if f == nil {
		f = chemform.NewFormatter()
	}
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(formulaParser{}, 150),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&formulaRenderer{formatter: f}, 150),
	))
}

// New returns a goldmark instance with GitHub flavoured Markdown and the
// \ce{...} extension. Raw HTML in the source is passed through.
func New(f *chemform.Formatter) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, &Chem{Formatter: f}),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

var std = New(nil)

// Convert renders src as HTML to w.
func Convert(src []byte, w io.Writer) error {
	return std.Convert(src, w)
}

// ConvertString renders src and returns the HTML.
func ConvertString(src string) (string, error) {
	var buf bytes.Buffer
	if err := Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
