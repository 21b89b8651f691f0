package elements

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/elements.yaml
var embeddedData []byte

// Dataset is an immutable, number-ordered collection of elements. It is safe
// for concurrent use.
type Dataset struct {
	elements []Element
	bySymbol map[string]int
}

// NewDataset validates els and returns them as a Dataset ordered by atomic
// number. Duplicate numbers or symbols are rejected.
func NewDataset(els []Element) (*Dataset, error) {
	sorted := make([]Element, len(els))
	copy(sorted, els)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	d := &Dataset{elements: sorted, bySymbol: make(map[string]int, len(sorted))}
	for i, e := range sorted {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].Number == e.Number {
			return nil, fmt.Errorf("%w: duplicate number %d", ErrInvalidElement, e.Number)
		}
		key := strings.ToLower(e.Symbol)
		if _, dup := d.bySymbol[key]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidElement, e.Symbol)
		}
		d.bySymbol[key] = i
	}
	return d, nil
}

// Parse decodes a YAML list of elements.
func Parse(r io.Reader) (*Dataset, error) {
	var els []Element
	if err := yaml.NewDecoder(r).Decode(&els); err != nil {
		return nil, fmt.Errorf("could not decode element data: %w", err)
	}
	return NewDataset(els)
}

var loadEmbedded = sync.OnceValues(func() (*Dataset, error) {
	return Parse(bytes.NewReader(embeddedData))
})

// Load returns the embedded dataset. It is parsed once and shared.
func Load() (*Dataset, error) {
	return loadEmbedded()
}

// MustLoad is like Load but panics if the embedded data is invalid.
func MustLoad() *Dataset {
	d, err := Load()
	if err != nil {
		panic(err)
	}
	return d
}

// Len returns the number of elements.
func (d *Dataset) Len() int {
	return len(d.elements)
}

// All returns a copy of the elements in atomic number order.
func (d *Dataset) All() []Element {
	out := make([]Element, len(d.elements))
	copy(out, d.elements)
	return out
}

// Get looks up an element by symbol, ignoring case.
func (d *Dataset) Get(symbol string) (Element, bool) {
	i, ok := d.bySymbol[strings.ToLower(strings.TrimSpace(symbol))]
	if !ok {
		return Element{}, false
	}
	return d.elements[i], true
}

// ByNumber looks up an element by atomic number.
func (d *Dataset) ByNumber(n int) (Element, bool) {
	i := sort.Search(len(d.elements), func(i int) bool { return d.elements[i].Number >= n })
	if i < len(d.elements) && d.elements[i].Number == n {
		return d.elements[i], true
	}
	return Element{}, false
}

// Filter returns the elements for which keep returns true.
func (d *Dataset) Filter(keep func(Element) bool) []Element {
	var out []Element
	for _, e := range d.elements {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
