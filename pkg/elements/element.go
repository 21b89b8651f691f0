package elements

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidElement is returned when an element record fails validation.
var ErrInvalidElement = errors.New("invalid element")

// Element is a single entry of the periodic table. Numeric properties that
// are not known for an element are zero.
type Element struct {
	Number     int     `yaml:"number" json:"number"`
	Symbol     string  `yaml:"symbol" json:"symbol"`
	Name       string  `yaml:"name" json:"name"`
	Mass       float64 `yaml:"mass" json:"mass"`
	Period     int     `yaml:"period" json:"period"`
	Group      string  `yaml:"group" json:"group"` // a trailing '*' marks a lanthanide/actinide placement column
	Type       string  `yaml:"type" json:"type"`
	Occurrence string  `yaml:"occurrence" json:"occurrence"`
	Phase      string  `yaml:"phase" json:"phase"`
	Block      string  `yaml:"block" json:"block"`
	Color      string  `yaml:"color" json:"color"` // hex RGB without '#'
	Valence    int     `yaml:"valence" json:"valence"`
	Electroneg float64 `yaml:"electroneg" json:"electroneg"`
	Config     string  `yaml:"config" json:"config"`
	Melting    float64 `yaml:"melting" json:"melting"` // kelvin
	Boiling    float64 `yaml:"boiling" json:"boiling"` // kelvin
}

// IsSeries reports whether the element belongs to the lanthanide or actinide
// series, which most layouts place outside the main body of the table.
func (e Element) IsSeries() bool {
	return strings.HasSuffix(e.Group, "*")
}

// Column returns the numeric group of the element with any series marker
// stripped. It returns 0 if the group cannot be parsed.
func (e Element) Column() int {
	n, err := strconv.Atoi(strings.TrimSuffix(e.Group, "*"))
	if err != nil {
		return 0
	}
	return n
}

// DisplayName returns the element name in title case.
func (e Element) DisplayName() string {
	return cases.Title(language.English).String(e.Name)
}

// HexColor returns the element colour as a CSS hex value.
func (e Element) HexColor() string {
	if e.Color == "" {
		return "#ffffff"
	}
	return "#" + strings.ToLower(e.Color)
}

// Validate checks the fields that the renderers depend on.
func (e Element) Validate() error {
	switch {
	case e.Number < 1:
		return fmt.Errorf("%w: number %d", ErrInvalidElement, e.Number)
	case e.Symbol == "" || len(e.Symbol) > 3:
		return fmt.Errorf("%w: element %d has symbol %q", ErrInvalidElement, e.Number, e.Symbol)
	case e.Period < 1 || e.Period > 7:
		return fmt.Errorf("%w: %s has period %d", ErrInvalidElement, e.Symbol, e.Period)
	case e.Column() < 1 || e.Column() > 18:
		return fmt.Errorf("%w: %s has group %q", ErrInvalidElement, e.Symbol, e.Group)
	case e.Valence < 0 || e.Valence > 8:
		return fmt.Errorf("%w: %s has valence %d", ErrInvalidElement, e.Symbol, e.Valence)
	}
	if e.Color != "" {
		if _, err := strconv.ParseUint(e.Color, 16, 32); err != nil || len(e.Color) != 6 {
			return fmt.Errorf("%w: %s has colour %q", ErrInvalidElement, e.Symbol, e.Color)
		}
	}
	return nil
}
