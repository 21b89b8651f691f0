package periodic

import (
	"errors"
	"fmt"
	"slices"

	"github.com/coregx/coregex"
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid table options")

// Info fields that can be shown in a cell.
const (
	InfoSymbol     = "symbol"
	InfoNumber     = "number"
	InfoName       = "name"
	InfoMass       = "mass"
	InfoElectroneg = "electroneg"
	InfoConfig     = "electron-config"
	InfoValence    = "valence"
	InfoMelting    = "melting"
	InfoBoiling    = "boiling"
)

// Shading schemes.
const (
	ShadeNone       = ""
	ShadeType       = "type"
	ShadeBlock      = "block"
	ShadeElectroneg = "electroneg"
	ShadeBW         = "bw"
)

// Border schemes.
const (
	BorderNone       = ""
	BorderOccurrence = "occurrence"
	BorderPhase      = "phase"
	BorderBlock      = "block"
	BorderType       = "type"
)

var (
	infoFields   = []string{InfoSymbol, InfoNumber, InfoName, InfoMass, InfoElectroneg, InfoConfig, InfoValence, InfoMelting, InfoBoiling}
	shadeModes   = []string{ShadeNone, ShadeType, ShadeBlock, ShadeElectroneg, ShadeBW}
	borderModes  = []string{BorderNone, BorderOccurrence, BorderPhase, BorderBlock, BorderType}
	validTableID = coregex.MustCompile(`^[A-Za-z][A-Za-z0-9_\-]*$`)
)

// Options controls how a grid is rendered.
type Options struct {
	// ID prefixes the table, row and cell ids, so it must be unique per page.
	ID     string   `json:"id"`
	Size   Size     `json:"size"`
	Info   []string `json:"info"`
	Shade  string   `json:"shade"`
	Border string   `json:"border"`
}

// DefaultOptions returns a typical table showing symbols, shaded by element
// type and bordered by occurrence.
func DefaultOptions() Options {
	return Options{
		ID:     "ptable",
		Size:   SizeTypical,
		Info:   []string{InfoSymbol},
		Shade:  ShadeType,
		Border: BorderOccurrence,
	}
}

// Validate reports the first unsupported value in o.
func (o Options) Validate() error {
	if !validTableID.MatchString(o.ID) {
		return fmt.Errorf("%w: id %q must start with a letter and contain only letters, digits, '-' or '_'", ErrInvalidOptions, o.ID)
	}
	if !slices.Contains(Sizes, o.Size) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidOptions, ErrUnknownSize, o.Size)
	}
	for _, f := range o.Info {
		if !slices.Contains(infoFields, f) {
			return fmt.Errorf("%w: info field %q", ErrInvalidOptions, f)
		}
	}
	if !slices.Contains(shadeModes, o.Shade) {
		return fmt.Errorf("%w: shade %q", ErrInvalidOptions, o.Shade)
	}
	if !slices.Contains(borderModes, o.Border) {
		return fmt.Errorf("%w: border %q", ErrInvalidOptions, o.Border)
	}
	return nil
}

// InfoFields returns the supported info field names in display order.
func InfoFields() []string {
	return slices.Clone(infoFields)
}
