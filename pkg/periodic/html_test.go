package periodic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, size Size, mutate func(*Options)) string {
	t.Helper()
	opts := DefaultOptions()
	opts.ID = "pt1"
	opts.Size = size
	if mutate != nil {
		mutate(&opts)
	}
	out, err := RenderHTMLString(layout(t, size), opts)
	require.NoError(t, err)
	return out
}

func TestRenderHTMLStructure(t *testing.T) {
	t.Parallel()

	out := renderString(t, SizeTypical, nil)

	assert.True(t, strings.HasPrefix(out, `<table id="pt1" class="periodic-table size-typical">`))
	assert.Equal(t, 10, strings.Count(out, "<tr "))
	assert.Equal(t, 180, strings.Count(out, "<td "))
	assert.Contains(t, out, `<tr id="pt1-row-10">`)
	assert.Contains(t, out,
		`<td id="pt1r1c1" class="element nonmetal primordial" data-symbol="H" title="Hydrogen"><span class="info-symbol">H</span></td>`)
	assert.Contains(t, out, `<td id="pt1r6c3" class="marker lanthanide">*</td>`)
	assert.Contains(t, out, `<td id="pt1r10c2" class="marker">**</td>`)
	assert.Contains(t, out, `<td id="pt1r8c1"></td>`)
}

func TestRenderHTMLInfo(t *testing.T) {
	t.Parallel()

	out := renderString(t, SizeTypical, func(o *Options) {
		o.Info = InfoFields()
	})

	assert.Contains(t, out, `<span class="info-number">26</span>`)
	assert.Contains(t, out, `<span class="info-name">Iron</span>`)
	assert.Contains(t, out, `<span class="info-mass">55.845</span>`)
	assert.Contains(t, out, `<span class="info-mass">[98]</span>`)
	assert.Contains(t, out, `<span class="info-electroneg">1.83</span>`)
	assert.Contains(t, out, `<span class="info-electron-config">[Ar] 3d6 4s2</span>`)
	assert.Contains(t, out, `<span class="info-melting">1811 K</span>`)

	og := out[strings.Index(out, `data-symbol="Og"`):]
	og = og[:strings.Index(og, "</td>")]
	assert.NotContains(t, og, "info-melting")
	assert.NotContains(t, og, "info-electroneg")
}

func TestRenderHTMLShadeAndBorder(t *testing.T) {
	t.Parallel()

	block := renderString(t, SizeLong, func(o *Options) {
		o.Shade = ShadeBlock
		o.Border = BorderPhase
	})
	assert.Contains(t, block, `class="element block-p phase-liquid" data-symbol="Br"`)

	en := renderString(t, SizeMain, func(o *Options) {
		o.Shade = ShadeElectroneg
		o.Border = BorderNone
	})
	assert.Contains(t, en, `class="element no-en" data-symbol="He" title="Helium">`)
	assert.Regexp(t, `data-symbol="F" title="Fluorine" style="background-color:#[0-9a-f]{6}"`, en)

	bw := renderString(t, SizeMain, func(o *Options) {
		o.Shade = ShadeBW
	})
	assert.Regexp(t, `data-symbol="Cs" title="Caesium" style="background-color:#[0-9a-f]{6}"`, bw)
}

func TestRenderHTMLRejectsBadOptions(t *testing.T) {
	t.Parallel()

	g := layout(t, SizeMain)
	opts := DefaultOptions()
	opts.ID = `x" onclick="alert(1)`
	_, err := RenderHTMLString(g, opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Options)
		ok     bool
	}{
		{"defaults", func(*Options) {}, true},
		{"all sizes", func(o *Options) { o.Size = SizeLeftStep }, true},
		{"no shade no border", func(o *Options) { o.Shade, o.Border = "", "" }, true},
		{"empty id", func(o *Options) { o.ID = "" }, false},
		{"id starts with digit", func(o *Options) { o.ID = "1pt" }, false},
		{"unknown size", func(o *Options) { o.Size = "huge" }, false},
		{"unknown info", func(o *Options) { o.Info = []string{"symbol", "color"} }, false},
		{"unknown shade", func(o *Options) { o.Shade = "rainbow" }, false},
		{"unknown border", func(o *Options) { o.Border = "dashed" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidOptions)
			}
		})
	}
}

func TestFormatMass(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.008", FormatMass(1.008))
	assert.Equal(t, "4.0026", FormatMass(4.0026))
	assert.Equal(t, "32.06", FormatMass(32.06))
	assert.Equal(t, "[294]", FormatMass(294))
	assert.Equal(t, "", FormatMass(0))
}

func TestRenderTerminal(t *testing.T) {
	t.Parallel()

	g := layout(t, SizeMain)
	opts := DefaultOptions()
	opts.Info = []string{InfoSymbol, InfoNumber}

	out := RenderTerminal(g, opts)
	assert.Contains(t, out, "He")
	assert.Contains(t, out, "118")
	assert.Equal(t, 14, len(strings.Split(out, "\n")))
}
