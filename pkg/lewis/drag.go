package lewis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadTransform is returned for a transform that is not a translate.
var ErrBadTransform = errors.New("transform is not translate(x y)")

// Drag tracks one drag gesture with the same arithmetic as the browser
// script. The zero value is an idle Drag.
type Drag struct {
	active bool
	lastX  int
	lastY  int
}

// Start begins a drag at pointer position (x, y).
func (d *Drag) Start(x, y int) {
	d.active, d.lastX, d.lastY = true, x, y
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.active
}

// Move handles a pointer move to (x, y) and returns transform translated by
// the distance moved since the last event. Outside a drag the transform is
// returned unchanged.
func (d *Drag) Move(transform string, x, y int) (string, error) {
	if !d.active {
		return transform, nil
	}
	sx, sy, err := ParseTranslate(transform)
	if err != nil {
		return transform, err
	}
	sx += x - d.lastX
	sy += y - d.lastY
	d.lastX, d.lastY = x, y
	return Translate(sx, sy), nil
}

// End finishes the drag.
func (d *Drag) End() {
	d.active = false
}

// Translate formats a translate transform.
func Translate(x, y int) string {
	return fmt.Sprintf("translate(%d %d)", x, y)
}

// ParseTranslate reads "translate(x y)". The coordinates may be separated by
// spaces or a comma; fractional values are truncated.
func ParseTranslate(s string) (x, y int, err error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(s), "translate(")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadTransform, s)
	}
	body, ok = strings.CutSuffix(body, ")")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadTransform, s)
	}
	fields := strings.FieldsFunc(body, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadTransform, s)
	}
	var coords [2]int
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadTransform, s)
		}
		coords[i] = int(v)
	}
	return coords[0], coords[1], nil
}
