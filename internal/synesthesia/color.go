package synesthesia

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an HSL triple. Hue is in degrees and may sit outside [0,360);
// saturation and lightness are percentages.
type Color struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// Ink is the fixed near-white text color.
const Ink = "rgba(255,255,255,0.92)"

// Normalized returns the color with hue wrapped into [0,360) and
// saturation/lightness clamped to [0,100].
func (c Color) Normalized() Color {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	return Color{H: h, S: clamp(c.S, 0, 100), L: clamp(c.L, 0, 100)}
}

// CSS renders the color as a CSS Color 4 hsl() string with integer
// components. The hue is not wrapped: hsl(410 40% 10%) is valid CSS.
func (c Color) CSS() string {
	return fmt.Sprintf("hsl(%d %d%% %d%%)", roundHalfUp(c.H), roundHalfUp(c.S), roundHalfUp(c.L))
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	n := c.Normalized()
	return colorful.Hsl(n.H, n.S/100, n.L/100).Clamped().Hex()
}

// MarshalText makes palette entries serialize as CSS strings.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.CSS()), nil
}

// Blend interpolates two colors in HSL along the shorter hue arc.
func (c Color) Blend(o Color, t float64) Color {
	a, b := c.Normalized(), o.Normalized()
	dh := b.H - a.H
	if dh > 180 {
		dh -= 360
	} else if dh < -180 {
		dh += 360
	}
	return Color{
		H: a.H + dh*t,
		S: a.S + (b.S-a.S)*t,
		L: a.L + (b.L-a.L)*t,
	}.Normalized()
}

// roundHalfUp rounds .5 toward positive infinity, so -0.5 becomes 0.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
