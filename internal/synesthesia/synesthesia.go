// Package synesthesia maps flavor notes to a color, motion and audio bundle.
// The mapping is pure: the same notes always produce the same bundle.
package synesthesia

// MaxNotes is how many leading notes are considered.
const MaxNotes = 10

// Baseline accumulator values used when no rule matches.
const (
	BaseHue        = 215.0
	BaseSaturation = 42.0
	BaseLightness  = 14.0
	BaseMotion     = 0.18
	BaseWobble     = 0.22
	BaseShimmer    = 0.18
	BaseHz         = 110.0
)

// Output ranges.
const (
	MinHz = 60.0
	MaxHz = 220.0
)

// Palette holds the derived theme colors.
type Palette struct {
	Bg  Color `json:"bg"`
	A   Color `json:"a"`
	B   Color `json:"b"`
	C   Color `json:"c"`
	Ink string `json:"ink"`
}

// Motion drives animation strength. Both fields are in [0,1].
type Motion struct {
	Intensity float64 `json:"intensity"`
	Wobble    float64 `json:"wobble"`
}

// Audio drives the ambient drone. BaseHz is in [60,220], Shimmer in [0,1].
type Audio struct {
	BaseHz  float64 `json:"baseHz"`
	Shimmer float64 `json:"shimmer"`
}

// Synesthesia is the sensory bundle derived from a list of flavor notes.
type Synesthesia struct {
	Palette Palette `json:"palette"`
	Motion  Motion  `json:"motion"`
	Audio   Audio   `json:"audio"`
}

// Compute derives the bundle for notes. Only the first MaxNotes notes count;
// each contributes the first matching rule only, and the summed
// contributions are averaged with the baseline as one extra vote.
// Wobble is never touched by rules.
func Compute(notes []string) Synesthesia {
	hue, sat, light := BaseHue, BaseSaturation, BaseLightness
	motion, wobble := BaseMotion, BaseWobble
	shimmer, hz := BaseShimmer, BaseHz

	if len(notes) > MaxNotes {
		notes = notes[:MaxNotes]
	}

	hits := 0
	for _, note := range notes {
		r := Match(note)
		if r == nil {
			continue
		}
		hits++
		hue += r.Hue
		sat += r.Saturation
		light += r.Lightness
		motion += r.Motion
		shimmer += r.Shimmer
		hz += r.BaseHz
	}

	if hits > 0 {
		d := float64(hits + 1)
		hue /= d
		sat /= d
		light /= d
		motion /= d
		shimmer /= d
		hz /= d
	}

	return Synesthesia{
		Palette: Palette{
			A:   Color{H: hue, S: sat, L: min(light+18, 72)},
			B:   Color{H: hue + 32, S: min(sat+10, 92), L: min(light+8, 70)},
			C:   Color{H: hue - 24, S: min(sat+6, 92), L: min(light+4, 64)},
			Bg:  Color{H: hue + 195, S: 40, L: 10},
			Ink: Ink,
		},
		Motion: Motion{
			Intensity: clamp(motion, 0, 1),
			Wobble:    clamp(wobble, 0, 1),
		},
		Audio: Audio{
			BaseHz:  clamp(hz, MinHz, MaxHz),
			Shimmer: clamp(shimmer, 0, 1),
		},
	}
}

// Blend interpolates from a toward b. t is clamped to [0,1].
func Blend(a, b Synesthesia, t float64) Synesthesia {
	t = clamp(t, 0, 1)
	lerp := func(x, y float64) float64 { return x + (y-x)*t }
	return Synesthesia{
		Palette: Palette{
			Bg:  a.Palette.Bg.Blend(b.Palette.Bg, t),
			A:   a.Palette.A.Blend(b.Palette.A, t),
			B:   a.Palette.B.Blend(b.Palette.B, t),
			C:   a.Palette.C.Blend(b.Palette.C, t),
			Ink: Ink,
		},
		Motion: Motion{
			Intensity: clamp(lerp(a.Motion.Intensity, b.Motion.Intensity), 0, 1),
			Wobble:    clamp(lerp(a.Motion.Wobble, b.Motion.Wobble), 0, 1),
		},
		Audio: Audio{
			BaseHz:  clamp(lerp(a.Audio.BaseHz, b.Audio.BaseHz), MinHz, MaxHz),
			Shimmer: clamp(lerp(a.Audio.Shimmer, b.Audio.Shimmer), 0, 1),
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
