// Package settings defines the per-visitor preference flags.
// Preferences are passed explicitly to whatever needs them.
package settings

import (
	"errors"
	"fmt"
)

// Quality levels for the 3D scenes. Quality only tunes rendering cost;
// it never turns the scene off.
const (
	QualityAuto = "auto"
	QualityLow  = "low"
	QualityHigh = "high"
)

var ErrInvalidQuality = errors.New("invalid quality")

// Preferences are the visitor's sound, motion and render quality flags.
type Preferences struct {
	Sound   bool   `json:"sound"`
	Motion  bool   `json:"motion"`
	Quality string `json:"quality"`
}

// Defaults: silent, animated, automatic quality.
func Defaults() Preferences {
	return DefaultsFor(false)
}

// DefaultsFor is Defaults for a visitor whose system asks for reduced
// motion; motion starts off for them.
func DefaultsFor(reducedMotion bool) Preferences {
	return Preferences{Sound: false, Motion: !reducedMotion, Quality: QualityAuto}
}

// Validate checks the quality level.
func (p Preferences) Validate() error {
	switch p.Quality {
	case QualityAuto, QualityLow, QualityHigh:
		return nil
	}
	return fmt.Errorf("%w: %q (use auto, low, high)", ErrInvalidQuality, p.Quality)
}

// MotionScale is the multiplier renderers apply to animation intensity.
func (p Preferences) MotionScale() float64 {
	if !p.Motion {
		return 0
	}
	return 1
}

// PixelRatio picks the canvas pixel ratio for a device ratio. Low pins 1,
// high renders at 1.5 to 2.25, auto follows the device up to 2.
func (p Preferences) PixelRatio(device float64) float64 {
	if device <= 0 {
		device = 1
	}
	switch p.Quality {
	case QualityLow:
		return 1
	case QualityHigh:
		return min(2.25, max(1.5, device))
	default:
		return min(2, device)
	}
}

// Antialias reports whether the canvas should antialias.
func (p Preferences) Antialias() bool {
	return p.Quality != QualityLow
}
