// Package audio synthesizes the ambient drone and UI taps.
// An Engine is an owned resource: whoever needs ambient sound creates one,
// starts it, feeds it parameter updates and stops it. Nothing is shared.
package audio

import (
	"errors"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/rindverse/internal/synesthesia"
)

const DefaultSampleRate = 22050

var (
	ErrNotStarted     = errors.New("audio engine not started")
	ErrAlreadyStarted = errors.New("audio engine already started")
)

// Params shape the drone. BaseHz is in [60,220]; the rest are in [0,1].
type Params struct {
	BaseHz    float64 `json:"base_hz"`
	Shimmer   float64 `json:"shimmer"`
	Wobble    float64 `json:"wobble"`
	Intensity float64 `json:"intensity"`
}

// ParamsFrom maps a synesthesia bundle onto drone parameters.
func ParamsFrom(s synesthesia.Synesthesia) Params {
	return Params{
		BaseHz:    s.Audio.BaseHz,
		Shimmer:   s.Audio.Shimmer,
		Wobble:    s.Motion.Wobble,
		Intensity: s.Motion.Intensity,
	}
}

func (p Params) clamped() Params {
	return Params{
		BaseHz:    clamp(p.BaseHz, synesthesia.MinHz, synesthesia.MaxHz),
		Shimmer:   clamp(p.Shimmer, 0, 1),
		Wobble:    clamp(p.Wobble, 0, 1),
		Intensity: clamp(p.Intensity, 0, 1),
	}
}

// partial ratios relative to BaseHz: fundamental, fifth, shimmer.
var ratios = [3]float64{1, 1.5, 4}

// Engine renders a mono drone. Not safe for concurrent use.
type Engine struct {
	rate    int
	noise   opensimplex.Noise
	params  Params
	running bool
	elapsed float64
	phase   [3]float64
}

// New creates a stopped engine. The seed fixes the drift pattern.
func New(sampleRate int, seed int64) *Engine {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Engine{
		rate:  sampleRate,
		noise: opensimplex.NewNormalized(seed),
	}
}

// SampleRate returns the engine's output rate in Hz.
func (e *Engine) SampleRate() int { return e.rate }

// Running reports whether Start has been called without a matching Stop.
func (e *Engine) Running() bool { return e.running }

// Params returns the parameters currently in effect.
func (e *Engine) Params() Params { return e.params }

// Start begins the drone with p.
func (e *Engine) Start(p Params) error {
	if e.running {
		return ErrAlreadyStarted
	}
	e.params = p.clamped()
	e.running = true
	e.elapsed = 0
	e.phase = [3]float64{}
	return nil
}

// Update swaps parameters without resetting phase, so there is no click.
func (e *Engine) Update(p Params) error {
	if !e.running {
		return ErrNotStarted
	}
	e.params = p.clamped()
	return nil
}

// Stop silences the engine. Stopping a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.running = false
}

// Render fills buf with the next samples in [-1,1]. A stopped engine
// renders silence.
func (e *Engine) Render(buf []float32) {
	if !e.running {
		clear(buf)
		return
	}

	p := e.params
	gains := [3]float64{1, 0.5, 0.35 * p.Shimmer}
	norm := gains[0] + gains[1] + 0.35
	level := 0.25 * (0.6 + 0.4*p.Intensity)
	dt := 1 / float64(e.rate)

	for i := range buf {
		// Slow drift: pitch within ±1% scaled by wobble, amplitude ±20%.
		drift := (e.noise.Eval2(e.elapsed*0.35, 0) - 0.5) * 2
		swell := e.noise.Eval2(e.elapsed*0.2, 17)
		freq := p.BaseHz * (1 + 0.01*p.Wobble*drift)

		var s float64
		for k := range ratios {
			s += gains[k] * math.Sin(e.phase[k])
			e.phase[k] += 2 * math.Pi * freq * ratios[k] * dt
			if e.phase[k] > 2*math.Pi {
				e.phase[k] -= 2 * math.Pi
			}
		}
		amp := level * (0.8 + 0.2*swell)
		buf[i] = float32(clamp(s/norm*amp, -1, 1))
		e.elapsed += dt
	}
}

// Tap renders a short decaying click for UI feedback.
func Tap(sampleRate int) []float32 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	n := sampleRate * 40 / 1000
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-t * 90)
		out[i] = float32(0.4 * env * math.Sin(2*math.Pi*1200*t))
	}
	return out
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
