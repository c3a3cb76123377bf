package rindverse

import "github.com/talgya/rindverse/internal/settings"

// Render modes a client can draw a scene with.
const (
	RenderScene    = "scene"
	RenderFallback = "fallback"
)

// RenderMode picks the flat fallback when the client has no WebGL. Quality
// never disables the scene; it only sets the pixel ratio.
func RenderMode(webgl bool) string {
	if !webgl {
		return RenderFallback
	}
	return RenderScene
}

// Frame loop policies for the scene canvas.
const (
	FrameAlways = "always"
	FrameDemand = "demand"
	FrameNever  = "never"
)

// FrameLoop stops drawing while the page is hidden and draws on demand
// when motion is off.
func FrameLoop(prefs settings.Preferences, visible bool) string {
	switch {
	case !visible:
		return FrameNever
	case prefs.Motion:
		return FrameAlways
	default:
		return FrameDemand
	}
}
