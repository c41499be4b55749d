package viewport

import (
	"math"

	"github.com/georgepadayatti/pdfsign/geometry"
)

// Zoom limits used by the page viewer.
const (
	DefaultMinZoom  = 0.5
	DefaultMaxZoom  = 3.0
	DefaultZoomStep = 0.2
)

// ZoomRange bounds and steps the zoom factor.
type ZoomRange struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultZoomRange returns the viewer's default zoom limits.
func DefaultZoomRange() ZoomRange {
	return ZoomRange{Min: DefaultMinZoom, Max: DefaultMaxZoom, Step: DefaultZoomStep}
}

// Clamp limits zoom to the range.
func (z ZoomRange) Clamp(zoom float64) float64 {
	return math.Max(z.Min, math.Min(z.Max, zoom))
}

// In returns the next zoom level up.
func (z ZoomRange) In(zoom float64) float64 {
	return z.round(z.Clamp(zoom + z.Step))
}

// Out returns the next zoom level down.
func (z ZoomRange) Out(zoom float64) float64 {
	return z.round(z.Clamp(zoom - z.Step))
}

// round drops accumulated float error so repeated steps land on tidy values.
func (z ZoomRange) round(zoom float64) float64 {
	return math.Round(zoom*1e6) / 1e6
}

// FixedSurface is a Surface for hosts that display the page at its native size
// times Zoom with the top-left corner at Origin.
type FixedSurface struct {
	Origin geometry.Point
	Native geometry.Size
	Zoom   float64
}

// DisplayRect implements Surface.
func (s FixedSurface) DisplayRect() (geometry.Rect, bool) {
	if s.Native.Empty() || s.Zoom <= 0 {
		return geometry.Rect{}, false
	}
	return geometry.RectAt(s.Origin, s.Native.Scale(s.Zoom)), true
}
