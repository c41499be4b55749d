package stamp

import (
	"math"

	"github.com/georgepadayatti/pdfsign/geometry"
)

// Text sizing defaults used when baking text and date fields.
const (
	DefaultFontSizeRatio = 0.6
	DefaultMaxFontSize   = 12.0
)

// FlipY converts the top edge of a box of height h at y (top-left origin,
// Y down) into the bottom edge in PDF user space (bottom-left origin, Y up).
func FlipY(pageHeight, y, h float64) float64 {
	return pageHeight - y - h
}

// ImageLayout controls how a signature image is placed in its field box.
type ImageLayout struct {
	Mode     ImageScaleMode
	Position ImagePosition
}

// DefaultImageLayout fits the image and anchors it at the box's top-left.
func DefaultImageLayout() ImageLayout {
	return ImageLayout{Mode: ImageScaleFit, Position: ImagePositionTopLeft}
}

// ImagePlacement returns the rectangle, in PDF user space, that an iw x ih
// image occupies when drawn into box on a page of the given height. The
// returned rectangle's X and Y are its lower-left corner.
func ImagePlacement(pageHeight float64, box geometry.Rect, iw, ih float64, layout ImageLayout) geometry.Rect {
	w, h := Fit(layout.Mode, iw, ih, box.Width, box.Height)
	dx, dy := Offset(layout.Position, w, h, box.Width, box.Height)

	return geometry.Rect{
		X:      box.X + dx,
		Y:      FlipY(pageHeight, box.Y+dy, h),
		Width:  w,
		Height: h,
	}
}

// TextStyle sizes baked text relative to its field box.
type TextStyle struct {
	// SizeRatio is the font size as a fraction of the box height.
	SizeRatio float64
	// MaxSize caps the font size in points.
	MaxSize float64
}

// DefaultTextStyle returns the standard text sizing.
func DefaultTextStyle() TextStyle {
	return TextStyle{SizeRatio: DefaultFontSizeRatio, MaxSize: DefaultMaxFontSize}
}

// FontSize returns the font size for a box of height h.
func (s TextStyle) FontSize(h float64) float64 {
	size := h * s.SizeRatio
	if s.MaxSize > 0 {
		size = math.Min(size, s.MaxSize)
	}
	return size
}

// TextPlacement returns the baseline origin in PDF user space and the font
// size for text drawn into box on a page of the given height. The baseline
// sits one font size below the box's top edge.
func TextPlacement(pageHeight float64, box geometry.Rect, style TextStyle) (geometry.Point, float64) {
	size := style.FontSize(box.Height)
	return geometry.Pt(box.X, FlipY(pageHeight, box.Y, size)), size
}
