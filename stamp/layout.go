// Package stamp computes where baked field appearances land on a page and
// writes the content-stream operators that paint them.
package stamp

import (
	"fmt"
	"math"
)

// ImageScaleMode specifies how an image should be scaled within its box.
type ImageScaleMode int

const (
	// ImageScaleFit scales the image to fit within the bounds while maintaining aspect ratio.
	ImageScaleFit ImageScaleMode = iota
	// ImageScaleFill scales the image to fill the bounds while maintaining aspect ratio (may overflow).
	ImageScaleFill
	// ImageScaleStretch stretches the image to exactly fill the bounds (may distort).
	ImageScaleStretch
	// ImageScaleNone uses the image's natural size in points.
	ImageScaleNone
)

// String returns a string representation of the scale mode.
func (m ImageScaleMode) String() string {
	switch m {
	case ImageScaleFit:
		return "fit"
	case ImageScaleFill:
		return "fill"
	case ImageScaleStretch:
		return "stretch"
	case ImageScaleNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseImageScaleMode parses a string to ImageScaleMode.
func ParseImageScaleMode(s string) (ImageScaleMode, error) {
	switch s {
	case "fit", "":
		return ImageScaleFit, nil
	case "fill":
		return ImageScaleFill, nil
	case "stretch":
		return ImageScaleStretch, nil
	case "none":
		return ImageScaleNone, nil
	default:
		return ImageScaleFit, fmt.Errorf("invalid scale mode: %s (valid: fit, fill, stretch, none)", s)
	}
}

// ImagePosition specifies where a scaled image sits inside its box.
type ImagePosition int

const (
	// ImagePositionTopLeft anchors the image at the box's top-left corner.
	ImagePositionTopLeft ImagePosition = iota
	// ImagePositionCenter centers the image.
	ImagePositionCenter
	// ImagePositionBottomLeft anchors the image at the bottom-left corner.
	ImagePositionBottomLeft
)

// String returns a string representation of the position.
func (p ImagePosition) String() string {
	switch p {
	case ImagePositionTopLeft:
		return "top-left"
	case ImagePositionCenter:
		return "center"
	case ImagePositionBottomLeft:
		return "bottom-left"
	default:
		return "unknown"
	}
}

// ParseImagePosition parses a string to ImagePosition.
func ParseImagePosition(s string) (ImagePosition, error) {
	switch s {
	case "top-left", "":
		return ImagePositionTopLeft, nil
	case "center":
		return ImagePositionCenter, nil
	case "bottom-left":
		return ImagePositionBottomLeft, nil
	default:
		return ImagePositionTopLeft, fmt.Errorf("invalid image position: %s (valid: top-left, center, bottom-left)", s)
	}
}

// Fit returns the size of an iw x ih image scaled into a bw x bh box.
// Zero or negative image dimensions yield a zero size.
func Fit(mode ImageScaleMode, iw, ih, bw, bh float64) (w, h float64) {
	if iw <= 0 || ih <= 0 {
		return 0, 0
	}

	switch mode {
	case ImageScaleFill:
		scale := math.Max(bw/iw, bh/ih)
		return iw * scale, ih * scale
	case ImageScaleStretch:
		return bw, bh
	case ImageScaleNone:
		return iw, ih
	default:
		scale := math.Min(bw/iw, bh/ih)
		return iw * scale, ih * scale
	}
}

// Offset returns the top-left offset of a w x h image inside a bw x bh box,
// measured downwards from the box's top edge.
func Offset(pos ImagePosition, w, h, bw, bh float64) (dx, dy float64) {
	switch pos {
	case ImagePositionCenter:
		return (bw - w) / 2, (bh - h) / 2
	case ImagePositionBottomLeft:
		return 0, bh - h
	default:
		return 0, 0
	}
}
