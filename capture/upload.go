package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF format
	_ "image/jpeg" // register JPEG format
	"image/png"
	"math"
	"strings"

	_ "golang.org/x/image/bmp" // register BMP format
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF format
	_ "golang.org/x/image/webp" // register WebP format
)

// Default bounds for uploaded signature images in pixels.
const (
	DefaultUploadMaxWidth  = 600
	DefaultUploadMaxHeight = 200
)

// Upload turns an uploaded image into signature content. The declared content
// type must be an image type. Images larger than maxW x maxH are scaled down
// to fit, keeping their aspect ratio; smaller images keep their size. The
// result is always a PNG data URL.
func Upload(contentType string, data []byte, maxW, maxH int) (string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return "", fmt.Errorf("%w: %q", ErrNotImage, contentType)
	}
	if maxW <= 0 {
		maxW = DefaultUploadMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultUploadMaxHeight
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode: %v", ErrNotImage, err)
	}

	img := Downscale(src, maxW, maxH)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode signature: %w", err)
	}
	return EncodeDataURL("image/png", buf.Bytes()), nil
}

// FitWithin returns the largest size with the aspect ratio of w x h that fits
// within maxW x maxH without enlarging it.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := math.Min(1, math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h)))
	if scale >= 1 {
		return w, h
	}
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return nw, nh
}

// Downscale returns src resized to fit within maxW x maxH. Images that
// already fit are returned unchanged.
func Downscale(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return src
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
