// Package images decodes signature payloads into raw samples ready to be
// embedded as PDF image XObjects.
package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"golang.org/x/crypto/blake2b"
)

// Common errors
var (
	ErrInvalidImage      = errors.New("invalid image data")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecodeFailed      = errors.New("image decode failed")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

// ColorSpace represents a PDF color space.
type ColorSpace string

const (
	ColorSpaceGray ColorSpace = "DeviceGray"
	ColorSpaceRGB  ColorSpace = "DeviceRGB"
)

// Components returns the number of samples per pixel.
func (cs ColorSpace) Components() int {
	if cs == ColorSpaceGray {
		return 1
	}
	return 3
}

// ImageFormat represents an image format.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "PNG"
	FormatJPEG ImageFormat = "JPEG"
	FormatGIF  ImageFormat = "GIF"
	FormatBMP  ImageFormat = "BMP"
)

// Raster is a decoded image with 8-bit samples.
type Raster struct {
	Width  int
	Height int
	// ColorSpace is DeviceGray or DeviceRGB.
	ColorSpace ColorSpace
	// Samples holds the uncompressed colour samples row by row.
	Samples []byte
	// Alpha holds one 8-bit coverage sample per pixel. It is nil when every
	// pixel is opaque.
	Alpha []byte
	// Format is the encoding the raster was decoded from, if any.
	Format ImageFormat
}

// Decode decodes PNG or JPEG data into a raster.
func Decode(data []byte) (*Raster, error) {
	format := detectFormat(data)

	var (
		img image.Image
		err error
	)
	switch format {
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case FormatGIF, FormatBMP:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	default:
		return nil, ErrInvalidImage
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	r, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	r.Format = format
	return r, nil
}

// FromImage converts a Go image into a raster. Colour samples are stored
// without premultiplied alpha, as PDF soft masks expect.
func FromImage(img image.Image) (*Raster, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	if gray, ok := img.(*image.Gray); ok {
		samples := make([]byte, 0, width*height)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := gray.PixOffset(bounds.Min.X, y)
			samples = append(samples, gray.Pix[off:off+width]...)
		}
		return &Raster{Width: width, Height: height, ColorSpace: ColorSpaceGray, Samples: samples}, nil
	}

	samples := make([]byte, 0, width*height*3)
	alpha := make([]byte, 0, width*height)
	opaque := true

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			samples = append(samples, c.R, c.G, c.B)
			alpha = append(alpha, c.A)
			if c.A != 0xff {
				opaque = false
			}
		}
	}

	r := &Raster{Width: width, Height: height, ColorSpace: ColorSpaceRGB, Samples: samples}
	if !opaque {
		r.Alpha = alpha
	}
	return r, nil
}

// HasAlpha returns true if the raster carries a soft mask.
func (r *Raster) HasAlpha() bool {
	return len(r.Alpha) > 0
}

// AlphaMask returns the soft mask as a DeviceGray raster, or nil.
func (r *Raster) AlphaMask() *Raster {
	if !r.HasAlpha() {
		return nil
	}
	return &Raster{
		Width:      r.Width,
		Height:     r.Height,
		ColorSpace: ColorSpaceGray,
		Samples:    r.Alpha,
	}
}

// Digest identifies the raster's pixels, so identical payloads can share one
// embedded image.
func (r *Raster) Digest() [32]byte {
	h, _ := blake2b.New256(nil)
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(r.Width))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(r.Height))
	h.Write(hdr[:])
	h.Write([]byte(r.ColorSpace))
	h.Write(r.Samples)
	h.Write(r.Alpha)

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// detectFormat detects the image format from the file header.
func detectFormat(data []byte) ImageFormat {
	if len(data) < 8 {
		return ""
	}

	// PNG signature
	if bytes.Equal(data[0:8], []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) {
		return FormatPNG
	}

	// JPEG signature
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return FormatJPEG
	}

	// GIF signature
	if bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")) {
		return FormatGIF
	}

	// BMP signature
	if data[0] == 0x42 && data[1] == 0x4D {
		return FormatBMP
	}

	return ""
}

// Dimensions returns the pixel size of PNG or JPEG data without decoding the
// samples.
func Dimensions(data []byte) (width, height int, err error) {
	switch detectFormat(data) {
	case FormatPNG:
		if len(data) < 24 {
			return 0, 0, ErrInvalidImage
		}
		// PNG dimensions are in the IHDR chunk
		width = int(binary.BigEndian.Uint32(data[16:20]))
		height = int(binary.BigEndian.Uint32(data[20:24]))
		return width, height, nil

	case FormatJPEG:
		config, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
		return config.Width, config.Height, nil

	case "":
		return 0, 0, ErrInvalidImage

	default:
		return 0, 0, ErrUnsupportedFormat
	}
}
