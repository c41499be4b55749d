// Package bake draws the fields placed on a document permanently into a new
// copy of it.
//
// Fields are stored with a top-left origin and Y growing downwards. PDF user
// space has a bottom-left origin with Y growing upwards, so every position is
// flipped against the page height here and nowhere else.
package bake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/georgepadayatti/pdfsign/capture"
	"github.com/georgepadayatti/pdfsign/fields"
	"github.com/georgepadayatti/pdfsign/geometry"
	"github.com/georgepadayatti/pdfsign/pdf/document"
	"github.com/georgepadayatti/pdfsign/pdf/images"
	"github.com/georgepadayatti/pdfsign/stamp"
)

// Common errors
var (
	// ErrDocument reports that the document could not be loaded or written.
	// No output is produced when it is returned.
	ErrDocument = errors.New("document error")
)

// Mutator is an open document that accepts draws and serializes the result.
// Coordinates are in PDF user space.
type Mutator interface {
	PageCount() int
	PageSize(page int) (geometry.Size, error)
	DrawImage(page int, img *images.Raster, r geometry.Rect) error
	DrawText(page int, text string, origin geometry.Point, size float64, c color.RGBA) error
	Bytes() ([]byte, error)
}

// Loader opens document bytes for drawing.
type Loader func(doc []byte) (Mutator, error)

// Decoder turns signature content into a raster.
type Decoder func(content string) (*images.Raster, error)

// OpenDocument is the default Loader.
func OpenDocument(doc []byte) (Mutator, error) {
	return document.Open(doc)
}

// DecodeSignature is the default Decoder. It accepts a data URL carrying a
// PNG or JPEG image.
func DecodeSignature(content string) (*images.Raster, error) {
	_, data, err := capture.DecodeDataURL(content)
	if err != nil {
		return nil, err
	}
	return images.Decode(data)
}

// SkipReason says why a field was left out of the output.
type SkipReason string

const (
	// SkipMissingPage means the field's page does not exist in the document.
	SkipMissingPage SkipReason = "missing-page"
	// SkipDrawFailed means the content could not be decoded or drawn.
	SkipDrawFailed SkipReason = "draw-failed"
)

// Skip records a field that was not baked.
type Skip struct {
	FieldID string
	Reason  SkipReason
	Err     error
}

// Result is the outcome of a bake.
type Result struct {
	// Bytes is the new document.
	Bytes []byte
	// Baked lists the ids of the fields drawn, in order.
	Baked []string
	// Skipped lists the fields with content that were not drawn.
	Skipped []Skip
}

// Engine bakes fields into documents.
type Engine struct {
	logger    *slog.Logger
	load      Loader
	decode    Decoder
	textColor color.RGBA
	text      stamp.TextStyle
	image     stamp.ImageLayout
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-field failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLoader replaces the document loader.
func WithLoader(load Loader) Option {
	return func(e *Engine) {
		if load != nil {
			e.load = load
		}
	}
}

// WithDecoder replaces the signature decoder.
func WithDecoder(decode Decoder) Option {
	return func(e *Engine) {
		if decode != nil {
			e.decode = decode
		}
	}
}

// WithTextColor sets the colour of text and date fields.
func WithTextColor(c color.RGBA) Option {
	return func(e *Engine) {
		e.textColor = c
	}
}

// WithTextStyle sets how text is sized relative to its field.
func WithTextStyle(style stamp.TextStyle) Option {
	return func(e *Engine) {
		e.text = style
	}
}

// WithImageLayout sets how signature images are placed in their field.
func WithImageLayout(layout stamp.ImageLayout) Option {
	return func(e *Engine) {
		e.image = layout
	}
}

// New creates an engine. Without options it opens documents with pdfcpu,
// draws black text sized min(0.6*h, 12) and fits signatures to the top-left
// of their box.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:    slog.Default(),
		load:      OpenDocument,
		decode:    DecodeSignature,
		textColor: color.RGBA{A: 255},
		text:      stamp.DefaultTextStyle(),
		image:     stamp.DefaultImageLayout(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bake draws every field that has content into a copy of doc. Fields are
// drawn in order. Fields on pages the document lacks and fields whose content
// cannot be drawn are skipped; the rest are still baked. Empty content counts
// as absent. The input slice is never modified.
func (e *Engine) Bake(ctx context.Context, doc []byte, fs []fields.Field) (*Result, error) {
	m, err := e.load(bytes.Clone(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load: %w", ErrDocument, err)
	}

	log := e.logger.With("pages", m.PageCount(), "fields", len(fs))
	result := &Result{}

	for _, f := range fs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, ok := f.Value()
		if !ok || value == "" {
			continue
		}

		if f.Page < 1 || f.Page > m.PageCount() {
			log.Debug("skipping field on missing page", "field", f.ID, "page", f.Page)
			result.Skipped = append(result.Skipped, Skip{FieldID: f.ID, Reason: SkipMissingPage})
			continue
		}

		if err := e.draw(m, f, value); err != nil {
			log.Warn("failed to bake field", "field", f.ID, "page", f.Page, "kind", f.Kind.String(), "error", err)
			result.Skipped = append(result.Skipped, Skip{FieldID: f.ID, Reason: SkipDrawFailed, Err: err})
			continue
		}
		result.Baked = append(result.Baked, f.ID)
	}

	out, err := m.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to write: %w", ErrDocument, err)
	}
	result.Bytes = out

	log.Info("baked document", "baked", len(result.Baked), "skipped", len(result.Skipped), "bytes", len(out))
	return result, nil
}

func (e *Engine) draw(m Mutator, f fields.Field, value string) error {
	size, err := m.PageSize(f.Page)
	if err != nil {
		return err
	}

	switch {
	case f.Kind == fields.KindSignature:
		img, err := e.decode(value)
		if err != nil {
			return fmt.Errorf("failed to decode signature: %w", err)
		}
		r := stamp.ImagePlacement(size.Height, f.Rect(), float64(img.Width), float64(img.Height), e.image)
		return m.DrawImage(f.Page, img, r)

	case f.Kind.IsText():
		origin, fontSize := stamp.TextPlacement(size.Height, f.Rect(), e.text)
		return m.DrawText(f.Page, value, origin, fontSize, e.textColor)

	default:
		return fmt.Errorf("%w: %d", fields.ErrUnknownKind, f.Kind)
	}
}
