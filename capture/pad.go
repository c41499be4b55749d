package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"slices"

	"golang.org/x/image/vector"

	"github.com/georgepadayatti/pdfsign/geometry"
)

// Default pad geometry in pixels.
const (
	DefaultPadWidth    = 600
	DefaultPadHeight   = 200
	DefaultStrokeWidth = 2.0
)

// capSegments is the number of sides used to approximate round stroke ends.
const capSegments = 12

// Pad records freehand strokes and renders them as a signature image.
//
// Finishing a stroke and clearing the pad are both undoable. Pad is not safe
// for concurrent use.
type Pad struct {
	width, height int
	strokeWidth   float64
	ink           color.Color
	background    color.Color

	strokes [][]geometry.Point
	current []geometry.Point
	history [][][]geometry.Point
}

// PadOption configures a Pad.
type PadOption func(*Pad)

// WithPadSize sets the canvas size in pixels.
func WithPadSize(width, height int) PadOption {
	return func(p *Pad) {
		if width > 0 && height > 0 {
			p.width, p.height = width, height
		}
	}
}

// WithStrokeWidth sets the pen width in pixels.
func WithStrokeWidth(w float64) PadOption {
	return func(p *Pad) {
		if w > 0 {
			p.strokeWidth = w
		}
	}
}

// NewPad creates an empty 600x200 pad drawing 2px black strokes on white.
func NewPad(opts ...PadOption) *Pad {
	p := &Pad{
		width:       DefaultPadWidth,
		height:      DefaultPadHeight,
		strokeWidth: DefaultStrokeWidth,
		ink:         color.Black,
		background:  color.White,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the canvas size in pixels.
func (p *Pad) Size() (width, height int) {
	return p.width, p.height
}

// Begin starts a stroke at pt. An unfinished stroke is finished first.
func (p *Pad) Begin(pt geometry.Point) {
	if p.current != nil {
		p.End()
	}
	p.current = []geometry.Point{pt}
}

// Extend adds pt to the stroke in progress. It does nothing between strokes.
func (p *Pad) Extend(pt geometry.Point) {
	if p.current == nil {
		return
	}
	p.current = append(p.current, pt)
}

// End finishes the stroke in progress.
func (p *Pad) End() {
	if p.current == nil {
		return
	}
	p.history = append(p.history, p.strokes)
	p.strokes = append(slices.Clip(p.strokes), p.current)
	p.current = nil
}

// Clear removes every stroke. It can be undone.
func (p *Pad) Clear() {
	p.current = nil
	if len(p.strokes) == 0 {
		return
	}
	p.history = append(p.history, p.strokes)
	p.strokes = nil
}

// Undo reverts the last finished stroke or clear. It reports whether there
// was anything to undo.
func (p *Pad) Undo() bool {
	p.current = nil
	if len(p.history) == 0 {
		return false
	}
	p.strokes = p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	return true
}

// CanUndo reports whether Undo would change the pad.
func (p *Pad) CanUndo() bool {
	return len(p.history) > 0
}

// Empty reports whether the pad holds no ink.
func (p *Pad) Empty() bool {
	return len(p.strokes) == 0 && len(p.current) == 0
}

// Strokes returns the number of finished strokes.
func (p *Pad) Strokes() int {
	return len(p.strokes)
}

// Image rasterizes the pad, including any stroke in progress.
func (p *Pad) Image() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(p.background), image.Point{}, draw.Src)

	ink := image.NewUniform(p.ink)
	for _, s := range p.strokes {
		p.drawStroke(dst, ink, s)
	}
	if len(p.current) > 0 {
		p.drawStroke(dst, ink, p.current)
	}
	return dst
}

// Render encodes the pad as PNG.
func (p *Pad) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL renders the pad as a PNG data URL. An empty pad yields ErrEmptyPad.
func (p *Pad) DataURL() (string, error) {
	if p.Empty() {
		return "", ErrEmptyPad
	}
	data, err := p.Render()
	if err != nil {
		return "", err
	}
	return EncodeDataURL("image/png", data), nil
}

func (p *Pad) drawStroke(dst *image.RGBA, src image.Image, pts []geometry.Point) {
	hw := p.strokeWidth / 2
	for i, pt := range pts {
		p.fill(dst, src, circle(pt, hw))
		if i > 0 {
			p.fill(dst, src, segment(pts[i-1], pt, hw))
		}
	}
}

// fill paints the polygon poly. Each polygon is rasterized on its own so
// that overlapping pieces of a stroke cannot cancel out.
func (p *Pad) fill(dst *image.RGBA, src image.Image, poly []geometry.Point) {
	if len(poly) < 3 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range poly {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	bounds := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	clipped := bounds.Intersect(dst.Bounds())
	if clipped.Empty() {
		return
	}

	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	z.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
	for _, v := range poly[1:] {
		z.LineTo(float32(v.X-ox), float32(v.Y-oy))
	}
	z.ClosePath()

	// The mask is laid out over bounds; draw into a scratch image so that
	// parts outside the canvas are dropped cleanly.
	scratch := image.NewRGBA(bounds)
	draw.Draw(scratch, bounds, dst, bounds.Min, draw.Src)
	z.Draw(scratch, bounds, src, image.Point{})
	draw.Draw(dst, clipped, scratch, clipped.Min, draw.Src)
}

func circle(c geometry.Point, r float64) []geometry.Point {
	poly := make([]geometry.Point, capSegments)
	for i := range poly {
		a := 2 * math.Pi * float64(i) / capSegments
		poly[i] = geometry.Pt(c.X+r*math.Cos(a), c.Y+r*math.Sin(a))
	}
	return poly
}

func segment(a, b geometry.Point, hw float64) []geometry.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	nx, ny := -dy/length*hw, dx/length*hw
	return []geometry.Point{
		geometry.Pt(a.X+nx, a.Y+ny),
		geometry.Pt(b.X+nx, b.Y+ny),
		geometry.Pt(b.X-nx, b.Y-ny),
		geometry.Pt(a.X-nx, a.Y-ny),
	}
}
