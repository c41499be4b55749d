package viewport

import (
	"github.com/georgepadayatti/pdfsign/fields"
	"github.com/georgepadayatti/pdfsign/geometry"
)

// DefaultHandleSize is the side length of the delete handle in screen pixels.
const DefaultHandleSize = 16.0

// Surface reports where the rendered page currently sits on screen.
//
// The rectangle is polled rather than pushed: the host's layout can move or
// resize the page without telling anyone. A false result means the geometry is
// not known yet, in which case nothing is drawn and clicks are ignored.
type Surface interface {
	DisplayRect() (geometry.Rect, bool)
}

// SurfaceFunc adapts a function to the Surface interface.
type SurfaceFunc func() (geometry.Rect, bool)

// DisplayRect implements Surface.
func (f SurfaceFunc) DisplayRect() (geometry.Rect, bool) {
	return f()
}

// Overlay is the on-screen placement of one field.
type Overlay struct {
	FieldID string
	Kind    fields.Kind
	Rect    geometry.Rect

	// Selected overlays carry a delete handle centred on the top-right corner.
	Selected     bool
	DeleteHandle geometry.Rect

	// Content mirrors the field's content for preview rendering.
	Content    string
	HasContent bool
}

// Label returns the caption shown on hover.
func (o Overlay) Label() string {
	return o.Kind.String()
}

// Projector maps the fields of the visible page onto the current surface.
type Projector struct {
	// Native is the page's unscaled size as reported by the document renderer.
	Native geometry.Size

	// Surface supplies the displayed page rectangle.
	Surface Surface

	// HandleSize is the delete handle side length; zero means DefaultHandleSize.
	HandleSize float64
}

// NewProjector creates a projector for a page of the given native size.
func NewProjector(native geometry.Size, surface Surface) *Projector {
	return &Projector{Native: native, Surface: surface, HandleSize: DefaultHandleSize}
}

// View returns the current display rectangle, or false when it is unknown.
func (p *Projector) View() (geometry.Rect, bool) {
	if p == nil || p.Surface == nil || p.Native.Empty() {
		return geometry.Rect{}, false
	}
	view, ok := p.Surface.DisplayRect()
	if !ok || view.Empty() {
		return geometry.Rect{}, false
	}
	return view, true
}

// Project returns the on-screen rectangles of fs with nothing selected.
func (p *Projector) Project(fs []fields.Field) []Overlay {
	return p.ProjectSelected(fs, "")
}

// ProjectSelected returns the on-screen rectangles of fs. The field whose id
// equals selectedID is marked selected and given a delete handle. The result is
// nil while the page geometry is unknown.
func (p *Projector) ProjectSelected(fs []fields.Field, selectedID string) []Overlay {
	view, ok := p.View()
	if !ok || len(fs) == 0 {
		return nil
	}

	handle := p.HandleSize
	if handle <= 0 {
		handle = DefaultHandleSize
	}

	out := make([]Overlay, 0, len(fs))
	for _, f := range fs {
		o := Overlay{
			FieldID: f.ID,
			Kind:    f.Kind,
			Rect:    ScaleRect(f.Rect(), view, p.Native),
		}
		o.Content, o.HasContent = f.Value()
		if selectedID != "" && f.ID == selectedID {
			o.Selected = true
			o.DeleteHandle = geometry.CenteredAt(geometry.Pt(o.Rect.Right(), o.Rect.Y), handle)
		}
		out = append(out, o)
	}
	return out
}

// ToDocument converts a pointer position using the current surface geometry.
func (p *Projector) ToDocument(pointer geometry.Point) (geometry.Point, error) {
	view, ok := p.View()
	if !ok {
		return geometry.Point{}, ErrNoGeometry
	}
	return ToDocumentSpace(pointer, view, p.Native)
}

// Hit describes what a click landed on.
type Hit struct {
	FieldID string
	// Delete is true when the click hit the delete handle rather than the body.
	Delete bool
}

// HitTest finds the overlay under pointer. Delete handles are tested before
// field bodies so that a click on a handle is never also a selection, and
// later overlays win over earlier ones since they are drawn on top.
func HitTest(overlays []Overlay, pointer geometry.Point) (Hit, bool) {
	for i := len(overlays) - 1; i >= 0; i-- {
		o := overlays[i]
		if o.Selected && o.DeleteHandle.Contains(pointer) {
			return Hit{FieldID: o.FieldID, Delete: true}, true
		}
	}
	for i := len(overlays) - 1; i >= 0; i-- {
		if overlays[i].Rect.Contains(pointer) {
			return Hit{FieldID: overlays[i].FieldID}, true
		}
	}
	return Hit{}, false
}
