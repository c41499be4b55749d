// Package viewport converts between screen space, where a page is displayed at
// some zoom and offset, and document space, the page's native coordinate
// system. Both spaces share a top-left origin with Y growing downwards.
package viewport

import (
	"errors"

	"github.com/georgepadayatti/pdfsign/geometry"
)

// Common errors
var (
	ErrOutsidePage = errors.New("pointer outside page surface")
	ErrNoGeometry  = errors.New("page geometry not known")
)

// ToDocumentSpace converts a pointer position in viewport pixels into document
// units for a page displayed in view whose native size is native.
//
// Points on the boundary of view are accepted. Callers treat ErrOutsidePage as
// a click to ignore.
func ToDocumentSpace(pointer geometry.Point, view geometry.Rect, native geometry.Size) (geometry.Point, error) {
	if view.Empty() || native.Empty() {
		return geometry.Point{}, ErrNoGeometry
	}
	if !view.Contains(pointer) {
		return geometry.Point{}, ErrOutsidePage
	}

	return geometry.Point{
		X: (pointer.X - view.X) / view.Width * native.Width,
		Y: (pointer.Y - view.Y) / view.Height * native.Height,
	}, nil
}

// ToScreenSpace is the inverse of ToDocumentSpace.
func ToScreenSpace(doc geometry.Point, view geometry.Rect, native geometry.Size) geometry.Point {
	if native.Empty() {
		return view.Origin()
	}
	return geometry.Point{
		X: doc.X*(view.Width/native.Width) + view.X,
		Y: doc.Y*(view.Height/native.Height) + view.Y,
	}
}

// ScaleRect projects a document-space rectangle into screen space.
func ScaleRect(r geometry.Rect, view geometry.Rect, native geometry.Size) geometry.Rect {
	if native.Empty() {
		return geometry.Rect{X: view.X, Y: view.Y}
	}
	sx := view.Width / native.Width
	sy := view.Height / native.Height
	return geometry.Rect{
		X:      r.X*sx + view.X,
		Y:      r.Y*sy + view.Y,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}
}
