// Package fields implements the page-scoped field model: signature, text and
// date annotations placed on a document in document-space units.
//
// Fields are immutable values. Every operation that changes a field or a
// collection of fields returns a new value and leaves its input untouched.
package fields

import (
	"errors"
	"fmt"

	"github.com/georgepadayatti/pdfsign/geometry"
)

// Default field dimensions in document units.
const (
	DefaultWidth  = 200.0
	DefaultHeight = 50.0
)

// ErrUnknownKind is returned when a field kind name is not recognised.
var ErrUnknownKind = errors.New("unknown field kind")

// Kind identifies what a field holds. It is fixed at creation.
type Kind int

const (
	// KindSignature holds an image payload encoded as a data URL.
	KindSignature Kind = iota
	// KindText holds a literal string.
	KindText
	// KindDate holds a formatted date string.
	KindDate
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSignature:
		return "signature"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// IsText reports whether the kind is drawn as a text string.
func (k Kind) IsText() bool {
	return k == KindText || k == KindDate
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "signature":
		return KindSignature, nil
	case "text":
		return KindText, nil
	case "date":
		return KindDate, nil
	default:
		return KindSignature, fmt.Errorf("%w: %q (valid: signature, text, date)", ErrUnknownKind, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < KindSignature || k > KindDate {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Field is one user-placed annotation.
//
// X and Y locate the top-left corner of the field box in the page's native
// coordinate space, with the origin at the top-left of the page and Y growing
// downwards.
type Field struct {
	ID     string  `yaml:"id" json:"id"`
	Kind   Kind    `yaml:"kind" json:"kind"`
	Page   int     `yaml:"page" json:"page"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`

	// Content is nil until the matching capture step completes.
	Content *string `yaml:"content,omitempty" json:"content,omitempty"`
}

// HasContent reports whether content has been attached.
func (f Field) HasContent() bool {
	return f.Content != nil
}

// Value returns the attached content, if any.
func (f Field) Value() (string, bool) {
	if f.Content == nil {
		return "", false
	}
	return *f.Content, true
}

// Rect returns the field box in document space.
func (f Field) Rect() geometry.Rect {
	return geometry.NewRect(f.X, f.Y, f.Width, f.Height)
}

// Validate checks the structural invariants of a field.
func (f Field) Validate() error {
	if f.ID == "" {
		return errors.New("field id is empty")
	}
	if f.Page < 1 {
		return fmt.Errorf("field %s: page %d is not 1-based", f.ID, f.Page)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("field %s: size %gx%g must be positive", f.ID, f.Width, f.Height)
	}
	if f.Kind < KindSignature || f.Kind > KindDate {
		return fmt.Errorf("field %s: %w", f.ID, ErrUnknownKind)
	}
	return nil
}

// AttachContent returns a copy of f carrying value as its content. The
// identity, kind, page, position and size are carried over unchanged.
func AttachContent(f Field, value string) Field {
	v := value
	f.Content = &v
	return f
}
