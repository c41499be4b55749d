package fields

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces field identifiers. Identifiers only need to be unique
// among the fields created by one Factory.
type IDGenerator func() string

// RandomIDs returns random v4 UUID strings.
func RandomIDs() IDGenerator {
	return uuid.NewString
}

// SequentialIDs returns "field-1", "field-2", ... from a monotonic counter.
func SequentialIDs() IDGenerator {
	var n atomic.Uint64
	return func() string {
		return "field-" + strconv.FormatUint(n.Add(1), 10)
	}
}

// Factory creates fields with fresh identifiers and default dimensions.
type Factory struct {
	newID         IDGenerator
	defaultWidth  float64
	defaultHeight float64
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithIDGenerator sets the identifier generator.
func WithIDGenerator(gen IDGenerator) FactoryOption {
	return func(f *Factory) {
		if gen != nil {
			f.newID = gen
		}
	}
}

// WithSequentialIDs is shorthand for WithIDGenerator(SequentialIDs()).
func WithSequentialIDs() FactoryOption {
	return WithIDGenerator(SequentialIDs())
}

// WithDefaultSize sets the size given to fields created by Create.
// Non-positive values are ignored.
func WithDefaultSize(width, height float64) FactoryOption {
	return func(f *Factory) {
		if width > 0 {
			f.defaultWidth = width
		}
		if height > 0 {
			f.defaultHeight = height
		}
	}
}

// NewFactory creates a new field factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		newID:         RandomIDs(),
		defaultWidth:  DefaultWidth,
		defaultHeight: DefaultHeight,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a new field of the default size anchored at (x, y) on page.
// The field has no content and is not part of any collection yet; the caller
// holds it as pending until content is attached.
func (f *Factory) Create(kind Kind, page int, x, y float64) Field {
	return f.CreateSized(kind, page, x, y, f.defaultWidth, f.defaultHeight)
}

// CreateSized is like Create with an explicit size.
func (f *Factory) CreateSized(kind Kind, page int, x, y, width, height float64) Field {
	return Field{
		ID:     f.newID(),
		Kind:   kind,
		Page:   page,
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// DefaultSize returns the size used by Create.
func (f *Factory) DefaultSize() (width, height float64) {
	return f.defaultWidth, f.defaultHeight
}

// Append returns a new collection with field added at the end.
func Append(fs []Field, field Field) []Field {
	out := make([]Field, 0, len(fs)+1)
	out = append(out, fs...)
	return append(out, field)
}

// ForPage returns the fields on page in insertion order.
func ForPage(fs []Field, page int) []Field {
	var out []Field
	for _, f := range fs {
		if f.Page == page {
			out = append(out, f)
		}
	}
	return out
}

// Remove returns the collection without the field identified by id.
// Removing an absent id is a no-op.
func Remove(fs []Field, id string) []Field {
	out := make([]Field, 0, len(fs))
	for _, f := range fs {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

// Find returns the field identified by id.
func Find(fs []Field, id string) (Field, bool) {
	for _, f := range fs {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Bakeable returns the fields that carry content, in insertion order.
func Bakeable(fs []Field) []Field {
	var out []Field
	for _, f := range fs {
		if f.HasContent() {
			out = append(out, f)
		}
	}
	return out
}
