// Package session holds the state of one signing session: the loaded
// document, the visible page and zoom, the active tool, the pending field and
// the placed fields.
//
// A Session is driven by discrete user actions. Its methods are safe for
// concurrent use so that a geometry poller and an export may run alongside
// the interaction loop, but at most one export runs at a time.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/georgepadayatti/pdfsign/bake"
	"github.com/georgepadayatti/pdfsign/fields"
	"github.com/georgepadayatti/pdfsign/geometry"
	"github.com/georgepadayatti/pdfsign/pdf/document"
	"github.com/georgepadayatti/pdfsign/viewport"
)

// Common errors
var (
	ErrNotPDF         = errors.New("not a PDF document")
	ErrNoDocument     = errors.New("no document loaded")
	ErrNoTool         = errors.New("no tool selected")
	ErrNoGeometry     = viewport.ErrNoGeometry
	ErrNoPending      = errors.New("no pending field")
	ErrNoFields       = errors.New("no fields to export")
	ErrBakeInProgress = errors.New("export already in progress")
)

// pdfMagic starts every PDF file.
var pdfMagic = []byte("%PDF-")

// Baker bakes fields into a document.
type Baker interface {
	Bake(ctx context.Context, doc []byte, fs []fields.Field) (*bake.Result, error)
}

// Inspector reads the page geometry of a document.
type Inspector func(doc []byte) (*document.Info, error)

// Output is an exported document.
type Output struct {
	// Name is the suggested file name.
	Name string
	*bake.Result
}

// Session is one document being signed.
type Session struct {
	logger     *slog.Logger
	factory    *fields.Factory
	baker      Baker
	inspect    Inspector
	zoomRange  viewport.ZoomRange
	handleSize float64
	prefix     string
	gate       *semaphore.Weighted

	mu       sync.Mutex
	name     string
	doc      []byte
	info     *document.Info
	page     int
	zoom     float64
	view     geometry.Rect
	hasView  bool
	tool     fields.Kind
	hasTool  bool
	pending  *fields.Field
	fields   []fields.Field
	selected string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFactory sets the factory used to create fields.
func WithFactory(f *fields.Factory) Option {
	return func(s *Session) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithBaker sets the engine used by Export.
func WithBaker(b Baker) Option {
	return func(s *Session) {
		if b != nil {
			s.baker = b
		}
	}
}

// WithInspector sets how loaded documents are measured.
func WithInspector(inspect Inspector) Option {
	return func(s *Session) {
		if inspect != nil {
			s.inspect = inspect
		}
	}
}

// WithZoomRange sets the zoom limits.
func WithZoomRange(z viewport.ZoomRange) Option {
	return func(s *Session) {
		if z.Min > 0 && z.Max >= z.Min && z.Step > 0 {
			s.zoomRange = z
		}
	}
}

// WithHandleSize sets the delete handle size in screen pixels.
func WithHandleSize(size float64) Option {
	return func(s *Session) {
		if size > 0 {
			s.handleSize = size
		}
	}
}

// WithOutputPrefix sets the prefix of exported file names.
func WithOutputPrefix(prefix string) Option {
	return func(s *Session) {
		s.prefix = prefix
	}
}

// New creates an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		logger:     slog.Default(),
		inspect:    document.Inspect,
		zoomRange:  viewport.DefaultZoomRange(),
		handleSize: viewport.DefaultHandleSize,
		prefix:     DefaultOutputPrefix,
		gate:       semaphore.NewWeighted(1),
		zoom:       1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.factory == nil {
		s.factory = fields.NewFactory()
	}
	if s.baker == nil {
		s.baker = bake.New(bake.WithLogger(s.logger))
	}
	return s
}

// Load replaces the session's document. The content type must be
// application/pdf, or empty with data that starts like a PDF. Loading resets
// the page, fields, tool, pending field and selection.
func (s *Session) Load(name, contentType string, data []byte) error {
	if !isPDF(contentType, data) {
		return fmt.Errorf("%w: %q", ErrNotPDF, name)
	}

	doc := bytes.Clone(data)
	info, err := s.inspect(doc)
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", name, err)
	}
	if info.PageCount() == 0 {
		return fmt.Errorf("failed to load %q: %w: no pages", name, document.ErrInvalidDocument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = name
	s.doc = doc
	s.info = info
	s.page = 1
	s.hasView = false
	s.hasTool = false
	s.pending = nil
	s.fields = nil
	s.selected = ""

	s.logger.Info("loaded document", "name", name, "pages", info.PageCount(), "bytes", len(doc))
	return nil
}

func isPDF(contentType string, data []byte) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "application/pdf":
		return true
	case "":
		return bytes.HasPrefix(data, pdfMagic)
	default:
		return false
	}
}

// Loaded reports whether a document is loaded.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info != nil
}

// Name returns the loaded document's file name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// PageCount returns the number of pages, or zero without a document.
func (s *Session) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return 0
	}
	return s.info.PageCount()
}

// Page returns the visible page, counted from 1. It is zero without a
// document.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// PageSize returns the native size of the visible page.
func (s *Session) PageSize() (geometry.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return geometry.Size{}, ErrNoDocument
	}
	return s.info.PageSize(s.page)
}

// SetPage shows page n, clamped to the document's pages, and returns the
// page shown. The display geometry of the previous page is forgotten.
func (s *Session) SetPage(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return 0
	}
	n = max(1, min(n, s.info.PageCount()))
	if n != s.page {
		s.page = n
		s.hasView = false
	}
	return s.page
}

// NextPage moves forward one page.
func (s *Session) NextPage() int {
	return s.SetPage(s.Page() + 1)
}

// PrevPage moves back one page.
func (s *Session) PrevPage() int {
	return s.SetPage(s.Page() - 1)
}

// Zoom returns the current zoom factor.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// ZoomIn steps the zoom up and returns the new factor.
func (s *Session) ZoomIn() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = s.zoomRange.In(s.zoom)
	return s.zoom
}

// ZoomOut steps the zoom down and returns the new factor.
func (s *Session) ZoomOut() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = s.zoomRange.Out(s.zoom)
	return s.zoom
}

// SetView records where the visible page is displayed on screen. Hosts call
// it whenever the page is rendered, resized or scrolled.
func (s *Session) SetView(r geometry.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = r
	s.hasView = !r.Empty()
}

// DisplayRect implements viewport.Surface.
func (s *Session) DisplayRect() (geometry.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view, s.hasView
}

// Poller returns a viewport.Poller delivering the session's overlays to sink.
func (s *Session) Poller(interval time.Duration, sink func([]viewport.Overlay)) *viewport.Poller {
	return viewport.NewPoller(interval, s.Overlays, sink)
}

// Fields returns a copy of the placed fields in insertion order.
func (s *Session) Fields() []fields.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.fields)
}

// PageFields returns the placed fields on the visible page.
func (s *Session) PageFields() []fields.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fields.ForPage(s.fields, s.page)
}

// Overlays projects the visible page's fields onto the display. It is nil
// while the display geometry is unknown.
func (s *Session) Overlays() []viewport.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projector()
	if !ok {
		return nil
	}
	return p.ProjectSelected(fields.ForPage(s.fields, s.page), s.selected)
}

// projector must be called with s.mu held.
func (s *Session) projector() (*viewport.Projector, bool) {
	if s.info == nil || !s.hasView {
		return nil, false
	}
	native, err := s.info.PageSize(s.page)
	if err != nil {
		return nil, false
	}
	view := s.view
	p := viewport.NewProjector(native, viewport.SurfaceFunc(func() (geometry.Rect, bool) {
		return view, true
	}))
	p.HandleSize = s.handleSize
	return p, true
}

// CanExport reports whether Export has anything to do.
func (s *Session) CanExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info != nil && len(s.fields) > 0
}

// Export bakes the placed fields into a copy of the document. Only one export
// runs at a time; a concurrent call fails with ErrBakeInProgress.
func (s *Session) Export(ctx context.Context) (*Output, error) {
	if !s.gate.TryAcquire(1) {
		return nil, ErrBakeInProgress
	}
	defer s.gate.Release(1)

	s.mu.Lock()
	doc, fs, name, prefix := s.doc, slices.Clone(s.fields), s.name, s.prefix
	loaded := s.info != nil
	s.mu.Unlock()

	if !loaded {
		return nil, ErrNoDocument
	}
	if len(fs) == 0 {
		return nil, ErrNoFields
	}

	result, err := s.baker.Bake(ctx, doc, fs)
	if err != nil {
		return nil, fmt.Errorf("failed to export %q: %w", name, err)
	}
	return &Output{Name: prefixedName(prefix, name), Result: result}, nil
}
