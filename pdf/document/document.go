// Package document loads PDF bytes, reports page geometry and paints baked
// field appearances onto pages using pdfcpu.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"slices"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"

	"github.com/georgepadayatti/pdfsign/geometry"
	"github.com/georgepadayatti/pdfsign/pdf/images"
	"github.com/georgepadayatti/pdfsign/stamp"
)

// Common errors
var (
	ErrInvalidDocument = errors.New("invalid PDF document")
	ErrPageOutOfRange  = errors.New("page out of range")
	ErrEmptyImage      = errors.New("image has no pixels")
	ErrUnsupportedFont = errors.New("unsupported font")
)

// DefaultFont is the font used for text draws.
const DefaultFont = "Helvetica"

// standardFonts are the standard Type1 fonts that take WinAnsiEncoding.
var standardFonts = []string{
	"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique",
	"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic",
	"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique",
}

// IsStandardFont reports whether name is a standard font usable for text.
func IsStandardFont(name string) bool {
	return slices.Contains(standardFonts, name)
}

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	api.DisableConfigDir()
}

// Document is an open PDF that accepts image and text draws. Draws are
// buffered per page and written when Bytes is called.
type Document struct {
	ctx   *model.Context
	sizes []geometry.Size

	pages    map[int]*pageDraws
	images   map[[32]byte]types.IndirectRef
	font     *types.IndirectRef
	baseFont string
}

// Option configures a Document.
type Option func(*Document) error

// WithFont sets the standard font used by DrawText.
func WithFont(name string) Option {
	return func(d *Document) error {
		if !IsStandardFont(name) {
			return fmt.Errorf("%w: %q", ErrUnsupportedFont, name)
		}
		d.baseFont = name
		return nil
	}
}

// pageDraws is the pending content for one page.
type pageDraws struct {
	content stamp.ContentWriter
	// names already present in the page's resources plus the ones we add
	used     map[string]bool
	xobjects map[string]types.IndirectRef
	byDigest map[[32]byte]string
	fontName string
}

// Open parses doc. The returned document shares nothing with doc.
func Open(doc []byte, opts ...Option) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(doc), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read: %v", ErrInvalidDocument, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidDocument)
	}

	sizes, err := pageSizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	d := &Document{
		ctx:      ctx,
		sizes:    sizes,
		pages:    make(map[int]*pageDraws),
		images:   make(map[[32]byte]types.IndirectRef),
		baseFont: DefaultFont,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// pageSizes reads each page's media box, falling back to pdfcpu's page
// dimensions when the box cannot be resolved.
func pageSizes(ctx *model.Context) ([]geometry.Size, error) {
	var dims []types.Dim
	sizes := make([]geometry.Size, ctx.PageCount)

	for i := 1; i <= ctx.PageCount; i++ {
		_, _, inh, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if inh != nil && inh.MediaBox != nil {
			sizes[i-1] = geometry.Size{Width: inh.MediaBox.Width(), Height: inh.MediaBox.Height()}
			continue
		}

		if dims == nil {
			if dims, err = ctx.PageDims(); err != nil {
				return nil, fmt.Errorf("failed to get page dimensions: %w", err)
			}
		}
		if i > len(dims) {
			return nil, fmt.Errorf("no dimensions for page %d", i)
		}
		sizes[i-1] = geometry.Size{Width: dims[i-1].Width, Height: dims[i-1].Height}
	}
	return sizes, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.sizes)
}

// PageSize returns the native size of page, counted from 1.
func (d *Document) PageSize(page int) (geometry.Size, error) {
	if page < 1 || page > len(d.sizes) {
		return geometry.Size{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, len(d.sizes))
	}
	return d.sizes[page-1], nil
}

// Info returns the page geometry of the document.
func (d *Document) Info() *Info {
	return &Info{Pages: slices.Clone(d.sizes)}
}

// DrawImage paints img into r on page. r is in PDF user space with X and Y at
// its lower-left corner. Identical images are embedded once per document.
func (d *Document) DrawImage(page int, img *images.Raster, r geometry.Rect) error {
	if _, err := d.PageSize(page); err != nil {
		return err
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 || len(img.Samples) == 0 {
		return ErrEmptyImage
	}

	pd, err := d.page(page)
	if err != nil {
		return err
	}

	digest := img.Digest()
	name, ok := pd.byDigest[digest]
	if !ok {
		ref, err := d.embedImage(digest, img)
		if err != nil {
			return err
		}
		name = pd.newName("PSIm")
		pd.byDigest[digest] = name
		pd.xobjects[name] = ref
	}

	pd.content.Image(name, r)
	return nil
}

// DrawText shows text on page with its baseline starting at origin, in PDF
// user space. Runes outside Windows-1252 are replaced with '?'.
func (d *Document) DrawText(page int, text string, origin geometry.Point, size float64, c color.RGBA) error {
	if _, err := d.PageSize(page); err != nil {
		return err
	}

	pd, err := d.page(page)
	if err != nil {
		return err
	}
	if err := d.ensureFont(); err != nil {
		return err
	}
	if pd.fontName == "" {
		pd.fontName = pd.newName("PSF")
	}

	pd.content.Text(pd.fontName, size, c, origin, encodeWinAnsi(text))
	return nil
}

// Bytes writes all pending draws into the document and serializes it.
func (d *Document) Bytes() ([]byte, error) {
	pages := make([]int, 0, len(d.pages))
	for p := range d.pages {
		pages = append(pages, p)
	}
	slices.Sort(pages)

	for _, p := range pages {
		if err := d.flush(p, d.pages[p]); err != nil {
			return nil, fmt.Errorf("failed to write page %d: %w", p, err)
		}
		delete(d.pages, p)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) page(page int) (*pageDraws, error) {
	if pd, ok := d.pages[page]; ok {
		return pd, nil
	}

	pageDict, _, inh, err := d.ctx.PageDict(page, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", page, err)
	}

	pd := &pageDraws{
		used:     make(map[string]bool),
		xobjects: make(map[string]types.IndirectRef),
		byDigest: make(map[[32]byte]string),
	}

	res, err := d.resources(pageDict, inh)
	if err != nil {
		return nil, err
	}
	for _, key := range []string{"XObject", "Font"} {
		sub, err := d.ctx.DereferenceDict(res[key])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s resources: %w", key, err)
		}
		for name := range sub {
			pd.used[name] = true
		}
	}

	d.pages[page] = pd
	return pd, nil
}

func (pd *pageDraws) newName(prefix string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		if !pd.used[name] {
			pd.used[name] = true
			return name
		}
	}
}

// resources returns a private copy of the page's resource dictionary so that
// resources shared with other pages are left untouched.
func (d *Document) resources(pageDict types.Dict, inh *model.InheritedPageAttrs) (types.Dict, error) {
	if obj, found := pageDict.Find("Resources"); found {
		res, err := d.ctx.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to read resources: %w", err)
		}
		if res != nil {
			return res.Clone().(types.Dict), nil
		}
	}
	if inh != nil && inh.Resources != nil {
		return inh.Resources.Clone().(types.Dict), nil
	}
	return types.NewDict(), nil
}

// subDict returns a private copy of res[key], creating it when absent.
func (d *Document) subDict(res types.Dict, key string) (types.Dict, error) {
	sub, err := d.ctx.DereferenceDict(res[key])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s resources: %w", key, err)
	}
	if sub == nil {
		return types.NewDict(), nil
	}
	return sub.Clone().(types.Dict), nil
}

func (d *Document) flush(page int, pd *pageDraws) error {
	if pd.content.Len() == 0 {
		return nil
	}

	pageDict, _, inh, err := d.ctx.PageDict(page, false)
	if err != nil {
		return err
	}

	res, err := d.resources(pageDict, inh)
	if err != nil {
		return err
	}
	if len(pd.xobjects) > 0 {
		xobjects, err := d.subDict(res, "XObject")
		if err != nil {
			return err
		}
		for name, ref := range pd.xobjects {
			xobjects[name] = ref
		}
		res["XObject"] = xobjects
	}
	if pd.fontName != "" {
		fonts, err := d.subDict(res, "Font")
		if err != nil {
			return err
		}
		fonts[pd.fontName] = *d.font
		res["Font"] = fonts
	}
	pageDict["Resources"] = res

	existing, err := d.contents(pageDict)
	if err != nil {
		return err
	}

	// The original content runs inside q ... Q so that any graphics state it
	// leaves behind cannot leak into the baked appearances.
	open, err := d.newStream([]byte("q\n"))
	if err != nil {
		return err
	}
	// The original content may not end in whitespace.
	overlay := append([]byte("\nQ\n"), pd.content.Bytes()...)
	appended, err := d.newStream(overlay)
	if err != nil {
		return err
	}

	contents := make(types.Array, 0, len(existing)+2)
	contents = append(contents, open)
	contents = append(contents, existing...)
	contents = append(contents, appended)
	pageDict["Contents"] = contents
	return nil
}

// contents returns the page's content streams as an array of references.
func (d *Document) contents(pageDict types.Dict) (types.Array, error) {
	obj, found := pageDict.Find("Contents")
	if !found || obj == nil {
		return nil, nil
	}

	switch v := obj.(type) {
	case types.IndirectRef:
		o, err := d.ctx.Dereference(v)
		if err != nil {
			return nil, fmt.Errorf("failed to read page contents: %w", err)
		}
		if arr, ok := o.(types.Array); ok {
			return arr, nil
		}
		return types.Array{v}, nil
	case types.Array:
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected page contents type %T", obj)
	}
}

// newStream adds a Flate-compressed stream object and returns its reference.
func (d *Document) newStream(content []byte) (types.IndirectRef, error) {
	sd, err := d.ctx.NewStreamDictForBuf(content)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return d.addStream(sd)
}

func (d *Document) addStream(sd *types.StreamDict) (types.IndirectRef, error) {
	if err := sd.Encode(); err != nil {
		return types.IndirectRef{}, fmt.Errorf("failed to encode stream: %w", err)
	}
	sd.Dict["Length"] = types.Integer(len(sd.Raw))

	ref, err := d.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}

func (d *Document) embedImage(digest [32]byte, img *images.Raster) (types.IndirectRef, error) {
	if ref, ok := d.images[digest]; ok {
		return ref, nil
	}

	sd, err := d.imageStream(img)
	if err != nil {
		return types.IndirectRef{}, err
	}
	if mask := img.AlphaMask(); mask != nil {
		msd, err := d.imageStream(mask)
		if err != nil {
			return types.IndirectRef{}, err
		}
		maskRef, err := d.addStream(msd)
		if err != nil {
			return types.IndirectRef{}, fmt.Errorf("failed to embed soft mask: %w", err)
		}
		sd.Insert("SMask", maskRef)
	}

	ref, err := d.addStream(sd)
	if err != nil {
		return types.IndirectRef{}, fmt.Errorf("failed to embed image: %w", err)
	}
	d.images[digest] = ref
	return ref, nil
}

func (d *Document) imageStream(img *images.Raster) (*types.StreamDict, error) {
	sd, err := d.ctx.NewStreamDictForBuf(img.Samples)
	if err != nil {
		return nil, err
	}
	sd.InsertName("Type", "XObject")
	sd.InsertName("Subtype", "Image")
	sd.InsertInt("Width", img.Width)
	sd.InsertInt("Height", img.Height)
	sd.InsertName("ColorSpace", string(img.ColorSpace))
	sd.InsertInt("BitsPerComponent", 8)
	return sd, nil
}

func (d *Document) ensureFont() error {
	if d.font != nil {
		return nil
	}
	font := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(d.baseFont),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	ref, err := d.ctx.IndRefForNewObject(font)
	if err != nil {
		return fmt.Errorf("failed to add font: %w", err)
	}
	d.font = ref
	return nil
}

// encodeWinAnsi encodes s for a font using WinAnsiEncoding.
func encodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}
