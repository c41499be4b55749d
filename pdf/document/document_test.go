package document

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/georgepadayatti/pdfsign/geometry"
	"github.com/georgepadayatti/pdfsign/pdf/document/documenttest"
	"github.com/georgepadayatti/pdfsign/pdf/images"
)

func testRaster(alpha bool) *images.Raster {
	r := &images.Raster{
		Width:      4,
		Height:     2,
		ColorSpace: images.ColorSpaceRGB,
		Samples:    bytes.Repeat([]byte{10, 20, 30}, 8),
	}
	if alpha {
		r.Alpha = bytes.Repeat([]byte{128}, 8)
	}
	return r
}

func TestOpen(t *testing.T) {
	doc, err := Open(documenttest.PDF(documenttest.Letter, documenttest.A4))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if got := doc.PageCount(); got != 2 {
		t.Errorf("PageCount() = %d, want 2", got)
	}

	tests := []struct {
		page int
		want geometry.Size
	}{
		{1, documenttest.Letter},
		{2, documenttest.A4},
	}
	for _, tt := range tests {
		got, err := doc.PageSize(tt.page)
		if err != nil {
			t.Fatalf("PageSize(%d) error = %v", tt.page, err)
		}
		if got != tt.want {
			t.Errorf("PageSize(%d) = %v, want %v", tt.page, got, tt.want)
		}
	}

	for _, page := range []int{0, 3, -1} {
		if _, err := doc.PageSize(page); !errors.Is(err, ErrPageOutOfRange) {
			t.Errorf("PageSize(%d) error = %v, want ErrPageOutOfRange", page, err)
		}
	}
}

func TestOpenInvalid(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     nil,
		"garbage":   []byte("this is not a pdf"),
		"truncated": documenttest.PDF()[:30],
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Open(data); !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("Open() error = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	info, err := Inspect(documenttest.PDF(documenttest.A4, documenttest.A4, documenttest.Letter))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.PageCount() != 3 {
		t.Errorf("PageCount() = %d, want 3", info.PageCount())
	}
	if size, _ := info.PageSize(3); size != documenttest.Letter {
		t.Errorf("PageSize(3) = %v, want %v", size, documenttest.Letter)
	}
	if _, err := info.PageSize(4); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("PageSize(4) error = %v", err)
	}
}

func TestDrawBuffersContent(t *testing.T) {
	doc, err := Open(documenttest.PDF())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := doc.DrawImage(1, testRaster(true), geometry.NewRect(100, 722, 200, 50)); err != nil {
		t.Fatalf("DrawImage() error = %v", err)
	}
	if err := doc.DrawText(1, "Jane Doe", geometry.Pt(50, 760), 12, color.RGBA{A: 255}); err != nil {
		t.Fatalf("DrawText() error = %v", err)
	}

	pd := doc.pages[1]
	content := string(pd.content.Bytes())
	for _, want := range []string{
		"q 200 0 0 50 100 722 cm /PSIm1 Do Q",
		"/PSF1 12 Tf",
		"50 760 Td",
		"(Jane Doe) Tj",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}

func TestDrawImageDeduplicates(t *testing.T) {
	doc, err := Open(documenttest.PDF(documenttest.Letter, documenttest.Letter))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	img := testRaster(false)
	for _, page := range []int{1, 1, 2} {
		if err := doc.DrawImage(page, img, geometry.NewRect(0, 0, 10, 10)); err != nil {
			t.Fatalf("DrawImage(%d) error = %v", page, err)
		}
	}

	if len(doc.images) != 1 {
		t.Errorf("embedded %d images, want 1", len(doc.images))
	}
	if len(doc.pages[1].xobjects) != 1 {
		t.Errorf("page 1 registers %d xobjects, want 1", len(doc.pages[1].xobjects))
	}
	if doc.pages[1].xobjects["PSIm1"] != doc.pages[2].xobjects["PSIm1"] {
		t.Error("pages should share one image object")
	}
}

func TestDrawRejects(t *testing.T) {
	doc, err := Open(documenttest.PDF())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := doc.DrawImage(2, testRaster(false), geometry.NewRect(0, 0, 1, 1)); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("DrawImage(page 2) error = %v, want ErrPageOutOfRange", err)
	}
	if err := doc.DrawText(0, "x", geometry.Pt(0, 0), 12, color.RGBA{}); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("DrawText(page 0) error = %v, want ErrPageOutOfRange", err)
	}
	if err := doc.DrawImage(1, &images.Raster{}, geometry.NewRect(0, 0, 1, 1)); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("DrawImage(empty) error = %v, want ErrEmptyImage", err)
	}
	if err := doc.DrawImage(1, nil, geometry.NewRect(0, 0, 1, 1)); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("DrawImage(nil) error = %v, want ErrEmptyImage", err)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	input := documenttest.PDF(documenttest.Letter, documenttest.A4)
	original := bytes.Clone(input)

	doc, err := Open(input)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := doc.DrawImage(2, testRaster(true), geometry.NewRect(100, 722, 200, 50)); err != nil {
		t.Fatalf("DrawImage() error = %v", err)
	}
	if err := doc.DrawText(2, "01/02/2026", geometry.Pt(50, 760), 12, color.RGBA{A: 255}); err != nil {
		t.Fatalf("DrawText() error = %v", err)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.Equal(input, original) {
		t.Error("input bytes were modified")
	}

	reloaded, err := Open(out)
	if err != nil {
		t.Fatalf("Open(output) error = %v", err)
	}
	if reloaded.PageCount() != 2 {
		t.Errorf("output PageCount() = %d, want 2", reloaded.PageCount())
	}
	if size, _ := reloaded.PageSize(2); size != documenttest.A4 {
		t.Errorf("output PageSize(2) = %v, want %v", size, documenttest.A4)
	}

	pageDict, _, _, err := reloaded.ctx.PageDict(2, false)
	if err != nil {
		t.Fatalf("PageDict() error = %v", err)
	}
	res, err := reloaded.ctx.DereferenceDict(pageDict["Resources"])
	if err != nil {
		t.Fatalf("Resources error = %v", err)
	}
	xobjects, _ := reloaded.ctx.DereferenceDict(res["XObject"])
	if _, ok := xobjects["PSIm1"]; !ok {
		t.Errorf("page 2 XObject resources = %v, want PSIm1", xobjects)
	}
	fonts, _ := reloaded.ctx.DereferenceDict(res["Font"])
	if _, ok := fonts["F1"]; !ok {
		t.Errorf("page 2 lost its original font resource: %v", fonts)
	}
	if _, ok := fonts["PSF1"]; !ok {
		t.Errorf("page 2 Font resources = %v, want PSF1", fonts)
	}

	contents, ok := pageDict["Contents"].(types.Array)
	if !ok || len(contents) != 3 {
		t.Errorf("page 2 Contents = %v, want 3 streams", pageDict["Contents"])
	}

	// the streams join into one operator sequence; the original page content
	// ends without a newline
	joined, err := reloaded.ctx.PageContent(pageDict, 2)
	if err != nil {
		t.Fatalf("PageContent() error = %v", err)
	}
	tokens := strings.Fields(string(joined))
	if len(tokens) == 0 || tokens[0] != "q" {
		t.Errorf("page 2 content should open with q: %q", joined)
	}
	var restores int
	for _, tok := range tokens {
		switch {
		case tok == "Q":
			restores++
		case strings.HasSuffix(tok, "Q") && tok != "Q":
			t.Errorf("operator %q runs into the restore: %q", tok, joined)
		}
	}
	// one for the wrapped original content, one for the image
	if restores != 2 {
		t.Errorf("page 2 content has %d Q operators, want 2: %q", restores, joined)
	}

	// page 1 was not drawn on and keeps its single content stream
	page1, _, _, err := reloaded.ctx.PageDict(1, false)
	if err != nil {
		t.Fatalf("PageDict(1) error = %v", err)
	}
	if _, ok := page1["Contents"].(types.IndirectRef); !ok {
		t.Errorf("page 1 Contents = %v, want a single reference", page1["Contents"])
	}
}

func TestEncodeWinAnsi(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"abc", []byte("abc")},
		{"café", []byte{'c', 'a', 'f', 0xe9}},
		{"€5", []byte{0x80, '5'}},
		{"日本", []byte("??")},
	}
	for _, tt := range tests {
		if got := encodeWinAnsi(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("encodeWinAnsi(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithFont(t *testing.T) {
	input := documenttest.PDF()

	if _, err := Open(input, WithFont("Comic Sans")); !errors.Is(err, ErrUnsupportedFont) {
		t.Errorf("Open(WithFont(Comic Sans)) error = %v, want ErrUnsupportedFont", err)
	}

	doc, err := Open(input, WithFont("Times-Bold"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := doc.DrawText(1, "x", geometry.Pt(10, 10), 12, color.RGBA{A: 255}); err != nil {
		t.Fatalf("DrawText() error = %v", err)
	}
	font, err := doc.ctx.DereferenceDict(*doc.font)
	if err != nil {
		t.Fatalf("DereferenceDict() error = %v", err)
	}
	if got := font["BaseFont"]; got != types.Name("Times-Bold") {
		t.Errorf("BaseFont = %v, want Times-Bold", got)
	}
}
