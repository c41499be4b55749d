package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/georgepadayatti/pdfsign/bake"
	"github.com/georgepadayatti/pdfsign/capture"
	"github.com/georgepadayatti/pdfsign/config"
	"github.com/georgepadayatti/pdfsign/fields"
	"github.com/georgepadayatti/pdfsign/geometry"
	"github.com/georgepadayatti/pdfsign/pdf/document"
	"github.com/georgepadayatti/pdfsign/pdf/document/documenttest"
	"github.com/georgepadayatti/pdfsign/viewport"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func signaturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1200, 300))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBakeFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "contract.pdf", documenttest.PDF(documenttest.Letter, documenttest.Letter))
	writeFile(t, dir, "sig.png", signaturePNG(t))
	logFile := filepath.Join(dir, "bake.log")
	cfgPath := writeFile(t, dir, "pdfsign.yaml", []byte("logging:\n  output: "+logFile+"\n"))
	fieldsPath := writeFile(t, dir, "fields.yaml", []byte(`
fields:
  - id: sig
    kind: signature
    page: 1
    x: 100
    y: 20
    content: "@sig.png"
  - id: name
    kind: text
    page: 2
    x: 100
    y: 100
    width: 200
    height: 20
    content: Jane Doe
  - id: when
    kind: date
    page: 2
    x: 100
    y: 140
    content: today
  - id: ghost
    kind: text
    page: 7
    x: 0
    y: 0
    content: nowhere
  - id: empty
    kind: date
    page: 1
    x: 0
    y: 0
`))

	result, outputPath, err := bakeFile(context.Background(), input, fieldsPath, &BakeOptions{ConfigFile: cfgPath})
	if err != nil {
		t.Fatalf("bakeFile() error = %v", err)
	}

	if want := filepath.Join(dir, "signed-contract.pdf"); outputPath != want {
		t.Errorf("output path = %q, want %q", outputPath, want)
	}
	if got := strings.Join(result.Baked, ","); got != "sig,name,when" {
		t.Errorf("Baked = %q, want sig,name,when", got)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].FieldID != "ghost" || result.Skipped[0].Reason != bake.SkipMissingPage {
		t.Errorf("Skipped = %+v", result.Skipped)
	}

	out, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	info, err := document.Inspect(out)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if info.PageCount() != 2 {
		t.Errorf("output pages = %d, want 2", info.PageCount())
	}
}

func TestBakeFileExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.pdf", documenttest.PDF())
	fieldsPath := writeFile(t, dir, "fields.json", []byte(`{"fields": [{"kind": "text", "page": 1, "x": 10, "y": 10, "content": "hi"}]}`))
	output := filepath.Join(dir, "custom.pdf")

	result, outputPath, err := bakeFile(context.Background(), input, fieldsPath, &BakeOptions{Output: output})
	if err != nil {
		t.Fatalf("bakeFile() error = %v", err)
	}
	if outputPath != output || len(result.Baked) != 1 {
		t.Errorf("bakeFile() = %v, %q", result.Baked, outputPath)
	}
}

func TestBakeFileErrors(t *testing.T) {
	dir := t.TempDir()
	pdf := writeFile(t, dir, "in.pdf", documenttest.PDF())
	garbage := writeFile(t, dir, "garbage.pdf", []byte("not a pdf"))
	fieldsPath := writeFile(t, dir, "fields.yaml", []byte("fields:\n  - {kind: text, page: 1, x: 1, y: 1, content: a}\n"))
	badContent := writeFile(t, dir, "bad.yaml", []byte("fields:\n  - {kind: text, page: 1, x: 1, y: 1, content: '  '}\n"))

	tests := []struct {
		name    string
		input   string
		fields  string
		wantErr error
	}{
		{"document", garbage, fieldsPath, bake.ErrDocument},
		{"blank text", pdf, badContent, ErrBadContent},
		{"missing input", filepath.Join(dir, "missing.pdf"), fieldsPath, os.ErrNotExist},
		{"missing fields", pdf, filepath.Join(dir, "missing.yaml"), os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := bakeFile(context.Background(), tt.input, tt.fields, &BakeOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("bakeFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sig.png", signaturePNG(t))
	writeFile(t, dir, "notes.txt", []byte("plain text, not an image"))
	cfg := config.Default()

	field := func(kind fields.Kind, content string) []fields.Field {
		return []fields.Field{fields.AttachContent(fields.Field{ID: "f", Kind: kind, Page: 1, Width: 10, Height: 10}, content)}
	}

	t.Run("signature file is downsized", func(t *testing.T) {
		fs, err := resolveContent(field(fields.KindSignature, "@sig.png"), dir, cfg)
		if err != nil {
			t.Fatalf("resolveContent() error = %v", err)
		}
		value, _ := fs[0].Value()
		_, data, err := capture.DecodeDataURL(value)
		if err != nil {
			t.Fatal(err)
		}
		c, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatal(err)
		}
		if c.Width != 600 || c.Height != 150 {
			t.Errorf("signature size = %dx%d, want 600x150", c.Width, c.Height)
		}
	})

	t.Run("data url kept", func(t *testing.T) {
		url := capture.EncodeDataURL("image/png", signaturePNG(t))
		fs, err := resolveContent(field(fields.KindSignature, url), dir, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := fs[0].Value(); v != url {
			t.Error("data URL content should be kept")
		}
	})

	t.Run("date literal kept", func(t *testing.T) {
		fs, err := resolveContent(field(fields.KindDate, "12/31/2025"), dir, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := fs[0].Value(); v != "12/31/2025" {
			t.Errorf("date = %q", v)
		}
	})

	t.Run("absent content kept", func(t *testing.T) {
		in := []fields.Field{{ID: "f", Kind: fields.KindText, Page: 1, Width: 1, Height: 1}}
		fs, err := resolveContent(in, dir, cfg)
		if err != nil || fs[0].HasContent() {
			t.Errorf("resolveContent() = %+v, %v", fs, err)
		}
	})

	rejects := []struct {
		name    string
		kind    fields.Kind
		content string
	}{
		{"not an image", fields.KindSignature, "@notes.txt"},
		{"missing image", fields.KindSignature, "@missing.png"},
		{"not a data url", fields.KindSignature, "my signature"},
		{"blank text", fields.KindText, " \t"},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := resolveContent(field(tt.kind, tt.content), dir, cfg); !errors.Is(err, ErrBadContent) {
				t.Errorf("resolveContent() error = %v, want ErrBadContent", err)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input, prefix, want string
	}{
		{"contract.pdf", "signed-", "signed-contract.pdf"},
		{filepath.Join("docs", "a.pdf"), "signed-", filepath.Join("docs", "signed-a.pdf")},
		{"a.pdf", "final-", "final-a.pdf"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.input, tt.prefix); got != tt.want {
			t.Errorf("defaultOutputPath(%q, %q) = %q, want %q", tt.input, tt.prefix, got, tt.want)
		}
	}
}

func TestInspectPages(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "two.pdf", documenttest.PDF(documenttest.Letter, documenttest.A4))

	output, err := inspectPages(path)
	if err != nil {
		t.Fatalf("inspectPages() error = %v", err)
	}

	var text bytes.Buffer
	if err := writePagesText(&text, output); err != nil {
		t.Fatal(err)
	}
	want := path + ": 2 page(s)\n  page 1: 612 x 792 pt\n  page 2: 595 x 842 pt\n"
	if text.String() != want {
		t.Errorf("text output = %q, want %q", text.String(), want)
	}

	var js bytes.Buffer
	if err := writePagesJSON(&js, output); err != nil {
		t.Fatal(err)
	}
	var decoded PagesOutput
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output does not decode: %v", err)
	}
	if len(decoded.Pages) != 2 || decoded.Pages[1].Height != 842 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", documenttest.PDF(documenttest.Letter, documenttest.A4))

	tests := []struct {
		name  string
		click geometry.Point
		opts  LocateOptions
		want  geometry.Point
	}{
		{"zoom 2 at origin", geometry.Pt(200, 400), LocateOptions{Page: 1, Zoom: 2}, geometry.Pt(100, 200)},
		{"explicit view", geometry.Pt(140, 280), LocateOptions{Page: 2, View: "40,80,595,842"}, geometry.Pt(100, 200)},
		{"corner", geometry.Pt(612, 792), LocateOptions{Page: 1, Zoom: 1}, geometry.Pt(612, 792)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locate(path, tt.click, &tt.opts)
			if err != nil {
				t.Fatalf("locate() error = %v", err)
			}
			if !scalar.EqualWithinAbs(got.X, tt.want.X, 1e-9) || !scalar.EqualWithinAbs(got.Y, tt.want.Y, 1e-9) {
				t.Errorf("locate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocateErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", documenttest.PDF())

	if _, err := locate(path, geometry.Pt(700, 10), &LocateOptions{Page: 1, Zoom: 1}); !errors.Is(err, viewport.ErrOutsidePage) {
		t.Errorf("locate(outside) error = %v, want ErrOutsidePage", err)
	}
	if _, err := locate(path, geometry.Pt(1, 1), &LocateOptions{Page: 3, Zoom: 1}); !errors.Is(err, document.ErrPageOutOfRange) {
		t.Errorf("locate(page 3) error = %v, want ErrPageOutOfRange", err)
	}
	if _, err := locate(path, geometry.Pt(1, 1), &LocateOptions{Page: 1, View: "1,2,3"}); !errors.Is(err, ErrBadRect) {
		t.Errorf("locate(bad view) error = %v, want ErrBadRect", err)
	}
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		input   string
		want    geometry.Rect
		wantErr bool
	}{
		{"0,0,612,792", geometry.NewRect(0, 0, 612, 792), false},
		{" 1.5, 2 ,3,4 ", geometry.NewRect(1.5, 2, 3, 4), false},
		{"1,2,3", geometry.Rect{}, true},
		{"a,b,c,d", geometry.Rect{}, true},
	}
	for _, tt := range tests {
		got, err := parseRect(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseRect(%q) = %v, %v", tt.input, got, err)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var code int
	osExit = func(c int) { code = c }
	defer func() { osExit = os.Exit }()

	Run([]string{"pdfsign", "frobnicate"})
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}
