package stamp

import (
	"image/color"
	"strings"
	"testing"

	"github.com/georgepadayatti/pdfsign/geometry"
)

func TestImageScaleMode_String(t *testing.T) {
	tests := []struct {
		mode     ImageScaleMode
		expected string
	}{
		{ImageScaleFit, "fit"},
		{ImageScaleFill, "fill"},
		{ImageScaleStretch, "stretch"},
		{ImageScaleNone, "none"},
		{ImageScaleMode(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.mode.String(); got != tc.expected {
			t.Errorf("ImageScaleMode(%d).String() = %q, want %q", tc.mode, got, tc.expected)
		}
	}
}

func TestParseImageScaleMode(t *testing.T) {
	tests := []struct {
		input    string
		expected ImageScaleMode
		wantErr  bool
	}{
		{"fit", ImageScaleFit, false},
		{"", ImageScaleFit, false},
		{"fill", ImageScaleFill, false},
		{"stretch", ImageScaleStretch, false},
		{"none", ImageScaleNone, false},
		{"invalid", ImageScaleFit, true},
	}

	for _, tc := range tests {
		got, err := ParseImageScaleMode(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseImageScaleMode(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.expected {
			t.Errorf("ParseImageScaleMode(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestParseImagePosition(t *testing.T) {
	for _, pos := range []ImagePosition{ImagePositionTopLeft, ImagePositionCenter, ImagePositionBottomLeft} {
		got, err := ParseImagePosition(pos.String())
		if err != nil || got != pos {
			t.Errorf("ParseImagePosition(%q) = %v, %v", pos.String(), got, err)
		}
	}
	if _, err := ParseImagePosition("middle"); err == nil {
		t.Error("ParseImagePosition(middle) should fail")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		mode         ImageScaleMode
		iw, ih       float64
		bw, bh       float64
		wantW, wantH float64
	}{
		{"wide image into wide box", ImageScaleFit, 400, 100, 200, 50, 200, 50},
		{"square image limited by height", ImageScaleFit, 100, 100, 200, 50, 50, 50},
		{"tall image", ImageScaleFit, 50, 200, 200, 50, 12.5, 50},
		{"small image scales up", ImageScaleFit, 20, 5, 200, 50, 200, 50},
		{"fill overflows", ImageScaleFill, 100, 100, 200, 50, 200, 200},
		{"stretch", ImageScaleStretch, 100, 100, 200, 50, 200, 50},
		{"none", ImageScaleNone, 30, 40, 200, 50, 30, 40},
		{"degenerate image", ImageScaleFit, 0, 40, 200, 50, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.mode, tt.iw, tt.ih, tt.bw, tt.bh)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Fit() = %v x %v, want %v x %v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitPreservesAspect(t *testing.T) {
	for _, size := range [][2]float64{{600, 200}, {37, 91}, {1, 1000}, {1000, 1}} {
		w, h := Fit(ImageScaleFit, size[0], size[1], 200, 50)
		if w > 200+1e-9 || h > 50+1e-9 {
			t.Errorf("Fit(%v) = %v x %v exceeds box", size, w, h)
		}
		if got, want := w/h, size[0]/size[1]; got/want < 1-1e-9 || got/want > 1+1e-9 {
			t.Errorf("Fit(%v) aspect = %v, want %v", size, got, want)
		}
	}
}

func TestImagePlacement(t *testing.T) {
	box := geometry.NewRect(100, 20, 200, 50)

	tests := []struct {
		name   string
		iw, ih float64
		layout ImageLayout
		want   geometry.Rect
	}{
		{"fit top-left", 400, 100, DefaultImageLayout(), geometry.NewRect(100, 722, 200, 50)},
		{"narrow image keeps top edge", 100, 100, DefaultImageLayout(), geometry.NewRect(100, 722, 50, 50)},
		{"short image keeps top edge", 800, 100, DefaultImageLayout(), geometry.NewRect(100, 747, 200, 25)},
		{"centered", 800, 100, ImageLayout{Mode: ImageScaleFit, Position: ImagePositionCenter}, geometry.NewRect(100, 734.5, 200, 25)},
		{"bottom-left", 800, 100, ImageLayout{Mode: ImageScaleFit, Position: ImagePositionBottomLeft}, geometry.NewRect(100, 722, 200, 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImagePlacement(792, box, tt.iw, tt.ih, tt.layout); got != tt.want {
				t.Errorf("ImagePlacement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextPlacement(t *testing.T) {
	tests := []struct {
		name       string
		box        geometry.Rect
		style      TextStyle
		wantOrigin geometry.Point
		wantSize   float64
	}{
		{"capped size", geometry.NewRect(50, 20, 200, 50), DefaultTextStyle(), geometry.Pt(50, 760), 12},
		{"small box", geometry.NewRect(10, 100, 100, 10), DefaultTextStyle(), geometry.Pt(10, 686), 6},
		{"uncapped", geometry.NewRect(0, 0, 100, 50), TextStyle{SizeRatio: 0.5}, geometry.Pt(0, 767), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin, size := TextPlacement(792, tt.box, tt.style)
			if origin != tt.wantOrigin || size != tt.wantSize {
				t.Errorf("TextPlacement() = %v, %v; want %v, %v", origin, size, tt.wantOrigin, tt.wantSize)
			}
		})
	}
}

func TestContentWriter(t *testing.T) {
	var w ContentWriter
	w.Image("PSIm1", geometry.NewRect(100, 722, 200, 50))
	w.Text("PSF1", 12, color.RGBA{0, 0, 0, 255}, geometry.Pt(50, 760), []byte("Jane (Doe)"))

	got := string(w.Bytes())
	for _, want := range []string{
		"q 200 0 0 50 100 722 cm /PSIm1 Do Q\n",
		"BT\n/PSF1 12 Tf\n0 0 0 rg\n50 760 Td\n(Jane \\(Doe\\)) Tj\nET\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("content missing %q:\n%s", want, got)
		}
	}
	if w.Len() != len(got) {
		t.Errorf("Len() = %d, want %d", w.Len(), len(got))
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{0.6, "0.6"},
		{1.0 / 3.0, "0.3333"},
		{-0.00001, "0"},
		{734.5, "734.5"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a(b)c", "a\\(b\\)c"},
		{"back\\slash", "back\\\\slash"},
		{"two\nlines", "two\\nlines"},
	}
	for _, tt := range tests {
		if got := escapeString([]byte(tt.in)); got != tt.want {
			t.Errorf("escapeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
