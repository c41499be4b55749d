package stamp

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/georgepadayatti/pdfsign/geometry"
)

// ContentWriter accumulates page content-stream operators.
type ContentWriter struct {
	buf bytes.Buffer
}

// Image paints the image XObject registered under name into r, whose X and Y
// are the lower-left corner in user space.
func (w *ContentWriter) Image(name string, r geometry.Rect) {
	fmt.Fprintf(&w.buf, "q %s 0 0 %s %s %s cm /%s Do Q\n",
		num(r.Width), num(r.Height), num(r.X), num(r.Y), name)
}

// Text shows an already encoded string with the font registered under font.
func (w *ContentWriter) Text(font string, size float64, c color.RGBA, origin geometry.Point, text []byte) {
	r, g, b := rgb(c)
	w.buf.WriteString("BT\n")
	fmt.Fprintf(&w.buf, "/%s %s Tf\n", font, num(size))
	fmt.Fprintf(&w.buf, "%s %s %s rg\n", r, g, b)
	fmt.Fprintf(&w.buf, "%s %s Td\n", num(origin.X), num(origin.Y))
	fmt.Fprintf(&w.buf, "(%s) Tj\n", escapeString(text))
	w.buf.WriteString("ET\n")
}

// Raw appends operators verbatim.
func (w *ContentWriter) Raw(s string) {
	w.buf.WriteString(s)
}

// Len returns the number of bytes written so far.
func (w *ContentWriter) Len() int {
	return w.buf.Len()
}

// Bytes returns the accumulated content.
func (w *ContentWriter) Bytes() []byte {
	return w.buf.Bytes()
}

func rgb(c color.RGBA) (r, g, b string) {
	return num(float64(c.R) / 255.0), num(float64(c.G) / 255.0), num(float64(c.B) / 255.0)
}

// num formats a number for a content stream with at most four decimals.
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeString escapes a byte string for use inside a PDF literal string.
func escapeString(s []byte) string {
	var buf bytes.Buffer
	for _, c := range s {
		switch c {
		case '(':
			buf.WriteString("\\(")
		case ')':
			buf.WriteString("\\)")
		case '\\':
			buf.WriteString("\\\\")
		case '\r':
			buf.WriteString("\\r")
		case '\n':
			buf.WriteString("\\n")
		default:
			buf.WriteByte(c)
		}
	}
	return buf.String()
}
