// Package documenttest builds small, valid PDF files for tests.
package documenttest

import (
	"bytes"
	"fmt"

	"github.com/georgepadayatti/pdfsign/geometry"
)

// Letter is the US Letter page size in points.
var Letter = geometry.Size{Width: 612, Height: 792}

// A4 is the ISO A4 page size in points.
var A4 = geometry.Size{Width: 595, Height: 842}

// PDF returns a document with one page per size. Each page shows its number
// in Helvetica. With no sizes a single Letter page is produced.
func PDF(sizes ...geometry.Size) []byte {
	if len(sizes) == 0 {
		sizes = []geometry.Size{Letter}
	}

	var objects []string

	kids := ""
	for i := range sizes {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(sizes)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)

	for i, size := range sizes {
		content := fmt.Sprintf("BT /F1 12 Tf 72 %g Td (Page %d) Tj ET", size.Height-72, i+1)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				size.Width, size.Height, 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}
