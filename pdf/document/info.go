package document

import (
	"fmt"

	"github.com/georgepadayatti/pdfsign/geometry"
)

// Info is the page geometry of a document as seen by a viewer.
type Info struct {
	// Pages holds the native size of each page, page 1 first.
	Pages []geometry.Size
}

// Inspect parses doc and reports its page geometry.
func Inspect(doc []byte) (*Info, error) {
	d, err := Open(doc)
	if err != nil {
		return nil, err
	}
	return d.Info(), nil
}

// PageCount returns the number of pages.
func (i *Info) PageCount() int {
	return len(i.Pages)
}

// PageSize returns the native size of page, counted from 1.
func (i *Info) PageSize(page int) (geometry.Size, error) {
	if page < 1 || page > len(i.Pages) {
		return geometry.Size{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, len(i.Pages))
	}
	return i.Pages[page-1], nil
}
