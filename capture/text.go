package capture

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDateLayout renders dates as MM/dd/yyyy.
const DefaultDateLayout = "01/02/2006"

// isoLayout is the format of date picker input.
const isoLayout = "2006-01-02"

// Text validates free text content. Text that is blank after trimming is
// rejected; otherwise it is returned as entered.
func Text(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyText
	}
	return s, nil
}

// DateEntry produces date field content.
type DateEntry struct {
	// Clock supplies today's date. Nil means the real clock.
	Clock clockwork.Clock
	// Layout is the output format. Empty means DefaultDateLayout.
	Layout string
}

// NewDateEntry creates a DateEntry reading the real clock.
func NewDateEntry() *DateEntry {
	return &DateEntry{Clock: clockwork.NewRealClock(), Layout: DefaultDateLayout}
}

// Today returns the current date formatted for a field.
func (d *DateEntry) Today() string {
	return d.now().Format(d.layout())
}

// FromISO reformats a yyyy-mm-dd date for a field. Input that does not parse
// falls back to today's date.
func (d *DateEntry) FromISO(s string) string {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return d.Today()
	}
	return t.Format(d.layout())
}

// ToISO converts field content back into yyyy-mm-dd form for editing.
// Content that does not parse yields today's date.
func (d *DateEntry) ToISO(content string) string {
	t, err := time.Parse(d.layout(), strings.TrimSpace(content))
	if err != nil {
		return d.now().Format(isoLayout)
	}
	return t.Format(isoLayout)
}

func (d *DateEntry) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock.Now()
}

func (d *DateEntry) layout() string {
	if d.Layout == "" {
		return DefaultDateLayout
	}
	return d.Layout
}
