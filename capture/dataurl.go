// Package capture produces field content: signature images drawn on a pad or
// uploaded from a file, free text, and dates.
//
// Signature content is carried as a data URL so that it can be stored in a
// field as a plain string.
package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Common errors
var (
	ErrInvalidDataURL = errors.New("invalid data URL")
	ErrNotImage       = errors.New("not an image")
	ErrEmptyText      = errors.New("text is empty")
	ErrEmptyPad       = errors.New("signature pad is empty")
)

// EncodeDataURL returns data as a base64 data URL of the given media type.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a data URL into its media type and payload. Both
// base64 and percent-encoded payloads are accepted. A missing media type
// defaults to text/plain.
func DecodeDataURL(s string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURL)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURL)
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta = m
		isBase64 = true
	}

	mime = meta
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some encoders drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		return mime, data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mime, []byte(unescaped), nil
}

// MediaType returns the media type of a data URL without its parameters.
func MediaType(s string) string {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return ""
	}
	meta, _, _ := strings.Cut(rest, ",")
	mime, _, _ := strings.Cut(meta, ";")
	return mime
}
