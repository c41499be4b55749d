package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/georgepadayatti/pdfsign/geometry"
	"github.com/georgepadayatti/pdfsign/pdf/document"
	"github.com/georgepadayatti/pdfsign/viewport"
)

// ErrBadRect is returned for a malformed -view value.
var ErrBadRect = errors.New("rectangle must be x,y,width,height")

// LocateOptions contains options for the locate command.
type LocateOptions struct {
	Page int
	View string
	Zoom float64
}

// LocateCommand implements the 'locate' command.
func LocateCommand(args []string) {
	locateFlags := flag.NewFlagSet("locate", flag.ExitOnError)

	var opts LocateOptions

	locateFlags.IntVar(&opts.Page, "page", 1, "Page number, counted from 1")
	locateFlags.StringVar(&opts.View, "view", "", "Displayed page rectangle as x,y,width,height in screen pixels")
	locateFlags.Float64Var(&opts.Zoom, "zoom", 1, "Zoom factor of a page displayed at the origin (used when -view is not given)")

	locateFlags.Usage = func() {
		fmt.Printf("Usage: %s locate [options] <input.pdf> <x> <y>\n\n", os.Args[0])
		fmt.Println("Convert a click on a displayed page into page coordinates (top-left origin, points).")
		fmt.Println("")
		fmt.Println("Options:")
		locateFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s locate -zoom 2 contract.pdf 200 400\n", os.Args[0])
		fmt.Printf("  %s locate -page 2 -view 40,80,612,792 contract.pdf 140 280\n", os.Args[0])
	}

	if err := locateFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	if len(locateFlags.Args()) < 3 {
		locateFlags.Usage()
		osExit(1)
	}

	x, errX := strconv.ParseFloat(locateFlags.Arg(1), 64)
	y, errY := strconv.ParseFloat(locateFlags.Arg(2), 64)
	if err := errors.Join(errX, errY); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid click position: %v\n", err)
		osExit(1)
	}

	p, err := locate(locateFlags.Arg(0), geometry.Pt(x, y), &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
	fmt.Printf("page %d: x=%g y=%g\n", opts.Page, p.X, p.Y)
}

// locate maps a click to page coordinates.
func locate(path string, click geometry.Point, opts *LocateOptions) (geometry.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("failed to read input file: %w", err)
	}
	info, err := document.Inspect(data)
	if err != nil {
		return geometry.Point{}, err
	}
	native, err := info.PageSize(opts.Page)
	if err != nil {
		return geometry.Point{}, err
	}

	var surface viewport.Surface = viewport.FixedSurface{Native: native, Zoom: opts.Zoom}
	if opts.View != "" {
		view, err := parseRect(opts.View)
		if err != nil {
			return geometry.Point{}, err
		}
		surface = viewport.SurfaceFunc(func() (geometry.Rect, bool) { return view, true })
	}

	return viewport.NewProjector(native, surface).ToDocument(click)
}

// parseRect parses "x,y,width,height".
func parseRect(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("%w: %q", ErrBadRect, s)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("%w: %q", ErrBadRect, s)
		}
		v[i] = f
	}
	return geometry.NewRect(v[0], v[1], v[2], v[3]), nil
}
