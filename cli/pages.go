package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/georgepadayatti/pdfsign/pdf/document"
)

// PagesOptions contains options for the pages command.
type PagesOptions struct {
	JSON bool
}

// PagesOutput is the JSON form of a document's page geometry.
type PagesOutput struct {
	File  string     `json:"file"`
	Pages []PageInfo `json:"pages"`
}

// PageInfo is the native size of one page in points.
type PageInfo struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PagesCommand implements the 'pages' command.
func PagesCommand(args []string) {
	pagesFlags := flag.NewFlagSet("pages", flag.ExitOnError)

	var opts PagesOptions

	pagesFlags.BoolVar(&opts.JSON, "json", false, "Output results in JSON format")

	pagesFlags.Usage = func() {
		fmt.Printf("Usage: %s pages [options] <input.pdf>\n\n", os.Args[0])
		fmt.Println("Show the page count and native page sizes of a PDF file.")
		fmt.Println("")
		fmt.Println("Options:")
		pagesFlags.PrintDefaults()
	}

	if err := pagesFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	if len(pagesFlags.Args()) < 1 {
		pagesFlags.Usage()
		osExit(1)
	}

	output, err := inspectPages(pagesFlags.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}

	if opts.JSON {
		err = writePagesJSON(os.Stdout, output)
	} else {
		err = writePagesText(os.Stdout, output)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
}

// inspectPages reads the page geometry of a PDF file.
func inspectPages(path string) (*PagesOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	info, err := document.Inspect(data)
	if err != nil {
		return nil, err
	}

	output := &PagesOutput{File: path, Pages: make([]PageInfo, 0, info.PageCount())}
	for i, size := range info.Pages {
		output.Pages = append(output.Pages, PageInfo{Number: i + 1, Width: size.Width, Height: size.Height})
	}
	return output, nil
}

func writePagesJSON(w io.Writer, output *PagesOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func writePagesText(w io.Writer, output *PagesOutput) error {
	if _, err := fmt.Fprintf(w, "%s: %d page(s)\n", output.File, len(output.Pages)); err != nil {
		return err
	}
	for _, p := range output.Pages {
		if _, err := fmt.Fprintf(w, "  page %d: %g x %g pt\n", p.Number, p.Width, p.Height); err != nil {
			return err
		}
	}
	return nil
}
