// Command pdfsign places signatures, text and dates on the pages of a PDF and
// bakes them into a new copy.
//
// Usage:
//
//	pdfsign <command> [options] <args>
//
// Commands:
//
//	bake     Draw the fields of a placement file into a copy of a PDF
//	pages    Show the page count and page sizes of a PDF
//	locate   Convert a click on a displayed page to page coordinates
//	version  Show version information
//	help     Show help message
//
// Examples:
//
//	# Bake the fields listed in fields.yaml into signed-contract.pdf
//	pdfsign bake contract.pdf fields.yaml
//
//	# Show page sizes as JSON
//	pdfsign pages -json contract.pdf
//
//	# Where does a click at (200, 400) land on page 1 shown at zoom 2?
//	pdfsign locate -zoom 2 contract.pdf 200 400
package main

import (
	"os"

	"github.com/georgepadayatti/pdfsign/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/pdfsign
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime

	cli.Run(os.Args)
}
