// Package cli provides the command-line interface for baking fields into PDF
// documents.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/georgepadayatti/pdfsign/config"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// osExit is a variable for os.Exit to allow testing
var osExit = os.Exit

// Run executes the CLI with the given arguments.
// This is the main entry point for the CLI.
func Run(args []string) {
	if len(args) < 2 {
		Usage()
		return
	}

	command := args[1]

	switch command {
	case "bake":
		BakeCommand(args)
	case "pages":
		PagesCommand(args)
	case "locate":
		LocateCommand(args)
	case "version":
		VersionCommand()
	case "help", "-h", "--help":
		Usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		Usage()
		osExit(2)
	}
}

// Usage prints the CLI usage information.
func Usage() {
	fmt.Printf("pdfsign - place signatures, text and dates on PDF pages\n\n")
	fmt.Printf("Usage: %s <command> [options] <args>\n\n", os.Args[0])
	fmt.Println("Commands:")
	fmt.Println("  bake     Draw the fields of a placement file into a copy of a PDF")
	fmt.Println("  pages    Show the page count and page sizes of a PDF")
	fmt.Println("  locate   Convert a click on a displayed page to page coordinates")
	fmt.Println("  version  Show version information")
	fmt.Println("  help     Show this help message")
	fmt.Println("")
	fmt.Printf("Use '%s <command> -h' for command-specific help\n", os.Args[0])
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Printf("  %s bake contract.pdf fields.yaml\n", os.Args[0])
	fmt.Printf("  %s pages -json contract.pdf\n", os.Args[0])
	fmt.Printf("  %s locate -page 1 -view 0,0,1224,1584 contract.pdf 200 400\n", os.Args[0])
}

// VersionCommand prints version information.
func VersionCommand() {
	fmt.Printf("pdfsign version %s\n", Version)
	fmt.Printf("Build time: %s\n", BuildTime)
}

// loadConfig reads the configuration file, or returns the defaults when path
// is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// setupLogging builds the logger described by cfg. verbose forces debug
// output.
func setupLogging(cfg *config.Config, verbose bool) (*slog.Logger, func() error, error) {
	logging := *cfg.Logging
	if verbose {
		logging.Level = "debug"
	}
	return logging.NewLogger()
}
