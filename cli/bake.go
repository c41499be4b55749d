package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/georgepadayatti/pdfsign/bake"
	"github.com/georgepadayatti/pdfsign/capture"
	"github.com/georgepadayatti/pdfsign/config"
	"github.com/georgepadayatti/pdfsign/fields"
)

// ErrBadContent is returned when a field's content cannot be resolved.
var ErrBadContent = errors.New("invalid field content")

// todayKeyword in a date field's content stands for the current date.
const todayKeyword = "today"

// BakeOptions contains options for the bake command.
type BakeOptions struct {
	ConfigFile string
	Output     string
	Verbose    bool
}

// BakeCommand implements the 'bake' command.
func BakeCommand(args []string) {
	bakeFlags := flag.NewFlagSet("bake", flag.ExitOnError)

	var opts BakeOptions

	bakeFlags.StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	bakeFlags.StringVar(&opts.Output, "o", "", "Output file (default: signed-<input> next to the input)")
	bakeFlags.BoolVar(&opts.Verbose, "verbose", false, "Log every skipped field")

	bakeFlags.Usage = func() {
		fmt.Printf("Usage: %s bake [options] <input.pdf> <fields.yaml>\n\n", os.Args[0])
		fmt.Println("Draw the fields of a placement file permanently into a copy of a PDF.")
		fmt.Println("")
		fmt.Println("Arguments:")
		fmt.Println("  input.pdf    PDF file to sign")
		fmt.Println("  fields.yaml  Placement file (YAML or JSON) listing the fields")
		fmt.Println("")
		fmt.Println("Field content:")
		fmt.Println("  signature  a data URL, or @path to an image file relative to the placement file")
		fmt.Println("  text       the text to show")
		fmt.Println("  date       the date to show, or 'today'")
		fmt.Println("")
		fmt.Println("Options:")
		bakeFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s bake contract.pdf fields.yaml\n", os.Args[0])
		fmt.Printf("  %s bake -o out.pdf -config pdfsign.yaml contract.pdf fields.json\n", os.Args[0])
	}

	if err := bakeFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	if len(bakeFlags.Args()) < 2 {
		bakeFlags.Usage()
		osExit(1)
	}

	inputPath := bakeFlags.Arg(0)
	fieldsPath := bakeFlags.Arg(1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, outputPath, err := bakeFile(ctx, inputPath, fieldsPath, &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}

	fmt.Printf("Baked %d field(s) into %s\n", len(result.Baked), outputPath)
	for _, skip := range result.Skipped {
		if skip.Err != nil {
			fmt.Printf("  skipped %s (%s): %v\n", skip.FieldID, skip.Reason, skip.Err)
		} else {
			fmt.Printf("  skipped %s (%s)\n", skip.FieldID, skip.Reason)
		}
	}
}

// bakeFile performs the bake and writes the output file.
func bakeFile(ctx context.Context, inputPath, fieldsPath string, opts *BakeOptions) (*bake.Result, string, error) {
	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return nil, "", err
	}

	logger, closeLog, err := setupLogging(cfg, opts.Verbose)
	if err != nil {
		return nil, "", err
	}
	defer closeLog()

	doc, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input file: %w", err)
	}

	factory := fields.NewFactory(cfg.Fields.FactoryOptions()...)
	fs, err := fields.LoadFile(fieldsPath, factory)
	if err != nil {
		return nil, "", err
	}

	fs, err = resolveContent(fs, filepath.Dir(fieldsPath), cfg)
	if err != nil {
		return nil, "", err
	}

	engine := bake.New(cfg.BakeOptions(logger)...)
	result, err := engine.Bake(ctx, doc, fs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to bake %s: %w", inputPath, err)
	}

	outputPath := opts.Output
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, cfg.Output.Prefix)
	}
	if err := os.WriteFile(outputPath, result.Bytes, 0644); err != nil {
		return nil, "", fmt.Errorf("failed to write output file: %w", err)
	}

	return result, outputPath, nil
}

// defaultOutputPath places the prefixed copy next to the input.
func defaultOutputPath(inputPath, prefix string) string {
	dir, name := filepath.Split(inputPath)
	return filepath.Join(dir, prefix+name)
}

// resolveContent turns the shorthand content of a placement file into field
// content. Fields without content are kept as they are; the engine skips
// them.
func resolveContent(fs []fields.Field, baseDir string, cfg *config.Config) ([]fields.Field, error) {
	out := make([]fields.Field, 0, len(fs))
	dates := cfg.Capture.DateEntry()

	for _, f := range fs {
		value, ok := f.Value()
		if !ok {
			out = append(out, f)
			continue
		}

		switch f.Kind {
		case fields.KindSignature:
			if path, isFile := strings.CutPrefix(value, "@"); isFile {
				url, err := loadSignature(resolvePath(baseDir, path), cfg.Capture)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: %w", ErrBadContent, f.ID, err)
				}
				value = url
			} else if capture.MediaType(value) == "" {
				return nil, fmt.Errorf("%w: field %s: signature must be a data URL or @file", ErrBadContent, f.ID)
			}

		case fields.KindText:
			text, err := capture.Text(value)
			if err != nil {
				return nil, fmt.Errorf("%w: field %s: %w", ErrBadContent, f.ID, err)
			}
			value = text

		case fields.KindDate:
			if strings.EqualFold(strings.TrimSpace(value), todayKeyword) {
				value = dates.Today()
			}
		}
		out = append(out, fields.AttachContent(f, value))
	}
	return out, nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// loadSignature reads an image file and converts it the way an upload is.
func loadSignature(path string, c *config.CaptureConfig) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read signature image: %w", err)
	}
	return capture.Upload(http.DetectContentType(data), data, c.SignatureMaxWidth, c.SignatureMaxHeight)
}
