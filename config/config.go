// Package config loads pdfsign settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/georgepadayatti/pdfsign/bake"
	"github.com/georgepadayatti/pdfsign/capture"
	"github.com/georgepadayatti/pdfsign/fields"
	"github.com/georgepadayatti/pdfsign/pdf/document"
	"github.com/georgepadayatti/pdfsign/session"
	"github.com/georgepadayatti/pdfsign/stamp"
	"github.com/georgepadayatti/pdfsign/viewport"
)

// Common errors
var (
	ErrConfigurationError = errors.New("configuration error")
	ErrUnexpectedField    = errors.New("unexpected field in configuration")
	ErrInvalidColor       = errors.New("invalid color")
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConfigurationError
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// FieldsConfig contains field placement defaults.
type FieldsConfig struct {
	// DefaultWidth is the width of new fields in points.
	DefaultWidth float64 `yaml:"default-width" json:"default_width,omitempty"`

	// DefaultHeight is the height of new fields in points.
	DefaultHeight float64 `yaml:"default-height" json:"default_height,omitempty"`
}

// SetDefaults fills unset values.
func (c *FieldsConfig) SetDefaults() {
	if c.DefaultWidth == 0 {
		c.DefaultWidth = fields.DefaultWidth
	}
	if c.DefaultHeight == 0 {
		c.DefaultHeight = fields.DefaultHeight
	}
}

// Validate validates the field defaults.
func (c *FieldsConfig) Validate() error {
	if c.DefaultWidth <= 0 {
		return NewConfigError("fields.default-width", "must be positive")
	}
	if c.DefaultHeight <= 0 {
		return NewConfigError("fields.default-height", "must be positive")
	}
	return nil
}

// FactoryOptions returns the field factory settings.
func (c *FieldsConfig) FactoryOptions() []fields.FactoryOption {
	return []fields.FactoryOption{fields.WithDefaultSize(c.DefaultWidth, c.DefaultHeight)}
}

// TextConfig contains the appearance of baked text and date fields.
type TextConfig struct {
	// Font is a standard PDF font name.
	Font string `yaml:"font" json:"font,omitempty"`

	// SizeRatio is the font size as a fraction of the field height.
	SizeRatio float64 `yaml:"size-ratio" json:"size_ratio,omitempty"`

	// MaxSize caps the font size in points.
	MaxSize float64 `yaml:"max-size" json:"max_size,omitempty"`

	// Color is the text color as #rrggbb.
	Color string `yaml:"color" json:"color,omitempty"`
}

// SetDefaults fills unset values.
func (c *TextConfig) SetDefaults() {
	if c.Font == "" {
		c.Font = document.DefaultFont
	}
	if c.SizeRatio == 0 {
		c.SizeRatio = stamp.DefaultFontSizeRatio
	}
	if c.MaxSize == 0 {
		c.MaxSize = stamp.DefaultMaxFontSize
	}
	if c.Color == "" {
		c.Color = "#000000"
	}
}

// Validate validates the text settings.
func (c *TextConfig) Validate() error {
	if !document.IsStandardFont(c.Font) {
		return &ConfigError{Field: "text.font", Message: fmt.Sprintf("'%s' is not a standard font", c.Font), Err: document.ErrUnsupportedFont}
	}
	if c.SizeRatio <= 0 || c.SizeRatio > 1 {
		return NewConfigError("text.size-ratio", "must be in (0, 1]")
	}
	if c.MaxSize <= 0 {
		return NewConfigError("text.max-size", "must be positive")
	}
	if _, err := ParseColor(c.Color); err != nil {
		return &ConfigError{Field: "text.color", Message: err.Error(), Err: ErrInvalidColor}
	}
	return nil
}

// Style returns the text sizing rule.
func (c *TextConfig) Style() stamp.TextStyle {
	return stamp.TextStyle{SizeRatio: c.SizeRatio, MaxSize: c.MaxSize}
}

// RGBA returns the parsed text color, or black when it does not parse.
func (c *TextConfig) RGBA() color.RGBA {
	rgba, err := ParseColor(c.Color)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return rgba
}

// ParseColor parses a #rrggbb or #rgb color.
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %q must start with #", ErrInvalidColor, s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// ImageConfig contains the placement of baked signature images.
type ImageConfig struct {
	// Scale is fit, fill, stretch or none.
	Scale string `yaml:"scale" json:"scale,omitempty"`

	// Position is top-left, center or bottom-left.
	Position string `yaml:"position" json:"position,omitempty"`
}

// SetDefaults fills unset values.
func (c *ImageConfig) SetDefaults() {
	if c.Scale == "" {
		c.Scale = stamp.ImageScaleFit.String()
	}
	if c.Position == "" {
		c.Position = stamp.ImagePositionTopLeft.String()
	}
}

// Validate validates the image settings.
func (c *ImageConfig) Validate() error {
	if _, err := stamp.ParseImageScaleMode(c.Scale); err != nil {
		return &ConfigError{Field: "image.scale", Message: err.Error(), Err: err}
	}
	if _, err := stamp.ParseImagePosition(c.Position); err != nil {
		return &ConfigError{Field: "image.position", Message: err.Error(), Err: err}
	}
	return nil
}

// Layout returns the image placement rule. Invalid values fall back to the
// defaults.
func (c *ImageConfig) Layout() stamp.ImageLayout {
	layout := stamp.DefaultImageLayout()
	if mode, err := stamp.ParseImageScaleMode(c.Scale); err == nil {
		layout.Mode = mode
	}
	if pos, err := stamp.ParseImagePosition(c.Position); err == nil {
		layout.Position = pos
	}
	return layout
}

// ViewportConfig contains the interactive viewer settings.
type ViewportConfig struct {
	MinZoom  float64 `yaml:"min-zoom" json:"min_zoom,omitempty"`
	MaxZoom  float64 `yaml:"max-zoom" json:"max_zoom,omitempty"`
	ZoomStep float64 `yaml:"zoom-step" json:"zoom_step,omitempty"`

	// PollInterval is how often overlay geometry is refreshed.
	PollInterval time.Duration `yaml:"poll-interval" json:"poll_interval,omitempty"`

	// HandleSize is the delete handle size in screen pixels.
	HandleSize float64 `yaml:"handle-size" json:"handle_size,omitempty"`
}

// SetDefaults fills unset values.
func (c *ViewportConfig) SetDefaults() {
	if c.MinZoom == 0 {
		c.MinZoom = viewport.DefaultMinZoom
	}
	if c.MaxZoom == 0 {
		c.MaxZoom = viewport.DefaultMaxZoom
	}
	if c.ZoomStep == 0 {
		c.ZoomStep = viewport.DefaultZoomStep
	}
	if c.PollInterval == 0 {
		c.PollInterval = viewport.DefaultPollInterval
	}
	if c.HandleSize == 0 {
		c.HandleSize = viewport.DefaultHandleSize
	}
}

// Validate validates the viewer settings.
func (c *ViewportConfig) Validate() error {
	if c.MinZoom <= 0 {
		return NewConfigError("viewport.min-zoom", "must be positive")
	}
	if c.MaxZoom < c.MinZoom {
		return NewConfigError("viewport.max-zoom", "must not be below min-zoom")
	}
	if c.ZoomStep <= 0 {
		return NewConfigError("viewport.zoom-step", "must be positive")
	}
	if c.PollInterval <= 0 {
		return NewConfigError("viewport.poll-interval", "must be positive")
	}
	if c.HandleSize <= 0 {
		return NewConfigError("viewport.handle-size", "must be positive")
	}
	return nil
}

// ZoomRange returns the zoom limits.
func (c *ViewportConfig) ZoomRange() viewport.ZoomRange {
	return viewport.ZoomRange{Min: c.MinZoom, Max: c.MaxZoom, Step: c.ZoomStep}
}

// CaptureConfig contains content capture settings.
type CaptureConfig struct {
	SignatureMaxWidth  int     `yaml:"signature-max-width" json:"signature_max_width,omitempty"`
	SignatureMaxHeight int     `yaml:"signature-max-height" json:"signature_max_height,omitempty"`
	StrokeWidth        float64 `yaml:"stroke-width" json:"stroke_width,omitempty"`
	PadWidth           int     `yaml:"pad-width" json:"pad_width,omitempty"`
	PadHeight          int     `yaml:"pad-height" json:"pad_height,omitempty"`

	// DateLayout is a Go time layout for date fields.
	DateLayout string `yaml:"date-layout" json:"date_layout,omitempty"`
}

// SetDefaults fills unset values.
func (c *CaptureConfig) SetDefaults() {
	if c.SignatureMaxWidth == 0 {
		c.SignatureMaxWidth = capture.DefaultUploadMaxWidth
	}
	if c.SignatureMaxHeight == 0 {
		c.SignatureMaxHeight = capture.DefaultUploadMaxHeight
	}
	if c.StrokeWidth == 0 {
		c.StrokeWidth = capture.DefaultStrokeWidth
	}
	if c.PadWidth == 0 {
		c.PadWidth = capture.DefaultPadWidth
	}
	if c.PadHeight == 0 {
		c.PadHeight = capture.DefaultPadHeight
	}
	if c.DateLayout == "" {
		c.DateLayout = capture.DefaultDateLayout
	}
}

// Validate validates the capture settings.
func (c *CaptureConfig) Validate() error {
	if c.SignatureMaxWidth <= 0 || c.SignatureMaxHeight <= 0 {
		return NewConfigError("capture.signature-max-width", "signature bounds must be positive")
	}
	if c.StrokeWidth <= 0 {
		return NewConfigError("capture.stroke-width", "must be positive")
	}
	if c.PadWidth <= 0 || c.PadHeight <= 0 {
		return NewConfigError("capture.pad-width", "pad size must be positive")
	}
	return nil
}

// PadOptions returns the signature pad settings.
func (c *CaptureConfig) PadOptions() []capture.PadOption {
	return []capture.PadOption{
		capture.WithPadSize(c.PadWidth, c.PadHeight),
		capture.WithStrokeWidth(c.StrokeWidth),
	}
}

// DateEntry returns a date entry using the configured layout.
func (c *CaptureConfig) DateEntry() *capture.DateEntry {
	d := capture.NewDateEntry()
	d.Layout = c.DateLayout
	return d
}

// OutputConfig contains export settings.
type OutputConfig struct {
	// Prefix is prepended to exported file names.
	Prefix string `yaml:"prefix" json:"prefix,omitempty"`
}

// SetDefaults fills unset values.
func (c *OutputConfig) SetDefaults() {
	if c.Prefix == "" {
		c.Prefix = session.DefaultOutputPrefix
	}
}

// Validate validates the export settings.
func (c *OutputConfig) Validate() error {
	if strings.ContainsAny(c.Prefix, `/\`) {
		return NewConfigError("output.prefix", "must not contain path separators")
	}
	return nil
}

// Config contains the complete application configuration.
type Config struct {
	Fields   *FieldsConfig   `yaml:"fields" json:"fields,omitempty"`
	Text     *TextConfig     `yaml:"text" json:"text,omitempty"`
	Image    *ImageConfig    `yaml:"image" json:"image,omitempty"`
	Viewport *ViewportConfig `yaml:"viewport" json:"viewport,omitempty"`
	Capture  *CaptureConfig  `yaml:"capture" json:"capture,omitempty"`
	Output   *OutputConfig   `yaml:"output" json:"output,omitempty"`
	Logging  *LoggingConfig  `yaml:"logging" json:"logging,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills every unset section and value.
func (c *Config) SetDefaults() {
	if c.Fields == nil {
		c.Fields = &FieldsConfig{}
	}
	if c.Text == nil {
		c.Text = &TextConfig{}
	}
	if c.Image == nil {
		c.Image = &ImageConfig{}
	}
	if c.Viewport == nil {
		c.Viewport = &ViewportConfig{}
	}
	if c.Capture == nil {
		c.Capture = &CaptureConfig{}
	}
	if c.Output == nil {
		c.Output = &OutputConfig{}
	}
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	c.Fields.SetDefaults()
	c.Text.SetDefaults()
	c.Image.SetDefaults()
	c.Viewport.SetDefaults()
	c.Capture.SetDefaults()
	c.Output.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section. Defaults must have been applied.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		c.Fields, c.Text, c.Image, c.Viewport, c.Capture, c.Output, c.Logging,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BakeOptions returns the bake engine settings.
func (c *Config) BakeOptions(logger *slog.Logger) []bake.Option {
	font := c.Text.Font
	return []bake.Option{
		bake.WithLogger(logger),
		bake.WithLoader(func(doc []byte) (bake.Mutator, error) {
			return document.Open(doc, document.WithFont(font))
		}),
		bake.WithTextColor(c.Text.RGBA()),
		bake.WithTextStyle(c.Text.Style()),
		bake.WithImageLayout(c.Image.Layout()),
	}
}

// SessionOptions returns the interactive session settings, baking with
// BakeOptions.
func (c *Config) SessionOptions(logger *slog.Logger) []session.Option {
	return []session.Option{
		session.WithLogger(logger),
		session.WithFactory(fields.NewFactory(c.Fields.FactoryOptions()...)),
		session.WithBaker(bake.New(c.BakeOptions(logger)...)),
		session.WithZoomRange(c.Viewport.ZoomRange()),
		session.WithHandleSize(c.Viewport.HandleSize),
		session.WithOutputPrefix(c.Output.Prefix),
	}
}

// Load loads a configuration from a YAML file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration, applies defaults and validates the
// result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedField, err)
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level,omitempty"`

	// Format is the log format (text, json).
	Format string `yaml:"format" json:"format,omitempty"`

	// Output is the log output (stdout, stderr, or file path).
	Output string `yaml:"output" json:"output,omitempty"`
}

// SetDefaults sets default values for logging configuration.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate validates the logging configuration.
func (c *LoggingConfig) Validate() error {
	if _, err := c.level(); err != nil {
		return NewConfigError("logging.level", err.Error())
	}
	switch c.Format {
	case "text", "json":
	default:
		return NewConfigError("logging.format", fmt.Sprintf("'%s' is not text or json", c.Format))
	}
	return nil
}

func (c *LoggingConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return level, fmt.Errorf("unknown level '%s'", c.Level)
	}
	return level, nil
}

// NewLogger builds a logger. The returned close function releases the log
// file, if any.
func (c *LoggingConfig) NewLogger() (*slog.Logger, func() error, error) {
	level, err := c.level()
	if err != nil {
		return nil, nil, NewConfigError("logging.level", err.Error())
	}

	var w io.Writer
	closer := func() error { return nil }
	switch c.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f.Close
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closer, nil
}
