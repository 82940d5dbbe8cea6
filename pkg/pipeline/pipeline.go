// Package pipeline turns stored snapshots into rendered artifacts.
//
// The CLI and the HTTP server both go through [Runner.Execute], so a scene
// rendered from the command line and one served over HTTP are identical.
//
// # Stages
//
//  1. Draw: run the scene's renderer against a fresh SVG surface
//  2. Convert: produce each requested format from the SVG (png and pdf go
//     through rsvg-convert and are cached by SVG hash)
//
// # Usage
//
//	runner := pipeline.NewRunner(states, cache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Scene:   "values",
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultArtifactTTL bounds how long converted artifacts stay cached.
	DefaultArtifactTTL = 7 * 24 * time.Hour

	// MaxStates caps the slots one render may read; each slot is a store lookup.
	MaxStates = 64
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	Scene     string   `json:"scene"`
	Formats   []string `json:"formats,omitempty"`
	Scale     float64  `json:"scale,omitempty"`
	States    int      `json:"states,omitempty"`     // slots read; 0 keeps the scene default
	KeyPrefix string   `json:"key_prefix,omitempty"` // defaults to "GameState"
	NoCache   bool     `json:"no_cache,omitempty"`

	scene     render.Scene
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	scene, err := render.ParseScene(o.Scene)
	if err != nil {
		return err
	}
	o.scene = scene
	o.Scene = string(scene)

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = dedupe(o.Formats)
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.States < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "states must not be negative")
	}
	if o.States > MaxStates {
		return apperr.New(apperr.ErrCodeInvalidInput, "states must be at most %d", MaxStates)
	}
	o.validated = true
	return nil
}

// dedupe drops repeated formats, keeping the first occurrence of each.
func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// renderOptions translates the options into renderer options.
func (o *Options) renderOptions() []render.Option {
	return []render.Option{
		render.WithStates(o.States),
		render.WithKeyPrefix(o.KeyPrefix),
	}
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies the run in logs and HTTP responses.
	ID string

	// Scene is the rendered scene.
	Scene string

	// SVGHash is the SHA-256 of the SVG document.
	SVGHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Draw reports what the renderer drew.
	Draw render.Stats

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DrawTime    time.Duration
	ConvertTime time.Duration
	CacheHits   int
}
