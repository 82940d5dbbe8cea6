package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/boardviz/pkg/cache"
	"github.com/matzehuels/boardviz/pkg/canvas"
	"github.com/matzehuels/boardviz/pkg/render"
	"github.com/matzehuels/boardviz/pkg/store"
)

// ConvertFunc converts an SVG document into format.
type ConvertFunc func(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error)

// Runner executes the pipeline against one state provider.
//
// A Runner holds no per-run state, so multiple goroutines can share it.
type Runner struct {
	Provider store.Provider
	Cache    cache.Cache
	Logger   *log.Logger

	// Convert produces png and pdf output. Defaults to rsvg-convert.
	Convert ConvertFunc
}

// NewRunner creates a runner. A nil cache disables caching and a nil logger
// discards log output.
func NewRunner(p store.Provider, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Provider: p,
		Cache:    c,
		Logger:   logger,
		Convert:  convertSVG,
	}
}

// Execute draws the scene and renders every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uuid.NewString(),
		Scene:     opts.Scene,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}
	logger := r.Logger.With("run", result.ID[:8], "scene", opts.Scene)

	// Stage 1: Draw
	drawStart := time.Now()
	surface := canvas.NewSVG()
	st, err := render.Draw(ctx, opts.scene, r.Provider, surface, opts.renderOptions()...)
	if err != nil {
		return nil, err
	}
	result.Draw = st
	result.Stats.DrawTime = time.Since(drawStart)

	svg := surface.Bytes()
	result.SVGHash = cache.Hash(svg)

	logger.Debug("drew scene",
		"states", st.States,
		"missing", st.Missing,
		"marks", st.Marks,
		"skipped", st.Skipped,
		"duration", result.Stats.DrawTime)

	// Stage 2: Convert
	convertStart := time.Now()
	for _, format := range opts.Formats {
		data, hit, err := r.artifact(ctx, surface, svg, result, format, opts)
		if err != nil {
			return nil, err
		}
		if hit {
			result.Stats.CacheHits++
		}
		result.Artifacts[format] = data
	}
	result.Stats.ConvertTime = time.Since(convertStart)

	logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cache_hits", result.Stats.CacheHits,
		"duration", result.Stats.ConvertTime)

	return result, nil
}
