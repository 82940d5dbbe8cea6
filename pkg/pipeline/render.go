package pipeline

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/boardviz/pkg/cache"
	"github.com/matzehuels/boardviz/pkg/canvas"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/observability"
	"github.com/matzehuels/boardviz/pkg/render"
)

// artifact produces one format, going through the cache for converted output.
func (r *Runner) artifact(ctx context.Context, s *canvas.SVG, svg []byte, res *Result, format string, opts Options) ([]byte, bool, error) {
	switch format {
	case FormatSVG:
		return svg, false, nil
	case FormatJSON:
		data, err := marshalDrawing(s, res)
		return data, false, err
	case FormatPNG, FormatPDF:
		return r.converted(ctx, svg, res.SVGHash, format, opts)
	default:
		return nil, false, apperr.New(apperr.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}

func (r *Runner) converted(ctx context.Context, svg []byte, svgHash, format string, opts Options) ([]byte, bool, error) {
	hooks := observability.Cache()
	scale := opts.Scale
	if format == FormatPDF {
		scale = 0 // vector output does not depend on scale
	}
	key := cache.ArtifactKey(svgHash, format, scale)

	if !opts.NoCache {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "err", err)
		} else if hit {
			hooks.OnCacheHit(ctx, format)
			return data, true, nil
		}
		hooks.OnCacheMiss(ctx, format)
	}

	data, err := r.Convert(ctx, svg, format, opts.Scale)
	if err != nil {
		return nil, false, err
	}
	if opts.NoCache {
		return data, false, nil
	}

	if err := r.Cache.Set(ctx, key, data, DefaultArtifactTTL); err != nil {
		r.Logger.Warn("cache write failed", "format", format, "err", err)
	} else {
		hooks.OnCacheSet(ctx, format, len(data))
	}
	return data, false, nil
}

func convertSVG(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	if format == FormatPDF {
		return render.ToPDF(ctx, svg)
	}
	return render.ToPNG(ctx, svg, scale)
}

// =============================================================================
// JSON export
// =============================================================================

type jsonDrawing struct {
	ID     string       `json:"id"`
	Scene  string       `json:"scene"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Stats  render.Stats `json:"stats"`
	Marks  []jsonMark   `json:"marks"`
}

type jsonMark struct {
	Kind        string  `json:"kind"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	W           float64 `json:"width,omitempty"`
	H           float64 `json:"height,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	Text        *string `json:"text,omitempty"` // set for every text mark, even when empty
}

// marshalDrawing exports the recorded marks for external tools.
func marshalDrawing(s *canvas.SVG, res *Result) ([]byte, error) {
	w, h := s.Size()
	out := jsonDrawing{
		ID:     res.ID,
		Scene:  res.Scene,
		Width:  w,
		Height: h,
		Stats:  res.Draw,
		Marks:  make([]jsonMark, 0, s.Len()),
	}
	for _, m := range s.Marks() {
		switch m.Kind {
		case canvas.KindRect:
			out.Marks = append(out.Marks, jsonMark{
				Kind: "rect",
				X:    m.Rect.X, Y: m.Rect.Y,
				W: m.Rect.W, H: m.Rect.H,
				Stroke: m.Rect.Stroke, StrokeWidth: m.Rect.StrokeWidth,
				Fill: m.Rect.Fill,
			})
		case canvas.KindText:
			out.Marks = append(out.Marks, jsonMark{
				Kind: "text",
				X:    m.Text.X, Y: m.Text.Y,
				Fill: m.Text.Fill,
				Text: &m.Text.Content,
			})
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode drawing")
	}
	return data, nil
}
