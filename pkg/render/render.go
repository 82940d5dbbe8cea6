package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/boardviz/pkg/board"
	"github.com/matzehuels/boardviz/pkg/canvas"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/observability"
	"github.com/matzehuels/boardviz/pkg/store"
)

// Scene names a renderer.
type Scene string

const (
	SceneValues Scene = "values"
	ScenePieces Scene = "pieces"
)

// Scenes returns every known scene.
func Scenes() []Scene { return []Scene{SceneValues, ScenePieces} }

// ParseScene validates a scene name.
func ParseScene(s string) (Scene, error) {
	switch Scene(strings.ToLower(strings.TrimSpace(s))) {
	case SceneValues:
		return SceneValues, nil
	case ScenePieces:
		return ScenePieces, nil
	default:
		return "", apperr.New(apperr.ErrCodeInvalidScene, "unknown scene %q (must be 'values' or 'pieces')", s)
	}
}

// DefaultStates returns how many slots a scene reads by default.
func (s Scene) DefaultStates() int {
	if s == ScenePieces {
		return pieceStates
	}
	return valueStates
}

// Stats reports what one pass drew.
type Stats struct {
	States  int `json:"states"`  // slots with a snapshot
	Missing int `json:"missing"` // slots without a snapshot
	Marks   int `json:"marks"`   // marks appended to the surface
	Skipped int `json:"skipped"` // cells that produced no mark
}

// Option configures a pass.
type Option func(*options)

type options struct {
	states int
	prefix string
}

// WithStates sets the number of slots read, starting at slot 0.
// Values <= 0 keep the scene default.
func WithStates(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.states = n
		}
	}
}

// WithKeyPrefix sets the prefix slot keys are built from (default "GameState").
func WithKeyPrefix(p string) Option {
	return func(o *options) {
		if p != "" {
			o.prefix = p
		}
	}
}

func newOptions(scene Scene, opts []Option) options {
	o := options{states: scene.DefaultStates(), prefix: board.DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Draw runs the renderer for scene.
func Draw(ctx context.Context, scene Scene, p store.Provider, s canvas.Surface, opts ...Option) (Stats, error) {
	switch scene {
	case SceneValues:
		return DrawValues(ctx, p, s, opts...)
	case ScenePieces:
		return DrawPieces(ctx, p, s, opts...)
	default:
		return Stats{}, apperr.New(apperr.ErrCodeInvalidScene, "unknown scene %q", scene)
	}
}

// slotFunc draws one present snapshot and updates st.
type slotFunc func(slot int, snap board.Snapshot, st *Stats)

// pass clears s and visits every slot in order, skipping missing snapshots.
func pass(ctx context.Context, scene Scene, p store.Provider, s canvas.Surface, o options, draw slotFunc) (st Stats, err error) {
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, string(scene), o.states)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, string(scene), st.Marks, time.Since(start), err)
	}()

	s.Clear()
	for slot := 0; slot < o.states; slot++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		key := board.Key(o.prefix, slot)
		snap, ok, err := p.Snapshot(ctx, key)
		if err != nil {
			return st, fmt.Errorf("%s: %w", key, err)
		}
		if !ok {
			st.Missing++
			continue
		}
		st.States++
		draw(slot, snap, &st)
	}
	return st, nil
}
