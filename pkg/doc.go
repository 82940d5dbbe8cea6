// Package pkg provides the libraries behind boardviz.
//
// # Overview
//
// Boardviz draws snapshots of a 4x4 board game. The pkg directory is
// organized as:
//
//  1. [board] - Board, cell and piece types plus snapshot decoding
//  2. [canvas] - The drawing surface and its SVG implementation
//  3. [render] - The value-grid and piece-grid renderers
//  4. [store] - State providers (memory, directory, Redis, MongoDB)
//  5. [pipeline] - Orchestration (draw → convert → cache)
//  6. [cache] - Artifact caches (file, memory, null)
//
// Supporting packages: [errors] (coded errors), [observability] (hooks) and
// [buildinfo] (version strings).
//
// # Architecture
//
// The data flow through boardviz:
//
//	State store (GameState0, GameState1, ...)
//	         ↓
//	    [store] package (Provider lookups by key)
//	         ↓
//	    [render] package (clear surface, draw every slot)
//	         ↓
//	    [canvas] package (SVG document)
//	         ↓
//	    [pipeline] package (PNG/PDF conversion, cached)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/boardviz/pkg/board"
//	    "github.com/matzehuels/boardviz/pkg/canvas"
//	    "github.com/matzehuels/boardviz/pkg/render"
//	    "github.com/matzehuels/boardviz/pkg/store"
//	)
//
//	states := store.NewMemory(board.Snapshot{
//	    Key:   "GameState0",
//	    Board: board.Sequential(0),
//	})
//	svg := canvas.NewSVG()
//	if _, err := render.DrawValues(context.Background(), states, svg); err != nil {
//	    return err
//	}
//	os.WriteFile("values.svg", svg.Bytes(), 0644)
//
// [board]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/board
// [canvas]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/canvas
// [render]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/render
// [store]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/store
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/boardviz/pkg/buildinfo
package pkg
