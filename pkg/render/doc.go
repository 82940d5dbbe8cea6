// Package render draws board snapshots onto a drawing surface.
//
// # Scenes
//
// Two renderers are provided, each producing one scene:
//
//   - [DrawValues] ("values"): the cell values of up to 2 states as text,
//     stacked vertically, each framed by a rectangle
//   - [DrawPieces] ("pieces"): coloured squares for the piece labels of up to
//     13 states, 4 states per column
//
// Both read snapshots through a [store.Provider] and draw through a
// [canvas.Surface]; neither keeps any state between calls. Every call clears
// the surface and redraws the whole scene, so calling twice with unchanged
// snapshots yields the same drawing.
//
// # Layout
//
// Positions are pure functions of (slot, row, col). Rows advance along x and
// columns along y, so a board is drawn column-major:
//
//	values: x = (row+1)*10           y = (col+1)*14 + 55*slot
//	pieces: x = 80*(slot/4)+row*18+2 y = 80*(slot%4)+col*18+2
//
// # Missing and malformed snapshots
//
// A slot whose key is absent from the store is skipped and counted in
// [Stats.Missing]; offsets still advance. A snapshot that cannot be decoded
// fails the whole pass with the store's error.
//
// # Conversion
//
// [ToPNG] and [ToPDF] convert rendered SVG through rsvg-convert:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [store.Provider]: github.com/matzehuels/boardviz/pkg/store.Provider
// [canvas.Surface]: github.com/matzehuels/boardviz/pkg/canvas.Surface
package render
