package render

import (
	"context"

	"github.com/matzehuels/boardviz/pkg/board"
	"github.com/matzehuels/boardviz/pkg/canvas"
	"github.com/matzehuels/boardviz/pkg/store"
)

const (
	pieceStates = 13

	// statesPerColumn slots share a column before the next one starts.
	statesPerColumn = 4
	columnWidth     = 80.0
	rowHeight       = 80.0

	pieceStep   = 18.0
	piecePad    = 2.0
	pieceSize   = 16.0
	pieceStroke = 1.0
	pieceEdge   = "black"
)

// PieceColor returns the fill for a piece variant. Unknown pieces are not
// drawn and return ok == false.
func PieceColor(p board.Piece) (fill string, ok bool) {
	switch p {
	case board.White:
		return "white", true
	case board.Black:
		return "black", true
	case board.Empty:
		return "lightgray", true
	case board.Unknown:
		return "", false
	default:
		return "", false
	}
}

// DrawPieces clears s and draws the pieces of slots 0 through 12.
//
// Each cell is classified with [board.Classify]; recognised pieces become a
// 16x16 square, unknown labels draw nothing and count as skipped.
func DrawPieces(ctx context.Context, p store.Provider, s canvas.Surface, opts ...Option) (Stats, error) {
	o := newOptions(ScenePieces, opts)
	return pass(ctx, ScenePieces, p, s, o, func(slot int, snap board.Snapshot, st *Stats) {
		snap.Board.Cells(func(row, col int, c board.Cell) {
			fill, ok := PieceColor(board.Classify(c))
			if !ok {
				st.Skipped++
				return
			}
			x, y := PiecePosition(slot, row, col)
			s.Rect(canvas.Rect{
				X: x, Y: y,
				W: pieceSize, H: pieceSize,
				Stroke: pieceEdge, StrokeWidth: pieceStroke,
				Fill: fill,
			})
			st.Marks++
		})
	})
}

// PieceOffset returns the top-left offset of a piece slot.
func PieceOffset(slot int) (x, y float64) {
	return float64(slot/statesPerColumn) * columnWidth, float64(slot%statesPerColumn) * rowHeight
}

// PiecePosition returns the top-left corner of the square for cell (row, col)
// of slot.
func PiecePosition(slot, row, col int) (x, y float64) {
	xoff, yoff := PieceOffset(slot)
	return xoff + float64(row)*pieceStep + piecePad, yoff + float64(col)*pieceStep + piecePad
}
