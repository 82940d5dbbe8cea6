package render

import (
	"context"

	"github.com/matzehuels/boardviz/pkg/board"
	"github.com/matzehuels/boardviz/pkg/canvas"
	"github.com/matzehuels/boardviz/pkg/store"
)

const (
	valueStates = 2

	valueStepX = 10.0
	valueStepY = 14.0
	valueColor = "black"

	// slotHeight separates stacked boards.
	slotHeight = 55.0

	frameX      = 5.0
	frameW      = 40.0
	frameH      = 50.0
	frameStroke = 2.0
	frameColor  = "black"
	frameFill   = "transparent"
)

// DrawValues clears s and draws the cell values of slots 0 and 1.
//
// Every present snapshot produces 16 text marks followed by one frame
// rectangle. Slot i is offset 55*i units down whether or not its snapshot
// exists.
func DrawValues(ctx context.Context, p store.Provider, s canvas.Surface, opts ...Option) (Stats, error) {
	o := newOptions(SceneValues, opts)
	return pass(ctx, SceneValues, p, s, o, func(slot int, snap board.Snapshot, st *Stats) {
		yoffset := ValueOffset(slot)
		snap.Board.Cells(func(row, col int, c board.Cell) {
			x, y := ValuePosition(slot, row, col)
			s.Text(canvas.Text{X: x, Y: y, Fill: valueColor, Content: c.String()})
			st.Marks++
		})
		s.Rect(canvas.Rect{
			X: frameX, Y: yoffset + 1,
			W: frameW, H: frameH,
			Stroke: frameColor, StrokeWidth: frameStroke,
			Fill: frameFill,
		})
		st.Marks++
	})
}

// ValueOffset returns the vertical offset of a value slot.
func ValueOffset(slot int) float64 { return float64(slot) * slotHeight }

// ValuePosition returns where the text for cell (row, col) of slot is drawn.
func ValuePosition(slot, row, col int) (x, y float64) {
	return float64(row+1) * valueStepX, float64(col+1)*valueStepY + ValueOffset(slot)
}
