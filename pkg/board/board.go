package board

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Size is the number of rows and columns of every board.
const Size = 4

// DefaultPrefix is the key prefix snapshots are stored under.
const DefaultPrefix = "GameState"

// Cell is the display string of one board cell.
type Cell string

// String returns the cell's display text.
func (c Cell) String() string { return string(c) }

// Board is a fixed 4x4 grid indexed as Board[row][col].
type Board [Size][Size]Cell

// Cells calls fn for every cell in row-major order.
func (b *Board) Cells(fn func(row, col int, c Cell)) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			fn(r, c, b[r][c])
		}
	}
}

// Snapshot is one named board state.
type Snapshot struct {
	Key   string
	Board Board
}

// Key returns the store key for a slot, e.g. Key("GameState", 2) == "GameState2".
func Key(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}

// Sequential returns a board holding start, start+1, ... in row-major order.
func Sequential(start int) Board {
	var b Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			b[r][c] = Cell(strconv.Itoa(start + r*Size + c))
		}
	}
	return b
}

// Fill returns a board with every cell set to c.
func Fill(c Cell) Board {
	var b Board
	for r := range b {
		for col := range b[r] {
			b[r][col] = c
		}
	}
	return b
}

// FormatValue converts a decoded scalar into its display string.
// Integers print without a fraction, floats print the way JavaScript's
// Number.prototype.toString does, and strings are kept as-is.
func FormatValue(v any) (Cell, error) {
	switch x := v.(type) {
	case string:
		return Cell(x), nil
	case bool:
		return Cell(strconv.FormatBool(x)), nil
	case int:
		return Cell(strconv.Itoa(x)), nil
	case int32:
		return Cell(strconv.FormatInt(int64(x), 10)), nil
	case int64:
		return Cell(strconv.FormatInt(x, 10)), nil
	case float64:
		return Cell(formatFloat(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return "", fmt.Errorf("number %q: %w", x.String(), err)
		}
		return Cell(formatFloat(f)), nil
	default:
		return "", fmt.Errorf("unsupported cell value of type %T", v)
	}
}

// formatFloat prints f with the shortest digits that round-trip, switching to
// exponent form outside [1e-6, 1e21) and printing negative zero as 0.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		// Go pads the exponent to two digits ("1e-07"); drop the padding.
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
