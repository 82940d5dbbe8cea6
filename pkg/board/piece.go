package board

// Piece is the variant a piece renderer draws for a cell.
type Piece int

const (
	// Unknown is any label that is not a recognised piece.
	Unknown Piece = iota
	// White is a white piece.
	White
	// Black is a black piece.
	Black
	// Empty is an empty square.
	Empty
)

// Labels used by game states for each piece variant.
const (
	LabelWhite = "WhitePiece0"
	LabelBlack = "BlackPiece0"
	LabelEmpty = "Empty0"
)

var pieceNames = [...]string{
	Unknown: "unknown",
	White:   "white",
	Black:   "black",
	Empty:   "empty",
}

// String returns the lower-case name of the variant.
func (p Piece) String() string {
	if p < 0 || int(p) >= len(pieceNames) {
		return pieceNames[Unknown]
	}
	return pieceNames[p]
}

// Classify maps a cell label to its piece variant by exact match.
func Classify(c Cell) Piece {
	switch c {
	case LabelWhite:
		return White
	case LabelBlack:
		return Black
	case LabelEmpty:
		return Empty
	default:
		return Unknown
	}
}

// Label returns the cell label a state store uses for p.
// Unknown has no label and returns "".
func (p Piece) Label() Cell {
	switch p {
	case White:
		return LabelWhite
	case Black:
		return LabelBlack
	case Empty:
		return LabelEmpty
	default:
		return ""
	}
}
