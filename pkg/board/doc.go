// Package board defines the 4x4 game board and the named snapshots that
// renderers read from a state store.
//
// # Boards
//
// A [Board] is a fixed [Size]x[Size] grid of [Cell] values. The dimensions are
// part of the type, so every board a renderer receives has exactly 16 cells.
// Cells hold display strings: numbers are formatted the way a browser would
// print them, labels are kept verbatim.
//
// # Snapshots
//
// A [Snapshot] pairs a board with its store key. Keys are built with [Key]
// from a prefix and a slot index, so slot 3 under the default prefix is
// "GameState3".
//
// # Pieces
//
// Piece renderers do not compare label strings directly. [Classify] turns a
// cell into a [Piece] variant and callers switch over the variants:
//
//	switch board.Classify(cell) {
//	case board.White, board.Black, board.Empty:
//	    // draw
//	case board.Unknown:
//	    // skip
//	}
//
// # Decoding
//
// [DecodeJSON] and [DecodeTOML] read documents with a "board" field. A missing
// board or a grid that is not 4x4 is rejected with an INVALID_SNAPSHOT error
// instead of being passed on to the renderers.
package board
