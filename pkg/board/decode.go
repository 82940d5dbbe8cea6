package board

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/BurntSushi/toml"

	apperr "github.com/matzehuels/boardviz/pkg/errors"
)

// jsonDocument is the wire shape of a snapshot:
//
//	{"key": "GameState0", "board": [[0, 1, 2, 3], [4, 5, 6, 7], ...]}
type jsonDocument struct {
	Key   string `json:"key,omitempty"`
	Board []any  `json:"board"`
}

type tomlDocument struct {
	Key   string `toml:"key,omitempty"`
	Board []any  `toml:"board"`
}

// DecodeJSON parses a JSON snapshot document.
// The key field is optional; callers that know the key set it afterwards.
func DecodeJSON(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc jsonDocument
	if err := dec.Decode(&doc); err != nil {
		return Snapshot{}, apperr.Wrap(apperr.ErrCodeInvalidSnapshot, err, "decode json")
	}
	b, err := FromRows(doc.Board)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Key: doc.Key, Board: b}, nil
}

// DecodeTOML parses a TOML snapshot document:
//
//	key = "GameState1"
//	board = [
//	  ["WhitePiece0", "Empty0", "Empty0", "BlackPiece0"],
//	  ...
//	]
func DecodeTOML(data []byte) (Snapshot, error) {
	var doc tomlDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, apperr.Wrap(apperr.ErrCodeInvalidSnapshot, err, "decode toml")
	}
	b, err := FromRows(doc.Board)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Key: doc.Key, Board: b}, nil
}

// FromRows builds a board from decoded rows. rows must hold exactly Size
// arrays of Size scalar values each.
func FromRows(rows []any) (Board, error) {
	var b Board
	if rows == nil {
		return b, apperr.New(apperr.ErrCodeInvalidSnapshot, "snapshot has no board")
	}
	if len(rows) != Size {
		return b, apperr.New(apperr.ErrCodeInvalidSnapshot, "board has %d rows, want %d", len(rows), Size)
	}
	for r, raw := range rows {
		row, ok := raw.([]any)
		if !ok {
			return b, apperr.New(apperr.ErrCodeInvalidSnapshot, "board row %d is %T, want array", r, raw)
		}
		if len(row) != Size {
			return b, apperr.New(apperr.ErrCodeInvalidSnapshot, "board row %d has %d cells, want %d", r, len(row), Size)
		}
		for c, v := range row {
			cell, err := FormatValue(v)
			if err != nil {
				return b, apperr.Wrap(apperr.ErrCodeInvalidSnapshot, err, "cell [%d][%d]", r, c)
			}
			b[r][c] = cell
		}
	}
	return b, nil
}

// Rows returns the board as nested slices of typed values. A cell becomes an
// int64 or float64 only when that number formats back to the same text, so
// encoding the rows never changes what a cell displays.
func (b *Board) Rows() [][]any {
	rows := make([][]any, Size)
	for r := range rows {
		rows[r] = make([]any, Size)
		for c := range rows[r] {
			rows[r][c] = cellValue(b[r][c])
		}
	}
	return rows
}

func cellValue(c Cell) any {
	s := string(c)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && formatFloat(f) == s {
		return f
	}
	return s
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   string  `json:"key,omitempty"`
		Board [][]any `json:"board"`
	}{s.Key, s.Board.Rows()})
}

// EncodeTOML encodes the snapshot in the document shape DecodeTOML reads.
func EncodeTOML(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	doc := struct {
		Key   string  `toml:"key,omitempty"`
		Board [][]any `toml:"board"`
	}{s.Key, s.Board.Rows()}
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode toml")
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a snapshot document, rejecting malformed boards.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	snap, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	*s = snap
	return nil
}
