package board

import (
	"encoding/json"
	"testing"

	apperr "github.com/matzehuels/boardviz/pkg/errors"
)

const sequentialJSON = `{"key":"GameState0","board":[[0,1,2,3],[4,5,6,7],[8,9,10,11],[12,13,14,15]]}`

func TestDecodeJSON(t *testing.T) {
	snap, err := DecodeJSON([]byte(sequentialJSON))
	if err != nil {
		t.Fatalf("DecodeJSON() error: %v", err)
	}
	if snap.Key != "GameState0" {
		t.Errorf("Key = %q, want GameState0", snap.Key)
	}
	if snap.Board != Sequential(0) {
		t.Errorf("Board = %v, want sequential board", snap.Board)
	}
}

func TestDecodeJSONRejectsMalformedBoards(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing board", `{"key":"GameState0"}`},
		{"null board", `{"board":null}`},
		{"three rows", `{"board":[[1,2,3,4],[1,2,3,4],[1,2,3,4]]}`},
		{"short row", `{"board":[[1,2,3,4],[1,2,3],[1,2,3,4],[1,2,3,4]]}`},
		{"row not array", `{"board":[1,2,3,4]}`},
		{"object cell", `{"board":[[{},2,3,4],[1,2,3,4],[1,2,3,4],[1,2,3,4]]}`},
		{"not json", `board = 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.doc))
			if err == nil {
				t.Fatal("DecodeJSON() error = nil, want error")
			}
			if !apperr.Is(err, apperr.ErrCodeInvalidSnapshot) {
				t.Errorf("error code = %v, want %v", apperr.GetCode(err), apperr.ErrCodeInvalidSnapshot)
			}
		})
	}
}

func TestDecodeTOML(t *testing.T) {
	doc := `
key = "GameState4"
board = [
  ["WhitePiece0", "Empty0", "Empty0", "BlackPiece0"],
  ["Empty0", "Unknown0", "Empty0", "Empty0"],
  ["Empty0", "Empty0", "Empty0", "Empty0"],
  ["BlackPiece0", "Empty0", "Empty0", "WhitePiece0"],
]
`
	snap, err := DecodeTOML([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeTOML() error: %v", err)
	}
	if snap.Key != "GameState4" {
		t.Errorf("Key = %q", snap.Key)
	}
	if Classify(snap.Board[0][0]) != White || Classify(snap.Board[0][3]) != Black {
		t.Errorf("first row = %v", snap.Board[0])
	}
	if Classify(snap.Board[1][1]) != Unknown {
		t.Errorf("Board[1][1] = %q, want unknown label", snap.Board[1][1])
	}
}

func TestDecodeTOMLMissingBoard(t *testing.T) {
	_, err := DecodeTOML([]byte(`key = "GameState1"`))
	if !apperr.Is(err, apperr.ErrCodeInvalidSnapshot) {
		t.Errorf("DecodeTOML() error = %v, want INVALID_SNAPSHOT", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := Snapshot{Key: "GameState1", Board: Sequential(100)}
	in.Board[2][2] = "Empty0"
	in.Board[3][1] = "1.5"
	in.Board[3][2] = "007"
	in.Board[3][3] = "1e-7"

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}

	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestTOMLRoundTrip(t *testing.T) {
	in := Snapshot{Key: "GameState2", Board: Fill(LabelEmpty)}
	in.Board[0][1] = LabelWhite
	in.Board[1][0] = "7"
	in.Board[1][1] = "1.50"
	in.Board[1][2] = "-0"

	data, err := EncodeTOML(in)
	if err != nil {
		t.Fatalf("EncodeTOML() error: %v", err)
	}
	out, err := DecodeTOML(data)
	if err != nil {
		t.Fatalf("DecodeTOML() error: %v\n%s", err, data)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
