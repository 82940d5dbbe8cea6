package board

import (
	"encoding/json"
	"math"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		index  int
		want   string
	}{
		{DefaultPrefix, 0, "GameState0"},
		{DefaultPrefix, 12, "GameState12"},
		{"match-", 3, "match-3"},
	}
	for _, tt := range tests {
		if got := Key(tt.prefix, tt.index); got != tt.want {
			t.Errorf("Key(%q, %d) = %q, want %q", tt.prefix, tt.index, got, tt.want)
		}
	}
}

func TestSequential(t *testing.T) {
	b := Sequential(0)
	if b[0][0] != "0" || b[0][3] != "3" || b[1][0] != "4" || b[3][3] != "15" {
		t.Errorf("Sequential(0) = %v", b)
	}

	var n int
	b.Cells(func(row, col int, c Cell) {
		if want := Key("", row*Size+col); string(c) != want {
			t.Errorf("cell [%d][%d] = %q, want %q", row, col, c, want)
		}
		n++
	})
	if n != Size*Size {
		t.Errorf("Cells visited %d cells, want %d", n, Size*Size)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Cell
		wantErr bool
	}{
		{"string", "WhitePiece0", "WhitePiece0", false},
		{"int", 7, "7", false},
		{"int64", int64(-2), "-2", false},
		{"integral float", float64(16), "16", false},
		{"fraction", 1.5, "1.5", false},
		{"json number", json.Number("2048"), "2048", false},
		{"json fraction", json.Number("0.25"), "0.25", false},
		{"negative zero", math.Copysign(0, -1), "0", false},
		{"large float", 1e21, "1e+21", false},
		{"large fraction", 1.5e300, "1.5e+300", false},
		{"below exponent threshold", 1e20, "100000000000000000000", false},
		{"small float", 1e-7, "1e-7", false},
		{"small fraction", -2.5e-10, "-2.5e-10", false},
		{"above exponent threshold", 0.000001, "0.000001", false},
		{"json large", json.Number("12345678901234567890"), "12345678901234567000", false},
		{"bool", true, "true", false},
		{"nested array", []any{1}, "", true},
		{"nil", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatValue(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatValue(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		cell Cell
		want Piece
	}{
		{"WhitePiece0", White},
		{"BlackPiece0", Black},
		{"Empty0", Empty},
		{"Unknown0", Unknown},
		{"whitepiece0", Unknown},
		{"WhitePiece1", Unknown},
		{"", Unknown},
		{"3", Unknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.cell); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestPieceLabelRoundTrip(t *testing.T) {
	for _, p := range []Piece{White, Black, Empty} {
		if got := Classify(p.Label()); got != p {
			t.Errorf("Classify(%v.Label()) = %v", p, got)
		}
	}
	if Unknown.Label() != "" {
		t.Errorf("Unknown.Label() = %q, want empty", Unknown.Label())
	}
	if Piece(42).String() != "unknown" {
		t.Errorf("Piece(42).String() = %q", Piece(42).String())
	}
}
