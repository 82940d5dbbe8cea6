package render

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/matzehuels/boardviz/pkg/board"
	"github.com/matzehuels/boardviz/pkg/canvas"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/observability"
	"github.com/matzehuels/boardviz/pkg/store"
)

func TestParseScene(t *testing.T) {
	tests := []struct {
		in      string
		want    Scene
		wantErr bool
	}{
		{"values", SceneValues, false},
		{"pieces", ScenePieces, false},
		{" Pieces ", ScenePieces, false},
		{"tiles", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScene(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseScene(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !apperr.Is(err, apperr.ErrCodeInvalidScene) {
			t.Errorf("ParseScene(%q) code = %v", tt.in, apperr.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseScene(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDrawValuesSequentialBoard(t *testing.T) {
	p := store.NewMemory(board.Snapshot{Key: "GameState0", Board: board.Sequential(0)})
	s := canvas.NewSVG()

	st, err := DrawValues(context.Background(), p, s)
	if err != nil {
		t.Fatalf("DrawValues() error: %v", err)
	}

	if st.States != 1 || st.Missing != 1 || st.Marks != 17 {
		t.Errorf("Stats = %+v, want 1 state, 1 missing, 17 marks", st)
	}
	if s.Count(canvas.KindText) != 16 || s.Count(canvas.KindRect) != 1 {
		t.Fatalf("text=%d rect=%d, want 16 and 1", s.Count(canvas.KindText), s.Count(canvas.KindRect))
	}

	marks := s.Marks()
	for i := 0; i < 16; i++ {
		row, col := i/board.Size, i%board.Size
		m := marks[i]
		if m.Text.Content != strconv.Itoa(i) {
			t.Errorf("mark %d content = %q, want %q", i, m.Text.Content, strconv.Itoa(i))
		}
		wantX, wantY := float64(row+1)*10, float64(col+1)*14
		if m.Text.X != wantX || m.Text.Y != wantY {
			t.Errorf("mark %d at (%v, %v), want (%v, %v)", i, m.Text.X, m.Text.Y, wantX, wantY)
		}
		if m.Text.Fill != "black" {
			t.Errorf("mark %d fill = %q", i, m.Text.Fill)
		}
	}

	frame := marks[16].Rect
	want := canvas.Rect{X: 5, Y: 1, W: 40, H: 50, Stroke: "black", StrokeWidth: 2, Fill: "transparent"}
	if frame != want {
		t.Errorf("frame = %+v, want %+v", frame, want)
	}
}

func TestDrawValuesSecondSlotOffset(t *testing.T) {
	p := store.NewMemory(board.Snapshot{Key: "GameState1", Board: board.Sequential(0)})
	s := canvas.NewSVG()

	st, err := DrawValues(context.Background(), p, s)
	if err != nil {
		t.Fatalf("DrawValues() error: %v", err)
	}
	if st.States != 1 || st.Missing != 1 {
		t.Errorf("Stats = %+v", st)
	}

	marks := s.Marks()
	if first := marks[0].Text; first.X != 10 || first.Y != 14+55 {
		t.Errorf("first text at (%v, %v), want (10, 69)", first.X, first.Y)
	}
	if frame := marks[16].Rect; frame.Y != 56 {
		t.Errorf("frame y = %v, want 56", frame.Y)
	}
}

func TestDrawValuesNoSnapshots(t *testing.T) {
	s := canvas.NewSVG()
	s.Text(canvas.Text{Content: "stale"})

	st, err := DrawValues(context.Background(), store.NewMemory(), s)
	if err != nil {
		t.Fatalf("DrawValues() error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("surface has %d marks, want 0", s.Len())
	}
	if st != (Stats{Missing: 2}) {
		t.Errorf("Stats = %+v, want only 2 missing", st)
	}
}

func TestValuePositionIsPure(t *testing.T) {
	for slot := 0; slot < 2; slot++ {
		for row := 0; row < board.Size; row++ {
			for col := 0; col < board.Size; col++ {
				x1, y1 := ValuePosition(slot, row, col)
				x2, y2 := ValuePosition(slot, row, col)
				if x1 != x2 || y1 != y2 {
					t.Fatalf("ValuePosition(%d, %d, %d) not deterministic", slot, row, col)
				}
			}
		}
	}
	if x, y := ValuePosition(1, 3, 2); x != 40 || y != 42+55 {
		t.Errorf("ValuePosition(1, 3, 2) = (%v, %v), want (40, 97)", x, y)
	}
}

func TestDrawPiecesUnknownLabel(t *testing.T) {
	b := board.Fill(board.LabelEmpty)
	b[0][0] = board.LabelWhite
	b[0][1] = board.LabelBlack
	b[2][3] = "Unknown0"
	p := store.NewMemory(board.Snapshot{Key: "GameState0", Board: b})
	s := canvas.NewSVG()

	st, err := DrawPieces(context.Background(), p, s)
	if err != nil {
		t.Fatalf("DrawPieces() error: %v", err)
	}
	if st.States != 1 || st.Missing != 12 || st.Marks != 15 || st.Skipped != 1 {
		t.Errorf("Stats = %+v, want 1 state, 12 missing, 15 marks, 1 skipped", st)
	}
	if s.Count(canvas.KindRect) != 15 || s.Count(canvas.KindText) != 0 {
		t.Errorf("rect=%d text=%d", s.Count(canvas.KindRect), s.Count(canvas.KindText))
	}

	marks := s.Marks()
	if marks[0].Rect.Fill != "white" || marks[1].Rect.Fill != "black" || marks[2].Rect.Fill != "lightgray" {
		t.Errorf("fills = %q %q %q", marks[0].Rect.Fill, marks[1].Rect.Fill, marks[2].Rect.Fill)
	}

	ux, uy := PiecePosition(0, 2, 3)
	for _, m := range marks {
		if m.Rect.X == ux && m.Rect.Y == uy {
			t.Errorf("unknown cell at (%v, %v) was drawn", ux, uy)
		}
	}
}

func TestDrawPiecesColumnLayout(t *testing.T) {
	tests := []struct {
		slot  int
		wantX float64
		wantY float64
	}{
		{0, 2, 2},
		{3, 2, 242},
		{4, 82, 2},
		{7, 82, 242},
		{12, 242, 2},
	}
	for _, tt := range tests {
		p := store.NewMemory(board.Snapshot{Key: board.Key("GameState", tt.slot), Board: board.Fill(board.LabelBlack)})
		s := canvas.NewSVG()
		if _, err := DrawPieces(context.Background(), p, s); err != nil {
			t.Fatalf("slot %d: DrawPieces() error: %v", tt.slot, err)
		}
		if s.Len() != 16 {
			t.Fatalf("slot %d: %d marks, want 16", tt.slot, s.Len())
		}
		first := s.Marks()[0].Rect
		if first.X != tt.wantX || first.Y != tt.wantY {
			t.Errorf("slot %d: first square at (%v, %v), want (%v, %v)", tt.slot, first.X, first.Y, tt.wantX, tt.wantY)
		}
		if first.W != 16 || first.H != 16 {
			t.Errorf("slot %d: square %vx%v, want 16x16", tt.slot, first.W, first.H)
		}
	}
}

func TestDrawPiecesIgnoresSlotsBeyondRange(t *testing.T) {
	p := store.NewMemory(board.Snapshot{Key: "GameState13", Board: board.Fill(board.LabelWhite)})
	s := canvas.NewSVG()

	st, err := DrawPieces(context.Background(), p, s)
	if err != nil {
		t.Fatalf("DrawPieces() error: %v", err)
	}
	if st.States != 0 || s.Len() != 0 {
		t.Errorf("slot 13 should not be read by default: %+v", st)
	}

	st, err = DrawPieces(context.Background(), p, s, WithStates(14))
	if err != nil {
		t.Fatalf("DrawPieces() error: %v", err)
	}
	if st.States != 1 || s.Len() != 16 {
		t.Errorf("WithStates(14) should read slot 13: %+v", st)
	}
}

func TestPieceColorIsExhaustive(t *testing.T) {
	for _, p := range []board.Piece{board.White, board.Black, board.Empty} {
		if _, ok := PieceColor(p); !ok {
			t.Errorf("PieceColor(%v) should draw", p)
		}
	}
	if _, ok := PieceColor(board.Unknown); ok {
		t.Error("PieceColor(Unknown) should not draw")
	}
}

func TestDrawIsIdempotent(t *testing.T) {
	b := board.Fill(board.LabelWhite)
	b[1][1] = "Unknown0"
	p := store.NewMemory(
		board.Snapshot{Key: "GameState0", Board: board.Sequential(0)},
		board.Snapshot{Key: "GameState1", Board: b},
		board.Snapshot{Key: "GameState5", Board: b},
	)

	for _, scene := range Scenes() {
		t.Run(string(scene), func(t *testing.T) {
			s := canvas.NewSVG()
			if _, err := Draw(context.Background(), scene, p, s); err != nil {
				t.Fatalf("first Draw() error: %v", err)
			}
			first := s.Bytes()

			if _, err := Draw(context.Background(), scene, p, s); err != nil {
				t.Fatalf("second Draw() error: %v", err)
			}
			if !bytes.Equal(first, s.Bytes()) {
				t.Errorf("second pass differs:\n%s\nvs\n%s", first, s.Bytes())
			}
		})
	}
}

func TestDrawWithKeyPrefix(t *testing.T) {
	p := store.NewMemory(board.Snapshot{Key: "match7-0", Board: board.Sequential(0)})
	s := canvas.NewSVG()

	st, err := DrawValues(context.Background(), p, s, WithKeyPrefix("match7-"))
	if err != nil {
		t.Fatalf("DrawValues() error: %v", err)
	}
	if st.States != 1 {
		t.Errorf("States = %d, want 1", st.States)
	}
}

func TestDrawUnknownScene(t *testing.T) {
	_, err := Draw(context.Background(), Scene("tiles"), store.NewMemory(), canvas.NewSVG())
	if !apperr.Is(err, apperr.ErrCodeInvalidScene) {
		t.Errorf("Draw() error = %v, want INVALID_SCENE", err)
	}
}

func TestDrawProviderError(t *testing.T) {
	boom := apperr.New(apperr.ErrCodeInvalidSnapshot, "snapshot has no board")
	p := failingProvider{key: "GameState1", err: boom}

	_, err := DrawValues(context.Background(), p, canvas.NewSVG())
	if !errors.Is(err, boom) {
		t.Fatalf("DrawValues() error = %v, want %v", err, boom)
	}
	if !apperr.Is(err, apperr.ErrCodeInvalidSnapshot) {
		t.Errorf("error code = %v", apperr.GetCode(err))
	}
}

func TestDrawCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DrawPieces(ctx, store.NewMemory(), canvas.NewSVG())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("DrawPieces() error = %v, want context.Canceled", err)
	}
}

func TestRenderHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	hooks := &recordingHooks{}
	observability.SetRenderHooks(hooks)

	p := store.NewMemory(board.Snapshot{Key: "GameState0", Board: board.Sequential(0)})
	if _, err := DrawValues(context.Background(), p, canvas.NewSVG()); err != nil {
		t.Fatalf("DrawValues() error: %v", err)
	}

	if hooks.scene != "values" || hooks.slots != 2 || hooks.marks != 17 {
		t.Errorf("hooks saw scene=%q slots=%d marks=%d", hooks.scene, hooks.slots, hooks.marks)
	}
}

type failingProvider struct {
	key string
	err error
}

func (f failingProvider) Snapshot(_ context.Context, key string) (board.Snapshot, bool, error) {
	if key == f.key {
		return board.Snapshot{}, false, f.err
	}
	return board.Snapshot{Key: key, Board: board.Sequential(0)}, true, nil
}

type recordingHooks struct {
	observability.NoopRenderHooks
	scene string
	slots int
	marks int
}

func (h *recordingHooks) OnRenderStart(_ context.Context, scene string, slots int) {
	h.scene, h.slots = scene, slots
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, _ string, marks int, _ time.Duration, _ error) {
	h.marks = marks
}
