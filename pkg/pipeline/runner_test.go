package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/boardviz/pkg/board"
	"github.com/matzehuels/boardviz/pkg/cache"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/store"
)

func testProvider() *store.Memory {
	return store.NewMemory(
		board.Snapshot{Key: "GameState0", Board: board.Sequential(0)},
		board.Snapshot{Key: "GameState1", Board: board.Fill(board.LabelWhite)},
	)
}

// fakeConvert stands in for rsvg-convert and counts calls.
func fakeConvert(calls *int) ConvertFunc {
	return func(_ context.Context, svg []byte, format string, scale float64) ([]byte, error) {
		*calls++
		return append([]byte(format+":"), svg[:8]...), nil
	}
}

func TestExecuteSVG(t *testing.T) {
	r := NewRunner(testProvider(), nil, nil)

	res, err := r.Execute(context.Background(), Options{Scene: "values"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.ID == "" {
		t.Error("Result.ID is empty")
	}
	svg := res.Artifacts[FormatSVG]
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Fatalf("svg artifact = %.40q", svg)
	}
	if res.SVGHash != cache.Hash(svg) {
		t.Error("SVGHash does not match artifact")
	}
	if res.Draw.States != 2 || res.Draw.Marks != 34 {
		t.Errorf("Draw = %+v, want 2 states and 34 marks", res.Draw)
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	r := NewRunner(testProvider(), nil, nil)
	ctx := context.Background()

	a, err := r.Execute(ctx, Options{Scene: "pieces"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(ctx, Options{Scene: "pieces"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Artifacts[FormatSVG], b.Artifacts[FormatSVG]) {
		t.Error("two runs over unchanged state produced different SVG")
	}
	if a.ID == b.ID {
		t.Error("runs share an ID")
	}
}

func TestExecuteCachesConversions(t *testing.T) {
	mem, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	r := NewRunner(testProvider(), mem, nil)
	r.Convert = fakeConvert(&calls)
	ctx := context.Background()
	opts := Options{Scene: "values", Formats: []string{"png", "pdf"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if calls != 2 || first.Stats.CacheHits != 0 {
		t.Fatalf("calls=%d hits=%d after first run, want 2 and 0", calls, first.Stats.CacheHits)
	}
	if !strings.HasPrefix(string(first.Artifacts[FormatPNG]), "png:") {
		t.Errorf("png artifact = %q", first.Artifacts[FormatPNG])
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if calls != 2 || second.Stats.CacheHits != 2 {
		t.Errorf("calls=%d hits=%d after second run, want 2 and 2", calls, second.Stats.CacheHits)
	}

	opts.NoCache = true
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}
	if calls != 4 {
		t.Errorf("calls=%d with NoCache, want 4", calls)
	}
}

func TestExecuteNoCacheLeavesCacheEmpty(t *testing.T) {
	mem, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	r := NewRunner(testProvider(), mem, nil)
	r.Convert = fakeConvert(&calls)

	opts := Options{Scene: "values", Formats: []string{"png", "pdf"}, NoCache: true}
	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if n := mem.Len(); n != 0 {
		t.Errorf("cache holds %d entries after a NoCache run, want 0", n)
	}
}

func TestExecuteRepeatedFormatConvertsOnce(t *testing.T) {
	mem, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	r := NewRunner(testProvider(), mem, nil)
	r.Convert = fakeConvert(&calls)

	res, err := r.Execute(context.Background(), Options{Scene: "values", Formats: []string{"svg", "png", "svg", "png"}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if calls != 1 || res.Stats.CacheHits != 0 {
		t.Errorf("calls=%d hits=%d, want 1 and 0", calls, res.Stats.CacheHits)
	}
	if len(res.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(res.Artifacts))
	}
}

func TestExecuteScaleChangesCacheKey(t *testing.T) {
	mem, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	r := NewRunner(testProvider(), mem, nil)
	r.Convert = fakeConvert(&calls)
	ctx := context.Background()

	for _, scale := range []float64{1, 2, 2} {
		if _, err := r.Execute(ctx, Options{Scene: "values", Formats: []string{"png"}, Scale: scale}); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExecuteJSON(t *testing.T) {
	r := NewRunner(testProvider(), nil, nil)

	res, err := r.Execute(context.Background(), Options{Scene: "pieces", Formats: []string{"json"}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	var doc struct {
		Scene string `json:"scene"`
		Stats struct {
			States  int `json:"states"`
			Skipped int `json:"skipped"`
		} `json:"stats"`
		Marks []struct {
			Kind string  `json:"kind"`
			Fill string  `json:"fill"`
			W    float64 `json:"width"`
		} `json:"marks"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("decode json artifact: %v", err)
	}
	if doc.Scene != "pieces" || doc.Stats.States != 2 {
		t.Errorf("scene=%q states=%d", doc.Scene, doc.Stats.States)
	}
	// GameState0 holds numbers, which are not piece labels.
	if doc.Stats.Skipped != 16 || len(doc.Marks) != 16 {
		t.Fatalf("skipped=%d marks=%d, want 16 and 16", doc.Stats.Skipped, len(doc.Marks))
	}
	for _, m := range doc.Marks {
		if m.Kind != "rect" || m.Fill != "white" || m.W != 16 {
			t.Errorf("mark = %+v", m)
		}
	}
}

func TestExecuteJSONKeepsEmptyText(t *testing.T) {
	p := store.NewMemory(board.Snapshot{Key: "GameState0", Board: board.Fill("")})
	r := NewRunner(p, nil, nil)

	res, err := r.Execute(context.Background(), Options{Scene: "values", Formats: []string{"json"}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	var doc struct {
		Marks []map[string]any `json:"marks"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("decode json artifact: %v", err)
	}
	texts := 0
	for _, m := range doc.Marks {
		if m["kind"] != "text" {
			if _, ok := m["text"]; ok {
				t.Errorf("rect mark carries text: %v", m)
			}
			continue
		}
		texts++
		if v, ok := m["text"]; !ok || v != "" {
			t.Errorf("text mark = %v, want an empty text field", m)
		}
	}
	if texts != 16 {
		t.Errorf("text marks = %d, want 16", texts)
	}
}

func TestExecuteProviderError(t *testing.T) {
	r := NewRunner(failingProvider{}, nil, nil)

	_, err := r.Execute(context.Background(), Options{Scene: "values"})
	if !apperr.Is(err, apperr.ErrCodeStoreUnavailable) {
		t.Fatalf("error = %v, want STORE_UNAVAILABLE", err)
	}
	if !strings.Contains(err.Error(), "GameState0") {
		t.Errorf("error %q does not name the slot key", err)
	}
}

func TestExecuteConvertError(t *testing.T) {
	r := NewRunner(testProvider(), nil, nil)
	boom := errors.New("boom")
	r.Convert = func(context.Context, []byte, string, float64) ([]byte, error) { return nil, boom }

	_, err := r.Execute(context.Background(), Options{Scene: "values", Formats: []string{"svg", "pdf"}})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

type failingProvider struct{}

func (failingProvider) Snapshot(context.Context, string) (board.Snapshot, bool, error) {
	return board.Snapshot{}, false, apperr.New(apperr.ErrCodeStoreUnavailable, "down")
}
