package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matzehuels/boardviz/pkg/board"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/observability"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(board.Snapshot{Key: "GameState0", Board: board.Sequential(0)})
	defer m.Close()

	snap, ok, err := m.Snapshot(ctx, "GameState0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, board.Sequential(0), snap.Board)

	_, ok, err = m.Snapshot(ctx, "GameState1")
	require.NoError(t, err)
	assert.False(t, ok, "missing key should be a miss, not an error")

	require.NoError(t, m.Put(ctx, board.Snapshot{Key: "GameState1", Board: board.Fill(board.LabelEmpty)}))
	keys, err := m.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GameState0", "GameState1"}, keys)

	require.NoError(t, m.Delete(ctx, "GameState0"))
	require.NoError(t, m.Delete(ctx, "GameState0"), "deleting twice is fine")
	_, ok, _ = m.Snapshot(ctx, "GameState0")
	assert.False(t, ok)

	err = m.Put(ctx, board.Snapshot{Key: "../escape"})
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidKey))
}

func TestDirRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "toml"} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			d, err := NewDir(t.TempDir(), format)
			require.NoError(t, err)

			in := board.Snapshot{Key: "GameState3", Board: board.Fill(board.LabelEmpty)}
			in.Board[1][2] = board.LabelBlack
			require.NoError(t, d.Put(ctx, in))

			_, err = os.Stat(filepath.Join(d.Path(), "GameState3."+format))
			require.NoError(t, err)

			out, ok, err := d.Snapshot(ctx, "GameState3")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, in, out)

			keys, err := d.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"GameState3"}, keys)

			require.NoError(t, d.Delete(ctx, "GameState3"))
			_, ok, err = d.Snapshot(ctx, "GameState3")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

// numericLookingBoard holds cells that parse as numbers but would print
// differently if stored as one.
func numericLookingBoard() board.Board {
	return board.Board{
		{"007", "1.50", "+3", "1e3"},
		{"-0", "12345678901234567890", "0x10", " 4"},
		{"7", "-2", "1.5", "1e+21"},
		{"1e-7", "0.000001", "Infinity", "NaN"},
	}
}

func TestDirKeepsCellText(t *testing.T) {
	for _, format := range []string{"json", "toml"} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			d, err := NewDir(t.TempDir(), format)
			require.NoError(t, err)

			in := board.Snapshot{Key: "GameState0", Board: numericLookingBoard()}
			require.NoError(t, d.Put(ctx, in))

			out, ok, err := d.Snapshot(ctx, "GameState0")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, in.Board, out.Board)
		})
	}
}

func TestMongoRowsKeepCellText(t *testing.T) {
	b := numericLookingBoard()
	rows := b.Rows()
	stored := make([]any, len(rows))
	for i, r := range rows {
		stored[i] = primitive.A(r)
	}
	got, err := board.FromRows(normalizeRows(stored))
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestDirReadsHandWrittenFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "GameState0.json"),
		[]byte(`{"board":[[0,1,2,3],[4,5,6,7],[8,9,10,11],[12,13,14,15]]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "GameState1.toml"),
		[]byte("board = [[1,1,1,1],[2,2,2,2],[3,3,3,3],[4,4,4,4]]\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	d, err := NewDir(dir, "")
	require.NoError(t, err)

	snap, ok, err := d.Snapshot(ctx, "GameState0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "GameState0", snap.Key)
	assert.Equal(t, board.Sequential(0), snap.Board)

	snap, ok, err = d.Snapshot(ctx, "GameState1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, board.Cell("4"), snap.Board[3][0])

	keys, err := d.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GameState0", "GameState1"}, keys)
}

func TestDirMalformedSnapshotIsHardFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "GameState0.json"), []byte(`{"key":"GameState0"}`), 0644))

	d, err := NewDir(dir, "json")
	require.NoError(t, err)

	_, ok, err := d.Snapshot(ctx, "GameState0")
	assert.False(t, ok)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidSnapshot), "got %v", err)
}

func TestNewDirValidation(t *testing.T) {
	_, err := NewDir("", "json")
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidConfig))

	_, err = NewDir(t.TempDir(), "yaml")
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidConfig))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Kind: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Config{Kind: "DIR", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Dir{}, s)

	_, err = Open(ctx, Config{Kind: "etcd"})
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidConfig))
}

func TestNewRedisPrefix(t *testing.T) {
	r := NewRedis(nil, "")
	assert.Equal(t, "boardviz:GameState0", r.redisKey("GameState0"))

	r = NewRedis(nil, "match:7:")
	assert.Equal(t, "match:7:GameState12", r.redisKey("GameState12"))
}

func TestNormalizeRows(t *testing.T) {
	rows := []any{
		primitive.A{int32(0), int32(1), int32(2), int32(3)},
		primitive.A{int64(4), int64(5), int64(6), int64(7)},
		primitive.A{8.0, 9.0, 10.0, 11.0},
		primitive.A{"12", "13", "14", "15"},
	}
	b, err := board.FromRows(normalizeRows(rows))
	require.NoError(t, err)
	assert.Equal(t, board.Sequential(0), b)

	assert.Nil(t, normalizeRows(nil))
}

func TestStoreHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	hooks := &countingHooks{}
	observability.SetStoreHooks(hooks)

	ctx := context.Background()
	m := NewMemory(board.Snapshot{Key: "GameState0"})
	_, _, _ = m.Snapshot(ctx, "GameState0")
	_, _, _ = m.Snapshot(ctx, "GameState1")
	_, _, _ = m.Snapshot(ctx, "GameState2")

	assert.Equal(t, 1, hooks.hits)
	assert.Equal(t, 2, hooks.misses)
}

type countingHooks struct {
	observability.NoopStoreHooks
	hits, misses int
}

func (h *countingHooks) OnSnapshotHit(context.Context, string, string)  { h.hits++ }
func (h *countingHooks) OnSnapshotMiss(context.Context, string, string) { h.misses++ }

func TestDirReadsExampleStates(t *testing.T) {
	ctx := context.Background()
	d, err := NewDir(filepath.Join("..", "..", "examples", "states"), "")
	require.NoError(t, err)

	keys, err := d.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GameState0", "GameState1"}, keys)

	values, ok, err := d.Snapshot(ctx, "GameState0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, board.Sequential(0), values.Board)

	pieces, ok, err := d.Snapshot(ctx, "GameState1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, board.Black, board.Classify(pieces.Board[0][3]))
	assert.Equal(t, board.Unknown, board.Classify(pieces.Board[3][3]))
}
