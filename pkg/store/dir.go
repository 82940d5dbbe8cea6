package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/boardviz/pkg/board"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
)

const (
	formatJSON = "json"
	formatTOML = "toml"
)

// Dir stores each snapshot as <key>.json or <key>.toml in one directory.
// Reads accept either extension, preferring JSON; writes use the configured
// format and remove a stale file of the other format.
type Dir struct {
	dir    string
	format string
}

// NewDir creates a directory store, creating dir if needed.
// format selects the encoding for written files: "json" (default) or "toml".
func NewDir(dir, format string) (*Dir, error) {
	if dir == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidConfig, "dir store needs a directory")
	}
	switch format {
	case "":
		format = formatJSON
	case formatJSON, formatTOML:
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidConfig, "unknown snapshot format %q (must be json or toml)", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "create %s", dir)
	}
	return &Dir{dir: dir, format: format}, nil
}

// Path returns the directory backing the store.
func (d *Dir) Path() string { return d.dir }

// Snapshot reads and decodes the file for key.
func (d *Dir) Snapshot(ctx context.Context, key string) (board.Snapshot, bool, error) {
	snap, ok, err := d.read(key)
	record(ctx, KindDir, key, ok, err)
	return snap, ok, err
}

func (d *Dir) read(key string) (board.Snapshot, bool, error) {
	if err := apperr.ValidateKey(key); err != nil {
		return board.Snapshot{}, false, err
	}
	for _, format := range []string{formatJSON, formatTOML} {
		data, err := os.ReadFile(d.file(key, format))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return board.Snapshot{}, false, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "read %s", key)
		}

		snap, err := decode(format, data)
		if err != nil {
			return board.Snapshot{}, false, apperr.Wrap(apperr.GetCode(err), err, "snapshot %s", key)
		}
		snap.Key = key
		return snap, true, nil
	}
	return board.Snapshot{}, false, nil
}

// Put writes snap to <key>.<format>.
func (d *Dir) Put(ctx context.Context, snap board.Snapshot) error {
	if err := apperr.ValidateKey(snap.Key); err != nil {
		return err
	}
	data, err := encode(d.format, snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.file(snap.Key, d.format), data, 0644); err != nil {
		return apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "write %s", snap.Key)
	}
	_ = os.Remove(d.file(snap.Key, otherFormat(d.format)))
	return nil
}

// Delete removes every file stored for key.
func (d *Dir) Delete(ctx context.Context, key string) error {
	if err := apperr.ValidateKey(key); err != nil {
		return err
	}
	for _, format := range []string{formatJSON, formatTOML} {
		if err := os.Remove(d.file(key, format)); err != nil && !os.IsNotExist(err) {
			return apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "delete %s", key)
		}
	}
	return nil
}

// Keys lists snapshot files in the directory.
func (d *Dir) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "list %s", d.dir)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != "."+formatJSON && ext != "."+formatTOML {
			continue
		}
		key := strings.TrimSuffix(e.Name(), ext)
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close does nothing for directory stores.
func (d *Dir) Close() error { return nil }

func (d *Dir) file(key, format string) string {
	return filepath.Join(d.dir, key+"."+format)
}

func otherFormat(format string) string {
	if format == formatTOML {
		return formatJSON
	}
	return formatTOML
}

func decode(format string, data []byte) (board.Snapshot, error) {
	if format == formatTOML {
		return board.DecodeTOML(data)
	}
	return board.DecodeJSON(data)
}

func encode(format string, snap board.Snapshot) ([]byte, error) {
	if format == formatTOML {
		return board.EncodeTOML(snap)
	}
	data, err := snap.MarshalJSON()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode json")
	}
	return append(data, '\n'), nil
}

var _ Store = (*Dir)(nil)
