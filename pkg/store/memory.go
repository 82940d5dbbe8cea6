package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/boardviz/pkg/board"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
)

// Memory is an in-process store. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	snaps map[string]board.Snapshot
}

// NewMemory creates an empty memory store, optionally seeded with snapshots.
func NewMemory(snaps ...board.Snapshot) *Memory {
	m := &Memory{snaps: make(map[string]board.Snapshot, len(snaps))}
	for _, s := range snaps {
		m.snaps[s.Key] = s
	}
	return m
}

// Snapshot returns the snapshot stored under key.
func (m *Memory) Snapshot(ctx context.Context, key string) (board.Snapshot, bool, error) {
	m.mu.RLock()
	s, ok := m.snaps[key]
	m.mu.RUnlock()
	record(ctx, KindMemory, key, ok, nil)
	return s, ok, nil
}

// Put stores snap under its key, replacing any previous snapshot.
func (m *Memory) Put(ctx context.Context, snap board.Snapshot) error {
	if err := apperr.ValidateKey(snap.Key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.Key] = snap
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

// Keys returns the stored keys in lexical order.
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.snaps))
	for k := range m.snaps {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
