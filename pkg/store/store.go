// Package store provides the state providers renderers read snapshots from.
//
// Renderers only depend on [Provider]. The CLI and the server open a full
// [Store] so snapshots can also be written and listed. Backends:
//
//   - [Memory]: in-process map, used by tests and the terminal preview
//   - [Dir]: a directory of <key>.json or <key>.toml files
//   - [Redis]: JSON documents under a key prefix
//   - [Mongo]: one document per key in a collection
//
// A lookup for a key that does not exist is not an error: Snapshot returns
// ok == false and renderers skip the slot.
package store

import (
	"context"
	"strings"

	"github.com/matzehuels/boardviz/pkg/board"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/observability"
)

// Provider is the read-only view renderers use.
type Provider interface {
	// Snapshot returns the snapshot stored under key. ok is false when the
	// key does not exist.
	Snapshot(ctx context.Context, key string) (snap board.Snapshot, ok bool, err error)
}

// Writer mutates stored snapshots.
type Writer interface {
	Put(ctx context.Context, snap board.Snapshot) error
	Delete(ctx context.Context, key string) error
}

// Store is a Provider that can also be written, listed and closed.
type Store interface {
	Provider
	Writer
	// Keys returns all stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	KindMemory = "memory"
	KindDir    = "dir"
	KindRedis  = "redis"
	KindMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Kind string `toml:"kind"`

	// Dir backend
	Dir    string `toml:"dir"`
	Format string `toml:"format"` // "json" (default) or "toml" for written files

	// Redis backend
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	KeyPrefix     string `toml:"redis_prefix"`

	// Mongo backend
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Open builds the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(cfg.Kind) {
	case KindMemory, "":
		return NewMemory(), nil
	case KindDir:
		s, err = NewDir(cfg.Dir, cfg.Format)
	case KindRedis:
		s, err = withRetry(ctx, func() (*Redis, error) {
			return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
		})
	case KindMongo:
		s, err = withRetry(ctx, func() (*Mongo, error) {
			return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		})
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidConfig, "unknown store kind %q (must be memory, dir, redis or mongo)", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// record reports a lookup outcome to the store hooks.
func record(ctx context.Context, backend, key string, ok bool, err error) {
	hooks := observability.Store()
	switch {
	case err != nil:
		hooks.OnSnapshotError(ctx, backend, key, err)
	case ok:
		hooks.OnSnapshotHit(ctx, backend, key)
	default:
		hooks.OnSnapshotMiss(ctx, backend, key)
	}
}
