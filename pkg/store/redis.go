package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/boardviz/pkg/board"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
)

// DefaultRedisPrefix namespaces snapshot keys in a shared Redis database.
const DefaultRedisPrefix = "boardviz:"

// Redis stores snapshots as JSON strings under <prefix><key>.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. An empty prefix uses DefaultRedisPrefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// OpenRedis connects to addr and verifies the connection with PING.
func OpenRedis(ctx context.Context, addr, password string, db int, prefix string) (*Redis, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "connect redis %s", addr)
	}
	return NewRedis(client, prefix), nil
}

func (r *Redis) redisKey(key string) string { return r.prefix + key }

// Snapshot fetches and decodes the document stored under key.
func (r *Redis) Snapshot(ctx context.Context, key string) (board.Snapshot, bool, error) {
	snap, ok, err := r.get(ctx, key)
	record(ctx, KindRedis, key, ok, err)
	return snap, ok, err
}

func (r *Redis) get(ctx context.Context, key string) (board.Snapshot, bool, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return board.Snapshot{}, false, nil
	}
	if err != nil {
		return board.Snapshot{}, false, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "redis get %s", key)
	}
	snap, err := board.DecodeJSON(data)
	if err != nil {
		return board.Snapshot{}, false, apperr.Wrap(apperr.ErrCodeInvalidSnapshot, err, "snapshot %s", key)
	}
	snap.Key = key
	return snap, true, nil
}

// Put stores snap without expiry.
func (r *Redis) Put(ctx context.Context, snap board.Snapshot) error {
	if err := apperr.ValidateKey(snap.Key); err != nil {
		return err
	}
	data, err := snap.MarshalJSON()
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeInternal, err, "encode %s", snap.Key)
	}
	if err := r.client.Set(ctx, r.redisKey(snap.Key), data, 0).Err(); err != nil {
		return apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "redis set %s", snap.Key)
	}
	return nil
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "redis del %s", key)
	}
	return nil
}

// Keys scans for every key under the prefix.
func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "redis scan")
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = (*Redis)(nil)
