package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vovakirdan/wiredoc-server/internal/store"
)

// DefaultPrefix namespaces snapshot keys.
const DefaultPrefix = "wiredoc:snapshot:"

// RedisStore implements store.SnapshotStore with one string key per room.
type RedisStore struct {
	client *goredis.Client
	prefix string
}

// New connects to addr and verifies the connection with PING.
func New(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewWithClient(client, prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Key returns the redis key holding a room's snapshot.
func (s *RedisStore) Key(room string) string {
	return s.prefix + room
}

// LoadSnapshot retrieves the stored text for a room.
func (s *RedisStore) LoadSnapshot(ctx context.Context, room string) (string, error) {
	content, err := s.client.Get(ctx, s.Key(room)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", store.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("get snapshot: %w", err)
	}
	return content, nil
}

// SaveSnapshot replaces the stored text for a room. Snapshots never expire.
func (s *RedisStore) SaveSnapshot(ctx context.Context, room, content string) error {
	if err := s.client.Set(ctx, s.Key(room), content, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
