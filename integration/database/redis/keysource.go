package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mediastore/core/media"
)

// Compile-time check that KeySource implements media.KeySource.
var _ media.KeySource = (*KeySource)(nil)

// Connect creates a Redis client from a redis:// or rediss:// URL and
// verifies connectivity with a ping before returning it.
func Connect(ctx context.Context, connURL string) (*redis.Client, error) {
	if connURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opt, err := redis.ParseURL(connURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrRedisNotReady, err)
	}
	return client, nil
}

// KeySource lists the media file keys held in one Redis set. Useful when the
// referencing application tracks live keys with SADD/SREM instead of a
// relational column.
type KeySource struct {
	client redis.Cmdable
	setKey string
}

// NewKeySource creates a key source over the set stored at setKey.
func NewKeySource(client redis.Cmdable, setKey string) (*KeySource, error) {
	if client == nil || setKey == "" {
		return nil, fmt.Errorf("%w: redis key source needs a client and a set key", media.ErrInvalidConfig)
	}
	return &KeySource{client: client, setKey: setKey}, nil
}

// ListReferencedKeys returns all members of the configured set. A missing
// set is an empty reference set, not an error.
func (s *KeySource) ListReferencedKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list referenced keys from set %q: %w", s.setKey, err)
	}
	return keys, nil
}
