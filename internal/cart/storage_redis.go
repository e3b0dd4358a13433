package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/ishos/storefront/pkg/redis"
)

// KV is the slice of the redis client the cart needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	CartKey(sessionID string) string
}

var _ KV = (*redis.Client)(nil)

// RedisProvider stores each session's cart as a JSON document that expires
// with the session.
type RedisProvider struct {
	kv  KV
	ttl time.Duration
}

func NewRedisProvider(kv KV, ttl time.Duration) (*RedisProvider, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisProvider{kv: kv, ttl: ttl}, nil
}

func (p *RedisProvider) ForSession(sessionID string) Storage {
	return &RedisStorage{kv: p.kv, key: p.kv.CartKey(sessionID), ttl: p.ttl}
}

type RedisStorage struct {
	kv  KV
	key string
	ttl time.Duration
}

// Load reads the stored snapshot and slides its expiry forward so a cart
// that is only being read does not lapse mid-session.
func (s *RedisStorage) Load(ctx context.Context) (Cart, bool, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if redis.IsNil(err) {
		return Cart{}, false, nil
	}
	if err != nil {
		return Cart{}, false, fmt.Errorf("load cart %s: %w", s.key, err)
	}
	c, err := decode([]byte(raw))
	if err != nil {
		return Cart{}, false, err
	}
	if s.ttl > 0 {
		// Best effort: the next Save rewrites the TTL anyway.
		_, _ = s.kv.Expire(ctx, s.key, s.ttl)
	}
	return c, true, nil
}

// Save writes the full snapshot and refreshes the session TTL.
func (s *RedisStorage) Save(ctx context.Context, c Cart) error {
	data, err := encode(c)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, string(data), s.ttl); err != nil {
		return fmt.Errorf("save cart %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key); err != nil {
		return fmt.Errorf("delete cart %s: %w", s.key, err)
	}
	return nil
}
