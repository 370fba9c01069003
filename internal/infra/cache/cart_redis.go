package cache

import (
	"context"
	"errors"
	"time"

	"heat/internal/cart"
	"heat/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// go-redis のうち使う分だけ
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCartStore はカート明細を heat-cart:<owner> に JSON で保存する
type RedisCartStore struct {
	Client redisClient
	TTL    time.Duration
}

var _ cart.Store = (*RedisCartStore)(nil)

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{Client: client, TTL: ttl}
}

// 保存が無ければ空の明細
func (s *RedisCartStore) Load(ctx context.Context, owner string) ([]model.CartItem, error) {
	data, err := s.Client.Get(ctx, cart.Key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart.Decode(data)
}

func (s *RedisCartStore) Save(ctx context.Context, owner string, items []model.CartItem) error {
	data, err := cart.Encode(items)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, cart.Key(owner), data, s.TTL).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, owner string) error {
	return s.Client.Del(ctx, cart.Key(owner)).Err()
}
