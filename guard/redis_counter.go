package guard

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore 是 Redis 实现的限流计数存储，用于多实例部署。
// INCR 本身原子，首个计数写入窗口过期时间。
type RedisCounterStore struct {
	client *redis.Client
	prefix string
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client, prefix: "guard:rate:"}
}

func (r *RedisCounterStore) Incr(ctx context.Context, identity string, window time.Duration) (int, time.Time, error) {
	key := r.prefix + identity

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if count == 1 {
		// 新窗口：设置过期。失败时宁可窗口偏长也不放飞计数。
		_ = r.client.Expire(ctx, key, window).Err()
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return int(count), time.Now().Add(ttl), nil
}

var _ CounterStore = (*RedisCounterStore)(nil)
