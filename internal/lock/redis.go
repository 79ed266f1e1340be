package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker блокировка для нескольких экземпляров сервиса (SET NX PX)
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if prefix == "" {
		prefix = "calm:lock"
	}
	return &RedisLocker{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		logger: logger,
	}
}

// Lock ждёт блокировку пока не истечёт ctx.
// TTL ограничивает время удержания, если процесс упал не освободив ключ.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + ":" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("acquire lock %s: %w: %w", fullKey, ErrNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("acquire lock %s: %w", fullKey, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w: %w", fullKey, ErrNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// Освобождаем даже если ctx запроса уже отменён
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.rdb, []string{fullKey}, token).Err(); err != nil {
			l.logger.Warn("Failed to release lock",
				zap.String("key", fullKey),
				zap.Error(err))
		}
	}, nil
}
