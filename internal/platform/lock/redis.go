package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"detox/internal/platform/id"
)

const (
	defaultLeaseTTL   = 30 * time.Second
	defaultRetryDelay = 25 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lease-based lock shared by every process talking to the same server.
type Redis struct {
	client redis.Cmdable
	ids    id.Generator
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

func NewRedis(client redis.Cmdable, ids id.Generator) *Redis {
	return &Redis{client: client, ids: ids, prefix: "detox:lock:user:", ttl: defaultLeaseTTL, retry: defaultRetryDelay}
}

func (r *Redis) Lock(ctx context.Context, key string) (context.Context, func(), error) {
	if held(ctx, key) {
		return ctx, noop, nil
	}
	redisKey := r.prefix + key
	token := r.ids.New()
	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return ctx, noop, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		timer := time.NewTimer(r.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx, noop, ctx.Err()
		case <-timer.C:
		}
	}
	var once sync.Once
	unlock := func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			// On failure the lease still expires after ttl.
			_ = releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err()
		})
	}
	return markHeld(ctx, key), unlock, nil
}
