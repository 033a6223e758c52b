package lock_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"detox/internal/platform/id"
	"detox/internal/platform/lock"
)

func TestLocalSerializesSameKey(t *testing.T) {
	t.Parallel()
	locker := lock.NewLocal()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, unlock, err := locker.Lock(context.Background(), "alice")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxInside)
	}
}

func TestLocalIsReentrantThroughContext(t *testing.T) {
	t.Parallel()
	locker := lock.NewLocal()
	ctx, unlock, err := locker.Lock(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	done := make(chan error, 1)
	go func() {
		_, inner, err := locker.Lock(ctx, "alice")
		if err == nil {
			inner()
		}
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("reentrant lock: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("reentrant lock blocked")
	}
}

func TestLocalDifferentKeysDoNotBlockAndCancelReleases(t *testing.T) {
	t.Parallel()
	locker := lock.NewLocal()
	_, unlockA, err := locker.Lock(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lock alice: %v", err)
	}
	_, unlockB, err := locker.Lock(context.Background(), "bob")
	if err != nil {
		t.Fatalf("lock bob while alice held: %v", err)
	}
	unlockB()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := locker.Lock(ctx, "alice"); err == nil {
		t.Fatalf("expected timeout while alice is held")
	}
	unlockA()
	unlockA()
	_, unlockAgain, err := locker.Lock(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlockAgain()
}

func TestRedisLockRoundTrip(t *testing.T) {
	addr := os.Getenv("DETOX_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DETOX_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	locker := lock.NewRedis(client, id.UUID{})
	_, unlock, err := locker.Lock(context.Background(), "redis-user")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, _, err := locker.Lock(ctx, "redis-user"); err == nil {
		t.Fatalf("second holder should time out")
	}
	unlock()
	_, unlock2, err := locker.Lock(context.Background(), "redis-user")
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlock2()
}
