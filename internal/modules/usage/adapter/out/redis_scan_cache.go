package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"detox/internal/modules/usage/domain"
	usageout "detox/internal/modules/usage/port/out"
	apperrors "detox/internal/platform/errors"
)

type redisScan struct {
	ID         string         `json:"id"`
	User       string         `json:"user"`
	Recognizer string         `json:"recognizer"`
	Tokens     int            `json:"tokens"`
	Apps       map[string]int `json:"apps"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RedisScanCache shares pending scans between server replicas.
type RedisScanCache struct {
	client redis.Cmdable
}

func NewRedisScanCache(client redis.Cmdable) usageout.ScanCache {
	return &RedisScanCache{client: client}
}

func (c *RedisScanCache) Put(ctx context.Context, scan domain.Scan, ttl time.Duration) error {
	raw, err := json.Marshal(redisScan{
		ID:         scan.ID,
		User:       scan.User,
		Recognizer: scan.Recognizer,
		Tokens:     scan.Tokens,
		Apps:       scan.Usage.Apps(),
		CreatedAt:  scan.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode scan: %w", err)
	}
	if err := c.client.Set(ctx, scanKey(scan.User, scan.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("store scan: %w", err)
	}
	return nil
}

func (c *RedisScanCache) Get(ctx context.Context, user, id string) (domain.Scan, error) {
	raw, err := c.client.Get(ctx, scanKey(user, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Scan{}, apperrors.ErrScanNotFound
	}
	if err != nil {
		return domain.Scan{}, fmt.Errorf("load scan: %w", err)
	}
	var stored redisScan
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Scan{}, fmt.Errorf("decode scan: %w", err)
	}
	return domain.Scan{
		ID:         stored.ID,
		User:       stored.User,
		Recognizer: stored.Recognizer,
		Tokens:     stored.Tokens,
		Usage:      domain.NewAggregate(stored.Apps),
		CreatedAt:  stored.CreatedAt,
	}, nil
}

func (c *RedisScanCache) Delete(ctx context.Context, user, id string) error {
	if err := c.client.Del(ctx, scanKey(user, id)).Err(); err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	return nil
}
