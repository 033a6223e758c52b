package out

import (
	"context"
	"sync"
	"time"

	"detox/internal/modules/usage/domain"
	usageout "detox/internal/modules/usage/port/out"
	"detox/internal/platform/clock"
	apperrors "detox/internal/platform/errors"
)

type cachedScan struct {
	scan    domain.Scan
	expires time.Time
}

// MemoryScanCache keeps pending scans in process memory.
type MemoryScanCache struct {
	mu    sync.Mutex
	clock clock.Clock
	scans map[string]cachedScan
}

func NewMemoryScanCache(clk clock.Clock) usageout.ScanCache {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &MemoryScanCache{clock: clk, scans: map[string]cachedScan{}}
}

func (c *MemoryScanCache) Put(_ context.Context, scan domain.Scan, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	for key, entry := range c.scans {
		if !now.Before(entry.expires) {
			delete(c.scans, key)
		}
	}
	c.scans[scanKey(scan.User, scan.ID)] = cachedScan{scan: scan, expires: now.Add(ttl)}
	return nil
}

func (c *MemoryScanCache) Get(_ context.Context, user, id string) (domain.Scan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.scans[scanKey(user, id)]
	if !ok || !c.clock.Now().Before(entry.expires) {
		return domain.Scan{}, apperrors.ErrScanNotFound
	}
	return entry.scan, nil
}

func (c *MemoryScanCache) Delete(_ context.Context, user, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.scans, scanKey(user, id))
	return nil
}

func scanKey(user, id string) string {
	return "detox:scan:" + user + ":" + id
}
