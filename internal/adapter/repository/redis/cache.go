package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportCache caches serialized reconciliation reports. Reports are
// immutable, so cached entries never need invalidation beyond their TTL.
type ReportCache struct {
	client *redis.Client
	prefix string
}

// NewReportCache creates a new ReportCache.
func NewReportCache(client *redis.Client) *ReportCache {
	return &ReportCache{
		client: client,
		prefix: "cache:run:",
	}
}

// Get retrieves a cached report. A miss returns (nil, nil); an error means
// Redis itself failed.
func (c *ReportCache) Get(ctx context.Context, runID string) ([]byte, error) {
	body, err := c.client.Get(ctx, c.prefix+runID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return body, nil
}

// Set stores a serialized report with a TTL.
func (c *ReportCache) Set(ctx context.Context, runID string, report []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+runID, report, ttl).Err()
}
