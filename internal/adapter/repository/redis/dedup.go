package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore implements usecase.DedupStore using Redis SETNX. A claimed
// reference ID blocks resubmission of the same receipt until the TTL
// expires.
type DedupStore struct {
	client *redis.Client
	prefix string
}

// NewDedupStore creates a new DedupStore.
func NewDedupStore(client *redis.Client) *DedupStore {
	return &DedupStore{
		client: client,
		prefix: "dedup:ref:",
	}
}

// Reserve claims a reference ID. Returns false when an earlier capture
// already holds the claim.
func (s *DedupStore) Reserve(ctx context.Context, referenceID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+referenceID, "claimed", ttl).Result()
}

// Release frees a claim after a failed persist, so the submitter can retry.
func (s *DedupStore) Release(ctx context.Context, referenceID string) error {
	return s.client.Del(ctx, s.prefix+referenceID).Err()
}
