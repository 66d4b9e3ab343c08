package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"plenum/contexts/governance/poll-service/domain/entities"
	"plenum/contexts/governance/poll-service/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "governance:poll:results:"

// Cache stores published poll results in redis. Tallies are immutable after
// close, so entries never need invalidation, only expiry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

func (c *Cache) GetResults(ctx context.Context, pollID string) (entities.TallyResult, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+pollID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entities.TallyResult{}, false, nil
		}
		return entities.TallyResult{}, false, err
	}
	var results entities.TallyResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return entities.TallyResult{}, false, err
	}
	return results, true, nil
}

func (c *Cache) PutResults(ctx context.Context, pollID string, results entities.TallyResult) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+pollID, raw, c.ttl).Err()
}

var _ ports.ResultsCache = (*Cache)(nil)
