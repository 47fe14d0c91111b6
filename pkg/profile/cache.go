package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "trialmatch:profile:"

// Cache keeps per-trial entries in Redis so replicas can answer lookups
// without holding a catalog.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(trialID string) string {
	return cacheKeyPrefix + trialID
}

// Get reports ok=false on a miss.
func (c *Cache) Get(ctx context.Context, trialID string) (Entry, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(trialID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (c *Cache) Put(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(e.Profile.TrialID), data, c.ttl).Err()
}

// Replace drops every cached entry and writes the catalog in one pipeline.
func (c *Cache) Replace(ctx context.Context, catalog *Catalog) error {
	if err := c.Flush(ctx); err != nil {
		return err
	}
	pipe := c.client.Pipeline()
	for _, e := range catalog.Entries() {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		pipe.Set(ctx, cacheKey(e.Profile.TrialID), data, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *Cache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
