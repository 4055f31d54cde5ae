// File: database/cache/dayview.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"medislot/models"
)

const (
	// DayViewPrefix namespaces cached provider day views.
	DayViewPrefix = "dayview:"
	// DayViewGenerationPrefix namespaces the per-day invalidation counters.
	DayViewGenerationPrefix = "dayviewgen:"

	// generationTTL outlives any read-through window by a wide margin.
	generationTTL = 24 * time.Hour
)

var errStaleGeneration = errors.New("day view invalidated during read")

// NewRedisClient connects to one Redis logical database and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisDayViewCache caches a provider's sorted slot list for one date.
type RedisDayViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDayViewCache(client *redis.Client, ttl time.Duration) *RedisDayViewCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisDayViewCache{client: client, ttl: ttl}
}

func dayViewKey(providerID, date string) string {
	return DayViewPrefix + providerID + ":" + date
}

func generationKey(providerID, date string) string {
	return DayViewGenerationPrefix + providerID + ":" + date
}

// Get returns the cached day view; ok is false on a miss.
func (c *RedisDayViewCache) Get(ctx context.Context, providerID, date string) (slots []models.Slot, ok bool, err error) {
	raw, err := c.client.Get(ctx, dayViewKey(providerID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read day view cache: %w", err)
	}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("decode day view cache: %w", err)
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	return slots, true, nil
}

// Generation returns the invalidation counter of one day view. Capture it
// before reading the store and hand it back to Set.
func (c *RedisDayViewCache) Generation(ctx context.Context, providerID, date string) (int64, error) {
	n, err := c.client.Get(ctx, generationKey(providerID, date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read day view generation: %w", err)
	}
	return n, nil
}

// Set stores slots only if the day has not been invalidated since generation
// was read. A stale snapshot is dropped silently.
func (c *RedisDayViewCache) Set(ctx context.Context, providerID, date string, generation int64, slots []models.Slot) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode day view cache: %w", err)
	}
	genKey := generationKey(providerID, date)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dayViewKey(providerID, date), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("write day view cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached views of the given dates and bumps their
// generations so in-flight reads cannot write them back.
func (c *RedisDayViewCache) Invalidate(ctx context.Context, providerID string, dates ...string) error {
	if len(dates) == 0 {
		return nil
	}
	keys := make([]string, 0, len(dates))
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, d := range dates {
			keys = append(keys, dayViewKey(providerID, d))
			pipe.Incr(ctx, generationKey(providerID, d))
			pipe.Expire(ctx, generationKey(providerID, d), generationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}
