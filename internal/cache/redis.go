// Package cache stores raw provider payloads in Redis so repeated runs for
// the same date do not hammer provider schedule endpoints.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL keeps schedule payloads around long enough to cover a batch
// re-run without serving stale schedules across days.
const DefaultTTL = 6 * time.Hour

// PayloadCache caches raw provider responses keyed by provider, sport and date.
type PayloadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(redisURL string) (*PayloadCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &PayloadCache{client: client, ttl: DefaultTTL}, nil
}

// Close closes the Redis connection.
func (pc *PayloadCache) Close() error {
	return pc.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (pc *PayloadCache) HealthCheck(ctx context.Context) error {
	return pc.client.Ping(ctx).Err()
}

func payloadKey(provider, sport string, date time.Time) string {
	return fmt.Sprintf("feeds:%s:%s:%s", provider, sport, date.Format("2006-01-02"))
}

// GetPayload returns the cached raw payload, or ok=false on a miss.
func (pc *PayloadCache) GetPayload(ctx context.Context, provider, sport string, date time.Time) ([]byte, bool) {
	data, err := pc.client.Get(ctx, payloadKey(provider, sport, date)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetPayload caches a raw payload with the default TTL.
func (pc *PayloadCache) SetPayload(ctx context.Context, provider, sport string, date time.Time, payload []byte) error {
	return pc.client.Set(ctx, payloadKey(provider, sport, date), payload, pc.ttl).Err()
}
