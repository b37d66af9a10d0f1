package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ridehail/internal/domain"
)

const routeCachePrefix = "cache:route:"

// RouteCache stores resolved routes so a fare quote and the ride created
// from it resolve the same pair of places once.
type RouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRouteCache creates a new RouteCache. A zero ttl disables caching.
func NewRouteCache(client *redis.Client, ttl time.Duration) *RouteCache {
	return &RouteCache{client: client, ttl: ttl}
}

func routeKey(pickup, destination string) string {
	norm := strings.ToLower(strings.TrimSpace(pickup)) + "\x00" + strings.ToLower(strings.TrimSpace(destination))
	sum := sha1.Sum([]byte(norm))
	return routeCachePrefix + hex.EncodeToString(sum[:])
}

// GetRoute returns the cached route, or nil on a miss.
func (c *RouteCache) GetRoute(ctx context.Context, pickup, destination string) (*domain.Route, error) {
	if c.ttl <= 0 {
		return nil, nil
	}

	data, err := c.client.Get(ctx, routeKey(pickup, destination)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var route domain.Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// SetRoute stores a route for the configured TTL.
func (c *RouteCache) SetRoute(ctx context.Context, pickup, destination string, route *domain.Route) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(route)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routeKey(pickup, destination), data, c.ttl).Err()
}
