package redis

import (
	"context"
	"time"

	"ridehail/internal/domain"
)

// LocationStoreInterface defines the interface for captain location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, captainID string, vehicle domain.VehicleType, at domain.Coordinate) error
	FindNearby(ctx context.Context, vehicle domain.VehicleType, at domain.Coordinate, radiusKm float64) ([]CaptainLocation, error)
	RemoveLocation(ctx context.Context, captainID string) error
}

// LockStoreInterface defines the interface for ride locking.
type LockStoreInterface interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// RouteCacheInterface defines the interface for resolved route caching.
type RouteCacheInterface interface {
	GetRoute(ctx context.Context, pickup, destination string) (*domain.Route, error)
	SetRoute(ctx context.Context, pickup, destination string, route *domain.Route) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ RouteCacheInterface    = (*RouteCache)(nil)
)
