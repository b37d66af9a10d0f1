package service

import (
	"context"

	"ridehail/internal/domain"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

const defaultSearchRadiusKm = 2.0

// CaptainFinder selects captains to offer a new ride to.
type CaptainFinder interface {
	FindNearby(ctx context.Context, vehicle domain.VehicleType, at domain.Coordinate) ([]*domain.Captain, error)
}

// NearbyCaptainFinder finds active captains of a vehicle type within a radius
// of the pickup point, nearest first.
type NearbyCaptainFinder struct {
	locationStore redis.LocationStoreInterface
	captainRepo   repository.CaptainRepository
	radiusKm      float64
}

var _ CaptainFinder = (*NearbyCaptainFinder)(nil)

// NewNearbyCaptainFinder creates a new NearbyCaptainFinder. A non-positive
// radius uses the default.
func NewNearbyCaptainFinder(
	locationStore redis.LocationStoreInterface,
	captainRepo repository.CaptainRepository,
	radiusKm float64,
) *NearbyCaptainFinder {
	if radiusKm <= 0 {
		radiusKm = defaultSearchRadiusKm
	}
	return &NearbyCaptainFinder{
		locationStore: locationStore,
		captainRepo:   captainRepo,
		radiusKm:      radiusKm,
	}
}

// FindNearby returns active captains offering vehicle within the search radius of at.
func (f *NearbyCaptainFinder) FindNearby(ctx context.Context, vehicle domain.VehicleType, at domain.Coordinate) ([]*domain.Captain, error) {
	if !at.Valid() {
		return nil, ErrInvalidLocation
	}

	// The GEO index is partitioned by vehicle type and sorted by distance.
	nearby, err := f.locationStore.FindNearby(ctx, vehicle, at, f.radiusKm)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, nil
	}

	ids := make([]string, len(nearby))
	for i, loc := range nearby {
		ids[i] = loc.CaptainID
	}

	found, err := f.captainRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Captain, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	// Keep GEO order; skip stale index entries and captains who went off duty
	// or switched vehicles since their last location update.
	captains := make([]*domain.Captain, 0, len(found))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			continue
		}
		if c.Status != domain.CaptainStatusActive || c.VehicleType != vehicle {
			continue
		}
		captains = append(captains, c)
	}

	return captains, nil
}
