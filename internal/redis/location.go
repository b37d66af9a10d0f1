package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"ridehail/internal/domain"
)

const captainLocationKeyPrefix = "captains:locations:"

// CaptainLocation represents a captain's position and distance from a search point.
type CaptainLocation struct {
	CaptainID  string
	Lat        float64
	Lng        float64
	DistanceKm float64
}

// LocationStore handles captain location operations in Redis. Captains are
// indexed in one GEO set per vehicle type, so a radius search is already
// filtered by vehicle.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

func locationKey(vehicle domain.VehicleType) string {
	return captainLocationKeyPrefix + string(vehicle)
}

// UpdateLocation stores a captain's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, captainID string, vehicle domain.VehicleType, at domain.Coordinate) error {
	return s.client.GeoAdd(ctx, locationKey(vehicle), &redis.GeoLocation{
		Name:      captainID,
		Longitude: at.Lng,
		Latitude:  at.Lat,
	}).Err()
}

// FindNearby returns captains of the given vehicle type within radiusKm, nearest first.
func (s *LocationStore) FindNearby(ctx context.Context, vehicle domain.VehicleType, at domain.Coordinate, radiusKm float64) ([]CaptainLocation, error) {
	results, err := s.client.GeoSearchLocation(ctx, locationKey(vehicle), &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  at.Lng,
			Latitude:   at.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]CaptainLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, CaptainLocation{
			CaptainID:  r.Name,
			Lat:        r.Latitude,
			Lng:        r.Longitude,
			DistanceKm: r.Dist,
		})
	}

	return locations, nil
}

// RemoveLocation removes a captain from every vehicle index.
func (s *LocationStore) RemoveLocation(ctx context.Context, captainID string) error {
	pipe := s.client.Pipeline()
	for _, v := range domain.VehicleTypes {
		pipe.ZRem(ctx, locationKey(v), captainID)
	}
	_, err := pipe.Exec(ctx)
	return err
}
