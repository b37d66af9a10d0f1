package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"ridehail/internal/domain"
)

const serviceName = "maps"

// ErrEmptyQuery is returned when a place name or input is blank.
var ErrEmptyQuery = errors.New("place query is required")

// Resolver turns place names into coordinates and driving routes.
type Resolver struct {
	client  *maps.Client
	timeout time.Duration
}

// NewResolver creates a Resolver with the given API key. Extra client
// options are appended after the key.
func NewResolver(apiKey string, timeout time.Duration, opts ...maps.ClientOption) (*Resolver, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Resolver{client: client, timeout: timeout}, nil
}

func (r *Resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Geocode returns the coordinate of the best match for address.
func (r *Resolver) Geocode(ctx context.Context, address string) (domain.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinate{}, ErrEmptyQuery
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	results, err := r.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return domain.Coordinate{}, &domain.LookupError{Service: serviceName, Query: address, Err: err}
	}
	if len(results) == 0 {
		return domain.Coordinate{}, &domain.LookupError{Service: serviceName, Query: address, Err: errors.New("no location found")}
	}

	loc := results[0].Geometry.Location
	return domain.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// ResolveRoute geocodes both places and computes the driving route between them.
func (r *Resolver) ResolveRoute(ctx context.Context, pickup, destination string) (*domain.Route, error) {
	if strings.TrimSpace(pickup) == "" || strings.TrimSpace(destination) == "" {
		return nil, ErrEmptyQuery
	}

	from, err := r.Geocode(ctx, pickup)
	if err != nil {
		return nil, err
	}
	to, err := r.Geocode(ctx, destination)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := pickup + " -> " + destination
	routes, _, err := r.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
		Units:       maps.UnitsMetric,
	})
	if err != nil {
		return nil, &domain.LookupError{Service: serviceName, Query: query, Err: err}
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, &domain.LookupError{Service: serviceName, Query: query, Err: errors.New("no route found")}
	}

	var meters int64
	var duration time.Duration
	for _, leg := range routes[0].Legs {
		meters += int64(leg.Distance.Meters)
		duration += leg.Duration
	}

	return &domain.Route{
		DistanceMeters: meters,
		Duration:       domain.FormatDuration(int64(duration / time.Second)),
		Pickup:         from,
		Destination:    to,
	}, nil
}

// Suggestions returns place descriptions completing input.
func (r *Resolver) Suggestions(ctx context.Context, input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyQuery
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	resp, err := r.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{Input: input})
	if err != nil {
		return nil, &domain.LookupError{Service: serviceName, Query: input, Err: err}
	}

	suggestions := make([]string, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		suggestions = append(suggestions, p.Description)
	}
	return suggestions, nil
}

func latLng(c domain.Coordinate) string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}
