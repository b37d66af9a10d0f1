package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"ltd"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies within latitude/longitude bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Route is the result of resolving two place names.
type Route struct {
	DistanceMeters int64      `json:"distanceMeters"`
	Duration       string     `json:"duration"` // e.g. "1200s"
	Pickup         Coordinate `json:"pickup"`
	Destination    Coordinate `json:"destination"`
}

// FormatDuration renders whole seconds the way routes carry them.
func FormatDuration(seconds int64) string {
	return strconv.FormatInt(seconds, 10) + "s"
}

// DurationSeconds parses Duration.
func (r Route) DurationSeconds() (int64, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(r.Duration), "s")
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid route duration %q: %w", r.Duration, err)
	}
	return secs, nil
}

// DistanceKm returns the route distance in kilometers.
func (r Route) DistanceKm() float64 {
	return float64(r.DistanceMeters) / 1000
}

// WeatherSample is the current weather at a coordinate.
type WeatherSample struct {
	TempCelsius float64
	Raining     bool
}
