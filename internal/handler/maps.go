package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/domain"
)

// PlaceLookup is the maps functionality exposed over HTTP.
type PlaceLookup interface {
	Geocode(ctx context.Context, address string) (domain.Coordinate, error)
	ResolveRoute(ctx context.Context, pickup, destination string) (*domain.Route, error)
	Suggestions(ctx context.Context, input string) ([]string, error)
}

// MapsHandler exposes geocoding, routing and place suggestions.
type MapsHandler struct {
	places PlaceLookup
}

// NewMapsHandler creates a new MapsHandler.
func NewMapsHandler(places PlaceLookup) *MapsHandler {
	return &MapsHandler{places: places}
}

// DistanceTimeResponse is the HTTP response for a route lookup.
type DistanceTimeResponse struct {
	Distance int64   `json:"distance"` // meters
	Duration string  `json:"duration"`
	Km       float64 `json:"km"`
}

// GetCoordinates handles GET /v1/maps/coordinates
func (h *MapsHandler) GetCoordinates(c *gin.Context) {
	var q struct {
		Address string `form:"address" binding:"required,min=3"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	coord, err := h.places.Geocode(c.Request.Context(), q.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, coord)
}

// GetDistanceTime handles GET /v1/maps/distance-time
func (h *MapsHandler) GetDistanceTime(c *gin.Context) {
	var q struct {
		Origin      string `form:"origin" binding:"required,min=3"`
		Destination string `form:"destination" binding:"required,min=3"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	route, err := h.places.ResolveRoute(c.Request.Context(), q.Origin, q.Destination)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, DistanceTimeResponse{
		Distance: route.DistanceMeters,
		Duration: route.Duration,
		Km:       route.DistanceKm(),
	})
}

// GetSuggestions handles GET /v1/maps/suggestions
func (h *MapsHandler) GetSuggestions(c *gin.Context) {
	var q struct {
		Input string `form:"input" binding:"required,min=3"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	suggestions, err := h.places.Suggestions(c.Request.Context(), q.Input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, suggestions)
}
