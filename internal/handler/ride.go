package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/middleware"
	"ridehail/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for creating a ride. Fare is an
// optional rider offer keyed like a fare quote (moto, auto, car); only the
// entry for VehicleType is used.
type CreateRideRequest struct {
	Pickup      string           `json:"pickup" binding:"required"`
	Destination string           `json:"destination" binding:"required"`
	VehicleType string           `json:"vehicleType" binding:"required,oneof=bike moto auto car"`
	Fare        map[string]int64 `json:"fare,omitempty"`
}

// CreateRideResponse is the created ride plus how many captains were offered it.
type CreateRideResponse struct {
	service.RideView
	NotifiedCaptains int `json:"notifiedCaptains"`
}

// FareQuery is the query string for a fare quote.
type FareQuery struct {
	Pickup      string `form:"pickup" binding:"required,min=3"`
	Destination string `form:"destination" binding:"required,min=3"`
}

// RideIDRequest is the HTTP request body for confirm and end.
type RideIDRequest struct {
	RideID string `json:"rideId" binding:"required,uuid"`
}

// StartRideQuery is the query string for starting a ride.
type StartRideQuery struct {
	RideID string `form:"rideId" binding:"required,uuid"`
	OTP    string `form:"otp" binding:"required,numeric"`
}

// GetFare handles GET /v1/rides/get-fare
func (h *RideHandler) GetFare(c *gin.Context) {
	var q FareQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	quote, err := h.rideService.GetFare(c.Request.Context(), q.Pickup, q.Destination)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, quote)
}

// CreateRide handles POST /v1/rides/create
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		RiderID:     middleware.Subject(c),
		Pickup:      req.Pickup,
		Destination: req.Destination,
		VehicleType: req.VehicleType,
		Fare:        offeredFare(req.Fare, req.VehicleType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateRideResponse{
		RideView:         service.NewRideView(result.Ride),
		NotifiedCaptains: result.NotifiedCaptains,
	})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, service.ErrInvalidRideID)
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride))
}

// ConfirmRide handles POST /v1/rides/confirm
func (h *RideHandler) ConfirmRide(c *gin.Context) {
	var req RideIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ride, err := h.rideService.ConfirmRide(c.Request.Context(), req.RideID, middleware.Subject(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride))
}

// StartRide handles GET /v1/rides/start-ride
func (h *RideHandler) StartRide(c *gin.Context) {
	var q StartRideQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	ride, err := h.rideService.StartRide(c.Request.Context(), service.StartRideRequest{
		RideID:    q.RideID,
		OTP:       q.OTP,
		CaptainID: middleware.Subject(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride))
}

// EndRide handles POST /v1/rides/end-ride
func (h *RideHandler) EndRide(c *gin.Context) {
	var req RideIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ride, err := h.rideService.EndRide(c.Request.Context(), req.RideID, middleware.Subject(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride))
}

// offeredFare picks the rider's offer for the requested vehicle, accepting
// either "bike" or the quote's "moto" key.
func offeredFare(fares map[string]int64, vehicleType string) *int64 {
	if len(fares) == 0 {
		return nil
	}
	vehicle, ok := domain.ParseVehicleType(vehicleType)
	if !ok {
		return nil
	}

	keys := []string{string(vehicle)}
	if vehicle == domain.VehicleBike {
		keys = append(keys, "moto")
	}
	for _, k := range keys {
		if v, ok := fares[k]; ok {
			return &v
		}
	}
	return nil
}
