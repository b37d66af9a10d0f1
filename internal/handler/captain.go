package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ridehail/internal/auth"
	"ridehail/internal/domain"
	"ridehail/internal/middleware"
	"ridehail/internal/repository"
	"ridehail/internal/service"
)

// CaptainHandler handles HTTP requests for captains.
type CaptainHandler struct {
	captainService *service.CaptainService
	captainRepo    repository.CaptainRepository
	tokens         TokenIssuer
}

// NewCaptainHandler creates a new CaptainHandler.
func NewCaptainHandler(
	captainService *service.CaptainService,
	captainRepo repository.CaptainRepository,
	tokens TokenIssuer,
) *CaptainHandler {
	return &CaptainHandler{
		captainService: captainService,
		captainRepo:    captainRepo,
		tokens:         tokens,
	}
}

// RegisterCaptainRequest is the HTTP request body for captain registration.
type RegisterCaptainRequest struct {
	Name        string `json:"name" binding:"required,min=3"`
	Phone       string `json:"phone" binding:"required,e164"`
	VehicleType string `json:"vehicleType" binding:"required,oneof=bike moto auto car"`
	Plate       string `json:"plate" binding:"required,min=3"`
}

// CaptainRegisterResponse is the HTTP response for captain registration.
type CaptainRegisterResponse struct {
	Captain service.CaptainView `json:"captain"`
	Token   string              `json:"token"`
}

// UpdateLocationRequest is the HTTP request body for location updates.
type UpdateLocationRequest struct {
	Ltd *float64 `json:"ltd" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// UpdateStatusRequest is the HTTP request body for availability changes.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// Register handles POST /v1/captains/register
func (h *CaptainHandler) Register(c *gin.Context) {
	var req RegisterCaptainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	existing, err := h.captainRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "phone already registered"})
		return
	}

	vehicle, _ := domain.ParseVehicleType(req.VehicleType)
	captain := &domain.Captain{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Phone:       req.Phone,
		VehicleType: vehicle,
		Plate:       req.Plate,
		Status:      domain.CaptainStatusInactive,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.captainRepo.Create(c.Request.Context(), captain); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(captain.ID, auth.RoleCaptain)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CaptainRegisterResponse{
		Captain: service.NewCaptainView(captain),
		Token:   token,
	})
}

// UpdateLocation handles POST /v1/captains/location
func (h *CaptainHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.captainService.UpdateLocation(c.Request.Context(), middleware.Subject(c), domain.Coordinate{
		Lat: *req.Ltd,
		Lng: *req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateStatus handles POST /v1/captains/status
func (h *CaptainHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.captainService.SetStatus(c.Request.Context(), middleware.Subject(c), domain.CaptainStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
