package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ridehail/internal/domain"
	"ridehail/internal/maps"
	"ridehail/internal/repository"
	"ridehail/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// FieldError is one failed request-validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		// Internal details stay in the logs.
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondBindError sends 400 with one entry per failed binding rule.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

func init() {
	// Report request fields by their wire names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var lookupErr *domain.LookupError

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidCaptainID),
		errors.Is(err, service.ErrInvalidPickup),
		errors.Is(err, service.ErrInvalidDestination),
		errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrMissingOTP),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidCaptainStatus),
		errors.Is(err, service.ErrInvalidUserType),
		errors.Is(err, service.ErrFareOutOfRange),
		errors.Is(err, maps.ErrEmptyQuery):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrRideAlreadyAccepted),
		errors.Is(err, service.ErrConfirmInProgress),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Lifecycle and passcode errors
	case errors.Is(err, service.ErrRideNotAccepted),
		errors.Is(err, service.ErrRideNotOngoing),
		errors.Is(err, service.ErrInvalidOTP):
		return http.StatusUnprocessableEntity

	// Upstream maps/weather failures
	case errors.As(err, &lookupErr):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
