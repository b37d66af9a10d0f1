package repository

import (
	"context"

	"ridehail/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID. The OTP is not loaded.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetWithOTP retrieves a ride by ID including its OTP.
	GetWithOTP(ctx context.Context, id string) (*domain.Ride, error)

	// GetForCaptain retrieves a ride only if it is assigned to captainID.
	GetForCaptain(ctx context.Context, id, captainID string) (*domain.Ride, error)

	// Accept assigns captainID and moves the ride to accepted, but only if
	// it is still requested. Returns ErrStaleState otherwise.
	Accept(ctx context.Context, id, captainID string) error

	// UpdateStatus moves the ride from one status to another. Returns
	// ErrStaleState if the ride is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.RideStatus) error
}
