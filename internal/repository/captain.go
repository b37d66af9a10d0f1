package repository

import (
	"context"

	"ridehail/internal/domain"
)

// CaptainRepository defines the persistence operations for captains.
type CaptainRepository interface {
	// Create adds a new captain.
	Create(ctx context.Context, captain *domain.Captain) error

	// GetByID retrieves a captain by ID.
	GetByID(ctx context.Context, id string) (*domain.Captain, error)

	// GetByPhone retrieves a captain by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Captain, error)

	// GetByIDs retrieves the captains that exist among ids.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Captain, error)

	// UpdateStatus updates the status of a captain.
	UpdateStatus(ctx context.Context, id string, status domain.CaptainStatus) error

	// UpdateSocketID records the captain's live push session.
	UpdateSocketID(ctx context.Context, id, socketID string) error

	// AddEarnings increments cumulative earnings by amount.
	AddEarnings(ctx context.Context, id string, amount int64) error
}
