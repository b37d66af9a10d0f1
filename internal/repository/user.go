package repository

import (
	"context"

	"ridehail/internal/domain"
)

// UserRepository defines the persistence operations for riders.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	UpdateSocketID(ctx context.Context, id, socketID string) error
}
