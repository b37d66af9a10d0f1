package service

import (
	"context"

	"ridehail/internal/domain"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

// CaptainService handles captain availability and position.
type CaptainService struct {
	locationStore redis.LocationStoreInterface
	captainRepo   repository.CaptainRepository
}

// NewCaptainService creates a new CaptainService.
func NewCaptainService(
	locationStore redis.LocationStoreInterface,
	captainRepo repository.CaptainRepository,
) *CaptainService {
	return &CaptainService{
		locationStore: locationStore,
		captainRepo:   captainRepo,
	}
}

// UpdateLocation records a captain's position and marks them active.
func (s *CaptainService) UpdateLocation(ctx context.Context, captainID string, at domain.Coordinate) error {
	if captainID == "" {
		return ErrInvalidCaptainID
	}
	if !at.Valid() {
		return ErrInvalidLocation
	}

	captain, err := s.captainRepo.GetByID(ctx, captainID)
	if err != nil {
		return err
	}

	if err := s.locationStore.UpdateLocation(ctx, captain.ID, captain.VehicleType, at); err != nil {
		return err
	}

	if captain.Status != domain.CaptainStatusActive {
		return s.captainRepo.UpdateStatus(ctx, captain.ID, domain.CaptainStatusActive)
	}
	return nil
}

// SetStatus switches a captain between active and inactive. Going inactive
// removes the captain from the location index.
func (s *CaptainService) SetStatus(ctx context.Context, captainID string, status domain.CaptainStatus) error {
	if captainID == "" {
		return ErrInvalidCaptainID
	}

	switch status {
	case domain.CaptainStatusActive, domain.CaptainStatusInactive:
	default:
		return ErrInvalidCaptainStatus
	}

	if err := s.captainRepo.UpdateStatus(ctx, captainID, status); err != nil {
		return err
	}

	if status == domain.CaptainStatusInactive {
		return s.locationStore.RemoveLocation(ctx, captainID)
	}
	return nil
}
