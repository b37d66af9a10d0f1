package service

import (
	"context"

	"ridehail/internal/repository"
)

// User types accepted in a join frame.
const (
	UserTypeRider   = "user"
	UserTypeCaptain = "captain"
)

// SessionService binds push-channel sessions to riders and captains.
type SessionService struct {
	userRepo    repository.UserRepository
	captainRepo repository.CaptainRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(userRepo repository.UserRepository, captainRepo repository.CaptainRepository) *SessionService {
	return &SessionService{userRepo: userRepo, captainRepo: captainRepo}
}

// Bind stores sessionID on the rider or captain identified by userType and userID.
func (s *SessionService) Bind(ctx context.Context, userType, userID, sessionID string) error {
	if userID == "" {
		return ErrInvalidRiderID
	}

	switch userType {
	case UserTypeRider:
		return s.userRepo.UpdateSocketID(ctx, userID, sessionID)
	case UserTypeCaptain:
		return s.captainRepo.UpdateSocketID(ctx, userID, sessionID)
	default:
		return ErrInvalidUserType
	}
}
