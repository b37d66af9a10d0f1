package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested RideStatus = "requested"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
)

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Rides only move forward, one step at a time.
func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	switch s {
	case RideStatusRequested, "":
		return next == RideStatusAccepted
	case RideStatusAccepted:
		return next == RideStatusOngoing
	case RideStatusOngoing:
		return next == RideStatusCompleted
	default:
		return false
	}
}

// Ride represents a ride request in the system.
type Ride struct {
	ID          string
	RiderID     string
	CaptainID   string // Empty until a captain accepts the ride
	Pickup      string
	Destination string
	VehicleType VehicleType
	Fare        int64 // Fixed at creation, in whole currency units
	DistanceKm  float64
	OTP         string // Write-once; blank on default reads
	Status      RideStatus
	CreatedAt   time.Time

	// Populated for lifecycle responses and events, never persisted.
	Rider   *User
	Captain *Captain
}

// WithoutOTP returns a copy of the ride with the passcode cleared.
func (r *Ride) WithoutOTP() *Ride {
	cp := *r
	cp.OTP = ""
	return &cp
}
