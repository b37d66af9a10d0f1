package service

import "errors"

var (
	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidCaptainID is returned when captain ID is empty.
	ErrInvalidCaptainID = errors.New("invalid captain id")

	// ErrInvalidPickup is returned when the pickup place is empty.
	ErrInvalidPickup = errors.New("pickup is required")

	// ErrInvalidDestination is returned when the destination place is empty.
	ErrInvalidDestination = errors.New("destination is required")

	// ErrInvalidVehicleType is returned for anything other than bike, auto or car.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrMissingOTP is returned when start is attempted without a passcode.
	ErrMissingOTP = errors.New("otp is required")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidCaptainStatus is returned for an unknown captain status.
	ErrInvalidCaptainStatus = errors.New("invalid captain status")

	// ErrInvalidUserType is returned when a session is bound for an unknown user type.
	ErrInvalidUserType = errors.New("invalid user type")

	// ErrFareOutOfRange is returned when a rider-supplied fare falls outside
	// the accepted band around the computed fare.
	ErrFareOutOfRange = errors.New("fare outside accepted range")

	// ErrRideAlreadyAccepted is returned when confirming a ride that already has a captain.
	ErrRideAlreadyAccepted = errors.New("ride already accepted")

	// ErrConfirmInProgress is returned when another captain is confirming the same ride.
	ErrConfirmInProgress = errors.New("ride confirmation in progress")

	// ErrRideNotAccepted is returned when starting a ride that is not in accepted state.
	ErrRideNotAccepted = errors.New("ride not accepted")

	// ErrRideNotOngoing is returned when ending a ride that is not in ongoing state.
	ErrRideNotOngoing = errors.New("ride not ongoing")

	// ErrInvalidOTP is returned when the supplied passcode does not match.
	ErrInvalidOTP = errors.New("invalid otp")
)
