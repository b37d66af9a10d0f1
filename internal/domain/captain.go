package domain

import "time"

// CaptainStatus represents whether a captain is taking rides.
type CaptainStatus string

const (
	CaptainStatusActive   CaptainStatus = "active"
	CaptainStatusInactive CaptainStatus = "inactive"
)

// VehicleType is the class of vehicle a ride is requested for.
type VehicleType string

const (
	VehicleBike VehicleType = "bike"
	VehicleAuto VehicleType = "auto"
	VehicleCar  VehicleType = "car"
)

// VehicleTypes lists every supported vehicle type in fare order.
var VehicleTypes = []VehicleType{VehicleBike, VehicleAuto, VehicleCar}

// ParseVehicleType accepts the stored names plus the "moto" label used in fare quotes.
func ParseVehicleType(s string) (VehicleType, bool) {
	switch s {
	case "bike", "moto":
		return VehicleBike, true
	case "auto":
		return VehicleAuto, true
	case "car":
		return VehicleCar, true
	}
	return "", false
}

// Captain represents a driver in the system.
type Captain struct {
	ID          string
	Name        string
	Phone       string
	VehicleType VehicleType
	Plate       string
	Status      CaptainStatus
	SocketID    string // Session identifier of the live push connection
	Earnings    int64  // Cumulative, only ever incremented
	CreatedAt   time.Time
}
