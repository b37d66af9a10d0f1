package domain

// FareQuote maps each vehicle type to a price for one trip.
type FareQuote struct {
	Moto       int64   `json:"moto"`
	Auto       int64   `json:"auto"`
	Car        int64   `json:"car"`
	DistanceKm float64 `json:"distance"`
}

// For returns the quoted price for a vehicle type.
func (q FareQuote) For(v VehicleType) (int64, bool) {
	switch v {
	case VehicleBike:
		return q.Moto, true
	case VehicleAuto:
		return q.Auto, true
	case VehicleCar:
		return q.Car, true
	}
	return 0, false
}
