package service

import (
	"time"

	"ridehail/internal/domain"
)

// RideView is the JSON shape of a ride, shared by HTTP responses and push events.
type RideView struct {
	ID          string       `json:"id"`
	RiderID     string       `json:"riderId"`
	CaptainID   string       `json:"captainId,omitempty"`
	Pickup      string       `json:"pickup"`
	Destination string       `json:"destination"`
	VehicleType string       `json:"vehicleType"`
	Fare        int64        `json:"fare"`
	Distance    float64      `json:"distance"`
	OTP         string       `json:"otp,omitempty"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	Rider       *UserView    `json:"rider,omitempty"`
	Captain     *CaptainView `json:"captain,omitempty"`
}

// UserView is the public JSON shape of a rider.
type UserView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CaptainView is the public JSON shape of a captain.
type CaptainView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicleType"`
	Plate       string `json:"plate,omitempty"`
	Status      string `json:"status"`
	Earnings    int64  `json:"earnings"`
}

// NewRideView converts a ride for output. The OTP is included only if the ride carries one.
func NewRideView(r *domain.Ride) RideView {
	v := RideView{
		ID:          r.ID,
		RiderID:     r.RiderID,
		CaptainID:   r.CaptainID,
		Pickup:      r.Pickup,
		Destination: r.Destination,
		VehicleType: string(r.VehicleType),
		Fare:        r.Fare,
		Distance:    r.DistanceKm,
		OTP:         r.OTP,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
	if v.Status == "" {
		v.Status = string(domain.RideStatusRequested)
	}
	if r.Rider != nil {
		u := NewUserView(r.Rider)
		v.Rider = &u
	}
	if r.Captain != nil {
		c := NewCaptainView(r.Captain)
		v.Captain = &c
	}
	return v
}

// NewUserView converts a rider for output.
func NewUserView(u *domain.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Phone: u.Phone}
}

// NewCaptainView converts a captain for output.
func NewCaptainView(c *domain.Captain) CaptainView {
	return CaptainView{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		VehicleType: string(c.VehicleType),
		Plate:       c.Plate,
		Status:      string(c.Status),
		Earnings:    c.Earnings,
	}
}
