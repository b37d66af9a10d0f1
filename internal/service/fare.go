package service

import (
	"math"
	"time"

	"ridehail/internal/domain"
)

// FareRates are the fixed per-vehicle pricing inputs.
type FareRates struct {
	Base        float64
	PerKm       float64
	EcoDiscount float64 // Fraction taken off the base rate
}

// DefaultFareRates returns the standard rate card.
func DefaultFareRates() map[domain.VehicleType]FareRates {
	return map[domain.VehicleType]FareRates{
		domain.VehicleBike: {Base: 20, PerKm: 8, EcoDiscount: 0.10},
		domain.VehicleAuto: {Base: 40, PerKm: 12, EcoDiscount: 0.05},
		domain.VehicleCar:  {Base: 60, PerKm: 15, EcoDiscount: 0},
	}
}

const (
	rushHourMultiplier    = 0.85
	offPeakMultiplier     = 1.10
	complexityThreshold   = 3.0 // minutes per km
	complexityPenalty     = 0.02
	perMinuteRate         = 0.5
	rainRoadFactor        = 1.05
	lateNightSurcharge    = 15.0
	happyHourDiscount     = 0.15
	bikeRainModifier      = 0.10
	hotWeatherModifier    = -0.05
	hotWeatherThresholdC  = 30.0
	minimumFareBaseFactor = 0.5
)

// FareInput is everything a fare depends on.
type FareInput struct {
	DistanceKm      float64
	DurationMinutes float64
	Hour            int // 0-23, local wall clock
	Weather         domain.WeatherSample
}

// FareCalculator prices trips per vehicle type.
type FareCalculator struct {
	rates map[domain.VehicleType]FareRates
	now   func() time.Time
}

// NewFareCalculator creates a FareCalculator with the default rate card.
// A nil now uses time.Now.
func NewFareCalculator(now func() time.Time) *FareCalculator {
	if now == nil {
		now = time.Now
	}
	return &FareCalculator{rates: DefaultFareRates(), now: now}
}

// Hour returns the current wall-clock hour used for pricing.
func (c *FareCalculator) Hour() int {
	return c.now().Hour()
}

// Quote prices a trip for every vehicle type.
func (c *FareCalculator) Quote(in FareInput) domain.FareQuote {
	return domain.FareQuote{
		Moto:       c.Fare(domain.VehicleBike, in),
		Auto:       c.Fare(domain.VehicleAuto, in),
		Car:        c.Fare(domain.VehicleCar, in),
		DistanceKm: in.DistanceKm,
	}
}

// Fare prices a trip for one vehicle type. The order of the steps matters:
// percentage adjustments do not commute with the flat additions.
func (c *FareCalculator) Fare(vehicle domain.VehicleType, in FareInput) int64 {
	rates := c.rates[vehicle]

	fare := rates.Base * (1 - rates.EcoDiscount)
	fare += in.DistanceKm * rates.PerKm * trafficMultiplier(in.Hour) * complexityMultiplier(in.DistanceKm, in.DurationMinutes)
	fare += in.DurationMinutes * perMinuteRate

	if in.Weather.Raining {
		fare *= rainRoadFactor
	}
	if isLateNight(in.Hour) {
		fare += lateNightSurcharge
	}
	if isHappyHour(in.Hour) {
		fare *= 1 - happyHourDiscount
	}
	fare *= 1 + weatherModifier(vehicle, in.Weather)

	fare = math.Max(fare, rates.Base*minimumFareBaseFactor)
	return int64(math.Round(fare))
}

// Floor is the lowest fare the trip can be quoted at for a vehicle type
// across every hour of the day and every weather condition the calculator
// prices differently. A quote taken earlier never falls below it.
func (c *FareCalculator) Floor(vehicle domain.VehicleType, distanceKm, durationMinutes float64) int64 {
	conditions := []domain.WeatherSample{
		{},
		{Raining: true},
		{TempCelsius: hotWeatherThresholdC + 1},
		{Raining: true, TempCelsius: hotWeatherThresholdC + 1},
	}

	floor := int64(math.MaxInt64)
	for hour := 0; hour < 24; hour++ {
		for _, w := range conditions {
			in := FareInput{DistanceKm: distanceKm, DurationMinutes: durationMinutes, Hour: hour, Weather: w}
			floor = min(floor, c.Fare(vehicle, in))
		}
	}
	return floor
}

// trafficMultiplier is lower in the 08-10 and 17-20 windows, both inclusive.
func trafficMultiplier(hour int) float64 {
	if (hour >= 8 && hour <= 10) || (hour >= 17 && hour <= 20) {
		return rushHourMultiplier
	}
	return offPeakMultiplier
}

func complexityMultiplier(distanceKm, durationMinutes float64) float64 {
	if distanceKm <= 0 {
		return 1
	}
	ratio := durationMinutes / distanceKm
	if ratio <= complexityThreshold {
		return 1
	}
	return 1 + (ratio-complexityThreshold)*complexityPenalty
}

func isLateNight(hour int) bool {
	return hour >= 22 || hour < 5
}

func isHappyHour(hour int) bool {
	return hour >= 14 && hour < 16
}

func weatherModifier(vehicle domain.VehicleType, w domain.WeatherSample) float64 {
	switch vehicle {
	case domain.VehicleBike:
		if w.Raining {
			return bikeRainModifier
		}
	case domain.VehicleAuto, domain.VehicleCar:
		if w.TempCelsius > hotWeatherThresholdC {
			return hotWeatherModifier
		}
	}
	return 0
}
