package service

import (
	"testing"

	"ridehail/internal/domain"
)

func baseTrip(hour int) FareInput {
	return FareInput{
		DistanceKm:      5,
		DurationMinutes: 20,
		Hour:            hour,
		Weather:         domain.WeatherSample{TempCelsius: 25},
	}
}

func TestFare_MorningRushDryTrip(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator(nil)
	quote := calc.Quote(baseTrip(9))

	if quote.Moto != 63 {
		t.Errorf("expected bike fare 63, got %d", quote.Moto)
	}
	if quote.Auto != 100 {
		t.Errorf("expected auto fare 100, got %d", quote.Auto)
	}
	if quote.Car != 135 {
		t.Errorf("expected car fare 135, got %d", quote.Car)
	}
	if quote.DistanceKm != 5 {
		t.Errorf("expected distance 5, got %v", quote.DistanceKm)
	}
}

func TestFare_Adjustments(t *testing.T) {
	t.Parallel()

	rain := domain.WeatherSample{TempCelsius: 25, Raining: true}
	hot := domain.WeatherSample{TempCelsius: 35}

	testCases := []struct {
		name    string
		hour    int
		weather domain.WeatherSample
		bike    int64
		auto    int64
		car     int64
	}{
		{"off-peak evening", 21, domain.WeatherSample{TempCelsius: 25}, 73, 115, 154},
		{"late night surcharge", 23, domain.WeatherSample{TempCelsius: 25}, 88, 130, 169},
		{"happy hour discount", 15, domain.WeatherSample{TempCelsius: 25}, 62, 98, 131},
		{"rain", 9, rain, 72, 105, 142},
		{"heat", 9, hot, 63, 95, 128},
	}

	calc := NewFareCalculator(nil)
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			in := baseTrip(tc.hour)
			in.Weather = tc.weather
			q := calc.Quote(in)
			if q.Moto != tc.bike || q.Auto != tc.auto || q.Car != tc.car {
				t.Errorf("expected %d/%d/%d, got %d/%d/%d", tc.bike, tc.auto, tc.car, q.Moto, q.Auto, q.Car)
			}
		})
	}
}

func TestFare_ZeroDistanceChargesDiscountedBase(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator(nil)
	q := calc.Quote(FareInput{Hour: 9})

	if q.Moto != 18 || q.Auto != 38 || q.Car != 60 {
		t.Errorf("expected 18/38/60, got %d/%d/%d", q.Moto, q.Auto, q.Car)
	}
}

func TestFare_ClampedToHalfBase(t *testing.T) {
	t.Parallel()

	calc := &FareCalculator{
		rates: map[domain.VehicleType]FareRates{
			domain.VehicleCar: {Base: 100, PerKm: 1, EcoDiscount: 0.8},
		},
	}

	got := calc.Fare(domain.VehicleCar, FareInput{Hour: 15})
	if got != 50 {
		t.Errorf("expected fare clamped to 50, got %d", got)
	}
}

func TestFare_NeverBelowHalfBase(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator(nil)
	rates := DefaultFareRates()

	for hour := 0; hour < 24; hour++ {
		for _, vehicle := range domain.VehicleTypes {
			in := FareInput{Hour: hour, Weather: domain.WeatherSample{TempCelsius: 40, Raining: true}}
			got := calc.Fare(vehicle, in)
			if float64(got) < rates[vehicle].Base*minimumFareBaseFactor {
				t.Errorf("%s at %02d:00: fare %d below half base", vehicle, hour, got)
			}
		}
	}
}

func TestFare_MonotoneInDistance(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator(nil)

	for _, hour := range []int{3, 9, 15, 18, 23} {
		for _, vehicle := range domain.VehicleTypes {
			prev := int64(-1)
			for tenths := 0; tenths <= 500; tenths += 5 {
				in := baseTrip(hour)
				in.DistanceKm = float64(tenths) / 10
				got := calc.Fare(vehicle, in)
				if got < prev {
					t.Fatalf("%s at %02d:00: fare dropped from %d to %d at %.1f km", vehicle, hour, prev, got, in.DistanceKm)
				}
				prev = got
			}
		}
	}
}

func TestTrafficMultiplier_Windows(t *testing.T) {
	t.Parallel()

	rush := map[int]bool{8: true, 9: true, 10: true, 17: true, 18: true, 19: true, 20: true}
	for hour := 0; hour < 24; hour++ {
		want := offPeakMultiplier
		if rush[hour] {
			want = rushHourMultiplier
		}
		if got := trafficMultiplier(hour); got != want {
			t.Errorf("hour %d: expected %v, got %v", hour, want, got)
		}
	}
}

func TestComplexityMultiplier(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		km       float64
		minutes  float64
		expected float64
	}{
		{"free flowing", 10, 20, 1},
		{"at threshold", 10, 30, 1},
		{"congested", 5, 20, 1.02},
		{"zero distance", 0, 20, 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := complexityMultiplier(tc.km, tc.minutes)
			if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestFareCalculator_HourFromClock(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator(fixedHour(22))
	if calc.Hour() != 22 {
		t.Errorf("expected hour 22, got %d", calc.Hour())
	}
}

func TestFareCalculator_FloorBoundsEveryQuote(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator(nil)
	conditions := []domain.WeatherSample{
		{TempCelsius: 25},
		{TempCelsius: 25, Raining: true},
		{TempCelsius: 38},
		{TempCelsius: 38, Raining: true},
	}

	for _, vehicle := range []domain.VehicleType{domain.VehicleBike, domain.VehicleAuto, domain.VehicleCar} {
		floor := calc.Floor(vehicle, 5, 20)
		for hour := 0; hour < 24; hour++ {
			for _, w := range conditions {
				in := FareInput{DistanceKm: 5, DurationMinutes: 20, Hour: hour, Weather: w}
				if fare := calc.Fare(vehicle, in); fare < floor {
					t.Errorf("%s at %02d:00 %+v: fare %d below floor %d", vehicle, hour, w, fare, floor)
				}
			}
		}
	}

	if got := calc.Floor(domain.VehicleBike, 5, 20); got != 62 {
		t.Errorf("expected bike floor 62, got %d", got)
	}
}
