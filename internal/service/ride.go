package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

const defaultConfirmLockTTL = 5 * time.Second

// RouteResolver turns two place names into a route.
type RouteResolver interface {
	ResolveRoute(ctx context.Context, pickup, destination string) (*domain.Route, error)
}

// WeatherLookup returns current conditions at a coordinate.
type WeatherLookup interface {
	Current(ctx context.Context, at domain.Coordinate) (domain.WeatherSample, error)
}

// OTPSource issues ride passcodes.
type OTPSource interface {
	Generate() (string, error)
}

// RideServiceDeps contains everything RideService needs. Locks and RouteCache
// are optional.
type RideServiceDeps struct {
	RideRepo    repository.RideRepository
	CaptainRepo repository.CaptainRepository
	UserRepo    repository.UserRepository
	Transactor  repository.Transactor
	Routes      RouteResolver
	Weather     WeatherLookup
	Fares       *FareCalculator
	OTP         OTPSource
	Finder      CaptainFinder
	Notifier    RideNotifier
	Locks       redis.LockStoreInterface
	RouteCache  redis.RouteCacheInterface
	Logger      *slog.Logger

	ConfirmLockTTL        time.Duration
	FareOverrideMaxFactor float64 // 0 disables the upper bound
	Now                   func() time.Time
}

// RideService owns the ride lifecycle: requested -> accepted -> ongoing -> completed.
type RideService struct {
	rideRepo    repository.RideRepository
	captainRepo repository.CaptainRepository
	userRepo    repository.UserRepository
	tx          repository.Transactor
	routes      RouteResolver
	weather     WeatherLookup
	fares       *FareCalculator
	otp         OTPSource
	finder      CaptainFinder
	notifier    RideNotifier
	locks       redis.LockStoreInterface
	routeCache  redis.RouteCacheInterface
	log         *slog.Logger

	confirmLockTTL    time.Duration
	fareOverrideLimit float64
	now               func() time.Time
}

// NewRideService creates a new RideService.
func NewRideService(deps RideServiceDeps) *RideService {
	s := &RideService{
		rideRepo:          deps.RideRepo,
		captainRepo:       deps.CaptainRepo,
		userRepo:          deps.UserRepo,
		tx:                deps.Transactor,
		routes:            deps.Routes,
		weather:           deps.Weather,
		fares:             deps.Fares,
		otp:               deps.OTP,
		finder:            deps.Finder,
		notifier:          deps.Notifier,
		locks:             deps.Locks,
		routeCache:        deps.RouteCache,
		log:               deps.Logger,
		confirmLockTTL:    deps.ConfirmLockTTL,
		fareOverrideLimit: deps.FareOverrideMaxFactor,
		now:               deps.Now,
	}
	if s.fares == nil {
		s.fares = NewFareCalculator(nil)
	}
	if s.confirmLockTTL <= 0 {
		s.confirmLockTTL = defaultConfirmLockTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.log = s.log.With("component", "ride")
	return s
}

// GetFare quotes a trip between two places for every vehicle type.
func (s *RideService) GetFare(ctx context.Context, pickup, destination string) (*domain.FareQuote, error) {
	if err := validatePlaces(pickup, destination); err != nil {
		return nil, err
	}

	route, err := s.resolveRoute(ctx, pickup, destination)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, route)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	RiderID     string
	Pickup      string
	Destination string
	VehicleType string
	Fare        *int64 // Optional rider-supplied fare for VehicleType
}

// CreateRideResponse contains the result of creating a ride.
type CreateRideResponse struct {
	Ride             *domain.Ride // OTP cleared
	NotifiedCaptains int
}

// CreateRide prices and persists a new ride, then offers it to nearby captains.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*CreateRideResponse, error) {
	vehicle, err := s.validateCreateRequest(req)
	if err != nil {
		return nil, err
	}

	rider, err := s.userRepo.GetByID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}

	route, err := s.resolveRoute(ctx, req.Pickup, req.Destination)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, route)
	if err != nil {
		return nil, err
	}

	fare, _ := quote.For(vehicle)
	if req.Fare != nil {
		if !s.fareOverrideAllowed(*req.Fare, s.fareFloor(vehicle, route), fare) {
			return nil, ErrFareOutOfRange
		}
		fare = *req.Fare
	}

	otp, err := s.otp.Generate()
	if err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:          uuid.New().String(),
		RiderID:     req.RiderID,
		Pickup:      req.Pickup,
		Destination: req.Destination,
		VehicleType: vehicle,
		Fare:        fare,
		DistanceKm:  route.DistanceKm(),
		OTP:         otp,
		Status:      domain.RideStatusRequested,
		CreatedAt:   s.now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	// From here on the ride exists; offering it is best-effort.
	ride.Rider = rider

	notified := 0
	captains, err := s.finder.FindNearby(ctx, vehicle, route.Pickup)
	if err != nil {
		s.log.Warn("captain search failed", "ride_id", ride.ID, "error", err)
	} else {
		notified = s.notifier.NotifyNewRide(ctx, ride, captains)
	}

	s.log.Info("ride created",
		"ride_id", ride.ID,
		"vehicle_type", vehicle,
		"fare", fare,
		"captains_found", len(captains),
		"captains_notified", notified,
	)

	return &CreateRideResponse{
		Ride:             ride.WithoutOTP(),
		NotifiedCaptains: notified,
	}, nil
}

// GetRide retrieves a ride without its OTP.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// ConfirmRide assigns the acting captain to a requested ride. Only one captain
// can ever win: the status change is a compare-and-swap on "requested".
// The returned ride carries the OTP and both parties' details.
func (s *RideService) ConfirmRide(ctx context.Context, rideID, captainID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if captainID == "" {
		return nil, ErrInvalidCaptainID
	}

	captain, err := s.captainRepo.GetByID(ctx, captainID)
	if err != nil {
		return nil, err
	}

	// A missing or settled ride is answered before contending for the lock.
	current, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.RideStatusRequested {
		return nil, ErrRideAlreadyAccepted
	}

	if s.locks != nil {
		locked, err := s.locks.AcquireRideLock(ctx, rideID, s.confirmLockTTL)
		if err != nil {
			// The database swap below is still authoritative.
			s.log.Warn("ride lock unavailable", "ride_id", rideID, "error", err)
		} else if !locked {
			return nil, ErrConfirmInProgress
		} else {
			defer func() { _ = s.locks.ReleaseRideLock(context.WithoutCancel(ctx), rideID) }()
		}
	}

	if err := s.rideRepo.Accept(ctx, rideID, captainID); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, s.explainAcceptFailure(ctx, rideID)
		}
		return nil, err
	}

	ride, err := s.rideRepo.GetWithOTP(ctx, rideID)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, ride)
	ride.Captain = captain

	s.notifier.NotifyRideConfirmed(ctx, ride)
	s.log.Info("ride confirmed", "ride_id", ride.ID, "captain_id", captainID)

	return ride, nil
}

// explainAcceptFailure turns a failed swap into not-found or conflict.
func (s *RideService) explainAcceptFailure(ctx context.Context, rideID string) error {
	if _, err := s.rideRepo.GetByID(ctx, rideID); err != nil {
		return err
	}
	// Any status past requested means someone already accepted it.
	return ErrRideAlreadyAccepted
}

// StartRideRequest contains the parameters for starting a ride.
type StartRideRequest struct {
	RideID    string
	OTP       string
	CaptainID string
}

// StartRide moves an accepted ride to ongoing once the rider's OTP matches.
func (s *RideService) StartRide(ctx context.Context, req StartRideRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.OTP == "" {
		return nil, ErrMissingOTP
	}
	if req.CaptainID == "" {
		return nil, ErrInvalidCaptainID
	}

	ride, err := s.rideRepo.GetWithOTP(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusAccepted {
		return nil, ErrRideNotAccepted
	}

	if subtle.ConstantTimeCompare([]byte(ride.OTP), []byte(req.OTP)) != 1 {
		return nil, ErrInvalidOTP
	}

	if err := s.rideRepo.UpdateStatus(ctx, ride.ID, domain.RideStatusAccepted, domain.RideStatusOngoing); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrRideNotAccepted
		}
		return nil, err
	}

	ride.Status = domain.RideStatusOngoing
	ride = ride.WithoutOTP()
	s.populate(ctx, ride)

	s.notifier.NotifyRideStarted(ctx, ride)
	s.log.Info("ride started", "ride_id", ride.ID, "captain_id", req.CaptainID)

	return ride, nil
}

// EndRide completes an ongoing ride belonging to the acting captain and
// credits the fare to their earnings in the same transaction.
func (s *RideService) EndRide(ctx context.Context, rideID, captainID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if captainID == "" {
		return nil, ErrInvalidCaptainID
	}

	ride, err := s.rideRepo.GetForCaptain(ctx, rideID, captainID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusOngoing {
		return nil, ErrRideNotOngoing
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, rides repository.RideRepository, captains repository.CaptainRepository) error {
		if err := rides.UpdateStatus(ctx, ride.ID, domain.RideStatusOngoing, domain.RideStatusCompleted); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return ErrRideNotOngoing
			}
			return err
		}
		return captains.AddEarnings(ctx, captainID, ride.Fare)
	})
	if err != nil {
		return nil, err
	}

	ride.Status = domain.RideStatusCompleted
	s.populate(ctx, ride)

	s.notifier.NotifyRideEnded(ctx, ride)
	s.log.Info("ride completed", "ride_id", ride.ID, "captain_id", captainID, "fare", ride.Fare)

	return ride, nil
}

// populate attaches rider and captain details for responses and events.
// Lookups that fail leave the field empty.
func (s *RideService) populate(ctx context.Context, ride *domain.Ride) {
	if rider, err := s.userRepo.GetByID(ctx, ride.RiderID); err == nil {
		ride.Rider = rider
	}
	if ride.CaptainID != "" {
		if captain, err := s.captainRepo.GetByID(ctx, ride.CaptainID); err == nil {
			ride.Captain = captain
		}
	}
}

// resolveRoute consults the route cache before calling the resolver.
func (s *RideService) resolveRoute(ctx context.Context, pickup, destination string) (*domain.Route, error) {
	if s.routeCache != nil {
		cached, err := s.routeCache.GetRoute(ctx, pickup, destination)
		if err != nil {
			s.log.Debug("route cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	route, err := s.routes.ResolveRoute(ctx, pickup, destination)
	if err != nil {
		return nil, err
	}

	if s.routeCache != nil {
		if err := s.routeCache.SetRoute(ctx, pickup, destination, route); err != nil {
			s.log.Debug("route cache write failed", "error", err)
		}
	}
	return route, nil
}

// quote fetches live weather at the pickup and prices the route.
func (s *RideService) quote(ctx context.Context, route *domain.Route) (domain.FareQuote, error) {
	seconds, err := route.DurationSeconds()
	if err != nil {
		return domain.FareQuote{}, &domain.LookupError{Service: "maps", Err: err}
	}

	weather, err := s.weather.Current(ctx, route.Pickup)
	if err != nil {
		return domain.FareQuote{}, err
	}

	return s.fares.Quote(FareInput{
		DistanceKm:      route.DistanceKm(),
		DurationMinutes: float64(seconds) / 60,
		Hour:            s.fares.Hour(),
		Weather:         weather,
	}), nil
}

// fareFloor is the lowest fare the route prices at under any hour or weather,
// so a quote taken before the weather or the clock moved is still accepted.
// The route's duration has already been parsed by quote.
func (s *RideService) fareFloor(vehicle domain.VehicleType, route *domain.Route) int64 {
	seconds, _ := route.DurationSeconds()
	return s.fares.Floor(vehicle, route.DistanceKm(), float64(seconds)/60)
}

// fareOverrideAllowed accepts a rider-supplied fare no lower than floor and,
// when a limit is set, no higher than limit times the computed fare.
func (s *RideService) fareOverrideAllowed(offered, floor, computed int64) bool {
	if offered < floor {
		return false
	}
	if s.fareOverrideLimit > 0 && float64(offered) > float64(computed)*s.fareOverrideLimit {
		return false
	}
	return true
}

func (s *RideService) validateCreateRequest(req CreateRideRequest) (domain.VehicleType, error) {
	if req.RiderID == "" {
		return "", ErrInvalidRiderID
	}
	if err := validatePlaces(req.Pickup, req.Destination); err != nil {
		return "", err
	}
	vehicle, ok := domain.ParseVehicleType(req.VehicleType)
	if !ok {
		return "", ErrInvalidVehicleType
	}
	return vehicle, nil
}

func validatePlaces(pickup, destination string) error {
	if strings.TrimSpace(pickup) == "" {
		return ErrInvalidPickup
	}
	if strings.TrimSpace(destination) == "" {
		return ErrInvalidDestination
	}
	return nil
}
