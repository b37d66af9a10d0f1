// Package mocks provides in-memory doubles for the repositories, stores and
// outbound clients used by the ride services.
package mocks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository. Accept and
// UpdateStatus are compare-and-swap under one mutex, like the SQL they stand in for.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	AcceptCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	AcceptError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ride
	m.rides[ride.ID] = &cp
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rides[ride.ID]; exists {
		return repository.ErrDuplicate
	}
	cp := *ride
	cp.Rider, cp.Captain = nil, nil
	m.rides[ride.ID] = &cp
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	ride, err := m.GetWithOTP(ctx, id)
	if err != nil {
		return nil, err
	}
	ride.OTP = ""
	return ride, nil
}

func (m *MockRideRepository) GetWithOTP(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	cp := *ride
	return &cp, nil
}

func (m *MockRideRepository) GetForCaptain(ctx context.Context, id, captainID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok || ride.CaptainID != captainID {
		return nil, repository.ErrNotFound
	}
	cp := *ride
	cp.OTP = ""
	return &cp, nil
}

func (m *MockRideRepository) Accept(ctx context.Context, id, captainID string) error {
	atomic.AddInt32(&m.AcceptCallCount, 1)
	if m.AcceptError != nil {
		return m.AcceptError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != domain.RideStatusRequested {
		return repository.ErrStaleState
	}
	ride.CaptainID = captainID
	ride.Status = domain.RideStatusAccepted
	return nil
}

func (m *MockRideRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != from {
		return repository.ErrStaleState
	}
	ride.Status = to
	return nil
}

// GetRide returns the stored ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil
	}
	cp := *ride
	return &cp
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

func (m *MockRideRepository) snapshot() map[string]domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]domain.Ride, len(m.rides))
	for id, r := range m.rides {
		snap[id] = *r
	}
	return snap
}

func (m *MockRideRepository) restore(snap map[string]domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides = make(map[string]*domain.Ride, len(snap))
	for id, r := range snap {
		r := r
		m.rides[id] = &r
	}
}

// ──────────────────────────────────────────────
// MOCK CAPTAIN REPOSITORY
// ──────────────────────────────────────────────

// MockCaptainRepository is a mock implementation of CaptainRepository.
type MockCaptainRepository struct {
	mu       sync.RWMutex
	captains map[string]*domain.Captain

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32
	AddEarningsCallCount  int32

	// Error injection
	CreateError       error
	GetByIDsError     error
	UpdateStatusError error
	AddEarningsError  error
}

// NewMockCaptainRepository creates a new mock captain repository.
func NewMockCaptainRepository() *MockCaptainRepository {
	return &MockCaptainRepository{
		captains: make(map[string]*domain.Captain),
	}
}

// AddCaptain adds a captain to the mock repository.
func (m *MockCaptainRepository) AddCaptain(captain *domain.Captain) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *captain
	m.captains[captain.ID] = &cp
}

func (m *MockCaptainRepository) Create(ctx context.Context, captain *domain.Captain) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.captains {
		if c.Phone == captain.Phone {
			return repository.ErrDuplicate
		}
	}
	cp := *captain
	m.captains[captain.ID] = &cp
	return nil
}

func (m *MockCaptainRepository) GetByID(ctx context.Context, id string) (*domain.Captain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	captain, ok := m.captains[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *captain
	return &cp, nil
}

func (m *MockCaptainRepository) GetByPhone(ctx context.Context, phone string) (*domain.Captain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.captains {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCaptainRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Captain, error) {
	if m.GetByIDsError != nil {
		return nil, m.GetByIDsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Captain, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.captains[id]; ok {
			cp := *c
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockCaptainRepository) UpdateStatus(ctx context.Context, id string, status domain.CaptainStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	captain, ok := m.captains[id]
	if !ok {
		return repository.ErrNotFound
	}
	captain.Status = status
	return nil
}

func (m *MockCaptainRepository) UpdateSocketID(ctx context.Context, id, socketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	captain, ok := m.captains[id]
	if !ok {
		return repository.ErrNotFound
	}
	captain.SocketID = socketID
	return nil
}

func (m *MockCaptainRepository) AddEarnings(ctx context.Context, id string, amount int64) error {
	atomic.AddInt32(&m.AddEarningsCallCount, 1)
	if m.AddEarningsError != nil {
		return m.AddEarningsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	captain, ok := m.captains[id]
	if !ok {
		return repository.ErrNotFound
	}
	captain.Earnings += amount
	return nil
}

// GetCaptain returns the stored captain (for test assertions).
func (m *MockCaptainRepository) GetCaptain(id string) *domain.Captain {
	m.mu.RLock()
	defer m.mu.RUnlock()
	captain, ok := m.captains[id]
	if !ok {
		return nil
	}
	cp := *captain
	return &cp
}

func (m *MockCaptainRepository) snapshot() map[string]domain.Captain {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]domain.Captain, len(m.captains))
	for id, c := range m.captains {
		snap[id] = *c
	}
	return snap
}

func (m *MockCaptainRepository) restore(snap map[string]domain.Captain) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captains = make(map[string]*domain.Captain, len(snap))
	for id, c := range snap {
		c := c
		m.captains[id] = &c
	}
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Error injection
	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a rider to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == user.Phone {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) UpdateSocketID(ctx context.Context, id, socketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.SocketID = socketID
	return nil
}

// GetUser returns the stored rider (for test assertions).
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil
	}
	cp := *user
	return &cp
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs fn against the mock repositories and restores both of
// them when fn fails, so a failed transaction leaves no partial writes.
type MockTransactor struct {
	mu       sync.Mutex
	rides    *MockRideRepository
	captains *MockCaptainRepository

	CallCount int32
}

// NewMockTransactor creates a new mock transactor.
func NewMockTransactor(rides *MockRideRepository, captains *MockCaptainRepository) *MockTransactor {
	return &MockTransactor{rides: rides, captains: captains}
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	atomic.AddInt32(&m.CallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()

	rideSnap := m.rides.snapshot()
	captainSnap := m.captains.snapshot()

	if err := fn(ctx, m.rides, m.captains); err != nil {
		m.rides.restore(rideSnap)
		m.captains.restore(captainSnap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

type storedLocation struct {
	vehicle domain.VehicleType
	loc     redis.CaptainLocation
}

// MockLocationStore is a mock implementation of LocationStore. FindNearby
// returns every captain of the vehicle type in insertion order; tests control
// distance through the order they add locations.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []storedLocation

	// Counters
	UpdateLocationCallCount int32
	RemoveLocationCallCount int32

	// Error injection
	UpdateLocationError error
	FindNearbyError     error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{}
}

// AddCaptainLocation adds a captain location to the mock store.
func (m *MockLocationStore) AddCaptainLocation(vehicle domain.VehicleType, loc redis.CaptainLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, storedLocation{vehicle: vehicle, loc: loc})
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, captainID string, vehicle domain.VehicleType, at domain.Coordinate) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.locations {
		if s.loc.CaptainID == captainID {
			m.locations[i].vehicle = vehicle
			m.locations[i].loc.Lat = at.Lat
			m.locations[i].loc.Lng = at.Lng
			return nil
		}
	}
	m.locations = append(m.locations, storedLocation{
		vehicle: vehicle,
		loc:     redis.CaptainLocation{CaptainID: captainID, Lat: at.Lat, Lng: at.Lng},
	})
	return nil
}

func (m *MockLocationStore) FindNearby(ctx context.Context, vehicle domain.VehicleType, at domain.Coordinate, radiusKm float64) ([]redis.CaptainLocation, error) {
	if m.FindNearbyError != nil {
		return nil, m.FindNearbyError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []redis.CaptainLocation
	for _, s := range m.locations {
		if s.vehicle == vehicle && s.loc.DistanceKm <= radiusKm {
			result = append(result, s.loc)
		}
	}
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, captainID string) error {
	atomic.AddInt32(&m.RemoveLocationCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.locations {
		if s.loc.CaptainID == captainID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if a captain location exists.
func (m *MockLocationStore) HasLocation(captainID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.locations {
		if s.loc.CaptainID == captainID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:ride:" + rideID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:ride:"+rideID)
	return nil
}

// IsLocked checks if a ride is locked (for test assertions).
func (m *MockLockStore) IsLocked(rideID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:ride:"+rideID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK ROUTE CACHE
// ──────────────────────────────────────────────

// MockRouteCache is a mock implementation of RouteCache.
type MockRouteCache struct {
	mu     sync.Mutex
	routes map[string]domain.Route

	HitCount  int32
	MissCount int32
}

// NewMockRouteCache creates a new mock route cache.
func NewMockRouteCache() *MockRouteCache {
	return &MockRouteCache{routes: make(map[string]domain.Route)}
}

func (m *MockRouteCache) GetRoute(ctx context.Context, pickup, destination string) (*domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[pickup+"\x00"+destination]
	if !ok {
		atomic.AddInt32(&m.MissCount, 1)
		return nil, nil
	}
	atomic.AddInt32(&m.HitCount, 1)
	return &r, nil
}

func (m *MockRouteCache) SetRoute(ctx context.Context, pickup, destination string, route *domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[pickup+"\x00"+destination] = *route
	return nil
}

// ──────────────────────────────────────────────
// FAKE MAPS AND WEATHER
// ──────────────────────────────────────────────

// FakeRouteResolver returns Route for every pair of places.
type FakeRouteResolver struct {
	mu    sync.Mutex
	Route domain.Route
	Err   error

	CallCount int32
}

// NewFakeRouteResolver returns a resolver for a route of the given length and duration.
func NewFakeRouteResolver(distanceMeters, durationSeconds int64, pickup domain.Coordinate) *FakeRouteResolver {
	return &FakeRouteResolver{
		Route: domain.Route{
			DistanceMeters: distanceMeters,
			Duration:       domain.FormatDuration(durationSeconds),
			Pickup:         pickup,
			Destination:    pickup,
		},
	}
}

func (f *FakeRouteResolver) ResolveRoute(ctx context.Context, pickup, destination string) (*domain.Route, error) {
	atomic.AddInt32(&f.CallCount, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	r := f.Route
	return &r, nil
}

// SetError makes subsequent lookups fail with err.
func (f *FakeRouteResolver) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// FakeWeather returns a fixed sample.
type FakeWeather struct {
	Sample domain.WeatherSample
	Err    error
}

func (f *FakeWeather) Current(ctx context.Context, at domain.Coordinate) (domain.WeatherSample, error) {
	if f.Err != nil {
		return domain.WeatherSample{}, f.Err
	}
	return f.Sample, nil
}

// ──────────────────────────────────────────────
// MOCK DISPATCHER AND PUBLISHER
// ──────────────────────────────────────────────

// SentMessage records one push.
type SentMessage struct {
	SessionID string
	Event     string
	Payload   any
}

// MockDispatcher records pushes. Sessions listed in Offline fail with ErrMockOffline.
type MockDispatcher struct {
	mu      sync.Mutex
	sent    []SentMessage
	Offline map[string]bool
}

// NewMockDispatcher creates a new mock dispatcher.
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{Offline: make(map[string]bool)}
}

func (m *MockDispatcher) Send(sessionID, event string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Offline[sessionID] {
		return ErrMockOffline
	}
	m.sent = append(m.sent, SentMessage{SessionID: sessionID, Event: event, Payload: payload})
	return nil
}

// Sent returns every recorded push.
func (m *MockDispatcher) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentTo returns pushes for one session.
func (m *MockDispatcher) SentTo(sessionID string) []SentMessage {
	var out []SentMessage
	for _, msg := range m.Sent() {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out
}

// PublishedEvent records one broker publish.
type PublishedEvent struct {
	Event   string
	Payload any
}

// MockPublisher records broker publishes.
type MockPublisher struct {
	mu        sync.Mutex
	published []PublishedEvent

	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, event string, payload any) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, PublishedEvent{Event: event, Payload: payload})
	return nil
}

// Published returns every recorded publish.
func (m *MockPublisher) Published() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.published))
	copy(out, m.published)
	return out
}

// ──────────────────────────────────────────────
// CLOCK
// ──────────────────────────────────────────────

// FixedClock returns a now func pinned to the given hour of 2024-03-14 UTC.
func FixedClock(hour int) func() time.Time {
	t := time.Date(2024, 3, 14, hour, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

// ManualClock is a clock on 2024-03-14 UTC whose hour a test can move.
type ManualClock struct {
	mu sync.RWMutex
	t  time.Time
}

// NewManualClock returns a ManualClock set to the given hour.
func NewManualClock(hour int) *ManualClock {
	c := &ManualClock{}
	c.Set(hour)
	return c
}

// Now returns the current time of the clock.
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

// Set moves the clock to the given hour.
func (c *ManualClock) Set(hour int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = time.Date(2024, 3, 14, hour, 0, 0, 0, time.UTC)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
	ErrMockOffline      = errors.New("mock: session offline")
)

// Ensure mocks implement interfaces.
var (
	_ repository.RideRepository    = (*MockRideRepository)(nil)
	_ repository.CaptainRepository = (*MockCaptainRepository)(nil)
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.Transactor        = (*MockTransactor)(nil)
	_ redis.LocationStoreInterface = (*MockLocationStore)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
	_ redis.RouteCacheInterface    = (*MockRouteCache)(nil)
)
