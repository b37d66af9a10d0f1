package service

import (
	"context"
	"log/slog"

	"ridehail/internal/domain"
)

// Event names pushed to clients.
const (
	EventNewRide       = "new-ride"
	EventRideConfirmed = "ride-confirmed"
	EventRideStarted   = "ride-started"
	EventRideEnded     = "ride-ended"
)

// Dispatcher pushes an event to one connected session. Delivery is best-effort:
// a disconnected session simply misses the event.
type Dispatcher interface {
	Send(sessionID, event string, payload any) error
}

// EventPublisher fans lifecycle events out to other services.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// RideNotifier is what the ride lifecycle calls after each successful transition.
type RideNotifier interface {
	NotifyNewRide(ctx context.Context, ride *domain.Ride, captains []*domain.Captain) int
	NotifyRideConfirmed(ctx context.Context, ride *domain.Ride)
	NotifyRideStarted(ctx context.Context, ride *domain.Ride)
	NotifyRideEnded(ctx context.Context, ride *domain.Ride)
}

// NotificationService delivers ride events over the push channel and, when
// configured, to the message broker.
type NotificationService struct {
	dispatcher Dispatcher
	publisher  EventPublisher
	log        *slog.Logger
}

var _ RideNotifier = (*NotificationService)(nil)

// NewNotificationService creates a new NotificationService. publisher may be nil.
func NewNotificationService(dispatcher Dispatcher, publisher EventPublisher, log *slog.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		log:        log.With("component", "notification"),
	}
}

// NotifyNewRide pushes a new-ride event to each captain and returns how many
// sends were accepted.
func (s *NotificationService) NotifyNewRide(ctx context.Context, ride *domain.Ride, captains []*domain.Captain) int {
	payload := NewRideView(ride.WithoutOTP())

	sent := 0
	for _, captain := range captains {
		if s.send(captain.SocketID, EventNewRide, payload, "captain_id", captain.ID) {
			sent++
		}
	}

	s.publish(ctx, EventNewRide, payload)
	return sent
}

// NotifyRideConfirmed tells the rider which captain accepted, including the OTP
// they will read out at pickup.
func (s *NotificationService) NotifyRideConfirmed(ctx context.Context, ride *domain.Ride) {
	s.notifyRider(ctx, ride, EventRideConfirmed, NewRideView(ride))
}

// NotifyRideStarted tells the rider the trip has begun.
func (s *NotificationService) NotifyRideStarted(ctx context.Context, ride *domain.Ride) {
	s.notifyRider(ctx, ride, EventRideStarted, NewRideView(ride.WithoutOTP()))
}

// NotifyRideEnded tells the rider the trip is complete.
func (s *NotificationService) NotifyRideEnded(ctx context.Context, ride *domain.Ride) {
	s.notifyRider(ctx, ride, EventRideEnded, NewRideView(ride.WithoutOTP()))
}

func (s *NotificationService) notifyRider(ctx context.Context, ride *domain.Ride, event string, payload RideView) {
	socketID := ""
	if ride.Rider != nil {
		socketID = ride.Rider.SocketID
	}
	s.send(socketID, event, payload, "rider_id", ride.RiderID)

	// The broker copy never carries the OTP.
	payload.OTP = ""
	s.publish(ctx, event, payload)
}

func (s *NotificationService) send(socketID, event string, payload any, recipientKey, recipientID string) bool {
	if socketID == "" {
		s.log.Debug("recipient has no session, dropping event", "event", event, recipientKey, recipientID)
		return false
	}
	if err := s.dispatcher.Send(socketID, event, payload); err != nil {
		s.log.Info("event not delivered", "event", event, recipientKey, recipientID, "error", err)
		return false
	}
	return true
}

func (s *NotificationService) publish(ctx context.Context, event string, payload RideView) {
	if s.publisher == nil {
		return
	}
	// Rider and captain details stay on the push channel.
	payload.Rider = nil
	payload.Captain = nil
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		s.log.Warn("failed to publish ride event", "event", event, "ride_id", payload.ID, "error", err)
	}
}
