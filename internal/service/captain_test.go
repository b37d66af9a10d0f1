package service_test

import (
	"context"
	"errors"
	"testing"

	"ridehail/internal/domain"
	"ridehail/internal/mocks"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
	"ridehail/internal/service"
)

func TestNearbyCaptainFinder_FiltersAndKeepsOrder(t *testing.T) {
	t.Parallel()

	locations := mocks.NewMockLocationStore()
	captains := mocks.NewMockCaptainRepository()

	captains.AddCaptain(&domain.Captain{ID: "c-1", VehicleType: domain.VehicleAuto, Status: domain.CaptainStatusActive})
	captains.AddCaptain(&domain.Captain{ID: "c-2", VehicleType: domain.VehicleAuto, Status: domain.CaptainStatusInactive})
	captains.AddCaptain(&domain.Captain{ID: "c-3", VehicleType: domain.VehicleCar, Status: domain.CaptainStatusActive})
	captains.AddCaptain(&domain.Captain{ID: "c-4", VehicleType: domain.VehicleAuto, Status: domain.CaptainStatusActive})

	// c-3 switched to a car after its last auto location update; c-ghost has no row.
	locations.AddCaptainLocation(domain.VehicleAuto, redis.CaptainLocation{CaptainID: "c-4", DistanceKm: 0.2})
	locations.AddCaptainLocation(domain.VehicleAuto, redis.CaptainLocation{CaptainID: "c-2", DistanceKm: 0.3})
	locations.AddCaptainLocation(domain.VehicleAuto, redis.CaptainLocation{CaptainID: "c-3", DistanceKm: 0.4})
	locations.AddCaptainLocation(domain.VehicleAuto, redis.CaptainLocation{CaptainID: "c-ghost", DistanceKm: 0.5})
	locations.AddCaptainLocation(domain.VehicleAuto, redis.CaptainLocation{CaptainID: "c-1", DistanceKm: 1.5})

	finder := service.NewNearbyCaptainFinder(locations, captains, 2)
	found, err := finder.FindNearby(context.Background(), domain.VehicleAuto, pickupPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(found) != 2 || found[0].ID != "c-4" || found[1].ID != "c-1" {
		ids := make([]string, len(found))
		for i, c := range found {
			ids[i] = c.ID
		}
		t.Errorf("expected [c-4 c-1], got %v", ids)
	}
}

func TestNearbyCaptainFinder_InvalidPoint(t *testing.T) {
	t.Parallel()

	finder := service.NewNearbyCaptainFinder(mocks.NewMockLocationStore(), mocks.NewMockCaptainRepository(), 0)
	_, err := finder.FindNearby(context.Background(), domain.VehicleCar, domain.Coordinate{Lat: 91})
	if !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestCaptainService_UpdateLocationActivates(t *testing.T) {
	t.Parallel()

	locations := mocks.NewMockLocationStore()
	captains := mocks.NewMockCaptainRepository()
	captains.AddCaptain(&domain.Captain{ID: "c-1", VehicleType: domain.VehicleBike, Status: domain.CaptainStatusInactive})
	svc := service.NewCaptainService(locations, captains)

	if err := svc.UpdateLocation(context.Background(), "c-1", pickupPoint); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !locations.HasLocation("c-1") {
		t.Error("expected location to be stored")
	}
	if got := captains.GetCaptain("c-1").Status; got != domain.CaptainStatusActive {
		t.Errorf("expected active, got %s", got)
	}
}

func TestCaptainService_UpdateLocationValidation(t *testing.T) {
	t.Parallel()

	captains := mocks.NewMockCaptainRepository()
	captains.AddCaptain(&domain.Captain{ID: "c-1", VehicleType: domain.VehicleBike})
	svc := service.NewCaptainService(mocks.NewMockLocationStore(), captains)

	testCases := []struct {
		name     string
		id       string
		at       domain.Coordinate
		expected error
	}{
		{"missing id", "", pickupPoint, service.ErrInvalidCaptainID},
		{"latitude out of range", "c-1", domain.Coordinate{Lat: -95, Lng: 10}, service.ErrInvalidLocation},
		{"longitude out of range", "c-1", domain.Coordinate{Lat: 10, Lng: 181}, service.ErrInvalidLocation},
		{"unknown captain", "c-9", pickupPoint, repository.ErrNotFound},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := svc.UpdateLocation(context.Background(), tc.id, tc.at)
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestCaptainService_GoingInactiveLeavesIndex(t *testing.T) {
	t.Parallel()

	locations := mocks.NewMockLocationStore()
	captains := mocks.NewMockCaptainRepository()
	captains.AddCaptain(&domain.Captain{ID: "c-1", VehicleType: domain.VehicleCar, Status: domain.CaptainStatusActive})
	svc := service.NewCaptainService(locations, captains)
	ctx := context.Background()

	if err := svc.UpdateLocation(ctx, "c-1", pickupPoint); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetStatus(ctx, "c-1", domain.CaptainStatusInactive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if locations.HasLocation("c-1") {
		t.Error("inactive captain should be removed from the location index")
	}
	if err := svc.SetStatus(ctx, "c-1", "busy"); !errors.Is(err, service.ErrInvalidCaptainStatus) {
		t.Errorf("expected ErrInvalidCaptainStatus, got %v", err)
	}
}

func TestSessionService_Bind(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserRepository()
	captains := mocks.NewMockCaptainRepository()
	users.AddUser(&domain.User{ID: "u-1"})
	captains.AddCaptain(&domain.Captain{ID: "c-1"})
	svc := service.NewSessionService(users, captains)
	ctx := context.Background()

	if err := svc.Bind(ctx, service.UserTypeRider, "u-1", "sock-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Bind(ctx, service.UserTypeCaptain, "c-1", "sock-b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if users.GetUser("u-1").SocketID != "sock-a" {
		t.Error("rider session not bound")
	}
	if captains.GetCaptain("c-1").SocketID != "sock-b" {
		t.Error("captain session not bound")
	}

	if err := svc.Bind(ctx, "admin", "u-1", "sock-c"); !errors.Is(err, service.ErrInvalidUserType) {
		t.Errorf("expected ErrInvalidUserType, got %v", err)
	}
	if err := svc.Bind(ctx, service.UserTypeRider, "u-404", "sock-d"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
