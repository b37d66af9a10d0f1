package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"googlemaps.github.io/maps"

	"ridehail/internal/domain"
)

const (
	geocodeMG    = `{"status":"OK","results":[{"geometry":{"location":{"lat":12.9716,"lng":77.5946}}}]}`
	geocodeKR    = `{"status":"OK","results":[{"geometry":{"location":{"lat":12.9352,"lng":77.6245}}}]}`
	directionsOK = `{"status":"OK","geocoded_waypoints":[],"routes":[{"summary":"","legs":[
		{"distance":{"text":"5 km","value":5000},"duration":{"text":"20 mins","value":1200}}
	]}]}`
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r, err := NewResolver("test-key", 2*time.Second, maps.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}
	return r
}

func TestResolveRoute_ReturnsDistanceDurationAndCoordinates(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(req.URL.Path, "/geocode/json"):
			if req.URL.Query().Get("address") == "MG Road" {
				w.Write([]byte(geocodeMG))
				return
			}
			w.Write([]byte(geocodeKR))
		case strings.HasSuffix(req.URL.Path, "/directions/json"):
			w.Write([]byte(directionsOK))
		default:
			http.NotFound(w, req)
		}
	})

	route, err := r.ResolveRoute(context.Background(), "MG Road", "Koramangala")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.DistanceMeters != 5000 {
		t.Errorf("expected 5000m, got %d", route.DistanceMeters)
	}
	if route.Duration != "1200s" {
		t.Errorf("expected duration 1200s, got %s", route.Duration)
	}
	if route.Pickup.Lat != 12.9716 || route.Destination.Lng != 77.6245 {
		t.Errorf("unexpected coordinates: %+v -> %+v", route.Pickup, route.Destination)
	}
}

func TestResolveRoute_EmptyInputIsPrecondition(t *testing.T) {
	t.Parallel()

	called := false
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		called = true
	})

	_, err := r.ResolveRoute(context.Background(), "  ", "Koramangala")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	var lookupErr *domain.LookupError
	if errors.As(err, &lookupErr) {
		t.Error("empty input must not be reported as a lookup failure")
	}
	if called {
		t.Error("expected no upstream call for empty input")
	}
}

func TestResolveRoute_UnknownPlaceIsLookupError(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := r.ResolveRoute(context.Background(), "Nowhere", "Koramangala")

	var lookupErr *domain.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if lookupErr.Query != "Nowhere" {
		t.Errorf("expected failing query Nowhere, got %q", lookupErr.Query)
	}
}

func TestResolveRoute_NoRouteIsLookupError(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(req.URL.Path, "/geocode/json") {
			w.Write([]byte(geocodeMG))
			return
		}
		w.Write([]byte(`{"status":"ZERO_RESULTS","geocoded_waypoints":[],"routes":[]}`))
	})

	_, err := r.ResolveRoute(context.Background(), "MG Road", "Island")

	var lookupErr *domain.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
}

func TestSuggestions_ReturnsDescriptions(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","predictions":[{"description":"MG Road, Bengaluru"},{"description":"MG Road, Pune"}]}`))
	})

	got, err := r.Suggestions(context.Background(), "MG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "MG Road, Bengaluru" {
		t.Errorf("unexpected suggestions: %v", got)
	}
}
