package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ridehail/internal/domain"
)

func TestCurrent_ParsesTemperatureAndRain(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     string
		wantTemp float64
		wantRain bool
	}{
		{"dry", `{"main":{"temp":25.5}}`, 25.5, false},
		{"raining", `{"main":{"temp":21},"rain":{"1h":0.8}}`, 21, true},
		{"explicit null rain", `{"main":{"temp":31},"rain":null}`, 31, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/data/2.5/weather" {
					http.NotFound(w, r)
					return
				}
				if r.URL.Query().Get("units") != "metric" || r.URL.Query().Get("appid") != "key" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "key", time.Second)
			got, err := c.Current(context.Background(), domain.Coordinate{Lat: 12.97, Lng: 77.59})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.TempCelsius != tc.wantTemp {
				t.Errorf("expected temp %v, got %v", tc.wantTemp, got.TempCelsius)
			}
			if got.Raining != tc.wantRain {
				t.Errorf("expected rain=%v, got %v", tc.wantRain, got.Raining)
			}
		})
	}
}

func TestCurrent_UpstreamFailureIsLookupError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second)
	_, err := c.Current(context.Background(), domain.Coordinate{Lat: 1, Lng: 1})

	var lookupErr *domain.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if lookupErr.Service != "weather" {
		t.Errorf("expected weather service, got %s", lookupErr.Service)
	}
}

func TestCurrent_TimeoutIsLookupError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "key", 50*time.Millisecond)
	_, err := c.Current(context.Background(), domain.Coordinate{Lat: 1, Lng: 1})

	var lookupErr *domain.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError on timeout, got %v", err)
	}
}
