package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Ride.OTPLength != 6 {
		t.Errorf("expected OTP length 6, got %d", cfg.Ride.OTPLength)
	}
	if cfg.Ride.SearchRadiusKm != 2 {
		t.Errorf("expected search radius 2km, got %v", cfg.Ride.SearchRadiusKm)
	}
	if cfg.RabbitMQ.URL != "" {
		t.Errorf("expected publishing disabled by default, got %q", cfg.RabbitMQ.URL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OTP_LENGTH", "4")
	t.Setenv("CAPTAIN_SEARCH_RADIUS_KM", "3.5")
	t.Setenv("ROUTE_CACHE_TTL", "0s")
	t.Setenv("NEW_RELIC_ENABLED", "true")

	cfg := Load()

	if cfg.Ride.OTPLength != 4 {
		t.Errorf("expected OTP length 4, got %d", cfg.Ride.OTPLength)
	}
	if cfg.Ride.SearchRadiusKm != 3.5 {
		t.Errorf("expected radius 3.5, got %v", cfg.Ride.SearchRadiusKm)
	}
	if cfg.Ride.RouteCacheTTL != 0 {
		t.Errorf("expected route cache disabled, got %v", cfg.Ride.RouteCacheTTL)
	}
	if !cfg.NewRelic.Enabled {
		t.Error("expected New Relic enabled")
	}
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("OTP_LENGTH", "six")
	t.Setenv("MAPS_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Ride.OTPLength != 6 {
		t.Errorf("expected fallback OTP length 6, got %d", cfg.Ride.OTPLength)
	}
	if cfg.Maps.Timeout != 5*time.Second {
		t.Errorf("expected fallback timeout 5s, got %v", cfg.Maps.Timeout)
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://rider.example.com, https://captain.example.com,")

	cfg := Load()

	want := []string{"https://rider.example.com", "https://captain.example.com"}
	if len(cfg.Server.AllowedOrigins) != len(want) {
		t.Fatalf("expected %d origins, got %v", len(want), cfg.Server.AllowedOrigins)
	}
	for i, origin := range want {
		if cfg.Server.AllowedOrigins[i] != origin {
			t.Errorf("origin %d: expected %q, got %q", i, origin, cfg.Server.AllowedOrigins[i])
		}
	}
}

func TestLoad_PoolDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Database.MaxOpenConns != 50 || cfg.Database.MaxIdleConns != 25 {
		t.Errorf("unexpected db pool %d/%d", cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	}
	if cfg.Redis.PoolSize != 20 {
		t.Errorf("expected redis pool 20, got %d", cfg.Redis.PoolSize)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("expected wildcard origin, got %v", cfg.Server.AllowedOrigins)
	}
}
