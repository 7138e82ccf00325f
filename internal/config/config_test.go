package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, 16, cfg.TokenLength)
	assert.InDelta(t, 34.0522, cfg.GeofenceLat, 1e-9)
	assert.InDelta(t, -118.2437, cfg.GeofenceLon, 1e-9)
	assert.InDelta(t, 5.0, cfg.GeofenceRadiusKm, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.EvictionGrace)
	assert.Equal(t, 5*time.Second, cfg.SweepInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOKEN_LENGTH", "24")
	t.Setenv("GEOFENCE_RADIUS_KM", "0.5")
	t.Setenv("EVICTION_GRACE", "10s")
	t.Setenv("STORE_BACKEND", "redis")

	cfg := Load()
	assert.Equal(t, 24, cfg.TokenLength)
	assert.InDelta(t, 0.5, cfg.GeofenceRadiusKm, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.EvictionGrace)
	assert.Equal(t, "redis", cfg.StoreBackend)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("TOKEN_LENGTH", "lots")
	t.Setenv("GEOFENCE_RADIUS_KM", "wide")
	t.Setenv("EVICTION_GRACE", "soonish")

	cfg := Load()
	assert.Equal(t, 16, cfg.TokenLength)
	assert.InDelta(t, 5.0, cfg.GeofenceRadiusKm, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.EvictionGrace)
}
