package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutEnvFile(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Scouting.DefaultRadius)
	assert.Equal(t, 50, cfg.Scouting.MinRadius)
	assert.Equal(t, 1500, cfg.Scouting.MaxRadius)
	assert.Equal(t, 20, cfg.Scouting.TopN)
	assert.Equal(t, "Vancouver", cfg.Overpass.AreaName)
	assert.Equal(t, "stream:scout:analysis:request", cfg.RedisStreams.RequestStream)
	assert.Equal(t, 5*time.Second, cfg.Worker.StreamReadTimeout)

	box, err := cfg.BoundingBox()
	require.NoError(t, err)
	assert.Equal(t, 49.198, box.MinLat)
	assert.Equal(t, -123.02, box.MaxLon)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("SCOUT_TOP_N", "5")
	t.Setenv("TOMTOM_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())
	assert.Equal(t, 5, cfg.Scouting.TopN)
	assert.Equal(t, "secret", cfg.Traffic.APIKey)
}

func TestLoad_RejectsInvertedBoundary(t *testing.T) {
	t.Setenv("SCOUT_MIN_LAT", "49.4")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_Location(t *testing.T) {
	cfg := &Config{Scouting: ScoutingConfig{TimeZone: "No/Such_Zone"}}
	assert.Equal(t, time.UTC, cfg.Location())
}
