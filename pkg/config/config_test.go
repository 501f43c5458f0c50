package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gbfsmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1000, config.Zones.PrecedenceStride)
	assert.Equal(t, 14.0, config.Render.ZoomThreshold)
	assert.Equal(t, 150*time.Millisecond, config.Render.Debounce)
	assert.Equal(t, 250*time.Millisecond, config.RequestSpacing)
	assert.Equal(t, "en", config.Language)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
discovery_url: https://example.com/gbfs.json
language: fr
request_spacing: 1s
zones:
  precedence_stride: 50
  respect_time_windows: true
  categories:
    fast: "has_speed_limit && maximum_speed_kph > 20"
render:
  zoom_threshold: 15.5
  debounce: 300ms
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/gbfs.json", config.DiscoveryURL)
	assert.Equal(t, "fr", config.Language)
	assert.Equal(t, time.Second, config.RequestSpacing)
	assert.Equal(t, 50, config.Zones.PrecedenceStride)
	assert.True(t, config.Zones.RespectTimeWindows)
	assert.Equal(t, "has_speed_limit && maximum_speed_kph > 20", config.Zones.Categories["fast"])
	assert.Equal(t, 15.5, config.Render.ZoomThreshold)
	assert.Equal(t, 300*time.Millisecond, config.Render.Debounce)
	assert.Equal(t, 12.0, config.Render.InitialZoom, "unset values keep their defaults")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "discovery_url: https://example.com/gbfs.json\n")

	t.Setenv("GBFSMAP_DISCOVERY_URL", "/srv/gbfs/gbfs.json")
	t.Setenv("GBFSMAP_ZOOM_THRESHOLD", "13")
	t.Setenv("GBFSMAP_DEBOUNCE", "75ms")
	t.Setenv("GBFSMAP_REQUEST_SPACING", "0s")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/gbfs/gbfs.json", config.DiscoveryURL)
	assert.Equal(t, 13.0, config.Render.ZoomThreshold)
	assert.Equal(t, 75*time.Millisecond, config.Render.Debounce)
	assert.Equal(t, time.Duration(0), config.RequestSpacing)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "zones: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("bad stride", func(t *testing.T) {
		_, err := Load(writeConfig(t, "zones:\n  precedence_stride: 0\n"))
		assert.Error(t, err)
	})

	t.Run("bad environment", func(t *testing.T) {
		t.Setenv("GBFSMAP_DEBOUNCE", "soon")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		config, err := Load(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, 1000, config.Zones.PrecedenceStride)
	})
}
