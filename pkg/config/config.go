package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/travigo/gbfsmap/pkg/feedloader"
	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/stationrender"
	"github.com/travigo/gbfsmap/pkg/util"
	"github.com/travigo/gbfsmap/pkg/zones"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscoveryURL   string        `yaml:"discovery_url"`
	Language       string        `yaml:"language"`
	RequestSpacing time.Duration `yaml:"request_spacing"`

	Zones  ZonesConfig  `yaml:"zones"`
	Render RenderConfig `yaml:"render"`
}

type ZonesConfig struct {
	PrecedenceStride   int               `yaml:"precedence_stride"`
	RespectTimeWindows bool              `yaml:"respect_time_windows"`
	Categories         map[string]string `yaml:"categories"`
}

type RenderConfig struct {
	ZoomThreshold float64       `yaml:"zoom_threshold"`
	InitialZoom   float64       `yaml:"initial_zoom"`
	Debounce      time.Duration `yaml:"debounce"`
}

func Default() *Config {
	return &Config{
		Language:       gbfs.DefaultDiscoveryLanguage,
		RequestSpacing: feedloader.DefaultRequestSpacing,
		Zones: ZonesConfig{
			PrecedenceStride: zones.DefaultPrecedenceStride,
		},
		Render: RenderConfig{
			ZoomThreshold: stationrender.DefaultZoomThreshold,
			InitialZoom:   12,
			Debounce:      stationrender.DefaultDebounce,
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies GBFSMAP_
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		contents, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		decoder := yaml.NewDecoder(bytes.NewReader(contents))
		if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := config.applyEnvironment(util.GetEnvironmentVariables()); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	if value := env["GBFSMAP_DISCOVERY_URL"]; value != "" {
		c.DiscoveryURL = value
	}
	if value := env["GBFSMAP_LANGUAGE"]; value != "" {
		c.Language = value
	}

	if value := env["GBFSMAP_ZOOM_THRESHOLD"]; value != "" {
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("GBFSMAP_ZOOM_THRESHOLD: %w", err)
		}
		c.Render.ZoomThreshold = threshold
	}

	if value := env["GBFSMAP_DEBOUNCE"]; value != "" {
		debounce, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("GBFSMAP_DEBOUNCE: %w", err)
		}
		c.Render.Debounce = debounce
	}

	if value := env["GBFSMAP_REQUEST_SPACING"]; value != "" {
		spacing, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("GBFSMAP_REQUEST_SPACING: %w", err)
		}
		c.RequestSpacing = spacing
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Zones.PrecedenceStride <= 0 {
		return fmt.Errorf("zones.precedence_stride must be positive, got %d", c.Zones.PrecedenceStride)
	}
	if c.Render.Debounce < 0 {
		return fmt.Errorf("render.debounce must not be negative, got %s", c.Render.Debounce)
	}
	if c.RequestSpacing < 0 {
		return fmt.Errorf("request_spacing must not be negative, got %s", c.RequestSpacing)
	}
	return nil
}
