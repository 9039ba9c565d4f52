// Package config defines the hypergraph tool's settings and loads them from
// a YAML file and HYPERGRAPH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/search"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// NetworkConfig holds the physical parameters <gamma, beta>.
type NetworkConfig struct {
	Exponent  float64 `mapstructure:"exponent"`
	Threshold float64 `mapstructure:"threshold"`
}

// StationsConfig selects where station locations come from. A scenario
// file wins over the uniform circle.
type StationsConfig struct {
	Scenario string  `mapstructure:"scenario"`
	Count    int     `mapstructure:"count"`
	Radius   float64 `mapstructure:"radius"`
	Centre   bool    `mapstructure:"centre"`
	ScaleKm  float64 `mapstructure:"scale_km"` // plane unit for orbital stations
}

// SearchConfig bounds the exponent bisection.
type SearchConfig struct {
	Low           float64 `mapstructure:"low"`
	High          float64 `mapstructure:"high"`
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

// SweepConfig controls orbital time sweeps.
type SweepConfig struct {
	Start    string        `mapstructure:"start"` // RFC 3339, empty for now
	Tick     time.Duration `mapstructure:"tick"`
	Duration time.Duration `mapstructure:"duration"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// TracingConfig mirrors observability.TracingConfig.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Config is the root configuration.
type Config struct {
	Network  NetworkConfig  `mapstructure:"network"`
	Stations StationsConfig `mapstructure:"stations"`
	Search   SearchConfig   `mapstructure:"search"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// Params returns the network section as generator parameters.
func (c *Config) Params() core.Params {
	return core.Params{Exponent: c.Network.Exponent, Threshold: c.Network.Threshold}
}

// SearchConfig returns the bisection settings for the search package.
func (c *Config) SearchConfig() search.Config {
	return search.Config{
		Low:           c.Search.Low,
		High:          c.Search.High,
		Tolerance:     c.Search.Tolerance,
		MaxIterations: c.Search.MaxIterations,
		Threshold:     c.Network.Threshold,
	}
}

// SweepStart parses Sweep.Start, returning now when it is empty.
func (c *Config) SweepStart(now time.Time) (time.Time, error) {
	if c.Sweep.Start == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, c.Sweep.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: sweep.start: %v", ErrInvalidConfig, err)
	}
	return t, nil
}

// Validate checks every section and joins all problems found.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("network: %w", err))
	}
	if c.Stations.Scenario == "" && c.Stations.Count < 0 {
		errs = append(errs, fmt.Errorf("%w: stations.count %d is negative", ErrInvalidConfig, c.Stations.Count))
	}
	if c.Stations.Radius <= 0 {
		errs = append(errs, fmt.Errorf("%w: stations.radius must be positive, got %v", ErrInvalidConfig, c.Stations.Radius))
	}
	if err := c.SearchConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("search: %w", err))
	}
	if c.Sweep.Tick <= 0 {
		errs = append(errs, fmt.Errorf("%w: sweep.tick must be positive, got %v", ErrInvalidConfig, c.Sweep.Tick))
	}
	if c.Sweep.Duration < 0 {
		errs = append(errs, fmt.Errorf("%w: sweep.duration is negative", ErrInvalidConfig))
	}
	if _, err := c.SweepStart(time.Time{}); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: log.level %q; expected debug|info|warn|error", ErrInvalidConfig, c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format %q; expected text|json", ErrInvalidConfig, c.Log.Format))
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "stdout", "otlp", "otlpgrpc":
	default:
		errs = append(errs, fmt.Errorf("%w: tracing.exporter %q; expected stdout|otlp", ErrInvalidConfig, c.Tracing.Exporter))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("%w: tracing.sample_ratio %v outside [0, 1]", ErrInvalidConfig, c.Tracing.SampleRatio))
	}
	return errors.Join(errs...)
}
