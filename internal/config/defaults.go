package config

import (
	"time"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/search"
)

const (
	DefaultExponent     = 3.0
	DefaultStationCount = 5
	DefaultScaleKm      = 1000.0
	DefaultSweepTick    = time.Minute
	DefaultSweepLength  = 90 * time.Minute
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultExporter     = "stdout"
)

// defaultValues is keyed by viper path. Registering every key is what lets
// HYPERGRAPH_* variables override settings absent from the file.
func defaultValues() map[string]any {
	s := search.DefaultConfig()
	return map[string]any{
		"network.exponent":      DefaultExponent,
		"network.threshold":     core.DefaultThreshold,
		"stations.scenario":     "",
		"stations.count":        DefaultStationCount,
		"stations.radius":       1.0,
		"stations.centre":       false,
		"stations.scale_km":     DefaultScaleKm,
		"search.low":            s.Low,
		"search.high":           s.High,
		"search.tolerance":      s.Tolerance,
		"search.max_iterations": s.MaxIterations,
		"sweep.start":           "",
		"sweep.tick":            DefaultSweepTick,
		"sweep.duration":        DefaultSweepLength,
		"log.level":             DefaultLogLevel,
		"log.format":            DefaultLogFormat,
		"metrics.addr":          "",
		"tracing.enabled":       false,
		"tracing.exporter":      DefaultExporter,
		"tracing.endpoint":      "",
		"tracing.sample_ratio":  1.0,
	}
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields. Booleans are left alone.
func ApplyDefaults(cfg *Config) {
	s := search.DefaultConfig()
	if cfg.Network.Exponent == 0 {
		cfg.Network.Exponent = DefaultExponent
	}
	if cfg.Network.Threshold == 0 {
		cfg.Network.Threshold = core.DefaultThreshold
	}
	if cfg.Stations.Count == 0 && cfg.Stations.Scenario == "" {
		cfg.Stations.Count = DefaultStationCount
	}
	if cfg.Stations.Radius == 0 {
		cfg.Stations.Radius = 1
	}
	if cfg.Stations.ScaleKm == 0 {
		cfg.Stations.ScaleKm = DefaultScaleKm
	}
	if cfg.Search.Low == 0 {
		cfg.Search.Low = s.Low
	}
	if cfg.Search.High == 0 {
		cfg.Search.High = s.High
	}
	if cfg.Search.Tolerance == 0 {
		cfg.Search.Tolerance = s.Tolerance
	}
	if cfg.Search.MaxIterations == 0 {
		cfg.Search.MaxIterations = s.MaxIterations
	}
	if cfg.Sweep.Tick == 0 {
		cfg.Sweep.Tick = DefaultSweepTick
	}
	if cfg.Sweep.Duration == 0 {
		cfg.Sweep.Duration = DefaultSweepLength
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = DefaultExporter
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}
}
