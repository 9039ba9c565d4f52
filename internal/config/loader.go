package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "HYPERGRAPH"

// newViper builds a Viper instance that reads YAML, binds HYPERGRAPH_*
// variables and maps "search.max_iterations" to
// HYPERGRAPH_SEARCH_MAX_ITERATIONS.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads the YAML file at configPath, merges HYPERGRAPH_* overrides,
// applies defaults and validates. An empty path loads from the environment
// only.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from HYPERGRAPH_* variables and defaults.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// Overrides are values set on the command line. Empty fields are ignored.
type Overrides struct {
	LogLevel string
	Exponent float64
}

// Apply writes non-empty overrides into cfg and revalidates.
func (o Overrides) Apply(cfg *Config) error {
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.Exponent != 0 {
		cfg.Network.Exponent = o.Exponent
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
