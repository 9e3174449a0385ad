// Package config loads typed per-venue configuration from YAML, resolving
// secret fields from the environment once at process start. Grounded on
// sawpanic-cryptorun's internal/config/providers.go (YAML-backed
// ProvidersConfig + per-section Validate methods), generalized from the
// teacher's single providers.yaml shape into one venue-keyed config with
// credentials pulled from the environment rather than committed to disk.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// VenueConfig is one venue's REST/WS endpoints, rate limits, and timeouts.
// API credentials are never unmarshalled from YAML: they are resolved from
// the environment via the EnvPrefix, matching the Open Question decision
// to keep secrets out of any config file that might end up in version
// control.
type VenueConfig struct {
	Name          string        `yaml:"name"`
	RESTBaseURL   string        `yaml:"rest_base_url"`
	WSURL         string        `yaml:"ws_url"`
	FuturesWSURL  string        `yaml:"futures_ws_url,omitempty"`
	EnvPrefix     string        `yaml:"env_prefix"` // e.g. "MEXC" -> MEXC_API_KEY / MEXC_SECRET_KEY
	RateLimitRPS  float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int          `yaml:"rate_limit_burst"`
	TimeoutMS     int           `yaml:"timeout_ms"`
	MaxConcurrent int           `yaml:"max_concurrent"`

	APIKey    string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// Timeout returns the configured request timeout as a time.Duration.
func (v VenueConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutMS) * time.Millisecond
}

// Validate enforces the bounds every venue config must satisfy before use,
// matching the teacher's per-section Validate style in providers.go.
func (v VenueConfig) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("venue config: name cannot be empty")
	}
	if v.RESTBaseURL == "" {
		return fmt.Errorf("venue %s: rest_base_url cannot be empty", v.Name)
	}
	if v.RateLimitRPS <= 0 {
		return fmt.Errorf("venue %s: rate_limit_rps must be positive, got %f", v.Name, v.RateLimitRPS)
	}
	if v.RateLimitBurst < int(v.RateLimitRPS) {
		return fmt.Errorf("venue %s: rate_limit_burst (%d) must be >= rate_limit_rps (%f)", v.Name, v.RateLimitBurst, v.RateLimitRPS)
	}
	if v.TimeoutMS <= 0 {
		return fmt.Errorf("venue %s: timeout_ms must be positive, got %d", v.Name, v.TimeoutMS)
	}
	if v.MaxConcurrent <= 0 {
		return fmt.Errorf("venue %s: max_concurrent must be positive, got %d", v.Name, v.MaxConcurrent)
	}
	return nil
}

// ArbitrageConfig tunes the orchestrator (C12), mirroring arb.Config's
// tunables so they can be set from the same YAML file as the venues.
type ArbitrageConfig struct {
	SpotKeys                        []string `yaml:"spot_keys"`
	DeltaTolerancePct                float64  `yaml:"delta_tolerance_pct"`
	EmergencyRebalanceThresholdUsdt  float64  `yaml:"emergency_rebalance_threshold_usdt"`
	OpportunityFreshnessMS           int      `yaml:"opportunity_freshness_ms"`
	MaxEntryCostPct                  float64  `yaml:"max_entry_cost_pct"`
	MinProfitPct                     float64  `yaml:"min_profit_pct"`
	MaxHoldHours                     float64  `yaml:"max_hold_hours"`
	MinSwitchProfitPct               float64  `yaml:"min_switch_profit_pct"`
}

// OpportunityFreshness returns the configured freshness window as a
// time.Duration.
func (a ArbitrageConfig) OpportunityFreshness() time.Duration {
	return time.Duration(a.OpportunityFreshnessMS) * time.Millisecond
}

// Config is the top-level, process-wide configuration document.
type Config struct {
	Venues    map[string]VenueConfig `yaml:"venues"`
	Arbitrage ArbitrageConfig        `yaml:"arbitrage"`
}

// Load reads path as YAML, validates every venue section, and resolves
// each venue's API credentials from <EnvPrefix>_API_KEY / <EnvPrefix>_SECRET_KEY.
// Credentials are read exactly once here, never again on the hot path, per
// spec's ambient-stack requirement that secrets don't leak into request-path
// code.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	for name, venue := range cfg.Venues {
		venue.Name = name
		if venue.EnvPrefix != "" {
			venue.APIKey = os.Getenv(venue.EnvPrefix + "_API_KEY")
			venue.SecretKey = os.Getenv(venue.EnvPrefix + "_SECRET_KEY")
		}
		if err := venue.Validate(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg.Venues[name] = venue
	}

	return &cfg, nil
}

// Venue looks up one venue's config by name.
func (c *Config) Venue(name string) (VenueConfig, bool) {
	v, ok := c.Venues[name]
	return v, ok
}
