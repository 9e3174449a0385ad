package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "venues.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ResolvesCredentialsFromEnv(t *testing.T) {
	os.Setenv("TESTVENUE_API_KEY", "test-key")
	os.Setenv("TESTVENUE_SECRET_KEY", "test-secret")
	defer os.Unsetenv("TESTVENUE_API_KEY")
	defer os.Unsetenv("TESTVENUE_SECRET_KEY")

	path := writeTempConfig(t, `
venues:
  mexc:
    name: mexc
    rest_base_url: https://api.mexc.com
    ws_url: wss://wbs-api.mexc.com/ws
    env_prefix: TESTVENUE
    rate_limit_rps: 20
    rate_limit_burst: 20
    timeout_ms: 5000
    max_concurrent: 10
arbitrage:
  spot_keys: [mexc]
  delta_tolerance_pct: 0.1
  emergency_rebalance_threshold_usdt: 5
  opportunity_freshness_ms: 2000
  max_entry_cost_pct: 0.5
  min_profit_pct: 0.3
  max_hold_hours: 24
  min_switch_profit_pct: 0.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	v, ok := cfg.Venue("mexc")
	require.True(t, ok, "expected mexc venue to be present")
	assert.Equal(t, "test-key", v.APIKey)
	assert.Equal(t, "test-secret", v.SecretKey)
	assert.EqualValues(t, 5000, v.Timeout().Milliseconds())
	assert.EqualValues(t, 2000, cfg.Arbitrage.OpportunityFreshness().Milliseconds())
}

func TestLoad_RejectsInvalidVenue(t *testing.T) {
	path := writeTempConfig(t, `
venues:
  broken:
    name: broken
    rest_base_url: ""
    rate_limit_rps: 5
    rate_limit_burst: 5
    timeout_ms: 1000
    max_concurrent: 1
`)
	_, err := Load(path)
	assert.Error(t, err, "expected error for venue with empty rest_base_url")
}

func TestVenueConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     VenueConfig
		wantErr bool
	}{
		{"valid", VenueConfig{Name: "v", RESTBaseURL: "https://x", RateLimitRPS: 10, RateLimitBurst: 10, TimeoutMS: 1000, MaxConcurrent: 5}, false},
		{"missing base url", VenueConfig{Name: "v", RateLimitRPS: 10, RateLimitBurst: 10, TimeoutMS: 1000, MaxConcurrent: 5}, true},
		{"burst below rps", VenueConfig{Name: "v", RESTBaseURL: "https://x", RateLimitRPS: 10, RateLimitBurst: 5, TimeoutMS: 1000, MaxConcurrent: 5}, true},
		{"zero timeout", VenueConfig{Name: "v", RESTBaseURL: "https://x", RateLimitRPS: 10, RateLimitBurst: 10, TimeoutMS: 0, MaxConcurrent: 5}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
