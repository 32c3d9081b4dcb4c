package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
environment: development
server:
  port: 8080
oanda:
  api_token: test-token
  account_id: "001-001-1234567-001"
  pairs:
    - EUR_USD
    - GBP_USD
governance:
  approve_threshold: 0.60
  throttle_threshold: 0.40
risk:
  enabled: true
  edge_boost_multiplier: 1.35
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Environment != "development" {
		t.Fatalf("unexpected environment %q", c.Environment)
	}
	if len(c.Oanda.Pairs) != 2 || c.Oanda.Pairs[0] != "EUR_USD" {
		t.Fatalf("unexpected pairs %v", c.Oanda.Pairs)
	}
	if c.Governance.ApproveThreshold != 0.60 {
		t.Fatalf("unexpected approve threshold %v", c.Governance.ApproveThreshold)
	}
}

func TestLoadDriftThresholds(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML+`
drift:
  scan_interval: 5m
  min_trades: 25
  slope_window: 12
  expectancy_slope_threshold: 0.20
  session_entropy_threshold: 1.5
  min_confidence_for_entropy: 0.35
  drawdown_multiple: 3.5
  decay_fraction: 0.40
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Drift.SlopeWindow != 12 {
		t.Fatalf("slope_window not loaded, got %d", c.Drift.SlopeWindow)
	}
	if c.Drift.MinConfidenceForEntropy != 0.35 {
		t.Fatalf("min_confidence_for_entropy not loaded, got %v", c.Drift.MinConfidenceForEntropy)
	}
	if c.Drift.DecayFraction != 0.40 {
		t.Fatalf("decay_fraction not loaded, got %v", c.Drift.DecayFraction)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no environment", `
oanda:
  api_token: t
  pairs: [EUR_USD]
`},
		{"no pairs", `
environment: dev
oanda:
  api_token: t
`},
		{"no token", `
environment: dev
oanda:
  pairs: [EUR_USD]
`},
		{"inverted thresholds", `
environment: dev
oanda:
  api_token: t
  pairs: [EUR_USD]
governance:
  approve_threshold: 0.40
  throttle_threshold: 0.60
`},
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("OANDA_API_TOKEN", "env-token")
	t.Setenv("PAIRS", "USD_JPY,AUD_USD")
	t.Setenv("DIRECTION_SERVICE_URL", "http://direction:9000")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Oanda.APIToken != "env-token" {
		t.Fatalf("env token must override, got %q", c.Oanda.APIToken)
	}
	if len(c.Oanda.Pairs) != 2 || c.Oanda.Pairs[0] != "USD_JPY" {
		t.Fatalf("env pairs must override, got %v", c.Oanda.Pairs)
	}
	if c.Direction.ServiceURL != "http://direction:9000" {
		t.Fatalf("env direction url must override, got %q", c.Direction.ServiceURL)
	}
}
