package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
)

const stablePoolYAML = `
log-level: debug
out: ./data/quotes.jsonl
pool:
  id: usd-3pool
  type: stableswap
  commission-rate: "0.0005"
  imbalance-fee: "0.001"
  amp:
    initial: 100
    target: 200
    start-ramp: "2024-01-01T00:00:00Z"
    stop-ramp: 1704153600
  assets:
    - denom: uusdc
      decimals: 6
      reserve: "1000000000"
    - denom: dai
      decimals: 18
      reserve: "1000000000000000000000"
  total-share: "2000000000"
  timestamp: 1704100000
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadStablePool(t *testing.T) {
	cfg, err := Load(writeConfig(t, stablePoolYAML), nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Out != "./data/quotes.jsonl" || cfg.SnapshotSource != SourceConfig {
		t.Fatalf("unexpected top-level config: %+v", cfg)
	}

	pool, err := cfg.Pool.BuildConfig()
	if err != nil {
		t.Fatalf("build config failed: %v", err)
	}
	if pool.Type != model.PoolTypeStableSwap {
		t.Fatalf("unexpected pool type %q", pool.Type)
	}
	if !pool.CommissionRate.Equal(fixed.MustParse("0.0005")) {
		t.Fatalf("unexpected commission %s", pool.CommissionRate)
	}
	if pool.Amp.StartRampTs != 1704067200 || pool.Amp.StopRampTs != 1704153600 {
		t.Fatalf("unexpected ramp: %+v", pool.Amp)
	}

	snap, err := cfg.Pool.BuildSnapshot()
	if err != nil {
		t.Fatalf("build snapshot failed: %v", err)
	}
	if len(snap.Assets) != 2 || snap.Decimals[1] != 18 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Assets[1].Amount.Dec() != "1000000000000000000000" {
		t.Fatalf("unexpected dai reserve %s", snap.Assets[1].Amount.Dec())
	}
	if snap.TotalShare.Uint64() != 2_000_000_000 || snap.Timestamp != 1704100000 {
		t.Fatalf("unexpected share or timestamp: %+v", snap)
	}
}

func TestLoadEnvAndFlagOverrides(t *testing.T) {
	t.Setenv("AMM_POOL_COMMISSION_RATE", "0.01")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("timestamp", "", "")
	if err := flags.Parse([]string{"--timestamp", "1704200000"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(writeConfig(t, stablePoolYAML), flags)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Pool.CommissionRate != "0.01" {
		t.Fatalf("env override ignored: %q", cfg.Pool.CommissionRate)
	}
	if cfg.Pool.Timestamp != "1704200000" {
		t.Fatalf("flag override ignored: %q", cfg.Pool.Timestamp)
	}
}

func TestBuildConfigRejectsBadValues(t *testing.T) {
	settings := PoolSettings{ID: "p", Type: "xyk", CommissionRate: "1.5"}
	if _, err := settings.BuildConfig(); !errors.Is(err, model.ErrInvalidPool) {
		t.Fatalf("expected ErrInvalidPool, got %v", err)
	}

	settings.CommissionRate = "0.0.3"
	if _, err := settings.BuildConfig(); !errors.Is(err, fixed.ErrInvalidDecimal) {
		t.Fatalf("expected ErrInvalidDecimal, got %v", err)
	}

	settings.CommissionRate = "0.003"
	settings.Type = "weighted"
	if _, err := settings.BuildConfig(); !errors.Is(err, model.ErrInvalidPool) {
		t.Fatalf("expected ErrInvalidPool for unknown type, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-01T00:00:00Z")
	if err != nil || ts != 1704067200 {
		t.Fatalf("unexpected RFC3339 result: %d (%v)", ts, err)
	}
	ts, err = ParseTimestamp("1700000000")
	if err != nil || ts != 1700000000 {
		t.Fatalf("unexpected unix result: %d (%v)", ts, err)
	}
	ts, err = ParseTimestamp("")
	if err != nil || ts != 0 {
		t.Fatalf("expected zero for empty input: %d (%v)", ts, err)
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatalf("expected error for bad timestamp")
	}
}
