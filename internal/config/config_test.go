package config_test

import (
	"StableTreasury/internal/config"
	"os"
	"path/filepath"
	"testing"
)

// ============================================================================
// Test: loading and defaults
// ============================================================================

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("nats url: got %q", cfg.NATS.URL)
	}
	if cfg.Treasury.StableAsset != "AUSD" {
		t.Errorf("stable asset: got %q, want AUSD", cfg.Treasury.StableAsset)
	}
	if cfg.Schedule.CycleCron == "" {
		t.Error("cycle cron should have a default")
	}
	if cfg.Persistence.BatchSize == 0 {
		t.Error("persistence batch size should have a default")
	}
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
postgres:
  dsn: postgres://localhost/treasury
treasury:
  stable_asset: AUSD
  surplus_auction_fixed_size: 200
  surplus_buffer_size: 100
  max_auctions_count: 5
  collateral_auction_max_sizes:
    DOT: 1000
    XBTC: 10
exchange:
  rates:
    - supply: DOT
      target: AUSD
      num: 3
      den: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Treasury.SurplusAuctionFixedSize != 200 {
		t.Errorf("surplus fixed size: got %d, want 200", cfg.Treasury.SurplusAuctionFixedSize)
	}
	if cfg.Treasury.MaxAuctionsCount != 5 {
		t.Errorf("max auctions: got %d, want 5", cfg.Treasury.MaxAuctionsCount)
	}
	if got := cfg.Treasury.CollateralAuctionMaxSizes["DOT"]; got != 1000 {
		t.Errorf("DOT max size: got %d, want 1000", got)
	}
	if len(cfg.Exchange.Rates) != 1 || cfg.Exchange.Rates[0].Num != 3 {
		t.Errorf("rates: got %+v", cfg.Exchange.Rates)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TREASURY_POSTGRES_DSN", "postgres://override/db")
	t.Setenv("TREASURY_STABLE_ASSET", "KUSD")
	t.Setenv("TREASURY_MAX_AUCTIONS_COUNT", "7")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Postgres.DSN != "postgres://override/db" {
		t.Errorf("dsn: got %q", cfg.Postgres.DSN)
	}
	if cfg.Treasury.StableAsset != "KUSD" {
		t.Errorf("stable asset: got %q, want KUSD", cfg.Treasury.StableAsset)
	}
	if cfg.Treasury.MaxAuctionsCount != 7 {
		t.Errorf("max auctions: got %d, want 7", cfg.Treasury.MaxAuctionsCount)
	}
}

// ============================================================================
// Test: validation
// ============================================================================

func TestValidate_RequiresDSN(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("missing postgres dsn should fail validation")
	}
}

func TestValidate_RejectsZeroRateDenominator(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Postgres.DSN = "postgres://localhost/treasury"
	cfg.Exchange.Rates = []config.ExchangeRate{{Supply: "DOT", Target: "AUSD", Num: 1, Den: 0}}

	if err := cfg.Validate(); err == nil {
		t.Error("zero rate denominator should fail validation")
	}
}
