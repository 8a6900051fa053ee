package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all treasury daemon configuration.
type Config struct {
	Postgres struct {
		DSN           string `yaml:"dsn"`
		MigrationsDir string `yaml:"migrations_dir"`
	} `yaml:"postgres"`
	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Schedule struct {
		CycleCron    string `yaml:"cycle_cron"`
		SnapshotCron string `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
	Treasury struct {
		StableAsset                  string            `yaml:"stable_asset"`
		SurplusAuctionFixedSize      uint64            `yaml:"surplus_auction_fixed_size"`
		SurplusBufferSize            uint64            `yaml:"surplus_buffer_size"`
		InitialAmountPerDebitAuction uint64            `yaml:"initial_amount_per_debit_auction"`
		DebitAuctionFixedSize        uint64            `yaml:"debit_auction_fixed_size"`
		MaxAuctionsCount             uint32            `yaml:"max_auctions_count"`
		CollateralAuctionMaxSizes    map[string]uint64 `yaml:"collateral_auction_max_sizes"`
	} `yaml:"treasury"`
	Exchange struct {
		Rates []ExchangeRate `yaml:"rates"`
	} `yaml:"exchange"`
	Persistence struct {
		BatchSize    int `yaml:"batch_size"`
		FlushMillis  int `yaml:"flush_millis"`
		PublishDepth int `yaml:"publish_depth"`
	} `yaml:"persistence"`
}

// ExchangeRate configures one fixed-rate trading pair for the
// collateral swap venue. Rate is num/den target units per supply unit.
type ExchangeRate struct {
	Supply string `yaml:"supply"`
	Target string `yaml:"target"`
	Num    uint64 `yaml:"num"`
	Den    uint64 `yaml:"den"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TREASURY_POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("TREASURY_MIGRATIONS_DIR"); v != "" {
		cfg.Postgres.MigrationsDir = v
	}
	if v := os.Getenv("TREASURY_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("TREASURY_METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	if v := os.Getenv("TREASURY_CYCLE_CRON"); v != "" {
		cfg.Schedule.CycleCron = v
	}
	if v := os.Getenv("TREASURY_STABLE_ASSET"); v != "" {
		cfg.Treasury.StableAsset = v
	}
	if v := os.Getenv("TREASURY_MAX_AUCTIONS_COUNT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Treasury.MaxAuctionsCount = uint32(n)
		}
	}

	// Defaults
	if cfg.Postgres.MigrationsDir == "" {
		cfg.Postgres.MigrationsDir = "migrations"
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9109"
	}
	if cfg.Schedule.CycleCron == "" {
		cfg.Schedule.CycleCron = "@every 1m"
	}
	if cfg.Schedule.SnapshotCron == "" {
		cfg.Schedule.SnapshotCron = "@every 5m"
	}
	if cfg.Treasury.StableAsset == "" {
		cfg.Treasury.StableAsset = "AUSD"
	}
	if cfg.Persistence.BatchSize == 0 {
		cfg.Persistence.BatchSize = 200
	}
	if cfg.Persistence.FlushMillis == 0 {
		cfg.Persistence.FlushMillis = 500
	}
	if cfg.Persistence.PublishDepth == 0 {
		cfg.Persistence.PublishDepth = 4096
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.Treasury.StableAsset == "" {
		return fmt.Errorf("treasury.stable_asset is required")
	}
	for asset := range c.Treasury.CollateralAuctionMaxSizes {
		if asset == "" {
			return fmt.Errorf("collateral_auction_max_sizes: empty asset name")
		}
	}
	for i, r := range c.Exchange.Rates {
		if r.Supply == "" || r.Target == "" {
			return fmt.Errorf("exchange.rates[%d]: supply and target are required", i)
		}
		if r.Den == 0 {
			return fmt.Errorf("exchange.rates[%d]: den must be nonzero", i)
		}
	}
	return nil
}
