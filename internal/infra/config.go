package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all settings of one backtest run, loaded once before the
// simulation starts.
type Config struct {
	Exchange string `yaml:"exchange"`

	Backtest struct {
		TimeframeSec int    `yaml:"timeframe_sec"`
		NumOfTrade   int    `yaml:"num_of_trade"`
		Strategy     string `yaml:"strategy"`
	} `yaml:"backtest"`

	User struct {
		OrderDelaySec  float64            `yaml:"order_delay_sec"`
		OrderExpireSec float64            `yaml:"order_expire_sec"`
		OrderSize      decimal.Decimal    `yaml:"order_size"`
		PosLimitSize   decimal.Decimal    `yaml:"pos_limit_size"`
		Params         map[string]float64 `yaml:"params"`
	} `yaml:"user"`

	Report struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"report"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// LoadConfig reads and validates a config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv applies environment overrides on top of the file.
func overrideWithEnv(cfg *Config) {
	if path := os.Getenv("BAKT_DB_PATH"); path != "" {
		cfg.Report.DBPath = path
	}
	if level := os.Getenv("BAKT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Backtest.TimeframeSec <= 0 {
		return fmt.Errorf("timeframe_sec must be positive, got %d", c.Backtest.TimeframeSec)
	}
	if c.Backtest.NumOfTrade <= 0 {
		return fmt.Errorf("num_of_trade must be positive, got %d", c.Backtest.NumOfTrade)
	}
	if c.Backtest.Strategy == "" {
		return fmt.Errorf("a strategy name is required")
	}
	if c.User.OrderSize.IsZero() || c.User.OrderSize.IsNegative() {
		return fmt.Errorf("order_size must be positive, got %s", c.User.OrderSize)
	}
	if c.User.OrderDelaySec < 0 || c.User.OrderExpireSec < 0 {
		return fmt.Errorf("order delay and expiry must not be negative")
	}
	return nil
}
