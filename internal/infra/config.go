package infra

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config carries all process configuration. LoadConfig loads it from YAML,
// then lets a .env file and the real environment override select fields.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	HTTP struct {
		Port int `yaml:"port"`
	} `yaml:"http"`

	Store struct {
		StatePath  string `yaml:"state_path"`
		LedgerPath string `yaml:"ledger_path"`
	} `yaml:"store"`

	Defaults struct {
		Buy  SideDefaults `yaml:"buy"`
		Sell SideDefaults `yaml:"sell"`
	} `yaml:"defaults"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// SideDefaults is the YAML shape of one side's boot-time SideSettings.
type SideDefaults struct {
	LimitPrice decimal.Decimal `yaml:"limit_price"`
	TPType     string          `yaml:"tp_type"`
	TPValue    decimal.Decimal `yaml:"tp_value"`
	HedgeValue decimal.Decimal `yaml:"hedge_value"`
	Rows       []RowDefault    `yaml:"rows"`
}

// RowDefault is one grid row as configured in YAML; Index is assigned by
// position when converted to domain.GridRow.
type RowDefault struct {
	DollarGap decimal.Decimal `yaml:"dollar_gap"`
	Lots      decimal.Decimal `yaml:"lots"`
	Alert     bool            `yaml:"alert"`
}

// ToSideSettings converts YAML defaults into the domain type the engine
// actually operates on.
func (d SideDefaults) ToSideSettings() domain.SideSettings {
	s := domain.NewSideSettings()
	s.LimitPrice = d.LimitPrice
	s.TPType = domain.TPType(d.TPType)
	s.TPValue = d.TPValue
	s.HedgeValue = d.HedgeValue
	s.Rows = make([]domain.GridRow, len(d.Rows))
	for i, r := range d.Rows {
		s.Rows[i] = domain.GridRow{Index: i, DollarGap: r.DollarGap, Lots: r.Lots, Alert: r.Alert}
	}
	return s
}

// ToUserSettings converts the configured defaults into the domain settings
// a fresh boot (no existing state file) seeds the store with.
func (c *Config) ToUserSettings() domain.UserSettings {
	return domain.UserSettings{
		Buy:  c.Defaults.Buy.ToSideSettings(),
		Sell: c.Defaults.Sell.ToSideSettings(),
	}
}

// LoadConfig reads path, applies a .env file (if present) and then process
// env overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	// Missing .env is routine outside development; godotenv.Load's error
	// is deliberately ignored, matching the pack's own optional-.env idiom.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.Store.StatePath == "" {
		return fmt.Errorf("store.state_path must not be empty")
	}
	if c.Store.LedgerPath == "" {
		return fmt.Errorf("store.ledger_path must not be empty")
	}
	for _, side := range []struct {
		name string
		d    SideDefaults
	}{{"buy", c.Defaults.Buy}, {"sell", c.Defaults.Sell}} {
		if err := side.d.ToSideSettings().ValidateAgainst(0); err != nil {
			return fmt.Errorf("defaults.%s: %w", side.name, err)
		}
	}
	return nil
}

// overrideWithEnv applies process environment overrides on top of the
// YAML-loaded config (and whatever a .env file already populated via
// godotenv.Load, which writes straight into the process environment).
func overrideWithEnv(cfg *Config) {
	if port := os.Getenv("DCA_HTTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.HTTP.Port = p
		}
	}
	if path := os.Getenv("DCA_STATE_PATH"); path != "" {
		cfg.Store.StatePath = path
	}
	if path := os.Getenv("DCA_LEDGER_PATH"); path != "" {
		cfg.Store.LedgerPath = path
	}
	if level := os.Getenv("DCA_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
