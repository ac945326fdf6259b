package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mingli/atrader/backtest"
)

// Config is the complete simulation configuration: which instruments to
// test, over what range, with which rule variants, and where results go.
type Config struct {
	Data       DataConfig       `json:"data" yaml:"data"`
	Account    AccountConfig    `json:"account" yaml:"account"`
	Strategies []StrategyConfig `json:"strategies" yaml:"strategies"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// DataConfig describes the bar source.
type DataConfig struct {
	// Source is "remote" (daily kline endpoint) or "csv" (local files).
	Source string `json:"source" yaml:"source"`
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`

	Start string `json:"start" yaml:"start"` // inclusive, YYYY-MM-DD
	End   string `json:"end,omitempty" yaml:"end,omitempty"`

	Stocks []StockConfig `json:"stocks" yaml:"stocks"`

	RetryAttempts int     `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty"`
	RetryDelay    string  `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
	RateLimit     float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"` // requests/second
}

// StockConfig names one instrument under test.
type StockConfig struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// AccountConfig holds the simulated account parameters shared by every
// strategy variant.
type AccountConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	LotSize        int     `json:"lot_size" yaml:"lot_size"`
}

// StrategyConfig is one rule variant, in the shape of the original config
// files: windows, exit band ratios, cooldown.
type StrategyConfig struct {
	Name         string  `json:"name" yaml:"name"`
	MAShort      int     `json:"ma_short" yaml:"ma_short"`
	MALong       int     `json:"ma_long" yaml:"ma_long"`
	UpRatio      float64 `json:"up_ratio" yaml:"up_ratio"`
	DownRatio    float64 `json:"down_ratio" yaml:"down_ratio"`
	CooldownDays int     `json:"cooldown_days" yaml:"cooldown_days"`
	ConfirmLag   bool    `json:"confirm_lag,omitempty" yaml:"confirm_lag,omitempty"`
}

// JournalConfig selects the persistence backend.
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RunsFile         string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
}

// Engine maps one variant plus the shared account settings onto an engine
// configuration.
func (s StrategyConfig) Engine(acct AccountConfig) backtest.Config {
	return backtest.Config{
		ShortWindow:    s.MAShort,
		LongWindow:     s.MALong,
		InitialBalance: acct.InitialBalance,
		TakeProfitPct:  s.UpRatio,
		StopLossPct:    s.DownRatio,
		LotSize:        acct.LotSize,
		CooldownDays:   s.CooldownDays,
		ConfirmLag:     s.ConfirmLag,
	}
}

// Range parses the configured date range. A missing end means today.
func (d DataConfig) Range() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", d.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: bad data.start %q: %w", d.Start, err)
	}
	if d.End == "" {
		return start, time.Now(), nil
	}
	end, err = time.Parse("2006-01-02", d.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: bad data.end %q: %w", d.End, err)
	}
	return start, end, nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, YAML for .yaml/.yml and JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration before anything runs; every strategy
// variant must itself survive engine validation.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "remote":
	case "csv":
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir is required for csv source")
		}
	default:
		return fmt.Errorf("data.source must be 'remote' or 'csv', got %q", c.Data.Source)
	}
	if c.Data.Start == "" {
		return fmt.Errorf("data.start is required")
	}
	if _, _, err := c.Data.Range(); err != nil {
		return err
	}
	if len(c.Data.Stocks) == 0 {
		return fmt.Errorf("data.stocks must name at least one instrument")
	}
	for i, s := range c.Data.Stocks {
		if s.Code == "" {
			return fmt.Errorf("data.stocks[%d].code is required", i)
		}
	}
	if c.Data.RetryAttempts < 0 {
		return fmt.Errorf("data.retry_attempts must be non-negative")
	}
	if c.Data.RetryDelay != "" {
		if _, err := time.ParseDuration(c.Data.RetryDelay); err != nil {
			return fmt.Errorf("bad data.retry_delay %q: %w", c.Data.RetryDelay, err)
		}
	}

	if c.Account.InitialBalance <= 0 {
		return fmt.Errorf("account.initial_balance must be positive")
	}
	if c.Account.LotSize < 1 {
		return fmt.Errorf("account.lot_size must be >= 1")
	}

	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy variant is required")
	}
	for i, s := range c.Strategies {
		if s.Name == "" {
			return fmt.Errorf("strategies[%d].name is required", i)
		}
		ecfg := s.Engine(c.Account)
		ecfg.Normalize()
		if err := ecfg.Validate(); err != nil {
			return fmt.Errorf("strategies[%d] (%s): %w", i, s.Name, err)
		}
	}

	switch c.Journal.Type {
	case "", "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.TransactionsFile == "" {
			return fmt.Errorf("journal runs_file and transactions_file required for csv journal")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none', got %q", c.Journal.Type)
	}

	return nil
}

// RetryDelayDuration returns the parsed retry delay, defaulting to 5s.
func (d DataConfig) RetryDelayDuration() time.Duration {
	if d.RetryDelay == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(d.RetryDelay)
	if err != nil {
		return 5 * time.Second
	}
	return dur
}

// Default returns a starter configuration with the observed parameters.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Source:        "remote",
			Start:         "2022-01-01",
			Stocks:        []StockConfig{{Code: "600030", Name: "中信证券"}},
			RetryAttempts: 5,
			RetryDelay:    "5s",
			RateLimit:     2,
		},
		Account: AccountConfig{
			InitialBalance: 100_000,
			LotSize:        100,
		},
		Strategies: []StrategyConfig{
			{
				Name:         "strategy1",
				MAShort:      20,
				MALong:       50,
				UpRatio:      0.10,
				DownRatio:    0.05,
				CooldownDays: 60,
			},
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./atrader.sqlite",
		},
	}
}
