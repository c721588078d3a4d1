// Package config loads lottery engine configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the operational bounds for the lottery engine.
type Config struct {
	// PoolAccount is the identity holding collected funds.
	PoolAccount string `yaml:"pool_account"`

	// Round length window for new rounds.
	MinRoundLength time.Duration `yaml:"min_round_length"`
	MaxRoundLength time.Duration `yaml:"max_round_length"`

	// Ticket price bounds, in smallest token units.
	MinTicketPrice int64 `yaml:"min_ticket_price"`
	MaxTicketPrice int64 `yaml:"max_ticket_price"`

	// MinDiscountDivisor bounds the bulk discount saturation.
	MinDiscountDivisor int64 `yaml:"min_discount_divisor"`

	// MaxTreasuryFeeBps caps the treasury cut, in basis points.
	MaxTreasuryFeeBps int64 `yaml:"max_treasury_fee_bps"`

	// MaxTicketsPerCall caps bulk buys and claims.
	MaxTicketsPerCall int `yaml:"max_tickets_per_call"`

	LogLevel string `yaml:"log_level"`
}

// UnmarshalYAML decodes the config over existing values, so absent keys keep
// their defaults. Durations are read as strings like "4h5m".
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		PoolAccount        string `yaml:"pool_account"`
		MinRoundLength     string `yaml:"min_round_length"`
		MaxRoundLength     string `yaml:"max_round_length"`
		MinTicketPrice     *int64 `yaml:"min_ticket_price"`
		MaxTicketPrice     *int64 `yaml:"max_ticket_price"`
		MinDiscountDivisor *int64 `yaml:"min_discount_divisor"`
		MaxTreasuryFeeBps  *int64 `yaml:"max_treasury_fee_bps"`
		MaxTicketsPerCall  *int   `yaml:"max_tickets_per_call"`
		LogLevel           string `yaml:"log_level"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.PoolAccount != "" {
		c.PoolAccount = raw.PoolAccount
	}
	if raw.MinRoundLength != "" {
		d, err := time.ParseDuration(raw.MinRoundLength)
		if err != nil {
			return fmt.Errorf("min_round_length: %w", err)
		}
		c.MinRoundLength = d
	}
	if raw.MaxRoundLength != "" {
		d, err := time.ParseDuration(raw.MaxRoundLength)
		if err != nil {
			return fmt.Errorf("max_round_length: %w", err)
		}
		c.MaxRoundLength = d
	}
	if raw.MinTicketPrice != nil {
		c.MinTicketPrice = *raw.MinTicketPrice
	}
	if raw.MaxTicketPrice != nil {
		c.MaxTicketPrice = *raw.MaxTicketPrice
	}
	if raw.MinDiscountDivisor != nil {
		c.MinDiscountDivisor = *raw.MinDiscountDivisor
	}
	if raw.MaxTreasuryFeeBps != nil {
		c.MaxTreasuryFeeBps = *raw.MaxTreasuryFeeBps
	}
	if raw.MaxTicketsPerCall != nil {
		c.MaxTicketsPerCall = *raw.MaxTicketsPerCall
	}
	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}
	return nil
}

// Default returns the configuration matching the reference deployment.
func Default() Config {
	return Config{
		PoolAccount:        "delott-pool",
		MinRoundLength:     4*time.Hour - 5*time.Minute,
		MaxRoundLength:     4*24*time.Hour + 5*time.Minute,
		MinTicketPrice:     5_000,
		MaxTicketPrice:     50_000_000_000,
		MinDiscountDivisor: 300,
		MaxTreasuryFeeBps:  3_000,
		MaxTicketsPerCall:  100,
		LogLevel:           "info",
	}
}

// Load reads configuration from the default path.
func Load() (Config, error) {
	return LoadFromPath(filepath.Join("config", "delott.yaml"))
}

// LoadFromPath reads configuration from a specific file.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault reads configuration, falling back to defaults if the file is
// missing or invalid.
func LoadOrDefault() Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks internal consistency of the configuration.
func (c Config) Validate() error {
	if c.PoolAccount == "" {
		return fmt.Errorf("pool_account is required")
	}
	if c.MinRoundLength <= 0 || c.MaxRoundLength < c.MinRoundLength {
		return fmt.Errorf("invalid round length window [%s, %s]", c.MinRoundLength, c.MaxRoundLength)
	}
	if c.MinTicketPrice <= 0 || c.MaxTicketPrice < c.MinTicketPrice {
		return fmt.Errorf("invalid ticket price bounds [%d, %d]", c.MinTicketPrice, c.MaxTicketPrice)
	}
	if c.MinDiscountDivisor <= 0 {
		return fmt.Errorf("min_discount_divisor must be positive")
	}
	if c.MaxTreasuryFeeBps < 0 || c.MaxTreasuryFeeBps > 10_000 {
		return fmt.Errorf("max_treasury_fee_bps out of range: %d", c.MaxTreasuryFeeBps)
	}
	if c.MaxTicketsPerCall <= 0 {
		return fmt.Errorf("max_tickets_per_call must be positive")
	}
	return nil
}
