// Copyright 2025 The cipherrate Authors
// This file is part of the cipherrate library.
//
// The cipherrate library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cipherrate library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cipherrate library. If not, see <http://www.gnu.org/licenses/>.

// Package config loads and validates the ratenode configuration.
// Priority, lowest to highest: built-in defaults, TOML file,
// CIPHERRATE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// Environment variable names recognized by ApplyEnv.
const (
	EnvOwner    = "CIPHERRATE_OWNER"
	EnvCooldown = "CIPHERRATE_COOLDOWN"
)

// MaxCooldownSeconds bounds the configurable cooldown: anything above a
// week locks every address out for longer than a batch plausibly lives.
const MaxCooldownSeconds = 7 * 24 * 3600

// Config is the ratenode configuration.
type Config struct {
	// Owner is the vault owner address, hex encoded.
	Owner string `toml:"owner"`
	// Providers are the initially allow-listed provider addresses.
	Providers []string `toml:"providers"`
	// CooldownSeconds is the per-address action cooldown.
	CooldownSeconds uint64 `toml:"cooldown_seconds"`
	// Verbosity is the log level (0=crit .. 5=trace), geth convention.
	Verbosity int `toml:"verbosity"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		CooldownSeconds: 60,
		Verbosity:       3,
	}
}

// Load reads a TOML config file over the defaults. An empty path returns
// the defaults untouched.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from CIPHERRATE_* environment variables.
func (cfg *Config) ApplyEnv() error {
	if v := os.Getenv(EnvOwner); v != "" {
		cfg.Owner = v
	}
	if v := os.Getenv(EnvCooldown); v != "" {
		secs, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCooldown, err)
		}
		cfg.CooldownSeconds = secs
	}
	return nil
}

// Validate checks the merged configuration before any of it is used.
func (cfg *Config) Validate() error {
	if !common.IsHexAddress(cfg.Owner) {
		return fmt.Errorf("owner %q is not a hex address", cfg.Owner)
	}
	if common.HexToAddress(cfg.Owner) == (common.Address{}) {
		return fmt.Errorf("owner must not be the zero address")
	}
	for _, p := range cfg.Providers {
		if !common.IsHexAddress(p) {
			return fmt.Errorf("provider %q is not a hex address", p)
		}
	}
	if cfg.CooldownSeconds > MaxCooldownSeconds {
		return fmt.Errorf("cooldown %d exceeds maximum %d", cfg.CooldownSeconds, uint64(MaxCooldownSeconds))
	}
	return nil
}

// OwnerAddress returns the parsed owner address. Call Validate first.
func (cfg *Config) OwnerAddress() common.Address {
	return common.HexToAddress(cfg.Owner)
}

// ProviderAddresses returns the parsed provider addresses.
func (cfg *Config) ProviderAddresses() []common.Address {
	out := make([]common.Address, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		out = append(out, common.HexToAddress(p))
	}
	return out
}
