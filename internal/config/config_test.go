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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
owner = "0x00000000000000000000000000000000000000a1"
providers = [
  "0x00000000000000000000000000000000000000b1",
  "0x00000000000000000000000000000000000000b2",
]
cooldown_seconds = 120
verbosity = 4
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cipherrate.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, uint64(120), cfg.CooldownSeconds)
	require.Equal(t, 4, cfg.Verbosity)
	require.Equal(t, common.HexToAddress("0xa1"), cfg.OwnerAddress())
	require.Equal(t, []common.Address{
		common.HexToAddress("0xb1"),
		common.HexToAddress("0xb2"),
	}, cfg.ProviderAddresses())
}

func TestLoadBadFile(t *testing.T) {
	_, err := Load(writeConfig(t, "owner = [not toml"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)

	t.Setenv(EnvOwner, "0x00000000000000000000000000000000000000a2")
	t.Setenv(EnvCooldown, "300")
	require.NoError(t, cfg.ApplyEnv())

	require.Equal(t, common.HexToAddress("0xa2"), cfg.OwnerAddress())
	require.Equal(t, uint64(300), cfg.CooldownSeconds)

	t.Setenv(EnvCooldown, "not-a-number")
	require.Error(t, cfg.ApplyEnv())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, sampleTOML))
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Owner = "not-an-address"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Owner = "0x0000000000000000000000000000000000000000"
	require.Error(t, cfg.Validate(), "zero owner must be rejected")

	cfg = base()
	cfg.Providers = append(cfg.Providers, "bogus")
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.CooldownSeconds = MaxCooldownSeconds + 1
	require.Error(t, cfg.Validate())

	require.NoError(t, base().Validate())
}
