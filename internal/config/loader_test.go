package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sendora-labs/sendora/internal/networks"
	"github.com/sendora-labs/sendora/internal/output"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileConfigMissingIsNotAnError(t *testing.T) {
	loader := NewLoader(t.TempDir(), "", output.NewLogger())
	cfg, path, err := loader.LoadFileConfig()
	require.NoError(t, err)
	require.Nil(t, cfg)
	require.Empty(t, path)
}

func TestLoadFileConfigFromHome(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "config.toml", `
network = "hedera"
approval = "manual"
confirm_timeout = "90s"
verbose = true
`)

	loader := NewLoader(home, "", output.NewLogger())
	cfg, path, err := loader.LoadFileConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, filepath.Join(home, "config.toml"), path)
	require.False(t, cfg.IsEmpty())
	require.Equal(t, "hedera", *cfg.Network)
	require.Equal(t, "manual", *cfg.Approval)
	require.Equal(t, "90s", *cfg.ConfirmTimeout)
	require.True(t, *cfg.Verbose)
	require.Nil(t, cfg.JSON)
}

func TestLoadFileConfigExplicitOverridesHome(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "config.toml", `
network = "hardhat"
verbose = true
`)
	explicit := writeConfig(t, t.TempDir(), "override.toml", `
network = "sepolia"
`)

	loader := NewLoader(home, explicit, output.NewLogger())
	cfg, path, err := loader.LoadFileConfig()
	require.NoError(t, err)
	require.Equal(t, explicit, path)

	// The explicit file wins where set; unset fields keep the home value.
	require.Equal(t, "sepolia", *cfg.Network)
	require.True(t, *cfg.Verbose)
}

func TestLoadFileConfigExplicitMustExist(t *testing.T) {
	loader := NewLoader(t.TempDir(), filepath.Join(t.TempDir(), "missing.toml"), output.NewLogger())
	_, _, err := loader.LoadFileConfig()
	require.Error(t, err)
}

func TestLoadFileConfigRejectsBadTOML(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "config.toml", `network = [unclosed`)

	loader := NewLoader(home, "", output.NewLogger())
	_, _, err := loader.LoadFileConfig()
	require.Error(t, err)
}

func TestApplyNetworks(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "config.toml", `
[networks.hardhat]
rpc_url = "http://localhost:9999"

[networks.devnet]
chain_id = 1337
rpc_url = "http://127.0.0.1:8545"
contract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
symbol = "DEV"
`)

	loader := NewLoader(home, "", output.NewLogger())
	cfg, _, err := loader.LoadFileConfig()
	require.NoError(t, err)

	reg := cfg.ApplyNetworks(networks.Default())

	// Existing entries keep unset fields.
	hardhat, ok := reg.Lookup("hardhat")
	require.True(t, ok)
	require.Equal(t, "http://localhost:9999", hardhat.RPCURL)
	require.Equal(t, int64(31337), hardhat.ChainID)
	require.True(t, hardhat.Supported())

	// Unknown names become new entries.
	devnet, ok := reg.Lookup("devnet")
	require.True(t, ok)
	require.Equal(t, int64(1337), devnet.ChainID)
	require.Equal(t, "DEV", devnet.Symbol)
	require.True(t, devnet.Supported())
}
