// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContractID(t *testing.T) string {
	t.Helper()
	id, err := strkey.Encode(strkey.VersionByteContract, make([]byte, 32))
	require.NoError(t, err)
	return id
}

func TestDefaultsResolveToTestnet(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Resolve())

	assert.Equal(t, network.TestNetworkPassphrase, cfg.NetworkPassphrase)
	assert.Equal(t, "https://soroban-testnet.stellar.org", cfg.RPCURL)
	assert.Equal(t, WalletModeKeypair, cfg.Wallet.Mode)
	assert.Equal(t, int64(100), cfg.Fees.View)
	assert.Equal(t, int64(100000), cfg.Fees.Write)
	assert.Equal(t, int64(30), cfg.TimeoutSeconds)
	assert.Equal(t, uint(30), cfg.Poll.Attempts)
	assert.Equal(t, time.Second, cfg.Poll.Interval)
	assert.Equal(t, "TESTNET", cfg.WalletNetworkName())
}

func TestLoadFile(t *testing.T) {
	contract := testContractID(t)
	path := filepath.Join(t.TempDir(), "tokenctl.yaml")
	content := `
network: futurenet
contract_id: ` + contract + `
wallet:
  bridge_url: http://127.0.0.1:8765/
fees:
  view: 200
  write: 150000
poll:
  attempts: 10
  interval: 500ms
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Resolve())

	assert.Equal(t, NetworkFuturenet, cfg.Network)
	assert.Equal(t, network.FutureNetworkPassphrase, cfg.NetworkPassphrase)
	assert.Equal(t, contract, cfg.ContractID)
	assert.Equal(t, WalletModeBridge, cfg.Wallet.Mode)
	assert.Equal(t, int64(200), cfg.Fees.View)
	assert.Equal(t, uint(10), cfg.Poll.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, int64(30), cfg.TimeoutSeconds)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: [unterminated"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TOKENCTL_NETWORK":       "local",
		"TOKENCTL_RPC_URL":       "http://node:8000/rpc",
		"TOKENCTL_SECRET_KEY":    "SSECRET",
		"TOKENCTL_POLL_ATTEMPTS": "5",
		"TOKENCTL_POLL_INTERVAL": "2s",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, "local", cfg.Network)
	assert.Equal(t, "http://node:8000/rpc", cfg.RPCURL)
	assert.Equal(t, "SSECRET", cfg.SecretKey)
	assert.Equal(t, uint(5), cfg.Poll.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)

	bad := Default()
	err := bad.applyEnv(func(k string) (string, bool) {
		if k == "TOKENCTL_POLL_ATTEMPTS" {
			return "many", true
		}
		return "", false
	})
	assert.Error(t, err)
}

func TestWalletURLFromEnvSelectsBridge(t *testing.T) {
	cfg := Default()
	cfg.Wallet.Mode = WalletModeKeypair
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) {
		if k == "TOKENCTL_WALLET_URL" {
			return "http://127.0.0.1:8765/", true
		}
		return "", false
	}))
	require.NoError(t, cfg.Resolve())
	assert.Equal(t, WalletModeBridge, cfg.Wallet.Mode)
	assert.Equal(t, "http://127.0.0.1:8765/", cfg.Wallet.BridgeURL)
}

func TestResolveErrors(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown network":     func(c *Config) { c.Network = "devnet" },
		"mainnet without rpc": func(c *Config) { c.Network = NetworkMainnet },
		"bad contract":        func(c *Config) { c.ContractID = "CNOTACONTRACT" },
		"bridge without url":  func(c *Config) { c.Wallet.Mode = WalletModeBridge },
		"unknown wallet mode": func(c *Config) { c.Wallet.Mode = "ledger" },
		"fee too low":         func(c *Config) { c.Fees.Write = 10 },
		"no poll attempts":    func(c *Config) { c.Poll.Attempts = 0 },
		"no poll interval":    func(c *Config) { c.Poll.Interval = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Resolve())
		})
	}
}

func TestResolveCustomNetwork(t *testing.T) {
	cfg := Default()
	cfg.Network = "private"
	cfg.NetworkPassphrase = "Private Network ; 2025"
	cfg.RPCURL = "http://rpc.internal"
	require.NoError(t, cfg.Resolve())
	assert.Equal(t, "private", cfg.WalletNetworkName())
}
