// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package config

import "github.com/stellar/go/network"

const (
	NetworkTestnet   = "testnet"
	NetworkFuturenet = "futurenet"
	NetworkMainnet   = "mainnet"
	NetworkLocal     = "local"
)

// NetworkPreset is a well known network. Mainnet has no public default
// RPC endpoint, so it needs rpc_url.
type NetworkPreset struct {
	Name       string
	Passphrase string
	RPCURL     string
}

var Networks = map[string]NetworkPreset{
	NetworkTestnet: {
		Name:       "TESTNET",
		Passphrase: network.TestNetworkPassphrase,
		RPCURL:     "https://soroban-testnet.stellar.org",
	},
	NetworkFuturenet: {
		Name:       "FUTURENET",
		Passphrase: network.FutureNetworkPassphrase,
		RPCURL:     "https://rpc-futurenet.stellar.org",
	},
	NetworkMainnet: {
		Name:       "PUBLIC",
		Passphrase: network.PublicNetworkPassphrase,
	},
	NetworkLocal: {
		Name:       "STANDALONE",
		Passphrase: "Standalone Network ; February 2017",
		RPCURL:     "http://localhost:8000/rpc",
	},
}

// WalletNetworkName is the name wallets use for the configured network.
func (c *Config) WalletNetworkName() string {
	if preset, ok := Networks[c.Network]; ok {
		return preset.Name
	}
	return c.Network
}
