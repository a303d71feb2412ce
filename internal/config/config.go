// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package config loads tokenctl settings from a YAML file, TOKENCTL_*
// environment variables and command line overrides, in that order.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/stellar/go/strkey"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName = ".tokenctl.yaml"
	envPrefix       = "TOKENCTL_"

	WalletModeKeypair = "keypair"
	WalletModeBridge  = "bridge"
)

type Config struct {
	Network           string            `yaml:"network"`
	NetworkPassphrase string            `yaml:"network_passphrase"`
	RPCURL            string            `yaml:"rpc_url"`
	RPCHeaders        map[string]string `yaml:"rpc_headers"`
	ContractID        string            `yaml:"contract_id"`
	SecretKey         string            `yaml:"secret_key"`
	Wallet            WalletConfig      `yaml:"wallet"`
	Fees              FeeConfig         `yaml:"fees"`
	TimeoutSeconds    int64             `yaml:"timeout_seconds"`
	Poll              PollConfig        `yaml:"poll"`
	Log               LogConfig         `yaml:"log"`
	Telemetry         TelemetryConfig   `yaml:"telemetry"`
}

type WalletConfig struct {
	// keypair signs with SecretKey, bridge forwards to BridgeURL
	Mode      string `yaml:"mode"`
	BridgeURL string `yaml:"bridge_url"`
}

// FeeConfig holds classic inclusion fees in stroops.
type FeeConfig struct {
	View  int64 `yaml:"view"`
	Write int64 `yaml:"write"`
}

type PollConfig struct {
	Attempts uint          `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// Default returns a configuration targeting testnet.
func Default() *Config {
	return &Config{
		Network: NetworkTestnet,
		Fees: FeeConfig{
			View:  100,
			Write: 100000,
		},
		TimeoutSeconds: 30,
		Poll: PollConfig{
			Attempts: 30,
			Interval: time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path on top of the defaults. An empty path falls back to
// ~/.tokenctl.yaml when it exists. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, DefaultFileName)
		}
	}

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(content, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", path)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("NETWORK", &c.Network)
	str("NETWORK_PASSPHRASE", &c.NetworkPassphrase)
	str("RPC_URL", &c.RPCURL)
	str("CONTRACT_ID", &c.ContractID)
	str("SECRET_KEY", &c.SecretKey)
	if v, ok := lookup(envPrefix + "WALLET_URL"); ok && v != "" {
		// a bridge URL given outside the file selects the bridge
		c.Wallet.BridgeURL = v
		c.Wallet.Mode = WalletModeBridge
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)

	if v, ok := lookup(envPrefix + "POLL_ATTEMPTS"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "%sPOLL_ATTEMPTS", envPrefix)
		}
		c.Poll.Attempts = uint(n)
	}
	if v, ok := lookup(envPrefix + "POLL_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%sPOLL_INTERVAL", envPrefix)
		}
		c.Poll.Interval = d
	}
	return nil
}

// Resolve fills network derived defaults and validates the result.
func (c *Config) Resolve() error {
	c.Network = strings.ToLower(strings.TrimSpace(c.Network))
	if c.Wallet.BridgeURL != "" && c.Wallet.Mode == "" {
		c.Wallet.Mode = WalletModeBridge
	}
	if c.Wallet.Mode == "" {
		c.Wallet.Mode = WalletModeKeypair
	}

	if preset, ok := Networks[c.Network]; ok {
		if c.NetworkPassphrase == "" {
			c.NetworkPassphrase = preset.Passphrase
		}
		if c.RPCURL == "" {
			c.RPCURL = preset.RPCURL
		}
	} else if c.NetworkPassphrase == "" {
		return errors.Errorf("unknown network %q: set network_passphrase", c.Network)
	}

	if c.RPCURL == "" {
		return errors.Errorf("no rpc url for network %q", c.Network)
	}
	if c.ContractID != "" {
		if _, err := strkey.Decode(strkey.VersionByteContract, c.ContractID); err != nil {
			return errors.Wrapf(err, "invalid contract id %s", c.ContractID)
		}
	}
	switch c.Wallet.Mode {
	case WalletModeKeypair:
	case WalletModeBridge:
		if c.Wallet.BridgeURL == "" {
			return errors.New("wallet mode bridge requires wallet.bridge_url")
		}
	default:
		return errors.Errorf("unknown wallet mode %q", c.Wallet.Mode)
	}
	if c.Fees.View < 100 || c.Fees.Write < 100 {
		return errors.New("fees must be at least 100 stroops")
	}
	if c.Poll.Attempts == 0 {
		return errors.New("poll.attempts must be positive")
	}
	if c.Poll.Interval <= 0 {
		return errors.New("poll.interval must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return errors.New("timeout_seconds must be positive")
	}
	return nil
}
