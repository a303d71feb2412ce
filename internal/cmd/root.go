// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the tokenctl command line.
package cmd

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dotandev/tokenctl/internal/config"
	"github.com/dotandev/tokenctl/internal/logger"
	"github.com/dotandev/tokenctl/internal/telemetry"
)

const flushTimeout = 5 * time.Second

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	network    string
	rpcURL     string
	contract   string
	secret     string
	walletURL  string
	logLevel   string
	logFormat  string
	otlp       string

	cfg      *config.Config
	log      *logrus.Logger
	shutdown telemetry.ShutdownFunc
	// terminal decides whether polling draws a progress bar
	terminal func(io.Writer) bool
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	root, a := newRootCmd()
	return a.execute(context.Background(), root)
}

// NewRootCmd returns the command tree. Callers that execute it themselves
// do not get spans flushed on exit; use Execute for that.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

// execute runs root and flushes telemetry whether or not the command
// succeeded. Post-run hooks are skipped by cobra after a failed RunE.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if a.shutdown != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if serr := a.shutdown(flushCtx); serr != nil && a.log != nil {
			a.log.WithError(serr).Warn("telemetry flush failed")
		}
		a.shutdown = nil
	}
	return err
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{terminal: logger.IsTerminal}
	root := &cobra.Command{
		Use:   "tokenctl",
		Short: "Interact with a Soroban fungible token contract",
		Long: `tokenctl reads and writes a fungible token contract deployed on a
Stellar network. Views are answered by simulation; writes are simulated,
signed by a wallet, submitted and then polled until confirmed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (default ~/"+config.DefaultFileName+")")
	flags.StringVarP(&a.network, "network", "n", "", "Network: testnet, futurenet, mainnet or local")
	flags.StringVar(&a.rpcURL, "rpc-url", "", "Soroban RPC endpoint")
	flags.StringVar(&a.contract, "contract", "", "Token contract id (C...)")
	flags.StringVar(&a.secret, "secret", "", "Secret key used to sign writes (S...)")
	flags.StringVar(&a.walletURL, "wallet-url", "", "Wallet bridge endpoint; signs through the bridge instead of a local key")
	flags.StringVarP(&a.logLevel, "log-level", "l", "", "Logging level")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	flags.StringVar(&a.otlp, "otlp-endpoint", "", "OTLP/HTTP collector for traces (host:port)")

	root.AddCommand(
		a.newInfoCmd(),
		a.newBalanceCmd(),
		a.newAllowanceCmd(),
		a.newTransferCmd(),
		a.newApproveCmd(),
		a.newTransferFromCmd(),
		a.newMintCmd(),
		a.newBurnCmd(),
		a.newWalletCmd(),
		a.newHealthCmd(),
		newVersionCmd(),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	override("network", &cfg.Network, a.network)
	override("rpc-url", &cfg.RPCURL, a.rpcURL)
	override("contract", &cfg.ContractID, a.contract)
	override("secret", &cfg.SecretKey, a.secret)
	override("wallet-url", &cfg.Wallet.BridgeURL, a.walletURL)
	if flags.Changed("wallet-url") && a.walletURL != "" {
		cfg.Wallet.Mode = config.WalletModeBridge
	}
	override("log-level", &cfg.Log.Level, a.logLevel)
	override("log-format", &cfg.Log.Format, a.logFormat)
	override("otlp-endpoint", &cfg.Telemetry.OTLPEndpoint, a.otlp)

	if err := cfg.Resolve(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	_, shutdown, err := telemetry.Init(cmd.Context(), telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: binaryName,
		Version:     Version,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.shutdown = shutdown
	log.WithFields(logrus.Fields{"network": cfg.Network, "rpc": cfg.RPCURL}).Debug("configuration loaded")
	return nil
}
