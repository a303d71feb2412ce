// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"io"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dotandev/tokenctl/internal/config"
	"github.com/dotandev/tokenctl/internal/rpc"
	"github.com/dotandev/tokenctl/internal/token"
	"github.com/dotandev/tokenctl/internal/wallet"
)

// session is the set of clients a command works with.
type session struct {
	node   *rpc.Client
	wallet wallet.Wallet
	token  *token.Client
	bar    *progressbar.ProgressBar
}

func (a *app) newRPCClient() (*rpc.Client, error) {
	opts := []rpc.Option{rpc.WithLogger(a.log.WithField("network", a.cfg.Network))}
	for k, v := range a.cfg.RPCHeaders {
		opts = append(opts, rpc.WithHeader(k, v))
	}
	return rpc.NewClient(a.cfg.RPCURL, opts...)
}

func (a *app) networkDetails() wallet.NetworkDetails {
	return wallet.NetworkDetails{
		Network:           a.cfg.WalletNetworkName(),
		NetworkPassphrase: a.cfg.NetworkPassphrase,
		NetworkURL:        a.cfg.RPCURL,
	}
}

// newWallet returns nil, without error, when no signer is configured.
func (a *app) newWallet() (wallet.Wallet, error) {
	switch a.cfg.Wallet.Mode {
	case config.WalletModeBridge:
		return wallet.NewBridgeWallet(a.cfg.Wallet.BridgeURL, nil, a.log.WithField("wallet", "bridge"))
	default:
		if a.cfg.SecretKey == "" {
			return nil, nil
		}
		return wallet.NewKeypairWallet(a.cfg.SecretKey, a.networkDetails())
	}
}

func (a *app) newSession(cmd *cobra.Command, progress bool) (*session, error) {
	node, err := a.newRPCClient()
	if err != nil {
		return nil, err
	}
	w, err := a.newWallet()
	if err != nil {
		return nil, err
	}
	if a.cfg.ContractID == "" {
		return nil, errors.New("contract id is not configured: use --contract or TOKENCTL_CONTRACT_ID")
	}

	s := &session{node: node, wallet: w}
	opts := []token.Option{token.WithLogger(a.log.WithField("network", a.cfg.Network))}
	if progress && a.terminal(cmd.ErrOrStderr()) {
		var observe token.PollObserver
		s.bar, observe = newProgressObserver(cmd.ErrOrStderr(), a.cfg.Poll.Attempts)
		opts = append(opts, token.WithPollObserver(observe))
	}

	s.token, err = token.NewClient(node, w, token.Options{
		ContractID:        a.cfg.ContractID,
		NetworkPassphrase: a.cfg.NetworkPassphrase,
		Network:           a.cfg.WalletNetworkName(),
		ViewFee:           a.cfg.Fees.View,
		WriteFee:          a.cfg.Fees.Write,
		TimeoutSeconds:    a.cfg.TimeoutSeconds,
		PollAttempts:      a.cfg.Poll.Attempts,
		PollInterval:      a.cfg.Poll.Interval,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newProgressObserver draws one step per confirmation lookup.
func newProgressObserver(w io.Writer, attempts uint) (*progressbar.ProgressBar, token.PollObserver) {
	bar := progressbar.NewOptions(int(attempts),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("waiting for confirmation"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return bar, func(attempt, _ uint) {
		_ = bar.Set(int(attempt))
	}
}

func (s *session) done() {
	if s.bar != nil {
		_ = s.bar.Finish()
	}
}

// source is the --from address or else the wallet address.
func (s *session) source(ctx context.Context, from string) (string, error) {
	if from != "" {
		return from, nil
	}
	address, err := s.token.WalletAddress(ctx)
	if err != nil {
		return "", errors.Wrap(err, "no --from address and no wallet")
	}
	return address, nil
}

// amount parses raw, reading decimals from the contract only for decimal
// input.
func (s *session) amount(ctx context.Context, raw string) (*big.Int, error) {
	var decimals uint32
	if strings.Contains(raw, ".") {
		d, err := s.token.Decimals(ctx)
		if err != nil {
			return nil, err
		}
		decimals = d
	}
	return token.ParseAmount(raw, decimals)
}
