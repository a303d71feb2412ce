// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package wallet delegates key custody and transaction signing.
//
// A Wallet either holds a secret seed locally (KeypairWallet) or forwards
// requests to a separate signing component through its JSON-RPC bridge
// API (BridgeWallet). NewBridgeHandler serves that API for any Wallet.
package wallet

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotConnected    = errors.New("wallet is not connected")
	ErrNetworkMismatch = errors.New("wallet is configured for a different network")
)

// NetworkDetails describes the network a wallet signs for.
type NetworkDetails struct {
	Network           string `json:"network"`
	NetworkPassphrase string `json:"networkPassphrase"`
	NetworkURL        string `json:"networkUrl,omitempty"`
}

// SignOptions accompany a signing request.
type SignOptions struct {
	Network           string `json:"network,omitempty"`
	NetworkPassphrase string `json:"networkPassphrase"`
	// Address the wallet should sign with, when it manages several.
	Address string `json:"address,omitempty"`
}

type Wallet interface {
	IsConnected(ctx context.Context) (bool, error)
	Address(ctx context.Context) (string, error)
	Network(ctx context.Context) (NetworkDetails, error)
	// SignTransaction signs a base64 XDR transaction envelope and returns
	// the signed envelope.
	SignTransaction(ctx context.Context, envelope string, opts SignOptions) (string, error)
}
