// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// KeypairWallet signs with a secret seed held in process memory.
type KeypairWallet struct {
	kp      *keypair.Full
	network NetworkDetails
}

var _ Wallet = (*KeypairWallet)(nil)

func NewKeypairWallet(secret string, network NetworkDetails) (*KeypairWallet, error) {
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, errors.Wrap(err, "invalid secret key")
	}
	if network.NetworkPassphrase == "" {
		return nil, errors.New("network passphrase is required")
	}
	return &KeypairWallet{kp: kp, network: network}, nil
}

func (w *KeypairWallet) IsConnected(context.Context) (bool, error) {
	return true, nil
}

func (w *KeypairWallet) Address(context.Context) (string, error) {
	return w.kp.Address(), nil
}

func (w *KeypairWallet) Network(context.Context) (NetworkDetails, error) {
	return w.network, nil
}

func (w *KeypairWallet) SignTransaction(_ context.Context, envelope string, opts SignOptions) (string, error) {
	if opts.NetworkPassphrase != "" && opts.NetworkPassphrase != w.network.NetworkPassphrase {
		return "", ErrNetworkMismatch
	}
	if opts.Address != "" && opts.Address != w.kp.Address() {
		return "", errors.Errorf("wallet does not hold a key for %s", opts.Address)
	}

	generic, err := txnbuild.TransactionFromXDR(envelope)
	if err != nil {
		return "", errors.Wrap(err, "decode transaction envelope")
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", errors.New("fee bump transactions are not supported")
	}

	signed, err := tx.Sign(w.network.NetworkPassphrase, w.kp)
	if err != nil {
		return "", errors.Wrap(err, "sign transaction")
	}
	return signed.Base64()
}
