// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// GetAccount loads the account entry for address and returns it with its
// current sequence number, ready to be used as a transaction source.
func (c *Client) GetAccount(ctx context.Context, address string) (txnbuild.SimpleAccount, error) {
	var accountID xdr.AccountId
	if err := accountID.SetAddress(address); err != nil {
		return txnbuild.SimpleAccount{}, errors.Wrapf(err, "invalid account address %s", address)
	}

	key, err := xdr.MarshalBase64(xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: accountID},
	})
	if err != nil {
		return txnbuild.SimpleAccount{}, errors.Wrap(err, "encode account key")
	}

	resp, err := c.GetLedgerEntries(ctx, []string{key})
	if err != nil {
		return txnbuild.SimpleAccount{}, errors.Wrapf(err, "account not found: %s", address)
	}
	if len(resp.Entries) == 0 {
		return txnbuild.SimpleAccount{}, errors.Errorf("account not found: %s", address)
	}

	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(resp.Entries[0].Data, &data); err != nil {
		return txnbuild.SimpleAccount{}, errors.Wrap(err, "decode account entry")
	}
	if data.Type != xdr.LedgerEntryTypeAccount || data.Account == nil {
		return txnbuild.SimpleAccount{}, errors.Errorf("unexpected ledger entry type %s for %s", data.Type, address)
	}

	return txnbuild.NewSimpleAccount(address, int64(data.Account.SeqNum)), nil
}
