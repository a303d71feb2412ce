// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"github.com/pkg/errors"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

var ErrNoResult = errors.New("simulation returned no result")

// IsError reports whether the node rejected the simulated invocation.
func IsError(resp *SimulationResponse) bool {
	return resp != nil && resp.Error != ""
}

// ReturnValue decodes the value returned by the simulated host function.
func ReturnValue(resp *SimulationResponse) (xdr.ScVal, error) {
	if resp == nil || len(resp.Results) == 0 || resp.Results[0].ReturnValue == "" {
		return xdr.ScVal{}, ErrNoResult
	}
	var val xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(resp.Results[0].ReturnValue, &val); err != nil {
		return xdr.ScVal{}, errors.Wrap(err, "decode return value")
	}
	return val, nil
}

// TransactionData decodes the Soroban resources computed by the simulation.
func TransactionData(resp *SimulationResponse) (xdr.SorobanTransactionData, error) {
	var data xdr.SorobanTransactionData
	if resp == nil || resp.TransactionData == "" {
		return data, errors.New("simulation returned no transaction data")
	}
	if err := xdr.SafeUnmarshalBase64(resp.TransactionData, &data); err != nil {
		return data, errors.Wrap(err, "decode transaction data")
	}
	return data, nil
}

// Assemble returns a copy of op carrying the authorization entries and
// resource footprint from a successful simulation, along with the minimum
// resource fee the transaction must add to its classic fee.
func Assemble(op *txnbuild.InvokeHostFunction, resp *SimulationResponse) (*txnbuild.InvokeHostFunction, int64, error) {
	if op == nil {
		return nil, 0, errors.New("nil operation")
	}
	if resp == nil {
		return nil, 0, errors.New("nil simulation")
	}
	if IsError(resp) {
		return nil, 0, errors.Errorf("simulation failed: %s", resp.Error)
	}
	if resp.RestorePreamble != nil {
		return nil, 0, errors.New("contract state is archived and must be restored first")
	}
	if len(resp.Results) != 1 {
		return nil, 0, errors.Errorf("expected one simulation result, got %d", len(resp.Results))
	}

	data, err := TransactionData(resp)
	if err != nil {
		return nil, 0, err
	}

	auth := make([]xdr.SorobanAuthorizationEntry, 0, len(resp.Results[0].Auth))
	for i, raw := range resp.Results[0].Auth {
		var entry xdr.SorobanAuthorizationEntry
		if err := xdr.SafeUnmarshalBase64(raw, &entry); err != nil {
			return nil, 0, errors.Wrapf(err, "decode auth entry %d", i)
		}
		auth = append(auth, entry)
	}

	assembled := *op
	// Auth entries already on the operation take precedence over simulated ones.
	if len(op.Auth) == 0 {
		assembled.Auth = auth
	}
	assembled.Ext = xdr.TransactionExt{V: 1, SorobanData: &data}
	return &assembled, resp.MinResourceFee, nil
}
