// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dotandev/tokenctl/internal/rpc"
	"github.com/dotandev/tokenctl/internal/simulator"
	"github.com/dotandev/tokenctl/internal/wallet"
)

func (c *Client) invokeOp(method string, args []xdr.ScVal) *txnbuild.InvokeHostFunction {
	return &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: c.contract,
				FunctionName:    xdr.ScSymbol(method),
				Args:            xdr.ScVec(args),
			},
		},
	}
}

// buildTx uses a fresh copy of source every time so a rebuild keeps the
// same sequence number.
func (c *Client) buildTx(source txnbuild.SimpleAccount, op txnbuild.Operation, fee int64) (*txnbuild.Transaction, error) {
	account := txnbuild.NewSimpleAccount(source.AccountID, source.Sequence)
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              fee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(c.opts.TimeoutSeconds)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "build transaction")
	}
	return tx, nil
}

func (c *Client) simulate(ctx context.Context, source txnbuild.SimpleAccount, fee int64, method string, op *txnbuild.InvokeHostFunction) (*simulator.SimulationResponse, error) {
	tx, err := c.buildTx(source, op, fee)
	if err != nil {
		return nil, err
	}
	envelope, err := tx.Base64()
	if err != nil {
		return nil, errors.Wrap(err, "encode transaction")
	}

	sim, err := c.node.SimulateTransaction(ctx, &simulator.SimulationRequest{Transaction: envelope})
	if err != nil {
		return nil, errors.Wrapf(err, "simulate %s", method)
	}
	if simulator.IsError(sim) {
		return nil, &SimulationError{Method: method, Message: sim.Error}
	}
	return sim, nil
}

// Simulate dry runs method with source as the transaction source account.
func (c *Client) Simulate(ctx context.Context, source, method string, args ...xdr.ScVal) (*simulator.SimulationResponse, error) {
	account, err := c.node.GetAccount(ctx, source)
	if err != nil {
		return nil, err
	}
	return c.simulate(ctx, account, c.opts.WriteFee, method, c.invokeOp(method, args))
}

// invoke runs the signed write lifecycle for method and waits for the
// transaction to be confirmed.
func (c *Client) invoke(ctx context.Context, source, method string, args ...xdr.ScVal) (_ *Receipt, err error) {
	opID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "token."+method, trace.WithAttributes(
		attribute.String("token.method", method),
		attribute.String("token.source", source),
		attribute.String("token.op_id", opID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	log := c.log.WithFields(logrus.Fields{"method": method, "source": source, "op_id": opID})

	if c.wallet == nil {
		return nil, wallet.ErrNotConnected
	}

	account, err := c.node.GetAccount(ctx, source)
	if err != nil {
		return nil, err
	}

	op := c.invokeOp(method, args)
	sim, err := c.simulate(ctx, account, c.opts.WriteFee, method, op)
	if err != nil {
		return nil, err
	}
	assembled, minResourceFee, err := simulator.Assemble(op, sim)
	if err != nil {
		return nil, errors.Wrapf(err, "assemble %s", method)
	}
	log.WithField("min_resource_fee", minResourceFee).Debug("simulated")

	tx, err := c.buildTx(account, assembled, c.opts.WriteFee+minResourceFee)
	if err != nil {
		return nil, err
	}
	envelope, err := tx.Base64()
	if err != nil {
		return nil, errors.Wrap(err, "encode transaction")
	}

	signed, err := c.wallet.SignTransaction(ctx, envelope, wallet.SignOptions{
		Network:           c.opts.Network,
		NetworkPassphrase: c.opts.NetworkPassphrase,
		Address:           source,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "sign %s", method)
	}
	signedEnvelope, hash, err := c.parseSigned(signed)
	if err != nil {
		return nil, err
	}

	sent, err := c.node.SendTransaction(ctx, signedEnvelope)
	if err != nil {
		return nil, errors.Wrapf(err, "submit %s", method)
	}
	if sent.Hash != "" {
		hash = sent.Hash
	}
	span.SetAttributes(attribute.String("token.tx_hash", hash))
	log = log.WithField("hash", hash)

	switch sent.Status {
	case rpc.SendStatusPending, rpc.SendStatusDuplicate:
		log.WithField("status", sent.Status).Info("transaction submitted")
	default:
		subErr := &SubmissionError{Hash: hash, Status: sent.Status, ResultCode: resultCode(sent.ErrorResult)}
		log.WithError(subErr).Warn("transaction rejected")
		return nil, subErr
	}

	receipt, err := c.WaitForTransaction(ctx, hash)
	if err != nil {
		return nil, err
	}
	receipt.Simulation = sim
	return receipt, nil
}

// parseSigned checks the wallet output is a signed transaction envelope and
// returns it with its hash.
func (c *Client) parseSigned(signed string) (string, string, error) {
	generic, err := txnbuild.TransactionFromXDR(signed)
	if err != nil {
		return "", "", errors.Wrap(err, "decode signed transaction")
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", "", errors.New("wallet returned a fee bump transaction")
	}
	if len(tx.Signatures()) == 0 {
		return "", "", errors.New("wallet returned an unsigned transaction")
	}
	hash, err := tx.HashHex(c.opts.NetworkPassphrase)
	if err != nil {
		return "", "", errors.Wrap(err, "hash transaction")
	}
	envelope, err := tx.Base64()
	if err != nil {
		return "", "", errors.Wrap(err, "encode signed transaction")
	}
	return envelope, hash, nil
}
