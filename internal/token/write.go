// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github.com/stellar/go/xdr"

	"github.com/dotandev/tokenctl/internal/scval"
	"github.com/dotandev/tokenctl/internal/simulator"
)

// Call names a write and its encoded contract arguments. Source signs and
// pays for the transaction.
type Call struct {
	Source string
	Method string
	Args   []xdr.ScVal
}

func addresses(addrs ...string) ([]xdr.ScVal, error) {
	out := make([]xdr.ScVal, 0, len(addrs))
	for _, a := range addrs {
		v, err := scval.Address(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func amountArg(amount *big.Int) (xdr.ScVal, error) {
	if amount == nil || amount.Sign() < 0 {
		return xdr.ScVal{}, errors.New("amount must be a non-negative integer")
	}
	return scval.I128(amount)
}

func newCall(source, method string, amount *big.Int, addrs ...string) (Call, error) {
	args, err := addresses(addrs...)
	if err != nil {
		return Call{}, err
	}
	a, err := amountArg(amount)
	if err != nil {
		return Call{}, err
	}
	return Call{Source: source, Method: method, Args: append(args, a)}, nil
}

func TransferCall(from, to string, amount *big.Int) (Call, error) {
	return newCall(from, "transfer", amount, from, to)
}

func ApproveCall(owner, spender string, amount *big.Int, expirationLedger uint32) (Call, error) {
	call, err := newCall(owner, "approve", amount, owner, spender)
	if err != nil {
		return Call{}, err
	}
	call.Args = append(call.Args, scval.U32(expirationLedger))
	return call, nil
}

func TransferFromCall(spender, from, to string, amount *big.Int) (Call, error) {
	return newCall(spender, "transfer_from", amount, spender, from, to)
}

// MintCall is signed by admin, who is not a contract argument.
func MintCall(admin, to string, amount *big.Int) (Call, error) {
	call, err := newCall(admin, "mint", amount, to)
	if err != nil {
		return Call{}, err
	}
	if _, err := scval.Address(admin); err != nil {
		return Call{}, err
	}
	return call, nil
}

func BurnCall(from string, amount *big.Int) (Call, error) {
	return newCall(from, "burn", amount, from)
}

// Submit signs, sends and confirms call.
func (c *Client) Submit(ctx context.Context, call Call) (*Receipt, error) {
	return c.invoke(ctx, call.Source, call.Method, call.Args...)
}

// DryRun simulates call without signing it.
func (c *Client) DryRun(ctx context.Context, call Call) (*simulator.SimulationResponse, error) {
	return c.Simulate(ctx, call.Source, call.Method, call.Args...)
}

func (c *Client) Transfer(ctx context.Context, from, to string, amount *big.Int) (*Receipt, error) {
	call, err := TransferCall(from, to, amount)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, call)
}

func (c *Client) Approve(ctx context.Context, owner, spender string, amount *big.Int, expirationLedger uint32) (*Receipt, error) {
	call, err := ApproveCall(owner, spender, amount, expirationLedger)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, call)
}

func (c *Client) TransferFrom(ctx context.Context, spender, from, to string, amount *big.Int) (*Receipt, error) {
	call, err := TransferFromCall(spender, from, to, amount)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, call)
}

func (c *Client) Mint(ctx context.Context, admin, to string, amount *big.Int) (*Receipt, error) {
	call, err := MintCall(admin, to, amount)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, call)
}

func (c *Client) Burn(ctx context.Context, from string, amount *big.Int) (*Receipt, error) {
	call, err := BurnCall(from, amount)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, call)
}
