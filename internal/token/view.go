// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/dotandev/tokenctl/internal/scval"
	"github.com/dotandev/tokenctl/internal/simulator"
	"github.com/dotandev/tokenctl/internal/wallet"
)

// Metadata is the token description read by Info.
type Metadata struct {
	Name        string
	Symbol      string
	Decimals    uint32
	TotalSupply *big.Int
}

// viewSource is the wallet account when one is connected, otherwise the
// null account.
func (c *Client) viewSource(ctx context.Context) (txnbuild.SimpleAccount, error) {
	if c.wallet != nil {
		address, err := c.wallet.Address(ctx)
		switch {
		case err == nil:
			return c.node.GetAccount(ctx, address)
		case !errors.Is(err, wallet.ErrNotConnected):
			return txnbuild.SimpleAccount{}, err
		}
	}
	return txnbuild.SimpleAccount{AccountID: NullAccount, Sequence: 0}, nil
}

func (c *Client) view(ctx context.Context, method string, args ...xdr.ScVal) (xdr.ScVal, error) {
	source, err := c.viewSource(ctx)
	if err != nil {
		return xdr.ScVal{}, err
	}
	sim, err := c.simulate(ctx, source, c.opts.ViewFee, method, c.invokeOp(method, args))
	if err != nil {
		return xdr.ScVal{}, err
	}
	val, err := simulator.ReturnValue(sim)
	if err != nil {
		return xdr.ScVal{}, errors.Wrap(err, method)
	}
	return val, nil
}

func (c *Client) Name(ctx context.Context) (string, error) {
	val, err := c.view(ctx, "name")
	if err != nil {
		return "", err
	}
	return scval.ToString(val)
}

func (c *Client) Symbol(ctx context.Context) (string, error) {
	val, err := c.view(ctx, "symbol")
	if err != nil {
		return "", err
	}
	return scval.ToString(val)
}

func (c *Client) Decimals(ctx context.Context) (uint32, error) {
	val, err := c.view(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	return scval.ToU32(val)
}

func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	id, err := scval.Address(address)
	if err != nil {
		return nil, err
	}
	val, err := c.view(ctx, "balance", id)
	if err != nil {
		return nil, err
	}
	return scval.ToBigInt(val)
}

func (c *Client) TotalSupply(ctx context.Context) (*big.Int, error) {
	val, err := c.view(ctx, "total_supply")
	if err != nil {
		return nil, err
	}
	return scval.ToBigInt(val)
}

func (c *Client) Allowance(ctx context.Context, owner, spender string) (*big.Int, error) {
	from, err := scval.Address(owner)
	if err != nil {
		return nil, err
	}
	to, err := scval.Address(spender)
	if err != nil {
		return nil, err
	}
	val, err := c.view(ctx, "allowance", from, to)
	if err != nil {
		return nil, err
	}
	return scval.ToBigInt(val)
}

// Info reads the token metadata one view at a time.
func (c *Client) Info(ctx context.Context) (*Metadata, error) {
	var (
		md  Metadata
		err error
	)
	if md.Name, err = c.Name(ctx); err != nil {
		return nil, err
	}
	if md.Symbol, err = c.Symbol(ctx); err != nil {
		return nil, err
	}
	if md.Decimals, err = c.Decimals(ctx); err != nil {
		return nil, err
	}
	if md.TotalSupply, err = c.TotalSupply(ctx); err != nil {
		return nil, err
	}
	return &md, nil
}
