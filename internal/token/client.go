// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package token drives a fungible token contract: read only views through
// simulation and signed writes through the full transaction lifecycle.
package token

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dotandev/tokenctl/internal/rpc"
	"github.com/dotandev/tokenctl/internal/scval"
	"github.com/dotandev/tokenctl/internal/simulator"
	"github.com/dotandev/tokenctl/internal/wallet"
)

const (
	DefaultViewFee        int64 = 100
	DefaultWriteFee       int64 = 100000
	DefaultTimeoutSeconds int64 = 30
	DefaultPollAttempts   uint  = 30
	DefaultPollInterval         = time.Second

	tracerName = "github.com/dotandev/tokenctl/internal/token"
)

// NullAccount is the all zero account used as the source of views when no
// wallet is available. Simulation does not check its existence.
var NullAccount = mustNullAccount()

func mustNullAccount() string {
	address, err := strkey.Encode(strkey.VersionByteAccountID, make([]byte, 32))
	if err != nil {
		panic(err)
	}
	return address
}

// RPC is the subset of the node API the token client needs.
type RPC interface {
	GetAccount(ctx context.Context, address string) (txnbuild.SimpleAccount, error)
	SimulateTransaction(ctx context.Context, req *simulator.SimulationRequest) (*simulator.SimulationResponse, error)
	SendTransaction(ctx context.Context, envelope string) (*rpc.SendTransactionResponse, error)
	GetTransaction(ctx context.Context, hash string) (*rpc.GetTransactionResponse, error)
}

var _ RPC = (*rpc.Client)(nil)

type Options struct {
	ContractID        string
	NetworkPassphrase string
	// Network is the wallet facing network name, e.g. TESTNET.
	Network        string
	ViewFee        int64
	WriteFee       int64
	TimeoutSeconds int64
	PollAttempts   uint
	PollInterval   time.Duration
}

// PollObserver is told about every confirmation lookup.
type PollObserver func(attempt, attempts uint)

type Option func(*Client)

func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

func WithPollObserver(fn PollObserver) Option {
	return func(c *Client) { c.observer = fn }
}

type Client struct {
	node     RPC
	wallet   wallet.Wallet
	opts     Options
	contract xdr.ScAddress
	log      *logrus.Entry
	tracer   trace.Tracer
	observer PollObserver
}

// NewClient returns a client for one token contract. w may be nil, in which
// case only views are available.
func NewClient(node RPC, w wallet.Wallet, opts Options, options ...Option) (*Client, error) {
	if node == nil {
		return nil, errors.New("nil rpc client")
	}
	if opts.ContractID == "" {
		return nil, errors.New("contract id is not configured")
	}
	contract, err := scval.ScAddress(opts.ContractID)
	if err != nil {
		return nil, errors.Wrap(err, "contract id")
	}
	if contract.Type != xdr.ScAddressTypeScAddressTypeContract {
		return nil, errors.Errorf("%s is not a contract address", opts.ContractID)
	}
	if opts.NetworkPassphrase == "" {
		return nil, errors.New("network passphrase is not configured")
	}
	if opts.ViewFee == 0 {
		opts.ViewFee = DefaultViewFee
	}
	if opts.WriteFee == 0 {
		opts.WriteFee = DefaultWriteFee
	}
	if opts.TimeoutSeconds == 0 {
		opts.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if opts.PollAttempts == 0 {
		opts.PollAttempts = DefaultPollAttempts
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}

	c := &Client{
		node:     node,
		wallet:   w,
		opts:     opts,
		contract: contract,
		log:      logrus.NewEntry(logrus.StandardLogger()),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range options {
		opt(c)
	}
	c.log = c.log.WithFields(logrus.Fields{"component": "token", "contract": opts.ContractID})
	return c, nil
}

func (c *Client) ContractID() string {
	return c.opts.ContractID
}

// WalletAddress returns the address of the configured wallet.
func (c *Client) WalletAddress(ctx context.Context) (string, error) {
	if c.wallet == nil {
		return "", wallet.ErrNotConnected
	}
	return c.wallet.Address(ctx)
}
