// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Error codes the bridge uses for wallet outcomes that callers match on.
const (
	codeNotConnected    json2.ErrorCode = -32001
	codeNetworkMismatch json2.ErrorCode = -32002
)

// Bridge method names, "Service.Method" as routed by the bridge server.
const (
	methodIsConnected       = "Wallet.IsConnected"
	methodGetAddress        = "Wallet.GetAddress"
	methodGetNetworkDetails = "Wallet.GetNetworkDetails"
	methodSignTransaction   = "Wallet.SignTransaction"
)

type EmptyArgs struct{}

type IsConnectedReply struct {
	IsConnected bool `json:"isConnected"`
}

type AddressReply struct {
	Address string `json:"address"`
}

type SignTransactionArgs struct {
	// XDR encoded TransactionEnvelope
	Envelope string      `json:"xdr"`
	Options  SignOptions `json:"opts"`
}

type SignTransactionReply struct {
	SignedTxXDR   string `json:"signedTxXdr"`
	SignerAddress string `json:"signerAddress"`
}

// BridgeWallet forwards wallet requests to an external signer.
type BridgeWallet struct {
	url        string
	httpClient *http.Client
	log        *logrus.Entry
}

var _ Wallet = (*BridgeWallet)(nil)

func NewBridgeWallet(url string, httpClient *http.Client, log *logrus.Entry) (*BridgeWallet, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("wallet bridge url is not configured")
	}
	if httpClient == nil {
		// Signing may wait for a human to approve the request.
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &BridgeWallet{url: url, httpClient: httpClient, log: log.WithField("component", "wallet")}, nil
}

// IsConnected reports false, without error, when the bridge cannot be reached.
func (w *BridgeWallet) IsConnected(ctx context.Context) (bool, error) {
	var reply IsConnectedReply
	err := w.call(ctx, methodIsConnected, EmptyArgs{}, &reply)
	if err != nil {
		var transportErr *transportError
		if errors.As(err, &transportErr) {
			w.log.WithError(err).Debug("wallet bridge unreachable")
			return false, nil
		}
		return false, err
	}
	return reply.IsConnected, nil
}

func (w *BridgeWallet) Address(ctx context.Context) (string, error) {
	connected, err := w.IsConnected(ctx)
	if err != nil {
		return "", err
	}
	if !connected {
		return "", ErrNotConnected
	}

	var reply AddressReply
	if err := w.call(ctx, methodGetAddress, EmptyArgs{}, &reply); err != nil {
		return "", err
	}
	w.log.WithField("address", reply.Address).Info("connected wallet address")
	return reply.Address, nil
}

func (w *BridgeWallet) Network(ctx context.Context) (NetworkDetails, error) {
	var reply NetworkDetails
	if err := w.call(ctx, methodGetNetworkDetails, EmptyArgs{}, &reply); err != nil {
		return NetworkDetails{}, err
	}
	return reply, nil
}

func (w *BridgeWallet) SignTransaction(ctx context.Context, envelope string, opts SignOptions) (string, error) {
	var reply SignTransactionReply
	args := SignTransactionArgs{Envelope: envelope, Options: opts}
	if err := w.call(ctx, methodSignTransaction, args, &reply); err != nil {
		return "", err
	}
	if reply.SignedTxXDR == "" {
		return "", errors.New("wallet bridge returned an empty signed transaction")
	}
	return reply.SignedTxXDR, nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "wallet bridge: " + e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

func (w *BridgeWallet) call(ctx context.Context, method string, args, reply interface{}) error {
	body, err := json2.EncodeClientRequest(method, args)
	if err != nil {
		return errors.Wrapf(err, "encode %s", method)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "wallet bridge %s", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &transportError{err: err}
	}

	err = json2.DecodeClientResponse(bytes.NewReader(raw), reply)
	if err == nil {
		return nil
	}
	var rpcErr *json2.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case codeNotConnected:
			return errors.Wrap(ErrNotConnected, "wallet bridge")
		case codeNetworkMismatch:
			return errors.Wrap(ErrNetworkMismatch, "wallet bridge")
		}
		return errors.Errorf("wallet bridge %s: %s", method, rpcErr.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("wallet bridge %s: http %d: %s", method, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return errors.Wrapf(err, "wallet bridge %s: decode response", method)
}
