// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"net/http"

	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BridgeService exposes a Wallet over the bridge API.
type BridgeService struct {
	wallet Wallet
	log    *logrus.Entry
}

// NewBridgeHandler serves w as JSON-RPC 2.0 under the "Wallet" service name.
func NewBridgeHandler(w Wallet, log *logrus.Entry) (http.Handler, error) {
	if w == nil {
		return nil, errors.New("nil wallet")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	server := gorillarpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	service := &BridgeService{wallet: w, log: log.WithField("component", "wallet-bridge")}
	if err := server.RegisterService(service, "Wallet"); err != nil {
		return nil, errors.Wrap(err, "register wallet service")
	}
	return server, nil
}

func (s *BridgeService) IsConnected(r *http.Request, _ *EmptyArgs, reply *IsConnectedReply) error {
	connected, err := s.wallet.IsConnected(r.Context())
	if err != nil {
		return toBridgeError(err)
	}
	reply.IsConnected = connected
	return nil
}

func (s *BridgeService) GetAddress(r *http.Request, _ *EmptyArgs, reply *AddressReply) error {
	address, err := s.wallet.Address(r.Context())
	if err != nil {
		return toBridgeError(err)
	}
	reply.Address = address
	return nil
}

func (s *BridgeService) GetNetworkDetails(r *http.Request, _ *EmptyArgs, reply *NetworkDetails) error {
	details, err := s.wallet.Network(r.Context())
	if err != nil {
		return toBridgeError(err)
	}
	*reply = details
	return nil
}

func (s *BridgeService) SignTransaction(r *http.Request, args *SignTransactionArgs, reply *SignTransactionReply) error {
	log := s.log.WithField("remote", r.RemoteAddr)
	signed, err := s.wallet.SignTransaction(r.Context(), args.Envelope, args.Options)
	if err != nil {
		log.WithError(err).Warn("sign request rejected")
		return toBridgeError(err)
	}
	address, err := s.wallet.Address(r.Context())
	if err != nil {
		return toBridgeError(err)
	}
	log.WithField("signer", address).Info("signed transaction")
	reply.SignedTxXDR = signed
	reply.SignerAddress = address
	return nil
}

func toBridgeError(err error) error {
	switch {
	case errors.Is(err, ErrNotConnected):
		return &json2.Error{Code: codeNotConnected, Message: err.Error()}
	case errors.Is(err, ErrNetworkMismatch):
		return &json2.Error{Code: codeNetworkMismatch, Message: err.Error()}
	default:
		return err
	}
}
