// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/stellar/go/xdr"
)

// ErrTransactionTimeout is returned when polling gives up before the
// transaction reaches a final status.
var ErrTransactionTimeout = errors.New("transaction timeout")

// SimulationError is the node's rejection of a simulated invocation.
type SimulationError struct {
	Method  string
	Message string
}

func (e *SimulationError) Error() string {
	return "simulation failed: " + e.Message
}

// SubmissionError is returned when sendTransaction does not accept the
// transaction.
type SubmissionError struct {
	Hash   string
	Status string
	// ResultCode is the decoded TransactionResult code, when the node sent one.
	ResultCode string
}

func (e *SubmissionError) Error() string {
	if e.ResultCode != "" {
		return fmt.Sprintf("transaction submission failed: %s (%s)", e.Status, e.ResultCode)
	}
	return fmt.Sprintf("transaction submission failed: %s", e.Status)
}

// TransactionFailedError is a transaction that was included in a ledger
// but did not succeed.
type TransactionFailedError struct {
	Hash       string
	Ledger     uint32
	ResultCode string
}

func (e *TransactionFailedError) Error() string {
	if e.ResultCode != "" {
		return fmt.Sprintf("transaction failed: %s (%s)", e.Hash, e.ResultCode)
	}
	return "transaction failed: " + e.Hash
}

// resultCode decodes a base64 TransactionResult and returns its code name.
func resultCode(encoded string) string {
	if encoded == "" {
		return ""
	}
	var result xdr.TransactionResult
	if err := xdr.SafeUnmarshalBase64(encoded, &result); err != nil {
		return ""
	}
	return result.Result.Code.String()
}
