// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dotandev/tokenctl/internal/rpc"
	"github.com/dotandev/tokenctl/internal/simulator"
)

// Receipt is a confirmed transaction.
type Receipt struct {
	Hash          string
	Status        string
	Ledger        uint32
	CreatedAt     time.Time
	ResultXDR     string
	ResultMetaXDR string
	// Simulation that produced the submitted resources, unset for receipts
	// obtained through WaitForTransaction directly.
	Simulation *simulator.SimulationResponse
}

var errNotYetAvailable = errors.New("transaction not yet available")

// WaitForTransaction polls getTransaction at a fixed interval until the
// transaction succeeds or fails, or the attempts run out. Lookup errors
// count as not yet available.
func (c *Client) WaitForTransaction(ctx context.Context, hash string) (*Receipt, error) {
	log := c.log.WithField("hash", hash)
	log.Info("waiting for transaction")

	var (
		receipt *Receipt
		attempt uint
	)
	err := retry.Do(
		func() error {
			attempt++
			if c.observer != nil {
				c.observer(attempt, c.opts.PollAttempts)
			}

			resp, err := c.node.GetTransaction(ctx, hash)
			if err != nil {
				log.WithError(err).WithField("attempt", attempt).Debug("transaction lookup failed")
				return errNotYetAvailable
			}

			switch resp.Status {
			case rpc.TransactionStatusSuccess:
				receipt = &Receipt{
					Hash:          hash,
					Status:        resp.Status,
					Ledger:        resp.Ledger,
					ResultXDR:     resp.ResultXDR,
					ResultMetaXDR: resp.ResultMetaXDR,
				}
				if resp.CreatedAt > 0 {
					receipt.CreatedAt = time.Unix(resp.CreatedAt, 0).UTC()
				}
				return nil
			case rpc.TransactionStatusFailed:
				return retry.Unrecoverable(&TransactionFailedError{
					Hash:       hash,
					Ledger:     resp.Ledger,
					ResultCode: resultCode(resp.ResultXDR),
				})
			default:
				return errNotYetAvailable
			}
		},
		retry.Attempts(c.opts.PollAttempts),
		retry.Delay(c.opts.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err == nil {
		log.WithFields(logrus.Fields{"ledger": receipt.Ledger, "attempts": attempt}).Info("transaction successful")
		return receipt, nil
	}

	var failed *TransactionFailedError
	switch {
	case errors.As(err, &failed):
		log.WithField("result", failed.ResultCode).Warn("transaction failed")
		return nil, failed
	case ctx.Err() != nil:
		return nil, errors.Wrap(ctx.Err(), "wait for transaction")
	default:
		return nil, errors.Wrapf(ErrTransactionTimeout, "%s not confirmed after %d attempts", hash, attempt)
	}
}
