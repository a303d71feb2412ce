// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dotandev/tokenctl/internal/analytics"
	"github.com/dotandev/tokenctl/internal/simulator"
	"github.com/dotandev/tokenctl/internal/token"
)

// About one day of ledgers at five seconds each.
const defaultApprovalLedgers = 17280

type writeFlags struct {
	from   string
	dryRun bool
	report bool
}

func (f *writeFlags) register(cmd *cobra.Command, fromUsage string) {
	cmd.Flags().StringVar(&f.from, "from", "", fromUsage)
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Simulate only; nothing is signed or submitted")
	cmd.Flags().BoolVar(&f.report, "report", false, "Print the simulated resource usage")
}

// prepare opens a session and resolves the source account and amount that
// every write needs.
func (a *app) prepare(cmd *cobra.Command, wf *writeFlags, rawAmount string) (*session, string, *big.Int, error) {
	s, err := a.newSession(cmd, !wf.dryRun)
	if err != nil {
		return nil, "", nil, err
	}
	source, err := s.source(cmd.Context(), wf.from)
	if err != nil {
		return nil, "", nil, err
	}
	amount, err := s.amount(cmd.Context(), rawAmount)
	if err != nil {
		return nil, "", nil, err
	}
	return s, source, amount, nil
}

func (a *app) runWrite(cmd *cobra.Command, s *session, call token.Call, wf *writeFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if wf.dryRun {
		sim, err := s.token.DryRun(ctx, call)
		if err != nil {
			return err
		}
		if err := printReport(cmd, call.Method, sim); err != nil {
			return err
		}
		fmt.Fprintf(out, "dry run: %s was not submitted\n", call.Method)
		return nil
	}

	receipt, err := s.token.Submit(ctx, call)
	s.done()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ %s confirmed\n", call.Method)
	fmt.Fprintf(out, "Hash:   %s\n", receipt.Hash)
	fmt.Fprintf(out, "Ledger: %d\n", receipt.Ledger)
	if !receipt.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Time:   %s\n", receipt.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if wf.report && receipt.Simulation != nil {
		fmt.Fprintln(out)
		return printReport(cmd, call.Method, receipt.Simulation)
	}
	return nil
}

func printReport(cmd *cobra.Command, method string, sim *simulator.SimulationResponse) error {
	report, err := analytics.NewResourceReport(method, sim)
	if err != nil {
		return errors.Wrap(err, "resource report")
	}
	analytics.PrintResourceReport(cmd.OutOrStdout(), report)
	return nil
}

func (a *app) newTransferCmd() *cobra.Command {
	wf := &writeFlags{}
	cmd := &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "Transfer tokens to an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, from, amount, err := a.prepare(cmd, wf, args[1])
			if err != nil {
				return err
			}
			call, err := token.TransferCall(from, args[0], amount)
			if err != nil {
				return err
			}
			return a.runWrite(cmd, s, call, wf)
		},
	}
	wf.register(cmd, "Sender (default: the wallet address)")
	return cmd
}

func (a *app) newApproveCmd() *cobra.Command {
	var (
		wf               = &writeFlags{}
		expirationLedger uint32
		expiresIn        uint32
	)
	cmd := &cobra.Command{
		Use:   "approve <spender> <amount>",
		Short: "Allow spender to transfer up to amount on your behalf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, owner, amount, err := a.prepare(cmd, wf, args[1])
			if err != nil {
				return err
			}
			expiration := expirationLedger
			if !cmd.Flags().Changed("expiration-ledger") {
				latest, err := s.node.GetLatestLedger(cmd.Context())
				if err != nil {
					return err
				}
				expiration = latest.Sequence + expiresIn
			}
			call, err := token.ApproveCall(owner, args[0], amount, expiration)
			if err != nil {
				return err
			}
			a.log.WithField("expiration_ledger", expiration).Debug("approval expiry")
			return a.runWrite(cmd, s, call, wf)
		},
	}
	wf.register(cmd, "Owner (default: the wallet address)")
	cmd.Flags().Uint32Var(&expirationLedger, "expiration-ledger", 0, "Ledger sequence at which the approval expires")
	cmd.Flags().Uint32Var(&expiresIn, "expires-in", defaultApprovalLedgers, "Number of ledgers from now until the approval expires")
	cmd.MarkFlagsMutuallyExclusive("expiration-ledger", "expires-in")
	return cmd
}

func (a *app) newTransferFromCmd() *cobra.Command {
	wf := &writeFlags{}
	cmd := &cobra.Command{
		Use:   "transfer-from <from> <to> <amount>",
		Short: "Spend an allowance granted by from",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, spender, amount, err := a.prepare(cmd, wf, args[2])
			if err != nil {
				return err
			}
			call, err := token.TransferFromCall(spender, args[0], args[1], amount)
			if err != nil {
				return err
			}
			return a.runWrite(cmd, s, call, wf)
		},
	}
	wf.register(cmd, "Spender (default: the wallet address)")
	return cmd
}

func (a *app) newMintCmd() *cobra.Command {
	wf := &writeFlags{}
	cmd := &cobra.Command{
		Use:   "mint <to> <amount>",
		Short: "Mint new tokens (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, admin, amount, err := a.prepare(cmd, wf, args[1])
			if err != nil {
				return err
			}
			call, err := token.MintCall(admin, args[0], amount)
			if err != nil {
				return err
			}
			return a.runWrite(cmd, s, call, wf)
		},
	}
	wf.register(cmd, "Admin account (default: the wallet address)")
	return cmd
}

func (a *app) newBurnCmd() *cobra.Command {
	wf := &writeFlags{}
	cmd := &cobra.Command{
		Use:   "burn <amount>",
		Short: "Destroy tokens held by the source account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, from, amount, err := a.prepare(cmd, wf, args[0])
			if err != nil {
				return err
			}
			call, err := token.BurnCall(from, amount)
			if err != nil {
				return err
			}
			return a.runWrite(cmd, s, call, wf)
		},
	}
	wf.register(cmd, "Holder (default: the wallet address)")
	return cmd
}
