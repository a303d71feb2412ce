// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/tokenctl/internal/token"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show token name, symbol, decimals and total supply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.newSession(cmd, false)
			if err != nil {
				return err
			}
			md, err := s.token.Info(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🪙 Token: %s\n", s.token.ContractID())
			fmt.Fprintln(out, "--------------------------------")
			fmt.Fprintf(out, "Name:         %s\n", md.Name)
			fmt.Fprintf(out, "Symbol:       %s\n", md.Symbol)
			fmt.Fprintf(out, "Decimals:     %d\n", md.Decimals)
			fmt.Fprintf(out, "Total supply: %s %s\n", token.FormatAmount(md.TotalSupply, md.Decimals), md.Symbol)
			return nil
		},
	}
}

func (a *app) newBalanceCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the token balance of an address (default: the wallet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd, false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var address string
			if len(args) == 1 {
				address = args[0]
			}
			if address, err = s.source(ctx, address); err != nil {
				return err
			}

			balance, err := s.token.Balance(ctx, address)
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), balance.String())
				return nil
			}
			decimals, err := s.token.Decimals(ctx)
			if err != nil {
				return err
			}
			symbol, err := s.token.Symbol(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", address, token.FormatAmount(balance, decimals), symbol)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the balance in base units only")
	return cmd
}

func (a *app) newAllowanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allowance <owner> <spender>",
		Short: "Show how much spender may transfer on behalf of owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd, false)
			if err != nil {
				return err
			}
			allowance, err := s.token.Allowance(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), allowance.String())
			return nil
		},
	}
}
