// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

// MinRPCVersion is the oldest Soroban RPC release whose simulation and
// transaction responses tokenctl understands.
const MinRPCVersion = "21.0.0"

func (a *app) newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the RPC endpoint and its network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			node, err := a.newRPCClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			health, err := node.GetHealth(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "🩺 RPC: %s\n", node.URL())
			fmt.Fprintln(out, "--------------------------------")
			fmt.Fprintf(out, "Status:   %s\n", health.Status)
			fmt.Fprintf(out, "Ledgers:  %d - %d\n", health.OldestLedger, health.LatestLedger)

			netInfo, err := node.GetNetwork(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Network:  %s (protocol %d)\n", netInfo.Passphrase, netInfo.ProtocolVersion)
			if netInfo.Passphrase != a.cfg.NetworkPassphrase {
				fmt.Fprintf(out, "⚠️  configured passphrase is %q\n", a.cfg.NetworkPassphrase)
			}

			info, err := node.GetVersionInfo(ctx)
			if err != nil {
				a.log.WithError(err).Warn("getVersionInfo failed")
				return nil
			}
			ok, err := rpcVersionSupported(info.Version)
			switch {
			case err != nil:
				fmt.Fprintf(out, "Version:  %s (unrecognized)\n", info.Version)
			case !ok:
				fmt.Fprintf(out, "Version:  %s ⚠️  older than the supported minimum %s\n", info.Version, MinRPCVersion)
			default:
				fmt.Fprintf(out, "Version:  %s\n", info.Version)
			}
			return nil
		},
	}
}

// rpcVersionSupported compares the core of v, ignoring build metadata
// and pre-release suffixes, against MinRPCVersion.
func rpcVersionSupported(v string) (bool, error) {
	parsed, err := version.NewVersion(strings.TrimPrefix(strings.TrimSpace(v), "v"))
	if err != nil {
		return false, err
	}
	return parsed.Core().GreaterThanOrEqual(version.Must(version.NewVersion(MinRPCVersion))), nil
}
