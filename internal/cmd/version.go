// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	binaryName = "tokenctl"
	binaryIcon = "🪙"
)

// Set at build time with -ldflags "-X".
var (
	Version     = "dev"
	GitRevision = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the current version of tokenctl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s:\n", binaryIcon, binaryName)
			fmt.Fprintf(out, "  - Version: %s\n", Version)
			fmt.Fprintf(out, "  - Git Revision: %s\n", GitRevision)
			fmt.Fprintf(out, "  - Go Version: %s\n", runtime.Version())
			return nil
		},
	}
}
