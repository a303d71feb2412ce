// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dotandev/tokenctl/internal/wallet"
)

func (a *app) newWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Inspect or serve the signing wallet",
	}
	cmd.AddCommand(a.newWalletStatusCmd(), a.newWalletServeCmd())
	return cmd
}

func (a *app) newWalletStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a wallet is connected and which network it signs for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := a.newWallet()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode:      %s\n", a.cfg.Wallet.Mode)
			if w == nil {
				fmt.Fprintln(out, "Connected: no (no secret key configured)")
				return nil
			}

			ctx := cmd.Context()
			connected, err := w.IsConnected(ctx)
			if err != nil {
				return err
			}
			if !connected {
				fmt.Fprintln(out, "Connected: no")
				return nil
			}
			address, err := w.Address(ctx)
			if err != nil {
				return err
			}
			details, err := w.Network(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Connected: yes")
			fmt.Fprintf(out, "Address:   %s\n", address)
			fmt.Fprintf(out, "Network:   %s (%s)\n", details.Network, details.NetworkPassphrase)
			if details.NetworkPassphrase != a.cfg.NetworkPassphrase {
				fmt.Fprintf(out, "⚠️  wallet signs for %q but tokenctl targets %q\n", details.NetworkPassphrase, a.cfg.NetworkPassphrase)
			}
			return nil
		},
	}
}

func (a *app) newWalletServeCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local secret key over the wallet bridge API",
		Long: `Serve exposes the configured secret key through the JSON-RPC wallet
bridge so that other tokenctl processes can sign with --wallet-url
without holding the key themselves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.SecretKey == "" {
				return errors.New("wallet serve needs a secret key (--secret or TOKENCTL_SECRET_KEY)")
			}
			w, err := wallet.NewKeypairWallet(a.cfg.SecretKey, a.networkDetails())
			if err != nil {
				return err
			}
			handler, err := wallet.NewBridgeHandler(w, a.log.WithField("listen", listen))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serveBridge(ctx, listen, handler)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8765", "Address to listen on")
	return cmd
}

func (a *app) serveBridge(ctx context.Context, listen string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("listen", listen).Info("wallet bridge listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "wallet bridge")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.log.Info("wallet bridge shutting down")
	return srv.Shutdown(shutdownCtx)
}
