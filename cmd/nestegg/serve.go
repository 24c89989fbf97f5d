package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/api"
	"github.com/Veraticus/nest-egg/internal/certs"
	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/config"
)

const (
	shutdownTimeout = 10 * time.Second
	defaultCertDir  = "$HOME/.local/share/nestegg/certs"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := a.settings.ServerAddr
			if v := stringFlag(cmd, "addr"); v != nil {
				addr = *v
			}
			useTLS, _ := cmd.Flags().GetBool("tls")
			certDir, _ := cmd.Flags().GetString("cert-dir")
			return a.serve(cmd.Context(), cmd, addr, useTLS, config.ExpandPath(certDir))
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed certificate")
	cmd.Flags().String("cert-dir", defaultCertDir, "directory holding the self-signed certificate")

	return cmd
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command, addr string, useTLS bool, certDir string) error {
	store, err := a.openStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	srv, err := api.NewServer(store, api.Config{OwnerID: a.settings.OwnerID})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	scheme := "http"
	if useTLS {
		tlsConfig, err := certs.NewStore(certDir, certHosts(addr)...).TLSConfig()
		if err != nil {
			return fmt.Errorf("failed to prepare certificate: %w", err)
		}
		httpServer.TLSConfig = tlsConfig
		scheme = "https"
	}

	errCh := make(chan error, 1)
	go func() {
		if useTLS {
			errCh <- httpServer.ListenAndServeTLS("", "")
			return
		}
		errCh <- httpServer.ListenAndServe()
	}()

	fmt.Fprintln(out(cmd), cli.FormatInfo("Listening on "+scheme+"://"+addr))
	slog.Info("HTTP server started", "addr", addr, "tls", useTLS, "owner", a.settings.OwnerID)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Received interrupt signal, shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// certHosts lists the names the certificate must cover for addr.
func certHosts(addr string) []string {
	hosts := append([]string(nil), certs.DefaultHosts...)
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return hosts
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		return hosts
	}
	for _, h := range hosts {
		if h == host {
			return hosts
		}
	}
	return append(hosts, host)
}
