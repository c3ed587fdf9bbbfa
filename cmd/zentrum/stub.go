package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/zentrum/internal/certs"
	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/config"
	"github.com/Veraticus/zentrum/internal/stubserver"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func stubCmd() *cobra.Command {
	var (
		addr    string
		useTLS  bool
		certDir string
	)

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run an in-memory extraction service for local testing",
		Long: `Serve the extraction API from memory. Uploaded PDFs yield one Beruf named after
the file; nothing is persisted. Point the client at it with --server.

With --tls the stub serves HTTPS using a self-signed localhost certificate kept
in --cert-dir. Clients trust it by setting server.ca_file to the printed path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			gin.SetMode(gin.ReleaseMode)
			stub := stubserver.New(stubserver.WithLogger(slog.Default()))

			server := &http.Server{
				Addr:              addr,
				Handler:           stub.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			scheme := "http"
			if useTLS {
				manager := certs.NewFileManager(config.ExpandPath(certDir))
				cert, err := manager.GetOrCreateCertificate()
				if err != nil {
					return fmt.Errorf("failed to prepare certificate: %w", err)
				}
				server.TLSConfig = &tls.Config{
					Certificates: []tls.Certificate{cert},
					MinVersion:   tls.VersionTLS12,
				}
				scheme = "https"
				printLine(cmd.OutOrStdout(), cli.FormatInfo("Certificate: "+manager.CertFile()))
			}

			errorChan := make(chan error, 1)
			go func() {
				var err error
				if useTLS {
					err = server.ListenAndServeTLS("", "")
				} else {
					err = server.ListenAndServe()
				}
				if !errors.Is(err, http.ErrServerClosed) {
					errorChan <- fmt.Errorf("failed to start server: %w", err)
				}
			}()

			printLine(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Stub extraction service listening on %s://%s", scheme, addr)))

			select {
			case err := <-errorChan:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			slog.Info("stub server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().BoolVar(&useTLS, "tls", false, "serve HTTPS with a self-signed certificate")
	cmd.Flags().StringVar(&certDir, "cert-dir", "$HOME/.local/share/zentrum/certs", "directory holding the stub certificate")
	return cmd
}
