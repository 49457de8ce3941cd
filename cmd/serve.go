package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/davka-nysa/davka/internal/handlers"
	"github.com/davka-nysa/davka/internal/media"
	"github.com/davka-nysa/davka/internal/retention"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the café web server",
		Long: `Starts the Davka site on the configured port.

Serves the landing page with the daily showcase, the JSON API used by the
showcase and the admin panel, and the admin panel itself under
/witryna/admin. When the local media store is in use, old showcase images
are pruned on the RETENTION_SCHEDULE cron.`,
		Example: `  # Start server on PORT from the environment (default 8080)
  davka serve

  # Start server on custom port
  davka serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			clock, err := cfg.Clock()
			if err != nil {
				return err
			}
			store, err := media.Open(cfg.Media())
			if err != nil {
				return err
			}
			defer store.Close()

			opts := handlers.Options{
				AdminToken:      cfg.AdminToken,
				SiteUser:        cfg.SiteUser,
				SitePassword:    cfg.SitePassword,
				UploadFolder:    cfg.UploadFolder,
				StaticDir:       cfg.StaticDir,
				ListCacheTTL:    cfg.ListCacheTTL,
				SessionTTL:      cfg.SessionTTL,
				VerifyPerMinute: cfg.VerifyPerMinute,
				TrustProxy:      cfg.TrustProxy,
			}
			if local, ok := store.(*media.Local); ok {
				opts.MediaDir = local.Dir()
			}
			if cfg.AdminToken == "" {
				slog.Warn("ADMIN_TOKEN is not set, admin endpoints will reject every request")
			}

			handler, err := handlers.New(store, clock, opts)
			if err != nil {
				return fmt.Errorf("failed to initialize handlers: %w", err)
			}

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				slog.Info("Davka available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			})
			if job := retention.New(store, clock, cfg.RetentionDays); job != nil {
				g.Go(func() error {
					return job.Start(ctx, cfg.RetentionSchedule)
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}
