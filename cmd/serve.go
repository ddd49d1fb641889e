package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hrportal/onboarding-api/app"
	"hrportal/onboarding-api/internal"
	"hrportal/onboarding-api/internal/auth"
	"hrportal/onboarding-api/internal/seed"
	"hrportal/onboarding-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if !a.cfg.Development() {
			gin.SetMode(gin.ReleaseMode)
		}

		var notifier auth.Notifier
		switch a.cfg.Dispatch.Mode {
		case "queue":
			q := service.NewQueueNotifier(a.cfg.Redis)
			defer q.Close()
			notifier = q
		default:
			notifier = service.NewDispatcher(a.cfg)
		}

		tokens, err := a.tokens()
		if err != nil {
			return err
		}

		m, err := a.manager(tokens, notifier)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if a.cfg.Admin.Email != "" {
			if _, err := seed.Admin(ctx, a.store, a.hasher, a.phoneRule(), a.cfg.Admin); err != nil {
				return err
			}
		}

		cleanup, err := service.CodeCleanup(a.cfg.Cleanup.Schedule, a.store, a.codes)
		if err != nil {
			return err
		}
		defer cleanup.Stop()

		srv := &http.Server{
			Addr: fmt.Sprintf(":%d", a.cfg.Host.Port),
			Handler: app.NewRouter(&internal.Deps{
				Config: a.cfg,
				Auth:   m,
				Tokens: tokens,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			zap.L().Info("Server starting", zap.String("addr", srv.Addr), zap.Bool("tls", a.cfg.Host.SSL.Enabled))

			if a.cfg.Host.SSL.Enabled {
				errc <- srv.ListenAndServeTLS(a.cfg.Host.SSL.CertificatePath, a.cfg.Host.SSL.CertificateKeyPath)
				return
			}

			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stopped, %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		zap.L().Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	},
}
