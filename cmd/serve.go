package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/api"
	"github.com/sells-group/pipeline-score/internal/validate"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the questionnaire and SEO HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		if err := validate.Load(); err != nil {
			return err
		}

		env, err := initApp()
		if err != nil {
			return err
		}

		opts := []api.Option{
			api.WithCORSOrigins(cfg.Server.CORSOrigins),
			api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		}
		if env.SEO != nil {
			opts = append(opts, api.WithSEO(env.SEO), api.WithBreakers(env.Breakers))
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.NewServer(env.Funnel, opts...).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("starting server",
				zap.Int("port", port),
				zap.Strings("sinks", env.Sinks),
				zap.Bool("seo", env.SEO != nil),
			)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- eris.Wrap(err, "server listen")
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		// Graceful shutdown: stop accepting requests, then let in-flight
		// deliveries finish within the same budget.
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}

		done := make(chan struct{})
		go func() {
			env.Funnel.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			zap.L().Warn("shutdown deadline reached with deliveries still in flight")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
