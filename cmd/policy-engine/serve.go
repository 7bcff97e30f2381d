// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/policy-engine/internal/api"
	"github.com/pdiddy/policy-engine/internal/secrets"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clause lookup and search over HTTP",
	Long: `Serve exposes the engine as a JSON HTTP API:

  GET|POST /clause            clause lookup
  GET      /policies          catalog
  GET      /policies/lookup   one policy by id or title
  GET|POST /search            full-text search
  GET      /healthz, /metrics

When an API token is configured (.secrets/api-token or --token) every API
route requires "Authorization: Bearer <token>". Send SIGHUP to reload the
corpus; queries in flight finish against the previous index.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	token, _ := cmd.Flags().GetString("token")
	router := api.NewRouter(eng.svc, api.RouterOptions{
		Token:   loadedSecrets.Get(secrets.APIToken, token),
		Metrics: eng.metrics,
		Logger:  &eng.log,
	})
	srv := &http.Server{
		Addr:              eng.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if _, err := eng.svc.Reload(ctx, eng.source); err != nil {
					eng.log.Error().Err(err).Msg("reload failed")
				}
			}
		}
	}()

	errc := make(chan error, 1)
	go func() {
		eng.log.Info().Str("addr", srv.Addr).Int("policies", eng.svc.Index().Len()).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	eng.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	serveCmd.Flags().String("token", "", "bearer token required by API routes")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
