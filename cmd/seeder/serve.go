package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legalaid-seeder/internal/common/config"
	"legalaid-seeder/internal/store/codes"
	builddata "legalaid-seeder/internal/workers/data/build-data"
	purgedata "legalaid-seeder/internal/workers/data/purge-data"
	buildusers "legalaid-seeder/internal/workers/users/build-users"
	purgetestusers "legalaid-seeder/internal/workers/users/purge-test-users"
	"legalaid-seeder/pkg/registry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Address = addr
			}
			if err := a.requireBackend(); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.address)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := a.newRouter(ctx)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  config.GetDuration(a.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(a.cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Seeder listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutdown signal received, stopping server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("Server stopped", nil)
	return nil
}

// newRouter mounts every enabled operation at its registry path. The user
// operations are only mounted when the auth admin API is configured.
func (a *app) newRouter(ctx context.Context) (http.Handler, error) {
	reg, err := registry.Default()
	if err != nil {
		return nil, err
	}
	codeRegistry, err := a.openCodes(ctx)
	if err != nil {
		return nil, err
	}
	sinks := a.sinks()

	mux := http.NewServeMux()
	mount := func(operationID string, h http.Handler) {
		if !config.IsOperationEnabled(a.cfg, operationID) {
			a.log.Info("Operation disabled, not mounted", map[string]interface{}{"operation": operationID})
			return
		}
		op := registry.MustLookup(operationID)
		mux.Handle(op.Path, h)
		a.log.Info("Operation mounted", map[string]interface{}{"operation": operationID, "path": op.Path})
	}

	buildData, err := builddata.NewHandler(builddata.HandlerOptions{
		AppConfig: a.cfg, Engine: a.engine, Sinks: sinks, Codes: codeRegistry, Observability: a.obs, Logger: a.log,
	})
	if err != nil {
		return nil, err
	}
	mount(builddata.OperationID, buildData)

	purgeData, err := purgedata.NewHandler(purgedata.HandlerOptions{
		AppConfig: a.cfg, Sinks: sinks, Codes: codeRegistry, Observability: a.obs, Logger: a.log,
	})
	if err != nil {
		return nil, err
	}
	mount(purgedata.OperationID, purgeData)

	if admin, err := a.adminClient(); err != nil {
		a.log.Warn("Auth admin API not configured, user operations disabled", map[string]interface{}{"error": err.Error()})
	} else {
		buildUsers, err := buildusers.NewHandler(buildusers.HandlerOptions{
			AppConfig: a.cfg, Engine: a.engine, Admin: admin, Sinks: sinks, Observability: a.obs, Logger: a.log,
		})
		if err != nil {
			return nil, err
		}
		mount(buildusers.OperationID, buildUsers)

		purgeUsers, err := purgetestusers.NewHandler(purgetestusers.HandlerOptions{
			AppConfig: a.cfg, Admin: admin, Sinks: sinks, Observability: a.obs, Logger: a.log,
		})
		if err != nil {
			return nil, err
		}
		mount(purgetestusers.OperationID, purgeUsers)
	}

	mux.HandleFunc("GET /operations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("GET /readyz", readyHandler(codeRegistry))
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux, nil
}

func readyHandler(reg codes.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := reg.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
