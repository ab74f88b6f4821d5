package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rflorenc/distribution-workbench/internal/api"
	"github.com/rflorenc/distribution-workbench/internal/config"
	"github.com/rflorenc/distribution-workbench/internal/controller"
	"github.com/rflorenc/distribution-workbench/internal/logging"
	"github.com/rflorenc/distribution-workbench/internal/tasks"
	"github.com/rflorenc/distribution-workbench/internal/uiloop"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workbench API and event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().String("listen", "", "HTTP listen address (default :8080)")
	cmd.Flags().Int("workers", 0, "Maximum number of tasks running at once (default 4)")
	cmd.Flags().Bool("demo", false, "Use a seeded in-memory service instead of the configured endpoint")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	loop := uiloop.New(256)
	go loop.Run(ctx)

	hub := api.NewHub()
	ctrl := controller.New(ctx, loop, client, hub, controller.Options{
		Placeholder:      cfg.Placeholder,
		SupersedeRefresh: cfg.SupersedeRefresh,
		Workers:          cfg.Workers,
		TaskHistory:      cfg.TaskHistory,
		Metrics:          tasks.NewMetrics(reg),
	})

	// Populate the list before the first client connects.
	if err := loop.Do(ctx, func() {
		if err := ctrl.OnRefreshRequested(); err != nil {
			logging.Warn("Main", "initial refresh: %v", err)
		}
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewRouter(&api.Server{Loop: loop, Controller: ctrl, Hub: hub, Gatherer: reg}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Main", "workbench %s listening on %s", version, cfg.Listen)
		fmt.Printf("Open http://localhost%s/api/distributions in your browser\n", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			loop.Stop()
			return err
		}
	case <-ctx.Done():
	}

	logging.Info("Main", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Main", err, "HTTP shutdown")
	}
	ctrl.Wait()
	loop.Stop()
	<-loop.Done()
	return nil
}
