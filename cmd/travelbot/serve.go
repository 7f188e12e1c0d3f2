package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mansiraturi/travelbot/pkg/travelbot/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the planner as a JSON API over HTTP. Conversations are stepped
with POST /conversations/{id}/messages; health and Prometheus metrics
are exposed on /healthz and /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cmd, cfg)

		orch, cleanup, err := buildOrchestrator(context.Background(), cfg, logger)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		addr, _ := cmd.Flags().GetString("addr")
		if !cmd.Flags().Changed("addr") {
			addr = cfg.String("server.addr", addr)
		}

		api := httpapi.NewServer(orch, httpapi.WithLogger(logger))
		srv := &http.Server{
			Addr:    addr,
			Handler: api.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting http server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("closing server", "error", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
