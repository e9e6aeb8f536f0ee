package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/loom"
	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/internal/presentation/tui"
	httpAdapter "github.com/aretw0/loom/pkg/adapters/http"
	"github.com/aretw0/loom/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <scene>",
	Short: "Start the HTTP server",
	Long:  `Builds the scene and exposes its attributes, evaluation, simulation sessions and metrics over HTTP.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts, done, err := storeOptions(cmd)
		if err != nil {
			return err
		}
		defer done()
		opts = append(opts, loom.WithMetrics(observability.NewMetrics(reg)))
		eng, err := openEngine(cmd, args[0], opts...)
		if err != nil {
			return err
		}

		logger := logging.New(slog.LevelInfo)
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(eng, httpAdapter.WithGatherer(reg), httpAdapter.WithLogger(logger)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			tui.PrintBanner(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "Starting Loom Server on %s\n", srv.Addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving scene: %s\n", args[0])
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				return srv.Close()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Loom Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	addStoreFlags(serveCmd)
}
