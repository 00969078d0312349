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

	httpAdapter "github.com/aretw0/roomflow/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transition API server",
	Long:  `Starts the roomflow transition executor behind a JSON API over HTTP, with an in-process declined-timeout sweeper.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		app, err := buildApp(configPath)
		if err != nil {
			fmt.Printf("Error initializing roomflowd: %v\n", err)
			os.Exit(1)
		}

		handler := httpAdapter.NewHandler(app.exec, app.registry,
			httpAdapter.WithLogger(app.logger))

		srv := &http.Server{
			Addr:    app.cfg.Listen,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			app.logger.Info("starting roomflowd server", "addr", srv.Addr, "store", app.cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		sweepCtx, stopSweep := context.WithCancel(context.Background())
		defer stopSweep()
		go func() {
			ticker := time.NewTicker(app.cfg.SweepInterval.Std())
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					moved, err := app.exec.SweepDeclined(sweepCtx)
					if err != nil {
						app.logger.Warn("declined sweep failed", "err", err)
						continue
					}
					if moved > 0 {
						app.logger.Info("declined sweep complete", "moved", moved)
					}
				}
			}
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			app.logger.Info("starting shutdown", "signal", sig.String())
			stopSweep()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				app.logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					app.logger.Error("error killing server", "err", err)
				}
			}
			app.logger.Info("roomflowd stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
