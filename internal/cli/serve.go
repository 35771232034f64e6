package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/handler"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/router"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the offline queue sync worker and the local API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := app.log

			// Start sync worker
			app.worker.Start()

			// Start local API if enabled
			var apiServer *server.Server
			if app.cfg.Server.Enabled {
				shiftHandler := handler.NewShiftHandler(app.shifts, app.reports, app.worker, log.Logger)
				apiServer = server.New(app.cfg.Server.Port, router.New(shiftHandler, log.Logger), log.Logger)
				if err := apiServer.Start(); err != nil {
					app.worker.Stop()
					return err
				}
			} else {
				log.Info("Local API disabled in configuration")
			}

			log.Info("Shift tracker started successfully",
				zap.String("device_id", app.deviceID),
				zap.String("backend_url", app.cfg.Backend.BaseURL),
			)

			// Wait for interrupt signal to gracefully shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case sig := <-quit:
				log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			case <-cmd.Context().Done():
			}

			log.Info("Shutting down shift tracker")

			if apiServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := apiServer.Shutdown(ctx); err != nil {
					log.Warn("Local API shutdown error", zap.Error(err))
				}
			}

			// Stop sync worker, flushing once more
			app.worker.Stop()
			return nil
		},
	}
}
