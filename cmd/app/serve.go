package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prasetyowira/cardgen/api"
	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/infrastructure/cache"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the batch generation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.cfg

			if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output root: %w", err)
			}

			a, err := newApp(flags, historyRequired)
			if err != nil {
				return err
			}
			defer closeApp(a)

			// Create API handler and router
			handler := api.NewHandler(a.service, a.qr, cache.NewNamespaceLRU[[]byte](cfg.CacheSize), api.Options{
				OutputDir:       cfg.OutputDir,
				MaxUploadSize:   cfg.MaxUploadSize,
				DefaultFontSize: cfg.FontSize,
			})
			router := api.NewRouter(handler, cfg.AuthUser, cfg.AuthPass)
			router.SetupRoutes()

			// Batches are generated inside the request
			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", port),
				Handler:      router,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 5 * time.Minute,
				IdleTimeout:  60 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				appLogger.Info(constant.MsgServerStarting, appLogger.LoggerInfo{
					ContextFunction: constant.CtxMain,
					Data: map[string]interface{}{
						constant.DataPort:      port,
						constant.DataOutputDir: cfg.OutputDir,
						constant.DataDBPath:    flags.historyDB,
					},
				})

				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					appLogger.Error(constant.MsgServerFailedToStart, appLogger.LoggerInfo{
						ContextFunction: constant.CtxMain,
						Error: &appLogger.CustomError{
							Code:    constant.ErrCodeAppServerStart,
							Message: err.Error(),
							Type:    constant.ErrTypeApp,
						},
						Data: map[string]interface{}{
							constant.DataPort: port,
						},
					})
					serverErr <- err
				}
			}()

			// Set up graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)
			defer signal.Stop(quit)

			select {
			case err := <-serverErr:
				return err
			case <-quit:
			}

			appLogger.Info(constant.MsgServerShuttingDown, appLogger.LoggerInfo{
				ContextFunction: constant.CtxMain,
			})

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				appLogger.Error(constant.MsgServerShutdownError, appLogger.LoggerInfo{
					ContextFunction: constant.CtxMain,
					Error: &appLogger.CustomError{
						Code:    constant.ErrCodeAppServerShutdown,
						Message: err.Error(),
						Type:    constant.ErrTypeApp,
					},
				})
				return err
			}

			appLogger.Info(constant.MsgServerStopped, appLogger.LoggerInfo{
				ContextFunction: constant.CtxMain,
			})
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", flags.cfg.Port, "HTTP port")
	return cmd
}
