/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/handler"
	"github.com/tieubaoca/docqa-be/middleware"
	"github.com/tieubaoca/docqa-be/service"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Long:  `Starts a server exposing /upload, /summarize, /ask, /translate and /health.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(context.Background(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close(context.Background())
		logger := a.logger

		port := a.cfg.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetString("port")
		}

		fileService, err := service.NewFileService(a.cfg.UploadDir, a.cfg.MaxUploadSize, logger)
		if err != nil {
			return err
		}

		// Initialize handlers
		corsHandler := handler.NewCorsHandler(a.cfg.AllowedOrigins)
		ragHandler := handler.NewRAGHandler(a.rag, fileService, logger)

		if a.cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.New()
		router.Use(gin.Recovery())
		router.Use(middleware.RequestLogger(logger))
		router.Use(corsHandler.CorsMiddleware)
		ragHandler.Register(router)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting server", zap.String("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("port", "p", "8000", "port to listen on (overrides config)")
}
