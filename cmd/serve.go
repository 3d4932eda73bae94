package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/docvault/expiry-scanner/handler"
	"github.com/docvault/expiry-scanner/logger"
	"github.com/docvault/expiry-scanner/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Example: `  # Listen on SERVER_PORT (default 8080)
  expiry-scanner serve

  # Override the port
  expiry-scanner serve --port 9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "Port to listen on (default: SERVER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")
	cfg := appConfig

	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = cfg.ServerPort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	expirySvc, recognizer, err := newExpiryService(ctx, cfg)
	if err != nil {
		return err
	}
	defer recognizer.Close()

	uploadSvc := service.NewUploadService(expirySvc, service.RealClock{}, cfg.MaxFileSize, cfg.OCRLanguage)

	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(
		handler.NewExpiryHandler(expirySvc, cfg.MaxFileSize, cfg.URLPolicy()),
		handler.NewUploadHandler(uploadSvc, cfg.MaxFileSize),
	)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", port).
			Strs("backends", recognizer.Names()).
			Msg("Starting Expiry Scanner API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DetectionTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
