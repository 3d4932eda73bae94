package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docvault/expiry-scanner/client"
	"github.com/docvault/expiry-scanner/config"
	"github.com/docvault/expiry-scanner/logger"
	"github.com/docvault/expiry-scanner/service"
	"github.com/docvault/expiry-scanner/utils/expiry"
)

var version = "1.0.0"

var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "expiry-scanner",
	Short: "Detect expiry dates on scanned documents",
	Long: `expiry-scanner reads identity cards, licences, certificates and other
scanned documents with OCR and picks out the most plausible future expiry date.

Run "serve" for the HTTP API or "detect" to scan local files and URLs.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI with the loaded configuration.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	appConfig = cfg

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// newExpiryService builds the recognizer chain and detector from cfg.
// The returned recognizer must be closed by the caller.
func newExpiryService(ctx context.Context, cfg *config.Config) (*service.ExpiryService, *client.FallbackRecognizer, error) {
	recognizer, err := client.New(ctx, cfg.RecognizerOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OCR backends: %w", err)
	}

	detector := expiry.NewDetector(cfg.ExpiryConfig())
	svc := service.NewExpiryService(recognizer, detector, service.RealClock{}, cfg.DetectionTimeout)
	return svc, recognizer, nil
}
