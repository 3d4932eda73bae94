package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/docvault/expiry-scanner/client"
	"github.com/docvault/expiry-scanner/dto"
	"github.com/docvault/expiry-scanner/logger"
)

var detectCmd = &cobra.Command{
	Use:   "detect [image-file-or-url...]",
	Short: "Detect expiry dates on local images or image URLs",
	Example: `  # Scan a licence photo
  expiry-scanner detect licence.jpg

  # Scan several inputs with day-first dates, as JSON
  expiry-scanner detect --day-first --json passport.png https://cdn.example.com/id.jpg

  # Use Vision first and fall back to Tesseract
  expiry-scanner detect --backend vision --backend tesseract card.png

  # gs:// objects are only readable through the Vision backend
  expiry-scanner detect --backend vision gs://scans/passport.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Bool("json", false, "Output as JSON")
	detectCmd.Flags().Duration("timeout", 0, "Per-image timeout (default: DETECTION_TIMEOUT)")
	detectCmd.Flags().Bool("day-first", false, "Read NN/NN/YYYY as day/month/year first")
	detectCmd.Flags().StringSlice("backend", nil, "OCR backends in fallback order (default: OCR_BACKENDS)")
	detectCmd.Flags().String("language", "", "Tesseract language code (default: OCR_LANGUAGE)")
	detectCmd.Flags().IntP("concurrency", "c", 4, "Images processed in parallel")
}

// DetectOutput is one line of detect output.
type DetectOutput struct {
	Input  string               `json:"input"`
	Result *dto.DetectionResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// detector is satisfied by service.ExpiryService.
type detector interface {
	Detect(ctx context.Context, ref client.ImageRef) *dto.DetectionResult
}

func runDetect(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("detect")
	cfg := *appConfig

	jsonOutput, _ := cmd.Flags().GetBool("json")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	language, _ := cmd.Flags().GetString("language")
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.DetectionTimeout = timeout
	}
	if cmd.Flags().Changed("day-first") {
		cfg.ExpiryDayFirst, _ = cmd.Flags().GetBool("day-first")
	}
	if backends, _ := cmd.Flags().GetStringSlice("backend"); len(backends) > 0 {
		cfg.OCRBackends = backends
	}
	if language == "" {
		language = cfg.OCRLanguage
	}

	svc, recognizer, err := newExpiryService(cmd.Context(), &cfg)
	if err != nil {
		return err
	}
	defer recognizer.Close()

	log.Debug().
		Int("inputs", len(args)).
		Strs("backends", recognizer.Names()).
		Bool("day_first", cfg.ExpiryDayFirst).
		Msg("Starting detection")

	gcs := slices.Contains(recognizer.Names(), client.BackendVision)
	outputs := detectInputs(cmd.Context(), svc, args, language, gcs, concurrency)
	return writeOutputs(cmd.OutOrStdout(), outputs, jsonOutput)
}

// detectInputs runs detection for every input with at most concurrency in flight.
// Results keep the order of inputs. gcs allows gs:// inputs.
func detectInputs(ctx context.Context, d detector, inputs []string, language string, gcs bool, concurrency int) []DetectOutput {
	outputs := make([]DetectOutput, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, input := range inputs {
		g.Go(func() error {
			outputs[i].Input = input

			ref, err := imageRefFor(input, language, gcs)
			if err != nil {
				outputs[i].Error = err.Error()
				return nil
			}
			res := d.Detect(gctx, ref)
			outputs[i].Result = res
			outputs[i].Error = res.Error
			return nil
		})
	}
	_ = g.Wait()

	return outputs
}

var errGCSNeedsVision = errors.New("gs:// inputs need the vision backend")

// imageRefFor turns a CLI argument into an ImageRef. Only the Vision backend
// reads gs:// objects, so they are refused unless gcs is set.
func imageRefFor(input, language string, gcs bool) (client.ImageRef, error) {
	if strings.HasPrefix(input, "gs://") {
		if !gcs {
			return client.ImageRef{}, errGCSNeedsVision
		}
		return client.ImageRef{URL: input, Language: language}, nil
	}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return client.ImageRef{URL: input, Language: language}, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return client.ImageRef{}, fmt.Errorf("failed to read image: %w", err)
	}
	return client.ImageRef{Data: data, Language: language}, nil
}

func writeOutputs(w io.Writer, outputs []DetectOutput, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}

	for _, out := range outputs {
		var line string
		switch {
		case out.Result == nil:
			line = "error: " + out.Error
		case out.Result.ExpiryDate != nil:
			line = out.Result.ExpiryDate.Format("2006-01-02")
		case out.Error != "":
			line = "no expiry date (" + string(out.Result.Outcome) + "): " + out.Error
		default:
			line = "no expiry date (" + string(out.Result.Outcome) + ")"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", out.Input, line); err != nil {
			return err
		}
	}
	return nil
}
