package client

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/docvault/expiry-scanner/logger"
)

// DefaultTessdataPrefix is where Debian's tesseract-ocr 5 package installs language data.
const DefaultTessdataPrefix = "/usr/share/tesseract-ocr/5/tessdata/"

// TesseractClient runs the local Tesseract engine. A fresh engine is
// created for every call, so one client may be shared across goroutines.
type TesseractClient struct {
	dataPath string
	fetcher  *ImageFetcher
	log      zerolog.Logger
}

func NewTesseractClient(dataPath string, fetcher *ImageFetcher) *TesseractClient {
	if dataPath == "" {
		dataPath = DefaultTessdataPrefix
	}
	if fetcher == nil {
		fetcher = NewImageFetcher(nil, 0)
	}
	return &TesseractClient{
		dataPath: dataPath,
		fetcher:  fetcher,
		log:      logger.WithComponent("tesseract"),
	}
}

// Recognize extracts text from the referenced image.
func (tc *TesseractClient) Recognize(ctx context.Context, ref ImageRef) (string, error) {
	text, _, err := tc.RecognizeWithConfidence(ctx, ref)
	return text, err
}

// RecognizeWithConfidence extracts text and the mean word confidence (0-100).
func (tc *TesseractClient) RecognizeWithConfidence(ctx context.Context, ref ImageRef) (string, float64, error) {
	data, _, err := tc.fetcher.Load(ctx, ref)
	if err != nil {
		return "", 0, err
	}

	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	// The engine call cannot be interrupted, so it runs on its own goroutine
	// and is abandoned if ctx ends first.
	type outcome struct {
		text string
		conf float64
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, conf, err := tc.run(data, ref.Lang())
		done <- outcome{text, conf, err}
	}()

	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	case o := <-done:
		if o.err != nil {
			return "", 0, o.err
		}
		tc.log.Debug().
			Int("chars", len(o.text)).
			Float64("confidence", o.conf).
			Str("image", ref.Describe()).
			Msg("tesseract recognized image")
		return o.text, o.conf, nil
	}
}

func (tc *TesseractClient) run(data []byte, lang string) (string, float64, error) {
	const op = "TesseractRecognize"

	client := gosseract.NewClient()
	defer client.Close()

	client.SetTessdataPrefix(tc.dataPath)

	if err := client.SetLanguage(lang); err != nil {
		return "", 0, NewRecognitionError(op, ErrRecognitionFailed, "set language: "+err.Error())
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return "", 0, NewRecognitionError(op, ErrRecognitionFailed, "set image: "+err.Error())
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, NewRecognitionError(op, ErrRecognitionFailed, err.Error())
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Text is still usable without confidence.
		tc.log.Debug().Err(err).Msg("bounding boxes unavailable")
		return text, 0, nil
	}

	confidences := make([]float64, 0, len(boxes))
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		confidences = append(confidences, box.Confidence)
	}

	return text, meanConfidence(confidences), nil
}

func meanConfidence(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
