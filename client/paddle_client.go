package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/docvault/expiry-scanner/logger"
)

// DefaultPaddleURL is the PaddleHub serving endpoint for the OCR system pipeline.
const DefaultPaddleURL = "http://paddleocr:8866/predict/ocr_system"

// PaddleClient calls a PaddleOCR HTTP service.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
	fetcher    *ImageFetcher
	log        zerolog.Logger
}

// NewPaddleClient creates a PaddleOCR client for apiURL.
func NewPaddleClient(apiURL string, httpClient *http.Client, fetcher *ImageFetcher) *PaddleClient {
	if apiURL == "" {
		apiURL = DefaultPaddleURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if fetcher == nil {
		fetcher = NewImageFetcher(nil, 0)
	}
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: httpClient,
		fetcher:    fetcher,
		log:        logger.WithComponent("paddleocr"),
	}
}

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// Recognize sends the image to PaddleOCR and joins the recognized lines.
func (p *PaddleClient) Recognize(ctx context.Context, ref ImageRef) (string, error) {
	const op = "PaddleRecognize"

	data, _, err := p.fetcher.Load(ctx, ref)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(data)},
	})
	if err != nil {
		return "", NewRecognitionError(op, err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", NewRecognitionError(op, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", NewRecognitionError(op, ErrRecognitionFailed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", NewRecognitionError(op, ErrRecognitionFailed,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", NewRecognitionError(op, ErrRecognitionFailed, "decode response: "+err.Error())
	}

	var sb strings.Builder
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			sb.WriteString(line.Text)
			sb.WriteString("\n")
		}
	}

	text := sb.String()
	p.log.Debug().Int("chars", len(text)).Str("image", ref.Describe()).Msg("paddleocr recognized image")
	return text, nil
}
