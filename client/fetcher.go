package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxImageBytes caps downloads and inline uploads at 10MB.
const DefaultMaxImageBytes = 10 << 20

const defaultFetchTimeout = 20 * time.Second

// ImageFetcher resolves an ImageRef into raw image bytes.
type ImageFetcher struct {
	httpClient *http.Client
	policy     *URLPolicy
	maxBytes   int64
}

// NewImageFetcher creates a fetcher. A nil client falls back to a guarded
// fetcher with an empty URLPolicy; a caller-supplied client is used as is.
// maxBytes <= 0 uses DefaultMaxImageBytes.
func NewImageFetcher(httpClient *http.Client, maxBytes int64) *ImageFetcher {
	if httpClient == nil {
		return NewGuardedImageFetcher(URLPolicy{}, maxBytes)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &ImageFetcher{httpClient: httpClient, maxBytes: maxBytes}
}

// NewGuardedImageFetcher creates a fetcher that checks every URL against
// policy and only connects to public addresses.
func NewGuardedImageFetcher(policy URLPolicy, maxBytes int64) *ImageFetcher {
	f := NewImageFetcher(NewGuardedHTTPClient(defaultFetchTimeout, policy), maxBytes)
	f.policy = &policy
	return f
}

// Load returns the image bytes for ref and their detected MIME type.
func (f *ImageFetcher) Load(ctx context.Context, ref ImageRef) ([]byte, string, error) {
	const op = "LoadImage"

	data := ref.Data
	if len(data) == 0 {
		if ref.URL == "" {
			return nil, "", NewRecognitionError(op, ErrEmptyImage, "")
		}
		var err error
		data, err = f.fetch(ctx, ref.URL)
		if err != nil {
			return nil, "", err
		}
	}

	if int64(len(data)) > f.maxBytes {
		return nil, "", NewRecognitionError(op, ErrImageTooLarge, fmt.Sprintf("size: %d bytes", len(data)))
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, "", NewRecognitionError(op, ErrUnsupportedImage, mime.String())
	}

	return data, mime.String(), nil
}

func (f *ImageFetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	const op = "FetchImage"

	if f.policy != nil {
		if err := f.policy.Check(url); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewRecognitionError(op, ErrFetchFailed, err.Error())
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrURLNotAllowed) {
			return nil, NewRecognitionError(op, ErrURLNotAllowed, err.Error())
		}
		return nil, NewRecognitionError(op, ErrFetchFailed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewRecognitionError(op, ErrFetchFailed, fmt.Sprintf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, NewRecognitionError(op, ErrFetchFailed, err.Error())
	}
	if int64(len(data)) > f.maxBytes {
		return nil, NewRecognitionError(op, ErrImageTooLarge, fmt.Sprintf("more than %d bytes", f.maxBytes))
	}

	return data, nil
}
