package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/docvault/expiry-scanner/logger"
)

// Backend names accepted in Options.Backends.
const (
	BackendTesseract = "tesseract"
	BackendVision    = "vision"
	BackendPaddle    = "paddle"
)

// Backend is a named Recognizer in a fallback chain.
type Backend struct {
	Name       string
	Recognizer Recognizer
}

// FallbackRecognizer tries each backend in order and returns the first
// non-blank text. Blank text from every backend is returned as "" with no error.
type FallbackRecognizer struct {
	backends []Backend
	closers  []func() error
	log      zerolog.Logger
}

func NewFallbackRecognizer(backends ...Backend) *FallbackRecognizer {
	return &FallbackRecognizer{
		backends: backends,
		log:      logger.WithComponent("recognizer"),
	}
}

// Recognize implements Recognizer.
func (f *FallbackRecognizer) Recognize(ctx context.Context, ref ImageRef) (string, error) {
	if len(f.backends) == 0 {
		return "", NewRecognitionError("Recognize", ErrNoBackends, "")
	}

	var errs []error
	blank := false
	for _, b := range f.backends {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := b.Recognizer.Recognize(ctx, ref)
		if err != nil {
			// Bad input fails the same way on every backend.
			if errors.Is(err, ErrEmptyImage) || errors.Is(err, ErrUnsupportedImage) || errors.Is(err, ErrImageTooLarge) ||
				errors.Is(err, ErrURLNotAllowed) {
				return "", err
			}
			f.log.Warn().Err(err).Str("backend", b.Name).Msg("backend failed, trying next")
			errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			f.log.Debug().Str("backend", b.Name).Msg("backend returned no text")
			blank = true
			continue
		}
		return text, nil
	}

	if blank {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", NewRecognitionError("Recognize", ErrRecognitionFailed, errors.Join(errs...).Error())
}

// Names lists the configured backends in order.
func (f *FallbackRecognizer) Names() []string {
	names := make([]string, len(f.backends))
	for i, b := range f.backends {
		names[i] = b.Name
	}
	return names
}

// Close releases backend resources.
func (f *FallbackRecognizer) Close() error {
	var errs []error
	for _, c := range f.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Options configures New.
type Options struct {
	Backends       []string
	TessdataPrefix string
	PaddleURL      string
	Vision         VisionCredentials
	MaxImageBytes  int64
	// AllowedHosts limits image downloads; empty allows any public host.
	AllowedHosts []string
}

// New builds the backend chain named in opts.Backends.
func New(ctx context.Context, opts Options) (*FallbackRecognizer, error) {
	fetcher := NewGuardedImageFetcher(URLPolicy{AllowedHosts: opts.AllowedHosts}, opts.MaxImageBytes)

	names := opts.Backends
	if len(names) == 0 {
		names = []string{BackendTesseract}
	}

	f := NewFallbackRecognizer()
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case BackendTesseract:
			f.backends = append(f.backends, Backend{BackendTesseract, NewTesseractClient(opts.TessdataPrefix, fetcher)})
		case BackendPaddle:
			f.backends = append(f.backends, Backend{BackendPaddle, NewPaddleClient(opts.PaddleURL, nil, fetcher)})
		case BackendVision:
			vc, err := NewVisionClient(ctx, opts.Vision)
			if err != nil {
				_ = f.Close()
				return nil, err
			}
			f.backends = append(f.backends, Backend{BackendVision, vc})
			f.closers = append(f.closers, vc.Close)
		default:
			_ = f.Close()
			return nil, fmt.Errorf("unknown OCR backend %q", name)
		}
	}

	return f, nil
}
