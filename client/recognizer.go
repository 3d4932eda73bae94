package client

import (
	"context"
	"strings"
)

// DefaultLanguage is the Tesseract language code used when an ImageRef has no hint.
const DefaultLanguage = "eng"

// ImageRef points at one document image, by URL or by its bytes.
// When both are set, Data is used.
type ImageRef struct {
	URL      string
	Data     []byte
	Language string
}

// Lang returns the language hint, defaulting to DefaultLanguage.
func (r ImageRef) Lang() string {
	if r.Language == "" {
		return DefaultLanguage
	}
	return r.Language
}

// Describe returns a short label for logs without leaking image bytes.
func (r ImageRef) Describe() string {
	if len(r.Data) > 0 {
		return "inline"
	}
	if r.URL == "" {
		return "empty"
	}
	// Signed URLs carry credentials in the query string.
	if i := strings.IndexByte(r.URL, '?'); i >= 0 {
		return r.URL[:i]
	}
	return r.URL
}

// Recognizer turns a document image into plain text.
// Implementations must not keep engine state between calls.
type Recognizer interface {
	Recognize(ctx context.Context, ref ImageRef) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, ref ImageRef) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, ref ImageRef) (string, error) {
	return f(ctx, ref)
}
