package client

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrRecognitionFailed is returned when an OCR engine could not process the image.
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrFetchFailed is returned when an image URL could not be downloaded.
	ErrFetchFailed = errors.New("failed to fetch image")

	// ErrUnsupportedImage is returned when the data is not a raster image.
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrImageTooLarge is returned when the image exceeds the configured size limit.
	ErrImageTooLarge = errors.New("image exceeds maximum size limit")

	// ErrURLNotAllowed is returned when an image URL points somewhere the
	// service must not reach.
	ErrURLNotAllowed = errors.New("image URL not allowed")

	// ErrEmptyImage is returned when an ImageRef carries neither a URL nor data.
	ErrEmptyImage = errors.New("image reference is empty")

	// ErrNoBackends is returned when a recognizer chain has nothing to run.
	ErrNoBackends = errors.New("no OCR backends configured")
)

// RecognitionError wraps errors with the operation that failed.
type RecognitionError struct {
	// Op is the operation that failed (e.g., "TesseractRecognize", "FetchImage").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RecognitionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// NewRecognitionError creates a RecognitionError.
func NewRecognitionError(op string, err error, details string) *RecognitionError {
	return &RecognitionError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapRecognitionError wraps err unless it already is a RecognitionError.
func WrapRecognitionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var recErr *RecognitionError
	if errors.As(err, &recErr) {
		return err
	}

	return NewRecognitionError(op, err, details)
}
