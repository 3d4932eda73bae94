package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticRecognizer(text string, err error, calls *int) Recognizer {
	return RecognizerFunc(func(ctx context.Context, ref ImageRef) (string, error) {
		if calls != nil {
			*calls++
		}
		return text, err
	})
}

func TestFallbackRecognizer_FirstSuccessWins(t *testing.T) {
	var secondCalls int
	f := NewFallbackRecognizer(
		Backend{"first", staticRecognizer("VALID UPTO 01/01/2030", nil, nil)},
		Backend{"second", staticRecognizer("other", nil, &secondCalls)},
	)

	text, err := f.Recognize(context.Background(), ImageRef{Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "VALID UPTO 01/01/2030", text)
	assert.Zero(t, secondCalls)
	assert.Equal(t, []string{"first", "second"}, f.Names())
}

func TestFallbackRecognizer_FallsThroughFailuresAndBlankText(t *testing.T) {
	f := NewFallbackRecognizer(
		Backend{"broken", staticRecognizer("", NewRecognitionError("x", ErrRecognitionFailed, ""), nil)},
		Backend{"blank", staticRecognizer("  \n ", nil, nil)},
		Backend{"good", staticRecognizer("EXPIRES 2031/03/04", nil, nil)},
	)

	text, err := f.Recognize(context.Background(), ImageRef{Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "EXPIRES 2031/03/04", text)
}

func TestFallbackRecognizer_AllBlankIsNotAnError(t *testing.T) {
	f := NewFallbackRecognizer(
		Backend{"broken", staticRecognizer("", errors.New("boom"), nil)},
		Backend{"blank", staticRecognizer("", nil, nil)},
	)

	text, err := f.Recognize(context.Background(), ImageRef{Data: pngBytes})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestFallbackRecognizer_AllFailed(t *testing.T) {
	f := NewFallbackRecognizer(
		Backend{"a", staticRecognizer("", NewRecognitionError("a", ErrRecognitionFailed, ""), nil)},
		Backend{"b", staticRecognizer("", errors.New("connection refused"), nil)},
	)

	_, err := f.Recognize(context.Background(), ImageRef{Data: pngBytes})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecognitionFailed)
	assert.Contains(t, err.Error(), "b: connection refused")
}

func TestFallbackRecognizer_InputErrorsStopTheChain(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unsupported image", NewRecognitionError("LoadImage", ErrUnsupportedImage, "application/pdf")},
		{"refused url", NewRecognitionError("CheckURL", ErrURLNotAllowed, "address 127.0.0.1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			f := NewFallbackRecognizer(
				Backend{"a", staticRecognizer("", tt.err, nil)},
				Backend{"b", staticRecognizer("text", nil, &calls)},
			)

			_, err := f.Recognize(context.Background(), ImageRef{URL: "http://127.0.0.1/"})
			assert.ErrorIs(t, err, errors.Unwrap(tt.err))
			assert.Zero(t, calls)
		})
	}
}

func TestFallbackRecognizer_StopsOnCanceledContext(t *testing.T) {
	var calls int
	f := NewFallbackRecognizer(Backend{"a", staticRecognizer("text", nil, &calls)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Recognize(ctx, ImageRef{Data: pngBytes})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestFallbackRecognizer_NoBackends(t *testing.T) {
	_, err := NewFallbackRecognizer().Recognize(context.Background(), ImageRef{})
	assert.ErrorIs(t, err, ErrNoBackends)
}

func TestNew_BuildsChainInOrder(t *testing.T) {
	f, err := New(context.Background(), Options{Backends: []string{" Paddle ", "tesseract"}})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{BackendPaddle, BackendTesseract}, f.Names())
}

func TestNew_DefaultsToTesseract(t *testing.T) {
	f, err := New(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{BackendTesseract}, f.Names())
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Options{Backends: []string{"abbyy"}})
	assert.ErrorContains(t, err, `unknown OCR backend "abbyy"`)
}

func TestRecognitionError(t *testing.T) {
	err := NewRecognitionError("FetchImage", ErrFetchFailed, "status 404")
	assert.Equal(t, "ocr: FetchImage failed: status 404: failed to fetch image", err.Error())
	assert.ErrorIs(t, err, ErrFetchFailed)

	bare := NewRecognitionError("Recognize", ErrNoBackends, "")
	assert.Equal(t, "ocr: Recognize failed: no OCR backends configured", bare.Error())

	assert.Same(t, err, WrapRecognitionError("Other", err, "ignored"))
	assert.Nil(t, WrapRecognitionError("Other", nil, ""))
}
