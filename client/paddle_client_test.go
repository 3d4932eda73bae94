package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddleClient_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req paddleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Images, 1)
		decoded, err := base64.StdEncoding.DecodeString(req.Images[0])
		require.NoError(t, err)
		assert.Equal(t, pngBytes, decoded)

		_, _ = w.Write([]byte(`{"results":[[{"text":"DRIVING LICENCE","confidence":0.98},{"text":"Valid Till 12-05-2031","confidence":0.91}]]}`))
	}))
	defer srv.Close()

	p := NewPaddleClient(srv.URL, srv.Client(), nil)
	text, err := p.Recognize(context.Background(), ImageRef{Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "DRIVING LICENCE\nValid Till 12-05-2031\n", text)
}

func TestPaddleClient_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	text, err := NewPaddleClient(srv.URL, srv.Client(), nil).Recognize(context.Background(), ImageRef{Data: pngBytes})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestPaddleClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewPaddleClient(srv.URL, srv.Client(), nil).Recognize(context.Background(), ImageRef{Data: pngBytes})
			assert.ErrorIs(t, err, ErrRecognitionFailed)
		})
	}
}

func TestPaddleClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPaddleClient(srv.URL, srv.Client(), nil).Recognize(ctx, ImageRef{Data: pngBytes})
	assert.ErrorIs(t, err, context.Canceled)
}
