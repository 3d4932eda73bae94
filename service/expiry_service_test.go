package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docvault/expiry-scanner/client"
	"github.com/docvault/expiry-scanner/dto"
	"github.com/docvault/expiry-scanner/utils/expiry"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, ref client.ImageRef) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

var newYear2024 = MockClock{CurrentTime: time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)}

func newTestService(r client.Recognizer, timeout time.Duration) *ExpiryService {
	cfg := expiry.DefaultConfig()
	cfg.Location = time.UTC
	return NewExpiryService(r, expiry.NewDetector(cfg), newYear2024, timeout)
}

func TestDetect_FindsExpiryDate(t *testing.T) {
	ref := client.ImageRef{URL: "https://files.example.com/dl.jpg"}
	rec := new(MockRecognizer)
	rec.On("Recognize", mock.Anything, ref).Return("DRIVING LICENCE\nID VALID UPTO 10/12/2025 REF 2021", nil)

	result := newTestService(rec, 0).Detect(context.Background(), ref)

	rec.AssertExpectations(t)
	assert.Equal(t, dto.OutcomeDetected, result.Outcome)
	require.NotNil(t, result.ExpiryDate)
	assert.Equal(t, time.Date(2025, time.October, 12, 0, 0, 0, 0, time.UTC), *result.ExpiryDate)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, 25, result.Candidates[0].Score)
	assert.Equal(t, "trailing_year", result.Candidates[0].Shape)
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.Error)
}

func TestDetect_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		outcome dto.DetectionOutcome
	}{
		{"recognizer error", "", errors.New("tesseract crashed"), dto.OutcomeRecognitionFailed},
		{"blank text", " \n\t ", nil, dto.OutcomeNoText},
		{"no dates", "PERMANENT ACCOUNT NUMBER", nil, dto.OutcomeNoCandidates},
		{"only past or invalid dates", "ISSUED 05/03/2020 EXPIRES 03/13/2020", nil, dto.OutcomeNoFutureDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := new(MockRecognizer)
			rec.On("Recognize", mock.Anything, mock.Anything).Return(tt.text, tt.err)

			svc := newTestService(rec, 0)
			result := svc.Detect(context.Background(), client.ImageRef{URL: "https://x/y.png"})

			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Nil(t, result.ExpiryDate)
			assert.Nil(t, svc.DetectExpiryDate(context.Background(), client.ImageRef{URL: "https://x/y.png"}))
		})
	}
}

func TestDetect_TimesOut(t *testing.T) {
	rec := client.RecognizerFunc(func(ctx context.Context, ref client.ImageRef) (string, error) {
		time.Sleep(time.Second)
		return "VALID UPTO 01/01/2030", nil
	})

	started := time.Now()
	result := newTestService(rec, 20*time.Millisecond).Detect(context.Background(), client.ImageRef{Data: []byte{1}})

	assert.Less(t, time.Since(started), 500*time.Millisecond)
	assert.Equal(t, dto.OutcomeTimedOut, result.Outcome)
	assert.Nil(t, result.ExpiryDate)
}

func TestDetect_RecoversRecognizerPanic(t *testing.T) {
	rec := client.RecognizerFunc(func(ctx context.Context, ref client.ImageRef) (string, error) {
		panic("leptonica: bad image")
	})

	var result *dto.DetectionResult
	assert.NotPanics(t, func() {
		result = newTestService(rec, 0).Detect(context.Background(), client.ImageRef{Data: []byte{1}})
	})
	assert.Equal(t, dto.OutcomeRecognitionFailed, result.Outcome)
	assert.Contains(t, result.Error, "leptonica: bad image")
}

func TestDetect_RunIDsAreUnique(t *testing.T) {
	rec := new(MockRecognizer)
	rec.On("Recognize", mock.Anything, mock.Anything).Return("", nil)
	svc := newTestService(rec, 0)

	a := svc.Detect(context.Background(), client.ImageRef{Data: []byte{1}})
	b := svc.Detect(context.Background(), client.ImageRef{Data: []byte{1}})
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestDetectExpiryDate_UsesInjectedClock(t *testing.T) {
	rec := new(MockRecognizer)
	rec.On("Recognize", mock.Anything, mock.Anything).Return("valid till 01/06/2024", nil)

	cfg := expiry.DefaultConfig()
	cfg.Location = time.UTC
	late := MockClock{CurrentTime: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)}

	got := NewExpiryService(rec, expiry.NewDetector(cfg), late, 0).DetectExpiryDate(context.Background(), client.ImageRef{Data: []byte{1}})
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), *got)

	// Both readings are past by autumn.
	autumn := MockClock{CurrentTime: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)}
	got = NewExpiryService(rec, expiry.NewDetector(cfg), autumn, 0).DetectExpiryDate(context.Background(), client.ImageRef{Data: []byte{1}})
	assert.Nil(t, got)
}
