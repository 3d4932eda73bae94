package client

import (
	"context"
	"errors"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/docvault/expiry-scanner/logger"
)

// ErrMissingCredentials is returned when no Google Cloud credentials are available.
var ErrMissingCredentials = errors.New("google cloud credentials not found")

// visionLanguages maps Tesseract language codes to the BCP-47 hints Vision expects.
var visionLanguages = map[string]string{
	"eng": "en",
	"hin": "hi",
	"deu": "de",
	"fra": "fr",
	"spa": "es",
	"ita": "it",
	"por": "pt",
	"tam": "ta",
	"tel": "te",
	"ben": "bn",
	"mar": "mr",
	"guj": "gu",
	"kan": "kn",
	"mal": "ml",
}

// VisionCredentials selects how the Vision client authenticates.
// With both fields empty, application default credentials are used.
type VisionCredentials struct {
	JSON string
	File string
}

// VisionClient uses Google Cloud Vision document text detection.
type VisionClient struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewVisionClient dials the Vision API.
func NewVisionClient(ctx context.Context, creds VisionCredentials) (*VisionClient, error) {
	const op = "NewVisionClient"

	var opts []option.ClientOption
	switch {
	case creds.JSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(creds.JSON)))
	case creds.File != "":
		opts = append(opts, option.WithCredentialsFile(creds.File))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapRecognitionError(op, ErrMissingCredentials, err.Error())
		}
		return nil, WrapRecognitionError(op, err, "failed to create client")
	}

	return NewVisionClientWithClient(client), nil
}

// NewVisionClientWithClient wraps an existing annotator client.
func NewVisionClientWithClient(client *vision.ImageAnnotatorClient) *VisionClient {
	return &VisionClient{
		client: client,
		log:    logger.WithComponent("vision"),
	}
}

// Recognize runs DOCUMENT_TEXT_DETECTION on the referenced image.
func (v *VisionClient) Recognize(ctx context.Context, ref ImageRef) (string, error) {
	const op = "VisionRecognize"

	req, err := buildVisionRequest(ref)
	if err != nil {
		return "", NewRecognitionError(op, err, "")
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", NewRecognitionError(op, ErrRecognitionFailed, err.Error())
	}

	text, err := visionText(resp)
	if err != nil {
		return "", NewRecognitionError(op, err, "")
	}

	v.log.Debug().Int("chars", len(text)).Str("image", ref.Describe()).Msg("vision recognized image")
	return text, nil
}

// Close closes the underlying Vision client.
func (v *VisionClient) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

func buildVisionRequest(ref ImageRef) (*visionpb.BatchAnnotateImagesRequest, error) {
	image := &visionpb.Image{}
	switch {
	case len(ref.Data) > 0:
		image.Content = ref.Data
	case ref.URL != "":
		image.Source = &visionpb.ImageSource{ImageUri: ref.URL}
	default:
		return nil, ErrEmptyImage
	}

	var hints []string
	if lang, ok := visionLanguages[ref.Lang()]; ok {
		hints = []string{lang}
	}

	return &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: image,
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: hints},
			},
		},
	}, nil
}

func visionText(resp *visionpb.BatchAnnotateImagesResponse) (string, error) {
	if resp == nil || len(resp.Responses) == 0 {
		return "", ErrRecognitionFailed
	}

	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return "", errors.Join(ErrRecognitionFailed, errors.New(r.Error.Message))
	}

	if r.FullTextAnnotation != nil {
		return r.FullTextAnnotation.Text, nil
	}
	// The first entity holds the whole detected text.
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description, nil
	}
	return "", nil
}
