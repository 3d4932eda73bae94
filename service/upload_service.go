package service

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/docvault/expiry-scanner/client"
	"github.com/docvault/expiry-scanner/dto"
	"github.com/docvault/expiry-scanner/logger"
)

const (
	MessageDetected = "File uploaded & expiry detected!"
	MessageUploaded = "File uploaded successfully"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// PDF and Word documents are stored as raw files and never scanned.
var (
	rawMimeTypes = []string{
		"application/pdf",
		"application/msword",
		"application/x-ole-storage",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	rawExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}
)

// ExpiryDetector is the part of ExpiryService that intake depends on.
type ExpiryDetector interface {
	DetectExpiryDate(ctx context.Context, ref client.ImageRef) *time.Time
}

// UploadService accepts document uploads and fills in their expiry date.
type UploadService struct {
	detector ExpiryDetector
	clock    Clock
	maxSize  int64
	language string
	log      zerolog.Logger
}

func NewUploadService(detector ExpiryDetector, clock Clock, maxSize int64, language string) *UploadService {
	if clock == nil {
		clock = RealClock{}
	}
	return &UploadService{
		detector: detector,
		clock:    clock,
		maxSize:  maxSize,
		language: language,
		log:      logger.WithComponent("upload"),
	}
}

// Scan validates an upload and resolves its expiry date. Errors are only
// returned for bad requests; a failed detection just leaves the date empty.
func (s *UploadService) Scan(ctx context.Context, req dto.UploadRequest) (*dto.FileRecord, error) {
	if err := req.Validate(s.maxSize); err != nil {
		return nil, err
	}
	category, err := dto.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	mime := mimetype.Detect(req.Data)
	now := s.clock.Now()
	record := &dto.FileRecord{
		Filename:   req.Filename,
		StoredName: fmt.Sprintf("%d_%s", now.UnixMilli(), SanitizeFilename(req.Filename)),
		MimeType:   mime.String(),
		Kind:       storageKind(mime, req.Filename),
		Size:       int64(len(req.Data)),
		Category:   category,
		UploadedAt: now,
	}

	log := s.log.With().Str("file", record.StoredName).Str("kind", string(record.Kind)).Logger()

	// A date chosen by the user always wins.
	if req.ExpiryDate != nil {
		record.ExpiryDate = req.ExpiryDate
		log.Debug().Msg("using user supplied expiry date")
		return record, nil
	}

	if record.Kind != dto.StorageImage {
		return record, nil
	}

	if date := s.detector.DetectExpiryDate(ctx, client.ImageRef{Data: req.Data, Language: s.language}); date != nil {
		record.ExpiryDate = date
		record.IsAutoDetected = true
		log.Info().Time("expiry_date", *date).Msg("expiry detected on upload")
	}

	return record, nil
}

// UploadMessage is the user-facing summary for an accepted upload.
func UploadMessage(record *dto.FileRecord) string {
	if record.IsAutoDetected {
		return MessageDetected
	}
	return MessageUploaded
}

// SanitizeFilename replaces everything outside [a-zA-Z0-9._-] with "_".
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

func storageKind(mime *mimetype.MIME, filename string) dto.StorageKind {
	if rawExtensions[strings.ToLower(filepath.Ext(filename))] {
		return dto.StorageRaw
	}
	for m := mime; m != nil; m = m.Parent() {
		for _, raw := range rawMimeTypes {
			if m.Is(raw) {
				return dto.StorageRaw
			}
		}
	}
	return dto.StorageImage
}
