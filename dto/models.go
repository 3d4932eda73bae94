package dto

import (
	"strings"
	"time"
)

type DocumentCategory string

const (
	CategoryIdentity  DocumentCategory = "Identity"
	CategoryMedical   DocumentCategory = "Medical"
	CategoryEducation DocumentCategory = "Education"
	CategoryWork      DocumentCategory = "Work"
	CategoryFinancial DocumentCategory = "Financial"
	CategoryOthers    DocumentCategory = "Others"
)

var categories = []DocumentCategory{
	CategoryIdentity,
	CategoryMedical,
	CategoryEducation,
	CategoryWork,
	CategoryFinancial,
	CategoryOthers,
}

// ParseCategory matches a category name case-insensitively. Blank means Others.
func ParseCategory(s string) (DocumentCategory, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOthers, nil
	}
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// StorageKind says how an upload would be stored downstream.
type StorageKind string

const (
	StorageImage StorageKind = "image"
	StorageRaw   StorageKind = "raw"
)

// FileRecord describes an accepted upload.
type FileRecord struct {
	Filename       string           `json:"filename"`
	StoredName     string           `json:"stored_name"`
	MimeType       string           `json:"mime_type"`
	Kind           StorageKind      `json:"kind"`
	Size           int64            `json:"size"`
	Category       DocumentCategory `json:"category"`
	UploadedAt     time.Time        `json:"uploaded_at"`
	ExpiryDate     *time.Time       `json:"expiry_date"`
	IsAutoDetected bool             `json:"is_auto_detected"`
}
