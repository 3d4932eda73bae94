package dto

import (
	"errors"
	"time"
)

// DetectRequest is the JSON body for detection by URL
type DetectRequest struct {
	ImageURL string `json:"imageUrl" binding:"required,url"`
	Language string `json:"language,omitempty"`
}

// UploadRequest carries one uploaded document through intake
type UploadRequest struct {
	Filename   string
	Data       []byte
	Category   string
	ExpiryDate *time.Time
}

// Validate performs basic validation on the request
func (r *UploadRequest) Validate(maxSize int64) error {
	if len(r.Data) == 0 {
		return ErrEmptyFile
	}
	if maxSize > 0 && int64(len(r.Data)) > maxSize {
		return ErrFileTooLarge
	}
	if r.Filename == "" {
		return errors.New("filename is required")
	}
	_, err := ParseCategory(r.Category)
	return err
}

// ParseUserDate accepts a calendar date or an RFC3339 timestamp. Blank is nil.
func ParseUserDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, ErrInvalidExpiryDate
}
