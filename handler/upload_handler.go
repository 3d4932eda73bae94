package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/expiry-scanner/dto"
	"github.com/docvault/expiry-scanner/service"
)

// Scanner accepts one upload.
type Scanner interface {
	Scan(ctx context.Context, req dto.UploadRequest) (*dto.FileRecord, error)
}

type UploadHandler struct {
	Scanner     Scanner
	MaxFileSize int64
}

func NewUploadHandler(scanner Scanner, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		Scanner:     scanner,
		MaxFileSize: maxFileSize,
	}
}

// ScanFile handles multipart "file" with optional "category" and "expiryDate".
func (h *UploadHandler) ScanFile(c *gin.Context) {
	data, err := readFormFile(c, "file", h.MaxFileSize)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	header, _ := c.FormFile("file")

	userDate, err := dto.ParseUserDate(c.PostForm("expiryDate"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	record, err := h.Scanner.Scan(c.Request.Context(), dto.UploadRequest{
		Filename:   header.Filename,
		Data:       data,
		Category:   c.PostForm("category"),
		ExpiryDate: userDate,
	})
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Success: true,
		Message: service.UploadMessage(record),
		File:    record,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dto.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errFileMissing),
		errors.Is(err, dto.ErrEmptyFile),
		errors.Is(err, dto.ErrInvalidCategory),
		errors.Is(err, dto.ErrInvalidExpiryDate):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
