package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docvault/expiry-scanner/client"
	"github.com/docvault/expiry-scanner/dto"
)

// Detector runs one diagnostic expiry detection.
type Detector interface {
	Detect(ctx context.Context, ref client.ImageRef) *dto.DetectionResult
}

type ExpiryHandler struct {
	Detector    Detector
	MaxFileSize int64
	URLPolicy   client.URLPolicy
}

func NewExpiryHandler(detector Detector, maxFileSize int64, policy client.URLPolicy) *ExpiryHandler {
	return &ExpiryHandler{
		Detector:    detector,
		MaxFileSize: maxFileSize,
		URLPolicy:   policy,
	}
}

// DetectExpiry accepts a multipart "file" or a JSON {"imageUrl": "..."} body.
// Every detection outcome is a 200; only malformed requests and refused URLs
// fail. Recognition errors are logged, never returned.
func (h *ExpiryHandler) DetectExpiry(c *gin.Context) {
	var ref client.ImageRef

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, err := readFormFile(c, "file", h.MaxFileSize)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		ref = client.ImageRef{Data: data, Language: c.PostForm("language")}
	} else {
		var req dto.DetectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		if err := h.URLPolicy.Check(req.ImageURL); err != nil {
			respondError(c, http.StatusBadRequest, client.ErrURLNotAllowed)
			return
		}
		ref = client.ImageRef{URL: req.ImageURL, Language: req.Language}
	}

	c.JSON(http.StatusOK, h.Detector.Detect(c.Request.Context(), ref))
}

var errFileMissing = errors.New("file missing")

func readFormFile(c *gin.Context, field string, maxSize int64) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, errFileMissing
	}
	if maxSize > 0 && header.Size > maxSize {
		return nil, dto.ErrFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, dto.ErrEmptyFile
	}
	return data, nil
}

func respondError(c *gin.Context, code int, err error) {
	c.JSON(code, dto.ErrorResponse{
		Error:   http.StatusText(code),
		Message: err.Error(),
		Code:    code,
	})
}
