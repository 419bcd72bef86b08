// handlers.go - HTTP handlers for the medicine analysis endpoints

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/bosocmputer/medicine_scan_gemini/internal/actions"
	"github.com/bosocmputer/medicine_scan_gemini/internal/ai"
	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/bosocmputer/medicine_scan_gemini/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	msgInvalidBody   = "Invalid request body."
	msgBodyTooLarge  = "Image is too large."
	msgHistoryFailed = "Failed to load history."
)

// AnalysisService runs the four analyses
type AnalysisService interface {
	ScanMedicine(ctx context.Context, image string) actions.Response
	AnalyzePrescription(ctx context.Context, image string) actions.Response
	FindGenerics(ctx context.Context, medicineName string) actions.Response
	VerifyStrips(ctx context.Context, oldImage, newImage string) actions.Response
}

// HistoryReader returns past analyses, newest first
type HistoryReader interface {
	ReadHistory(ctx context.Context) ([]storage.HistoryItem, error)
}

// analysisRequest accepts images as data URLs / base64 strings, or as uploaded files in a
// multipart form under the same field names
type analysisRequest struct {
	Image        string `json:"image" form:"image"`
	OldImage     string `json:"old_image" form:"old_image"`
	NewImage     string `json:"new_image" form:"new_image"`
	MedicineName string `json:"medicine_name" form:"medicine_name"`
}

// Handler serves the analysis API
type Handler struct {
	service      AnalysisService
	history      HistoryReader
	maxBodyBytes int64
}

// NewHandler creates a handler. history may be nil when audit logging is disabled.
func NewHandler(service AnalysisService, history HistoryReader, maxBodyBytes int64) *Handler {
	return &Handler{
		service:      service,
		history:      history,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes mounts the /api/v1 endpoints
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.POST("/scan", h.ScanHandler)
	v1.POST("/prescription", h.PrescriptionHandler)
	v1.POST("/generics", h.GenericsHandler)
	v1.POST("/verify", h.VerifyHandler)
	v1.GET("/history", h.HistoryHandler)
}

// ScanHandler identifies one medicine: POST {image}
func (h *Handler) ScanHandler(c *gin.Context) {
	req, ok := h.bind(c, "image")
	if !ok {
		return
	}
	h.respond(c, h.service.ScanMedicine(c.Request.Context(), req.Image))
}

// PrescriptionHandler reads a prescription: POST {image}
func (h *Handler) PrescriptionHandler(c *gin.Context) {
	req, ok := h.bind(c, "image")
	if !ok {
		return
	}
	h.respond(c, h.service.AnalyzePrescription(c.Request.Context(), req.Image))
}

// GenericsHandler finds generic alternatives: POST {medicine_name}
func (h *Handler) GenericsHandler(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	h.respond(c, h.service.FindGenerics(c.Request.Context(), req.MedicineName))
}

// VerifyHandler compares two strips: POST {old_image, new_image}
func (h *Handler) VerifyHandler(c *gin.Context) {
	req, ok := h.bind(c, "old_image", "new_image")
	if !ok {
		return
	}
	h.respond(c, h.service.VerifyStrips(c.Request.Context(), req.OldImage, req.NewImage))
}

// HistoryHandler lists past analyses from the audit sheet
func (h *Handler) HistoryHandler(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []storage.HistoryItem{}})
		return
	}

	items, err := h.history.ReadHistory(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to read audit history")
		c.JSON(http.StatusBadGateway, gin.H{"error": msgHistoryFailed})
		return
	}
	if items == nil {
		items = []storage.HistoryItem{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// bind reads a JSON body or a (multipart) form. For form requests, fileFields that were
// not sent as text are read from uploaded files.
func (h *Handler) bind(c *gin.Context, fileFields ...string) (analysisRequest, bool) {
	var req analysisRequest
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&req)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	} else {
		err = c.ShouldBind(&req)
		if err == nil {
			err = h.readFiles(c, &req, fileFields)
		}
	}

	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgBodyTooLarge})
			return req, false
		}
		logger.WithError(err).Warn("Failed to bind analysis request")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return req, false
	}
	return req, true
}

func (h *Handler) readFiles(c *gin.Context, req *analysisRequest, fields []string) error {
	if !strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		return nil
	}

	targets := map[string]*string{
		"image":     &req.Image,
		"old_image": &req.OldImage,
		"new_image": &req.NewImage,
	}
	for _, field := range fields {
		dst, known := targets[field]
		if !known || *dst != "" {
			continue
		}
		header, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return err
		}
		dataURL, err := fileToDataURL(header)
		if err != nil {
			return err
		}
		*dst = dataURL
	}
	return nil
}

func fileToDataURL(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) == 0 {
		return "", nil
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return ai.EncodeImage(data, mimeType).DataURL(), nil
}

func (h *Handler) respond(c *gin.Context, resp actions.Response) {
	if resp.RequestID != "" {
		c.Header("X-Request-ID", resp.RequestID)
	}
	c.JSON(statusFor(resp), resp)
}

// statusFor maps an outcome to an HTTP status
func statusFor(resp actions.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.Kind {
	case ai.ErrorMissingInput:
		return http.StatusBadRequest
	case ai.ErrorRateLimited:
		return http.StatusTooManyRequests
	case ai.ErrorServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
