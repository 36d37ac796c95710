package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go-id-inspector/internal/config"
	apperrors "go-id-inspector/internal/errors"
	"go-id-inspector/internal/logger"
	"go-id-inspector/internal/service"
	"go-id-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ClientIDHeader identifies the caller for history purposes. The service
// does not authenticate it: history is keyed on the raw value, so the
// header must be set by a trusted upstream (gateway or auth proxy) that
// strips any value supplied by the end client.
const ClientIDHeader = "X-Client-ID"

const (
	uploadField       = "image"
	expectedTextField = "expected_text"
)

func NewHandler(svc service.DetectionService, cfg *config.Config) http.Handler {
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)

	api := r.Group("/api/v1")
	api.POST("/detect", detectUpload(svc, cfg))
	api.POST("/detect/url", detectURL(svc, cfg))
	api.POST("/detect/blob", detectBlob(svc, cfg))
	// History routes trust ClientIDHeader as set by the upstream proxy
	api.GET("/history", listHistory(svc))
	api.GET("/history/:id", getHistoryEntry(svc))
	api.GET("/stats", stats(svc))

	return r
}

func detectUpload(svc service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		header, err := c.FormFile(uploadField)
		if err != nil {
			respondError(c, http.StatusBadRequest, "an image file is required", err)
			return
		}
		file, err := header.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read upload", err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read upload", err)
			return
		}

		resp, err := svc.DetectUpload(ctx, service.UploadRequest{
			ClientID:     clientID(c),
			FileName:     header.Filename,
			Data:         data,
			ExpectedText: c.PostForm(expectedTextField),
		})
		if err != nil {
			respondAppError(c, "detection failed", err)
			return
		}
		logVerdict(c, resp)
		c.JSON(http.StatusOK, resp)
	}
}

func detectURL(svc service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.URLDetectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.DetectURL(ctx, clientID(c), req)
		if err != nil {
			respondAppError(c, "detection failed", err)
			return
		}
		logVerdict(c, resp)
		c.JSON(http.StatusOK, resp)
	}
}

func detectBlob(svc service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.BlobDetectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.DetectBlob(ctx, clientID(c), req)
		if err != nil {
			respondAppError(c, "detection failed", err)
			return
		}
		logVerdict(c, resp)
		c.JSON(http.StatusOK, resp)
	}
}

func listHistory(svc service.DetectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondError(c, http.StatusBadRequest, "limit must be a positive integer", err)
				return
			}
			limit = n
		}

		entries, err := svc.History(c.Request.Context(), clientID(c), limit)
		if err != nil {
			respondAppError(c, "failed to load history", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": entries})
	}
}

func getHistoryEntry(svc service.DetectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := svc.HistoryEntry(c.Request.Context(), clientID(c), c.Param("id"))
		if err != nil {
			respondAppError(c, "failed to load history entry", err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func stats(svc service.DetectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Stats())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func clientID(c *gin.Context) string {
	return c.GetHeader(ClientIDHeader)
}

func logVerdict(c *gin.Context, resp *models.DetectionResponse) {
	logger.WithFields(logrus.Fields{
		"id":         resp.ID,
		"file_name":  resp.FileName,
		"status":     resp.Status,
		"confidence": resp.Confidence,
		"ip":         c.ClientIP(),
	}).Info("Detection completed")
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"processing_time_ms": time.Since(start).Milliseconds(),
			"user_agent":         c.Request.UserAgent(),
			"ip":                 c.ClientIP(),
		}).Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondAppError(c *gin.Context, message string, err error) {
	respondError(c, determineStatusCode(err), message, err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	entry := logger.WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error("Request failed")

	detail := message
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail = appErr.Message
	} else if err != nil {
		detail = message + ": " + err.Error()
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: detail,
	})
}
