package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-facecraft/internal/config"
	apperrors "go-facecraft/internal/errors"
	"go-facecraft/internal/logger"
	"go-facecraft/internal/service"
	"go-facecraft/internal/storage"
	"go-facecraft/pkg/models"
	"go-facecraft/pkg/validation"
)

const (
	// Version is reported by the health endpoint
	Version = "1.0.0"

	// multipartOverhead is the slack allowed on top of the file size for
	// boundaries and part headers
	multipartOverhead = 1 << 20

	msgInvalidBody = "Invalid request body"
)

// MetricsSource exposes pipeline counters for the health endpoint
type MetricsSource interface {
	GetMetrics() map[string]interface{}
}

// Dependencies are the collaborators the HTTP layer needs
type Dependencies struct {
	Config  *config.Config
	Uploads service.UploadService
	Avatars service.AvatarService
	Metrics MetricsSource

	// Blobs serves locally stored objects; nil unless the local backend is active
	Blobs http.FileSystem
}

func NewHandler(deps Dependencies) http.Handler {
	cfg := deps.Config
	validator := validation.NewUploadValidator(cfg.MaxUploadSize)

	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		corsMiddleware(cfg.CORSAllowOrigins),
		securityHeaders(),
		gzipMiddleware(),
	)

	// Configure routes
	r.GET("/health", healthCheck(cfg, deps.Metrics))

	api := r.Group("/api")
	api.POST("/upload", uploadPhoto(deps.Uploads, validator, cfg))
	api.POST("/generate", generateAvatar(deps.Avatars, cfg))
	api.GET("/styles", listStyles)

	if deps.Blobs != nil {
		r.StaticFS(storage.LocalServePath, filesOnly{deps.Blobs})
	}

	return r
}

func uploadPhoto(svc service.UploadService, validator *validation.UploadValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// Transport guard: a body this large is refused before any part is
		// read, so it reports the size message whatever the parts hold.
		limit := validator.MaxSize() + multipartOverhead
		if c.Request.ContentLength > limit {
			respondError(c, validator.TooLargeError(c.Request.ContentLength), service.MsgUploadFailed)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(c, validator.TooLargeError(-1), service.MsgUploadFailed)
				return
			}

			logger.WithError(err).WithField("ip", c.ClientIP()).Debug("No file part in upload")
			_, err = svc.Upload(ctx, nil)
			respondError(c, err, service.MsgUploadFailed)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, apperrors.NewInternalError(service.MsgUploadFailed, err), service.MsgUploadFailed)
			return
		}
		defer file.Close()

		result, err := svc.Upload(ctx, &service.UploadRequest{
			File:        file,
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
		})
		if err != nil {
			respondError(c, err, service.MsgUploadFailed)
			return
		}

		c.JSON(http.StatusOK, models.UploadResponse{Success: true, URL: result.URL})
	}
}

func generateAvatar(svc service.AvatarService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.GenerateRequest
		// An empty body is treated as a request with both fields missing
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, apperrors.NewValidationError(msgInvalidBody, err), service.MsgGenerateFailed)
			return
		}

		result, err := svc.Generate(ctx, req.PhotoURL, req.Style)
		if err != nil {
			respondError(c, err, service.MsgGenerateFailed)
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id":         c.GetString(requestIDKey),
			"style":              result.Style,
			"key":                result.Key,
			"processing_time_ms": result.Elapsed.Milliseconds(),
		}).Info("Avatar generated")

		c.JSON(http.StatusOK, models.GenerateResponse{
			Success:     true,
			AvatarURL:   result.AvatarURL,
			Style:       result.Style,
			Description: result.Description,
		})
	}
}

func listStyles(c *gin.Context) {
	c.JSON(http.StatusOK, models.StylesResponse{Styles: models.DefaultStyles})
}

func healthCheck(cfg *config.Config, metrics MetricsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:  "available",
			Version: Version,
			Time:    time.Now().UTC().Format(time.RFC3339),
			Storage: cfg.Storage.Backend,
		}
		if metrics != nil {
			resp.Pipeline = metrics.GetMetrics()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// respondError renders validation errors with their own message and every
// other failure with the endpoint's generic message. The cause is only logged.
func respondError(c *gin.Context, err error, fallback string) {
	code := http.StatusInternalServerError
	if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		code = http.StatusBadRequest
	}
	message := apperrors.PublicMessage(err, fallback)

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id":  c.GetString(requestIDKey),
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{Error: message})
}

// filesOnly hides directory listings of the blob store
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
