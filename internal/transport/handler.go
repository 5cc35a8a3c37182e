package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/photoqc/photoqc-go/internal/analyzer"
	"github.com/photoqc/photoqc-go/internal/config"
	apperrors "github.com/photoqc/photoqc-go/internal/errors"
	"github.com/photoqc/photoqc-go/internal/logger"
	"github.com/photoqc/photoqc-go/internal/observer"
	"github.com/photoqc/photoqc-go/internal/service"
)

// AnalyzeRequest triggers a QC run over a local directory.
type AnalyzeRequest struct {
	Directory     string `json:"directory,omitempty"`
	Fast          bool   `json:"fast,omitempty"`
	ReferencePath string `json:"reference_path,omitempty"`
	ExpectedText  string `json:"expected_text,omitempty"`
}

// AnalyzeURLRequest triggers analysis of a remote image.
type AnalyzeURLRequest struct {
	URL          string `json:"url" binding:"required,url"`
	Fast         bool   `json:"fast,omitempty"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// BatchRequest triggers QC runs over several directories.
type BatchRequest struct {
	Directories []string `json:"directories" binding:"required,min=1"`
	Fast        bool     `json:"fast,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the HTTP API over the QC service.
func NewHandler(svc service.QCService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.POST("/analyze", analyzeDirectory(svc, cfg))
	r.POST("/analyze/url", analyzeURL(svc, cfg))
	r.POST("/analyze/batch", analyzeBatch(svc, cfg))
	r.GET("/reports", listReports(svc))
	r.GET("/reports/:id", getReport(svc))
	r.GET("/stats", stats(metrics))

	return r
}

func analyzeDirectory(svc service.QCService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		directory := req.Directory
		if directory == "" {
			directory = cfg.QCDirectory
		}

		opts := buildOptions(req.Fast, req.ExpectedText, cfg)
		if req.ReferencePath != "" {
			opts = opts.WithReference(req.ReferencePath)
		}

		report, err := svc.RunQCWithOptions(ctx, directory, opts)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "QC run failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"directory":          directory,
			"image_path":         report.ImagePath,
			"is_valid":           report.Quality.IsValid,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("QC run completed")

		c.JSON(http.StatusOK, report)
	}
}

func analyzeURL(svc service.QCService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req AnalyzeURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		if err := validateImageURL(req.URL); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image URL", err)
			return
		}

		result, err := svc.AnalyzeRemote(ctx, req.URL, buildOptions(req.Fast, req.ExpectedText, cfg))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to analyze image", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func analyzeBatch(svc service.QCService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		results := svc.RunBatch(ctx, req.Directories, buildOptions(req.Fast, "", cfg))
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func listReports(svc service.QCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reports, err := svc.History(c.Query("directory"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to list reports", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
	}
}

func getReport(svc service.QCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := svc.GetReport(c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to load report", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func stats(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func buildOptions(fast bool, expectedText string, cfg *config.Config) analyzer.AnalysisOptions {
	var opts analyzer.AnalysisOptions
	switch {
	case expectedText != "":
		opts = analyzer.OCROptions(expectedText)
	case fast:
		opts = analyzer.FastOptions()
	default:
		opts = analyzer.DefaultOptions()
	}
	opts.OCRLanguage = cfg.OCRLanguage
	return opts
}

func validateImageURL(imageURL string) error {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return apperrors.NewValidationError("URL scheme must be http or https", nil)
	}
	return nil
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
