// main.go - The entry point and router setup.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bosocmputer/medicine_scan_gemini/configs"
	"github.com/bosocmputer/medicine_scan_gemini/internal/actions"
	"github.com/bosocmputer/medicine_scan_gemini/internal/ai"
	"github.com/bosocmputer/medicine_scan_gemini/internal/api"
	"github.com/bosocmputer/medicine_scan_gemini/internal/audit"
	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/bosocmputer/medicine_scan_gemini/internal/metrics"
	"github.com/bosocmputer/medicine_scan_gemini/internal/processor"
	"github.com/bosocmputer/medicine_scan_gemini/internal/ratelimit"
	"github.com/bosocmputer/medicine_scan_gemini/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()

	// Step 0.5: Set production mode
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Step 1: Model provider, one client for the process lifetime
	provider, err := ai.CreateProvider(ctx, ai.ProviderConfig{
		Provider:      configs.MODEL_PROVIDER,
		GeminiAPIKey:  configs.GEMINI_API_KEY,
		GeminiModel:   configs.MODEL_NAME,
		OpenAIAPIKey:  configs.OPENAI_API_KEY,
		OpenAIBaseURL: configs.OPENAI_BASE_URL,
		OpenAIModel:   configs.OPENAI_MODEL,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create model provider")
	}
	defer provider.Close()

	// Step 2: Audit collaborators (optional)
	dispatcher := audit.NewDispatcher(configs.AUDIT_TASK_TIMEOUT)
	opts := actions.Options{
		Tasks:        dispatcher,
		ModelTimeout: configs.MODEL_TIMEOUT,
	}
	// Interfaces stay nil (not typed-nil) when a backend is disabled
	var history api.HistoryReader
	uploader, sheet := setupAudit(ctx)
	if uploader != nil {
		opts.Uploader = uploader
	}
	if sheet != nil {
		opts.ResultLogger = sheet
		history = sheet
	}

	// Step 3: Image preprocessing (optional)
	if configs.ENABLE_IMAGE_PREPROCESSING {
		mode := processor.ResizeOnly
		if configs.ENABLE_IMAGE_ENHANCEMENT {
			mode = processor.AdaptiveMode
		}
		opts.Preprocessor = processor.NewPreprocessor(configs.MAX_IMAGE_DIMENSION, mode)
	}

	analyzer := actions.NewAnalyzer(provider, opts)
	maxBody := configs.MAX_REQUEST_BODY_MB << 20

	// Step 4: Initialize the Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(configs.ALLOWED_ORIGINS)))
	router.MaxMultipartMemory = maxBody

	// Root endpoint for SSL verification
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "medicine-scan-api",
			"version":  "1.0.0",
			"provider": provider.GetProviderName(),
			"audit":    history != nil,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Step 5: Define the API routes behind the inbound limiter
	limiter := ratelimit.NewIPRateLimiter(configs.RATE_LIMIT_RPS, configs.RATE_LIMIT_BURST)
	limiter.StartCleanup(ctx, time.Minute, 10*time.Minute)
	limited := router.Group("/", limiter.Middleware())
	api.NewHandler(analyzer, history, maxBody).RegisterRoutes(limited)

	// Step 6: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:              ":" + configs.PORT,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      configs.MODEL_TIMEOUT + 30*time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"port":     configs.PORT,
			"provider": provider.GetProviderName(),
			"endpoints": []string{
				"POST /api/v1/scan",
				"POST /api/v1/prescription",
				"POST /api/v1/generics",
				"POST /api/v1/verify",
				"GET /api/v1/history",
			},
		}).Info("Starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	// Give in-flight audit rows a bounded chance to land
	graceCtx, cancelGrace := context.WithTimeout(context.Background(), configs.AUDIT_SHUTDOWN_GRACE)
	defer cancelGrace()
	if err := dispatcher.Shutdown(graceCtx); err != nil {
		logger.WithError(err).Warn("Audit tasks dropped at shutdown")
	}

	logger.Info("Server exited")
}

// setupAudit builds the Drive uploader and the Sheets logger. Either is nil when disabled
// or misconfigured; the analyses keep working without them.
func setupAudit(ctx context.Context) (*storage.DriveUploader, *storage.SheetsLogger) {
	if !configs.ENABLE_AUDIT_LOG {
		logger.Info("Audit logging disabled")
		return nil, nil
	}
	if configs.GOOGLE_CLIENT_EMAIL == "" || configs.GOOGLE_PRIVATE_KEY == "" {
		logger.Warn("Skipping audit logging: Google service account credentials missing")
		return nil, nil
	}

	var uploader *storage.DriveUploader
	if configs.GOOGLE_DRIVE_FOLDER_ID == "" {
		logger.Warn("Skipping Google Drive upload: folder ID missing")
	} else {
		opts, err := storage.ServiceAccountOptions(configs.GOOGLE_CLIENT_EMAIL, configs.GOOGLE_PRIVATE_KEY, drive.DriveFileScope)
		if err == nil {
			uploader, err = storage.NewDriveUploader(ctx, configs.GOOGLE_DRIVE_FOLDER_ID, opts...)
		}
		if err != nil {
			logger.WithError(err).Error("Google Drive upload disabled")
			uploader = nil
		}
	}

	var sheet *storage.SheetsLogger
	if configs.GOOGLE_SHEET_ID == "" {
		logger.Warn("Skipping Google Sheets logging: sheet ID missing")
	} else {
		opts, err := storage.ServiceAccountOptions(configs.GOOGLE_CLIENT_EMAIL, configs.GOOGLE_PRIVATE_KEY, sheets.SpreadsheetsScope)
		if err == nil {
			cache := storage.NewHistoryCache(configs.HISTORY_CACHE_TTL)
			sheet, err = storage.NewSheetsLogger(ctx, configs.GOOGLE_SHEET_ID, configs.SHEETS_RANGE, cache, opts...)
		}
		if err != nil {
			logger.WithError(err).Error("Google Sheets logging disabled")
			sheet = nil
		}
	}

	return uploader, sheet
}

func corsConfig(allowedOrigins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        24 * time.Hour,
	}

	if allowedOrigins == "" || allowedOrigins == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	return cfg
}

// requestLogger writes one structured line per request
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("Request completed")
			return
		}
		entry.Info("Request completed")
	}
}
