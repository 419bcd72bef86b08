// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	// Model provider configuration
	MODEL_PROVIDER string // "gemini" or "openai"
	GEMINI_API_KEY string
	MODEL_NAME     string
	MODEL_TIMEOUT  time.Duration

	// OpenAI-compatible provider (OpenAI, Mistral, ...)
	OPENAI_API_KEY  string
	OPENAI_BASE_URL string
	OPENAI_MODEL    string

	// Pricing (per 1M tokens in USD), used for per-request cost logging
	MODEL_INPUT_PRICE_PER_MILLION  float64
	MODEL_OUTPUT_PRICE_PER_MILLION float64

	// Server Configuration
	PORT                string
	ALLOWED_ORIGINS     string
	MAX_REQUEST_BODY_MB int64
	RATE_LIMIT_RPS      float64
	RATE_LIMIT_BURST    int

	// Image preprocessing settings
	ENABLE_IMAGE_PREPROCESSING bool
	ENABLE_IMAGE_ENHANCEMENT   bool
	MAX_IMAGE_DIMENSION        int

	// Audit history (Google Drive + Google Sheets)
	ENABLE_AUDIT_LOG       bool
	GOOGLE_CLIENT_EMAIL    string
	GOOGLE_PRIVATE_KEY     string
	GOOGLE_DRIVE_FOLDER_ID string
	GOOGLE_SHEET_ID        string
	SHEETS_RANGE           string
	HISTORY_CACHE_TTL      time.Duration
	AUDIT_TASK_TIMEOUT     time.Duration
	AUDIT_SHUTDOWN_GRACE   time.Duration
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	MODEL_PROVIDER = strings.ToLower(getEnv("MODEL_PROVIDER", "gemini"))
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	MODEL_NAME = getEnv("MODEL_NAME", "gemini-2.0-flash")
	MODEL_TIMEOUT = getEnvDuration("MODEL_TIMEOUT", 60*time.Second)

	OPENAI_API_KEY = getEnv("OPENAI_API_KEY", "")
	OPENAI_BASE_URL = getEnv("OPENAI_BASE_URL", "")
	OPENAI_MODEL = getEnv("OPENAI_MODEL", "gpt-4o-mini")

	// Required: credentials for the selected provider
	switch MODEL_PROVIDER {
	case "gemini":
		if GEMINI_API_KEY == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required")
		}
	case "openai", "mistral":
		if OPENAI_API_KEY == "" {
			log.Fatalf("OPENAI_API_KEY environment variable is required when MODEL_PROVIDER=%s", MODEL_PROVIDER)
		}
	}

	// Gemini 2.0 Flash pricing by default
	MODEL_INPUT_PRICE_PER_MILLION = getEnvFloat("MODEL_INPUT_PRICE_PER_MILLION", 0.10)
	MODEL_OUTPUT_PRICE_PER_MILLION = getEnvFloat("MODEL_OUTPUT_PRICE_PER_MILLION", 0.40)

	PORT = getEnv("PORT", "8080")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")
	MAX_REQUEST_BODY_MB = int64(getEnvInt("MAX_REQUEST_BODY_MB", 20))
	RATE_LIMIT_RPS = getEnvFloat("RATE_LIMIT_RPS", 2)
	RATE_LIMIT_BURST = getEnvInt("RATE_LIMIT_BURST", 5)

	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", false)
	ENABLE_IMAGE_ENHANCEMENT = getEnvBool("ENABLE_IMAGE_ENHANCEMENT", false)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2000)

	ENABLE_AUDIT_LOG = getEnvBool("ENABLE_AUDIT_LOG", true)
	GOOGLE_CLIENT_EMAIL = getEnv("GOOGLE_CLIENT_EMAIL", "")
	// Private keys pasted into .env usually carry escaped newlines
	GOOGLE_PRIVATE_KEY = strings.ReplaceAll(getEnv("GOOGLE_PRIVATE_KEY", ""), `\n`, "\n")
	GOOGLE_DRIVE_FOLDER_ID = getEnv("GOOGLE_DRIVE_FOLDER_ID", "")
	GOOGLE_SHEET_ID = getEnv("GOOGLE_SHEET_ID", "")
	SHEETS_RANGE = getEnv("SHEETS_RANGE", "Sheet1!A:F")
	HISTORY_CACHE_TTL = getEnvDuration("HISTORY_CACHE_TTL", 1*time.Minute)
	AUDIT_TASK_TIMEOUT = getEnvDuration("AUDIT_TASK_TIMEOUT", 30*time.Second)
	AUDIT_SHUTDOWN_GRACE = getEnvDuration("AUDIT_SHUTDOWN_GRACE", 10*time.Second)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
