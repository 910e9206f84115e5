package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"triage-kb/internal/kb"
	"triage-kb/internal/learning"
)

// Feedback store backends.
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	KBDir           string
	DataDir         string
	DBPath          string
	FeedbackBackend string
	APIPort         string
	LogLevel        slog.Level
	LogFormat       string

	SearchThreshold   float64
	AnswerThreshold   float64
	SearchAlpha       float64
	PriorHalfLifeDays float64
	PriorSmoothingM   float64
	ChunkTargetWords  int
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		KBDir:           getEnv("KB_DIR", "./knowledge"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		FeedbackBackend: strings.ToLower(getEnv("FEEDBACK_BACKEND", BackendJSONL)),
		APIPort:         getEnv("API_PORT", "9000"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
	cfg.DBPath = getEnv("DB_PATH", filepath.Join(cfg.DataDir, "triage-kb.db"))

	switch cfg.FeedbackBackend {
	case BackendJSONL, BackendSQLite:
	default:
		return nil, fmt.Errorf("FEEDBACK_BACKEND must be %q or %q, got %q", BackendJSONL, BackendSQLite, cfg.FeedbackBackend)
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.SearchThreshold, err = getEnvFloat("SEARCH_THRESHOLD", kb.DefaultSearchThreshold); err != nil {
		return nil, err
	}
	if cfg.AnswerThreshold, err = getEnvFloat("ANSWER_THRESHOLD", kb.DefaultAnswerThreshold); err != nil {
		return nil, err
	}
	if cfg.SearchAlpha, err = getEnvFloat("SEARCH_ALPHA", kb.DefaultAlpha); err != nil {
		return nil, err
	}
	if cfg.PriorHalfLifeDays, err = getEnvFloat("PRIOR_HALF_LIFE_DAYS", learning.DefaultHalfLifeDays); err != nil {
		return nil, err
	}
	if cfg.PriorHalfLifeDays <= 0 {
		return nil, fmt.Errorf("PRIOR_HALF_LIFE_DAYS must be greater than 0")
	}
	if cfg.PriorSmoothingM, err = getEnvFloat("PRIOR_SMOOTHING_M", learning.DefaultSmoothingM); err != nil {
		return nil, err
	}
	if cfg.ChunkTargetWords, err = getEnvInt("CHUNK_TARGET_WORDS", kb.DefaultChunkTargetWords); err != nil {
		return nil, err
	}
	if cfg.ChunkTargetWords <= 0 {
		return nil, fmt.Errorf("CHUNK_TARGET_WORDS must be greater than 0")
	}

	// Create the data directory up front (feedback log, DB file, index summary)
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// FeedbackLogPath is the JSONL feedback log location under the data dir.
func (c *Config) FeedbackLogPath() string {
	return filepath.Join(c.DataDir, "feedback_kb.jsonl")
}

// IndexSummaryPath is where each reindex writes its summary artifact.
func (c *Config) IndexSummaryPath() string {
	return filepath.Join(c.DataDir, "kb_index.json")
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", value)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}
