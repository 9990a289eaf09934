package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/workflow"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath     string
	LogDir       string
	CacheDir     string
	WorkflowFile string
	// Analysis holds the defaults of every aggregation run; CLI flags and tool arguments
	// override individual fields.
	Analysis stats.Options
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	cacheDir := filepath.Join(dataPath, "cache")

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	// 4. Analysis defaults
	opts := stats.DefaultOptions()
	opts.ExcludeWeekends = getEnvBool("STAGE_EXCLUDE_WEEKENDS", opts.ExcludeWeekends)
	opts.MinTimeThreshold = getEnvFloat("STAGE_MIN_TIME_THRESHOLD_HOURS", opts.MinTimeThreshold)
	opts.ChurnFlagThreshold = getEnvInt("CHURN_FLAG_THRESHOLD", opts.ChurnFlagThreshold)
	opts.AgingThresholds = map[workflow.Stage]float64{
		workflow.InProgress: getEnvFloat("AGING_THRESHOLD_IN_PROGRESS", stats.DefaultAgingThreshold),
		workflow.CodeReview: getEnvFloat("AGING_THRESHOLD_IN_REVIEW", stats.DefaultAgingThreshold),
		workflow.QA:         getEnvFloat("AGING_THRESHOLD_IN_QA", stats.DefaultAgingThreshold),
	}

	cfg := &AppConfig{
		DataPath:     dataPath,
		LogDir:       logDir,
		CacheDir:     cacheDir,
		WorkflowFile: getEnv("WORKFLOW_FILE", ""),
		Analysis:     opts,
	}

	// 5. Optional workflow file
	if cfg.WorkflowFile != "" {
		wf, err := LoadWorkflow(cfg.WorkflowFile)
		if err != nil {
			return nil, err
		}
		wf.Apply(&cfg.Analysis)
	}

	if err := cfg.Analysis.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid boolean")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid number")
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid integer")
	}
	return fallback
}
