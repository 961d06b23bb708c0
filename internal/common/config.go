package common

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	Process  ProcessConfig
}

// DatabaseConfig holds store-related configuration.
type DatabaseConfig struct {
	// DSN is either a sqlite file path (default) or a postgres://... URL.
	DSN string
}

// OCRConfig holds tesseract-related configuration for the image adapter.
type OCRConfig struct {
	// Tesseract is the binary name or absolute path; empty means "tesseract".
	Tesseract string
	// Language passed to tesseract via -l, e.g. "eng" or "chi_sim".
	Language string
	// PSM is the page segmentation mode; 6 assumes a uniform block of text.
	PSM int
	// TessdataDir overrides the tesseract data directory when non-empty.
	TessdataDir string
}

// ProcessConfig holds orchestrator behavior toggles.
type ProcessConfig struct {
	// SynthesizeHeaders writes the first extracted row as the content
	// document's "headers" field instead of a data row. Off by default:
	// the legacy content shape carries rows only.
	SynthesizeHeaders bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN: getEnv("DB_URL", "formhelper.db"),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT", "tesseract"),
			Language:    getEnv("TESSERACT_LANG", "eng"),
			PSM:         getEnvAsInt("TESSERACT_PSM", 6),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
		},
		Process: ProcessConfig{
			SynthesizeHeaders: getEnvAsBool("SYNTHESIZE_HEADERS", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
