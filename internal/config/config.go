package config

import (
	"os"
	"strconv"

	"balloonsum/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Report   ReportConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds optional history-store settings.
// Summarization itself never touches a database.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// UploadConfig holds file upload limits
type UploadConfig struct {
	MaxFileSize int64 // bytes
	MaxFiles    int
}

// ReportConfig holds rendering settings
type ReportConfig struct {
	Title           string
	HeaderCellWidth int // px cap on header cells
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: loadDatabaseConfig(),
		Upload: UploadConfig{
			MaxFileSize: getEnvInt64OrDefault("MAX_UPLOAD_BYTES", 50*1024*1024),
			MaxFiles:    getEnvIntOrDefault("MAX_UPLOAD_FILES", 32),
		},
		Report: ReportConfig{
			Title:           getEnvOrDefault("REPORT_TITLE", "Evaluation summary"),
			HeaderCellWidth: getEnvIntOrDefault("REPORT_HEADER_WIDTH", 150),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	url := os.Getenv("DATABASE_URL")
	return DatabaseConfig{
		URL:     url,
		Enabled: url != "",
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Upload.MaxFileSize <= 0 {
		return errors.ConfigInvalid("upload size limit must be positive")
	}
	if config.Upload.MaxFiles <= 0 {
		return errors.ConfigInvalid("upload file limit must be positive")
	}
	if config.Report.HeaderCellWidth <= 0 {
		return errors.ConfigInvalid("header cell width must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
