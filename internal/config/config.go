package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port           string
	PathPrefix     string
	CORSOrigins    []string
	LogLevel       string
	LogFormat      string
	MaxUploadBytes int64
	Database       DatabaseConfig
	Transmittal    TransmittalConfig
	Archive        ArchiveConfig
}

// DatabaseConfig holds database configuration. An empty password on localhost
// starts an embedded PostgreSQL instead of connecting to a server.
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Silent   bool
}

// Embedded reports whether the process should run its own PostgreSQL
func (d DatabaseConfig) Embedded() bool {
	return d.Password == "" && (d.Host == "localhost" || d.Host == "127.0.0.1")
}

// TransmittalConfig tunes the lifecycle manager
type TransmittalConfig struct {
	StrictTransitions bool
	MaxListLimit      int
	DefaultListLimit  int
}

// ArchiveConfig points at the S3-compatible bucket for generated PDFs.
// Archiving is off when Endpoint is empty.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// Enabled reports whether an archive endpoint is configured
func (a ArchiveConfig) Enabled() bool {
	return a.Endpoint != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	maxUpload, err := getEnvInt64("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	maxLimit, err := getEnvInt("TRANSMITTAL_MAX_LIST_LIMIT", 0)
	if err != nil {
		return nil, err
	}
	defaultLimit, err := getEnvInt("TRANSMITTAL_DEFAULT_LIST_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	if defaultLimit < 0 || maxLimit < 0 || maxUpload <= 0 {
		return nil, fmt.Errorf("list limits must be non-negative and MAX_UPLOAD_BYTES positive")
	}

	logFormat := strings.ToLower(getEnv("LOG_FORMAT", "json"))
	if logFormat != "json" && logFormat != "console" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or console, got %q", logFormat)
	}

	return &Config{
		Port:           getEnv("PORT", "8001"),
		PathPrefix:     normalizePrefix(getEnv("PATH_PREFIX", "/api")),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      logFormat,
		MaxUploadBytes: maxUpload,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "transmittals"),
			Silent:   getEnvBool("DB_SILENT", false),
		},
		Transmittal: TransmittalConfig{
			StrictTransitions: getEnvBool("TRANSMITTAL_STRICT_TRANSITIONS", false),
			MaxListLimit:      maxLimit,
			DefaultListLimit:  defaultLimit,
		},
		Archive: ArchiveConfig{
			Endpoint:  os.Getenv("ARCHIVE_ENDPOINT"),
			AccessKey: os.Getenv("ARCHIVE_ACCESS_KEY"),
			SecretKey: os.Getenv("ARCHIVE_SECRET_KEY"),
			Bucket:    getEnv("ARCHIVE_BUCKET", "transmittals"),
			UseSSL:    getEnvBool("ARCHIVE_USE_SSL", false),
			Region:    os.Getenv("ARCHIVE_REGION"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizePrefix yields "" or "/x" without a trailing slash
func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
