package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all taxon configuration.
type Config struct {
	Model  ModelConfig
	Log    LogConfig
	Server ServerConfig
	Batch  BatchConfig
	Output OutputConfig
}

// ModelConfig locates the fitted artifacts.
type ModelConfig struct {
	ManifestPath string
	ONNXLibrary  string // only needed by onnx-kind classifiers
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	UploadDir       string
	ResultDir       string
	MaxUploadMB     int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BatchConfig holds batch classification settings.
type BatchConfig struct {
	Workers int // 0 means GOMAXPROCS
}

// OutputConfig holds record output settings.
type OutputConfig struct {
	Verbosity string // "minimal", "standard", "full"
	Pretty    bool
}

// Load reads an optional .env file, then configuration from environment
// variables with sensible defaults. Variables already set in the
// environment win over .env entries.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Model: ModelConfig{
			ManifestPath: getenv("TAXON_MANIFEST", "models/manifest.yaml"),
			ONNXLibrary:  os.Getenv("TAXON_ONNX_LIBRARY"),
		},
		Log: LogConfig{
			Level:  getenv("TAXON_LOG_LEVEL", "info"),
			Format: getenv("TAXON_LOG_FORMAT", "text"),
		},
		Server: ServerConfig{
			Host:            getenv("HOST", "0.0.0.0"),
			Port:            getenvInt("PORT", 5000),
			UploadDir:       getenv("TAXON_UPLOAD_DIR", "uploads"),
			ResultDir:       getenv("TAXON_RESULT_DIR", "results"),
			MaxUploadMB:     int64(getenvInt("TAXON_MAX_UPLOAD_MB", 32)),
			ReadTimeout:     getenvDuration("TAXON_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getenvDuration("TAXON_WRITE_TIMEOUT", 5*time.Minute),
			ShutdownTimeout: getenvDuration("TAXON_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Batch: BatchConfig{
			Workers: getenvInt("TAXON_WORKERS", 0),
		},
		Output: OutputConfig{
			Verbosity: getenv("TAXON_VERBOSITY", "standard"),
			Pretty:    getenvBool("TAXON_PRETTY", false),
		},
	}
}

// Validate checks the settings that cannot fall back to a default.
func (c Config) Validate() error {
	var errs []error
	if c.Model.ManifestPath == "" {
		errs = append(errs, errors.New("manifest path is empty"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("invalid max upload size %dMB", c.Server.MaxUploadMB))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("invalid worker count %d", c.Batch.Workers))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
