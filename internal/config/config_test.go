package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"TAXON_MANIFEST", "TAXON_ONNX_LIBRARY", "TAXON_LOG_LEVEL", "TAXON_LOG_FORMAT",
	"HOST", "PORT", "TAXON_UPLOAD_DIR", "TAXON_RESULT_DIR", "TAXON_MAX_UPLOAD_MB",
	"TAXON_READ_TIMEOUT", "TAXON_WRITE_TIMEOUT", "TAXON_SHUTDOWN_TIMEOUT",
	"TAXON_WORKERS", "TAXON_VERBOSITY", "TAXON_PRETTY",
}

// clearEnv unsets every config key for the duration of the test and runs
// it from an empty directory so no stray .env is picked up.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Model.ManifestPath != "models/manifest.yaml" {
		t.Errorf("ManifestPath = %q", cfg.Model.ManifestPath)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Server.MaxUploadMB != 32 {
		t.Errorf("MaxUploadMB = %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Batch.Workers != 0 {
		t.Errorf("Workers = %d", cfg.Batch.Workers)
	}
	if cfg.Output.Pretty {
		t.Error("expected default Pretty=false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TAXON_MANIFEST", "/srv/models/manifest.yaml")
	t.Setenv("PORT", "8080")
	t.Setenv("TAXON_WORKERS", "8")
	t.Setenv("TAXON_WRITE_TIMEOUT", "90s")
	t.Setenv("TAXON_PRETTY", "true")
	t.Setenv("TAXON_LOG_FORMAT", "json")

	cfg := Load()
	if cfg.Model.ManifestPath != "/srv/models/manifest.yaml" {
		t.Errorf("ManifestPath = %q", cfg.Model.ManifestPath)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("Workers = %d", cfg.Batch.Workers)
	}
	if cfg.Server.WriteTimeout != 90*time.Second {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
	if !cfg.Output.Pretty {
		t.Error("Pretty should be true")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")
	t.Setenv("TAXON_READ_TIMEOUT", "-5s")
	t.Setenv("TAXON_PRETTY", "maybe")

	cfg := Load()
	if cfg.Server.Port != 5000 {
		t.Errorf("Port = %d, want fallback 5000", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want fallback", cfg.Server.ReadTimeout)
	}
	if cfg.Output.Pretty {
		t.Error("Pretty should fall back to false")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir, _ := os.Getwd()
	body := "TAXON_ONNX_LIBRARY=/opt/onnxruntime/libonnxruntime.so\nPORT=7000\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	// Real environment wins over .env.
	t.Setenv("PORT", "9000")
	t.Cleanup(func() { os.Unsetenv("TAXON_ONNX_LIBRARY") })

	cfg := Load()
	if cfg.Model.ONNXLibrary != "/opt/onnxruntime/libonnxruntime.so" {
		t.Errorf("ONNXLibrary = %q", cfg.Model.ONNXLibrary)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000 from environment", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	cfg.Server.Port = 70000
	cfg.Batch.Workers = -1
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"invalid port 70000", "invalid worker count -1", `invalid log format "xml"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
