package taxon

import (
	"log/slog"
	"path/filepath"
)

type options struct {
	modelDir     string
	manifestPath string
	onnxLibrary  string
	workers      int
	logger       *slog.Logger
}

// Option configures a Taxon instance.
type Option func(*options)

// WithModelDir sets the directory holding manifest.yaml and the artifacts
// it names.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithManifest sets an explicit manifest path. Takes precedence over
// WithModelDir.
func WithManifest(path string) Option {
	return func(o *options) {
		o.manifestPath = path
	}
}

// WithONNXLibrary sets the ONNX Runtime shared library. Only needed when the
// manifest uses onnx classifiers and does not name the library itself.
func WithONNXLibrary(path string) Option {
	return func(o *options) {
		o.onnxLibrary = path
	}
}

// WithWorkers bounds the goroutines used by ClassifyBatch and ClassifyFile.
// Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger for load and fallback diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{logger: slog.Default()}
}

// resolveManifest returns the manifest path. An explicit manifest takes
// precedence over modelDir.
func resolveManifest(o options) string {
	if o.manifestPath != "" {
		return o.manifestPath
	}
	dir := o.modelDir
	if dir == "" {
		dir = "models"
	}
	return filepath.Join(dir, "manifest.yaml")
}
