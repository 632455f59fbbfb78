// Package artifact loads the fitted model files named by a YAML manifest
// into an engine.InferenceContext.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Classifier kinds.
const (
	KindLinear   = "linear"
	KindCentroid = "centroid"
	KindONNX     = "onnx"
)

// Manifest names every artifact of a model set. Relative paths are resolved
// against the manifest's directory.
type Manifest struct {
	Vectorizer VectorizerSpec `yaml:"vectorizer"`
	Level1     Level1Spec     `yaml:"level1"`
	Level2     Level2Spec     `yaml:"level2"`
	ONNX       ONNXSpec       `yaml:"onnx"`

	dir string
}

// VectorizerSpec describes the TF-IDF vectorizer artifact.
type VectorizerSpec struct {
	Vocabulary   string `yaml:"vocabulary"`
	Weights      string `yaml:"weights"`
	TokenPattern string `yaml:"token_pattern"`
	NgramRange   []int  `yaml:"ngram_range"`
	SublinearTF  bool   `yaml:"sublinear_tf"`
	Norm         string `yaml:"norm"`
}

// ModelSpec describes one classifier artifact.
type ModelSpec struct {
	Kind   string `yaml:"kind"`
	Path   string `yaml:"path"`
	Input  string `yaml:"input,omitempty"`  // onnx only
	Output string `yaml:"output,omitempty"` // onnx only
}

// Level1Spec names the Level-1 classifier and its label decoder.
type Level1Spec struct {
	Classifier ModelSpec `yaml:"classifier"`
	Decoder    string    `yaml:"decoder"`
}

// Level2Spec names the per-category classifiers and decoders. Both maps are
// keyed by Level-1 label and must carry the same keys.
type Level2Spec struct {
	Classifiers map[string]ModelSpec `yaml:"classifiers"`
	Decoders    map[string]string    `yaml:"decoders"`
}

// ONNXSpec configures the ONNX Runtime used by onnx classifiers.
type ONNXSpec struct {
	Library string `yaml:"library"`
}

// ReadManifest parses the manifest at path. Unknown keys are rejected so a
// typo cannot silently drop an artifact.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Artifact: "manifest", Path: path, Err: err}
	}
	defer f.Close()

	m, err := decodeManifest(f)
	if err != nil {
		return nil, &LoadError{Artifact: "manifest", Path: path, Err: err}
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

func decodeManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Vectorizer.Vocabulary == "" || m.Vectorizer.Weights == "" {
		return errors.New("vectorizer: vocabulary and weights are required")
	}
	if n := len(m.Vectorizer.NgramRange); n != 0 && n != 2 {
		return fmt.Errorf("vectorizer: ngram_range must have 2 elements, got %d", n)
	}
	if err := m.Level1.Classifier.validate(); err != nil {
		return fmt.Errorf("level1.classifier: %w", err)
	}
	if m.Level1.Decoder == "" {
		return errors.New("level1.decoder is required")
	}
	for label, spec := range m.Level2.Classifiers {
		if err := spec.validate(); err != nil {
			return fmt.Errorf("level2.classifiers[%s]: %w", label, err)
		}
	}
	return nil
}

func (s ModelSpec) validate() error {
	switch s.Kind {
	case KindLinear, KindCentroid, KindONNX:
	case "":
		return errors.New("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	if s.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// resolve returns p relative to the manifest directory unless absolute.
func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.dir, p)
}
