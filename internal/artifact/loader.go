package artifact

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/crimson-sun/taxon/internal/engine"
	"github.com/crimson-sun/taxon/internal/engine/classifier"
	"github.com/crimson-sun/taxon/internal/engine/decoder"
	"github.com/crimson-sun/taxon/internal/engine/registry"
	"github.com/crimson-sun/taxon/internal/engine/vectorizer"
)

// Options tunes artifact loading.
type Options struct {
	// ONNXLibrary overrides the manifest's onnx.library path.
	ONNXLibrary string
	Logger      *slog.Logger
}

// Set is a loaded model set. Close releases ONNX sessions, if any.
type Set struct {
	Context  engine.InferenceContext
	Manifest *Manifest
	closers  []io.Closer
}

// Close releases every runtime resource held by the set.
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

type dimensioned interface {
	Dim() int
}

// Load reads the manifest at path and every artifact it names. Any failure
// returns a *LoadError and releases whatever was already loaded.
func Load(path string, opts Options) (*Set, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()

	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}

	s := &Set{Manifest: m}
	if err := s.load(m, opts); err != nil {
		s.Close()
		return nil, err
	}

	log.Info("artifacts loaded",
		"manifest", path,
		"features", s.Context.Vectorizer.Dim(),
		"level1_labels", s.Context.Level1Decoder.Len(),
		"level2_branches", s.Context.Registry.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return s, nil
}

func (s *Set) load(m *Manifest, opts Options) error {
	vs := m.Vectorizer
	cfg := vectorizer.Config{
		VocabularyPath: m.resolve(vs.Vocabulary),
		WeightsPath:    m.resolve(vs.Weights),
		TokenPattern:   vs.TokenPattern,
		SublinearTF:    vs.SublinearTF,
		Norm:           vs.Norm,
	}
	if len(vs.NgramRange) == 2 {
		cfg.MinN, cfg.MaxN = vs.NgramRange[0], vs.NgramRange[1]
	}
	vec, err := vectorizer.Load(cfg)
	if err != nil {
		return &LoadError{Artifact: "vectorizer", Path: cfg.VocabularyPath, Err: err}
	}

	onnxLib := opts.ONNXLibrary
	if onnxLib == "" {
		onnxLib = m.resolve(m.ONNX.Library)
	}

	l1, err := s.loadClassifier(m, m.Level1.Classifier, onnxLib, vec.Dim())
	if err != nil {
		return &LoadError{Artifact: "level1.classifier", Path: m.resolve(m.Level1.Classifier.Path), Err: err}
	}
	l1Dec, err := decoder.Load(m.resolve(m.Level1.Decoder))
	if err != nil {
		return &LoadError{Artifact: "level1.decoder", Path: m.resolve(m.Level1.Decoder), Err: err}
	}
	known := make(map[string]bool, l1Dec.Len())
	for _, label := range l1Dec.Classes() {
		known[label] = true
	}

	classifiers := make(map[string]classifier.Classifier, len(m.Level2.Classifiers))
	for _, label := range sortedKeys(m.Level2.Classifiers) {
		spec := m.Level2.Classifiers[label]
		name := fmt.Sprintf("level2[%s].classifier", label)
		if !known[label] {
			return &LoadError{Artifact: name, Err: fmt.Errorf("%q is not a level-1 label", label)}
		}
		cls, err := s.loadClassifier(m, spec, onnxLib, vec.Dim())
		if err != nil {
			return &LoadError{Artifact: name, Path: m.resolve(spec.Path), Err: err}
		}
		classifiers[label] = cls
	}

	decoders := make(map[string]*decoder.Decoder, len(m.Level2.Decoders))
	for _, label := range sortedKeys(m.Level2.Decoders) {
		path := m.resolve(m.Level2.Decoders[label])
		d, err := decoder.Load(path)
		if err != nil {
			return &LoadError{Artifact: fmt.Sprintf("level2[%s].decoder", label), Path: path, Err: err}
		}
		decoders[label] = d
	}

	reg, err := registry.New(classifiers, decoders)
	if err != nil {
		return &LoadError{Artifact: "level2", Err: err}
	}

	s.Context = engine.InferenceContext{
		Vectorizer:    vec,
		Level1:        l1,
		Level1Decoder: l1Dec,
		Registry:      reg,
	}
	return nil
}

func (s *Set) loadClassifier(m *Manifest, spec ModelSpec, onnxLib string, dim int) (classifier.Classifier, error) {
	path := m.resolve(spec.Path)

	var cls classifier.Classifier
	switch spec.Kind {
	case KindLinear:
		lin, err := classifier.LoadLinear(path)
		if err != nil {
			return nil, err
		}
		cls = lin
	case KindCentroid:
		c, err := classifier.LoadCentroid(path)
		if err != nil {
			return nil, err
		}
		cls = c
	case KindONNX:
		o, err := classifier.LoadONNX(path, classifier.ONNXOptions{
			LibraryPath: onnxLib,
			InputName:   spec.Input,
			OutputName:  spec.Output,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, o)
		cls = o
	default:
		return nil, fmt.Errorf("unknown kind %q", spec.Kind)
	}

	if d, ok := cls.(dimensioned); ok && d.Dim() != dim {
		return nil, fmt.Errorf("model expects %d features, vectorizer produces %d", d.Dim(), dim)
	}
	return cls, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
