package engine

import (
	"errors"
	"log/slog"

	"github.com/crimson-sun/taxon/internal/engine/classifier"
	"github.com/crimson-sun/taxon/internal/engine/decoder"
	"github.com/crimson-sun/taxon/internal/engine/normalizer"
	"github.com/crimson-sun/taxon/internal/engine/registry"
	"github.com/crimson-sun/taxon/internal/engine/vectorizer"
	"github.com/crimson-sun/taxon/internal/model"
)

// InferenceContext bundles the fitted artifacts the dispatcher runs on.
// It is constructed once at startup and never mutated.
type InferenceContext struct {
	Vectorizer    vectorizer.Vectorizer
	Level1        classifier.Classifier
	Level1Decoder *decoder.Decoder
	Registry      *registry.Registry
}

func (ic InferenceContext) validate() error {
	switch {
	case ic.Vectorizer == nil:
		return errors.New("engine: missing vectorizer")
	case ic.Level1 == nil:
		return errors.New("engine: missing level-1 classifier")
	case ic.Level1Decoder == nil:
		return errors.New("engine: missing level-1 decoder")
	case ic.Registry == nil:
		return errors.New("engine: missing level-2 registry")
	}
	return nil
}

// Engine orchestrates the normalize → vectorize → level-1 → level-2
// dispatch. Safe for concurrent use.
type Engine struct {
	ic     InferenceContext
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine over a fully populated InferenceContext.
func New(ic InferenceContext, opts ...Option) (*Engine, error) {
	if err := ic.validate(); err != nil {
		return nil, err
	}
	e := &Engine{ic: ic, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Classify normalizes a raw value and predicts its label pair.
func (e *Engine) Classify(raw any) model.Prediction {
	return e.Predict(normalizer.Normalize(raw))
}

// Predict resolves the (level1, level2) pair for already-normalized text.
// It never fails: unresolvable levels come back as sentinel labels.
func (e *Engine) Predict(normalized string) model.Prediction {
	vecs := e.ic.Vectorizer.Transform([]string{normalized})
	if len(vecs) != 1 {
		e.logger.Warn("vectorizer returned unexpected batch size", "got", len(vecs))
		return level1Unknown()
	}
	vec := vecs[0]

	id, err := e.ic.Level1.Predict(vec)
	if err != nil {
		e.logger.Warn("level-1 classifier failed", "error", err)
		return level1Unknown()
	}
	l1, ok := e.ic.Level1Decoder.Decode(id)
	if !ok {
		e.logger.Debug("level-1 id outside decoder vocabulary", "id", id)
		return level1Unknown()
	}

	branch, ok := e.ic.Registry.Lookup(l1)
	if !ok {
		return model.Prediction{Level1: l1, Level2: model.NoSubCategory, Status: model.StatusNoBranch}
	}

	// The level-2 model shares the level-1 feature space; reuse vec.
	id, err = branch.Classifier.Predict(vec)
	if err != nil {
		e.logger.Warn("level-2 classifier failed", "level1", l1, "error", err)
		return level2Unknown(l1)
	}
	l2, ok := branch.Decoder.Decode(id)
	if !ok {
		e.logger.Debug("level-2 id outside decoder vocabulary", "level1", l1, "id", id)
		return level2Unknown(l1)
	}

	return model.Prediction{Level1: l1, Level2: l2, Status: model.StatusResolved}
}

// Taxonomy lists every Level-1 label the model can emit with the Level-2
// vocabulary of its branch, in Level-1 id order.
func (e *Engine) Taxonomy() []model.Category {
	l1 := e.ic.Level1Decoder.Classes()
	cats := make([]model.Category, len(l1))
	for i, name := range l1 {
		cats[i] = model.Category{Name: name}
		if b, ok := e.ic.Registry.Lookup(name); ok {
			cats[i].Subcategories = b.Decoder.Classes()
		}
	}
	return cats
}

func level1Unknown() model.Prediction {
	return model.Prediction{
		Level1: model.Level1Unknown,
		Level2: model.Level2Unknown,
		Status: model.StatusLevel1Unknown,
	}
}

func level2Unknown(l1 string) model.Prediction {
	return model.Prediction{Level1: l1, Level2: model.Level2Unknown, Status: model.StatusLevel2Unknown}
}
