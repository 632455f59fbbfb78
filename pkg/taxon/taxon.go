package taxon

import (
	"context"
	"fmt"

	"github.com/crimson-sun/taxon/internal/artifact"
	"github.com/crimson-sun/taxon/internal/batch"
	"github.com/crimson-sun/taxon/internal/engine"
)

// Taxon is a loaded two-level classifier. Safe for concurrent use.
type Taxon struct {
	engine *engine.Engine
	runner *batch.Runner
	set    *artifact.Set
}

// New loads every artifact named by the manifest. Any missing or
// inconsistent artifact fails here, never at classification time.
func New(opts ...Option) (*Taxon, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	set, err := artifact.Load(resolveManifest(o), artifact.Options{
		ONNXLibrary: o.onnxLibrary,
		Logger:      o.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("taxon: %w", err)
	}

	eng, err := engine.New(set.Context, engine.WithLogger(o.logger))
	if err != nil {
		set.Close()
		return nil, fmt.Errorf("taxon: %w", err)
	}

	return &Taxon{
		engine: eng,
		runner: batch.New(eng, batch.WithWorkers(o.workers), batch.WithLogger(o.logger)),
		set:    set,
	}, nil
}

// Classify normalizes text and predicts its label pair.
func (t *Taxon) Classify(text string) Prediction {
	return predictionFromModel(t.engine.Classify(text))
}

// ClassifyValue is Classify for a value of any type, as found in
// spreadsheet cells. nil classifies as the empty string.
func (t *Taxon) ClassifyValue(v any) Prediction {
	return predictionFromModel(t.engine.Classify(v))
}

// ClassifyBatch classifies texts concurrently. The i-th prediction belongs
// to the i-th text. It fails only when ctx is cancelled.
func (t *Taxon) ClassifyBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	values := make([]any, len(texts))
	for i, s := range texts {
		values[i] = s
	}
	preds, err := t.runner.Run(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("taxon: %w", err)
	}
	out := make([]Prediction, len(preds))
	for i, p := range preds {
		out[i] = predictionFromModel(p)
	}
	return out, nil
}

// ClassifyFile reads the description column of the CSV, XLSX or NDJSON file
// at in and writes the table with both label columns added to out.
func (t *Taxon) ClassifyFile(ctx context.Context, in, out string) (Summary, error) {
	s, err := t.runner.RunFile(ctx, in, out)
	if err != nil {
		return Summary{}, fmt.Errorf("taxon: %w", err)
	}
	status := make(map[string]int, len(s.Status))
	for k, v := range s.Status {
		status[string(k)] = v
	}
	return Summary{Rows: s.Rows, Status: status}, nil
}

// Taxonomy lists every Level-1 label with its Level-2 labels, in Level-1
// class order.
func (t *Taxon) Taxonomy() []Category {
	cats := t.engine.Taxonomy()
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{Name: c.Name, Subcategories: c.Subcategories}
	}
	return out
}

// Close releases model resources. Must be called when the Taxon is no
// longer needed.
func (t *Taxon) Close() error {
	return t.set.Close()
}
