// Package batch classifies many inputs concurrently and maps tables of
// descriptions to tables of labels.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/taxon/internal/engine/normalizer"
	"github.com/crimson-sun/taxon/internal/model"
	"github.com/crimson-sun/taxon/internal/output"
	"github.com/crimson-sun/taxon/internal/tabular"
)

// Column names used by table classification.
const (
	InputColumn  = "description"
	Level1Column = "Level 1 (category)"
	Level2Column = "Level 2 (sub-category)"
)

// ErrWrite marks a failure to store a classified table. The input was
// read and classified; the fault lies with the destination.
var ErrWrite = errors.New("write result")

// Classifier maps one raw value to its label pair. *engine.Engine
// satisfies it.
type Classifier interface {
	Classify(raw any) model.Prediction
}

// Runner fans classification out over a bounded set of goroutines.
type Runner struct {
	clf     Classifier
	workers int
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds concurrent classifications. n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithLogger sets the logger for batch summaries.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New creates a Runner over clf.
func New(clf Classifier, opts ...Option) *Runner {
	r := &Runner{clf: clf, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r
}

// Summary counts predictions by dispatch status.
type Summary struct {
	Rows   int                  `json:"rows"`
	Status map[model.Status]int `json:"status"`
}

// Summarize tallies preds.
func Summarize(preds []model.Prediction) Summary {
	s := Summary{Rows: len(preds), Status: make(map[model.Status]int)}
	for _, p := range preds {
		s.Status[p.Status]++
	}
	return s
}

// Run classifies every value. The i-th prediction belongs to the i-th
// value. Individual values never fail; only cancellation of ctx does.
func (r *Runner) Run(ctx context.Context, values []any) ([]model.Prediction, error) {
	preds := make([]model.Prediction, len(values))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, v := range values {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			preds[i] = r.clf.Classify(v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	// The parent may be cancelled after the last goroutine was scheduled.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	return preds, nil
}

// Emit classifies values and writes one record per value to out, in input
// order.
func (r *Runner) Emit(ctx context.Context, values []any, out output.Output) error {
	preds, err := r.Run(ctx, values)
	if err != nil {
		return err
	}
	for i, p := range preds {
		if err := out.Write(ctx, model.NewRecord(normalizer.Text(values[i]), p)); err != nil {
			return fmt.Errorf("batch output: %w", err)
		}
	}
	return nil
}

// RunTable classifies the description column of t and sets the two label
// columns on it. t is modified in place.
func (r *Runner) RunTable(ctx context.Context, t *tabular.Table) (Summary, error) {
	values, err := t.Column(InputColumn)
	if err != nil {
		return Summary{}, fmt.Errorf("batch: %w", err)
	}
	preds, err := r.Run(ctx, values)
	if err != nil {
		return Summary{}, err
	}

	l1 := make([]string, len(preds))
	l2 := make([]string, len(preds))
	for i, p := range preds {
		l1[i], l2[i] = p.Level1, p.Level2
	}
	if err := t.SetColumn(Level1Column, l1); err != nil {
		return Summary{}, fmt.Errorf("batch: %w", err)
	}
	if err := t.SetColumn(Level2Column, l2); err != nil {
		return Summary{}, fmt.Errorf("batch: %w", err)
	}

	s := Summarize(preds)
	r.logger.Info("batch classified",
		"rows", s.Rows,
		"resolved", s.Status[model.StatusResolved],
		"level1_unknown", s.Status[model.StatusLevel1Unknown],
		"level2_unknown", s.Status[model.StatusLevel2Unknown],
		"no_branch", s.Status[model.StatusNoBranch],
	)
	return s, nil
}

// RunFile reads the table at in, classifies it and writes the result to
// out. Both formats follow the file extensions.
func (r *Runner) RunFile(ctx context.Context, in, out string) (Summary, error) {
	// Fail on an unsupported output before doing any work.
	if _, err := tabular.Lookup(out); err != nil {
		return Summary{}, fmt.Errorf("batch: %w", err)
	}
	t, err := tabular.ReadFile(in)
	if err != nil {
		return Summary{}, fmt.Errorf("batch: %w", err)
	}
	s, err := r.RunTable(ctx, t)
	if err != nil {
		return Summary{}, err
	}
	if err := tabular.WriteFile(out, t); err != nil {
		return Summary{}, fmt.Errorf("batch: %w: %w", ErrWrite, err)
	}
	return s, nil
}
