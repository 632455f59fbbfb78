// Package classifier runs fitted classifiers over feature vectors. Every
// classifier emits an encoded class id; mapping ids back to labels is the
// decoder's job.
package classifier

import (
	"fmt"
	"math"

	"github.com/crimson-sun/taxon/internal/engine/tensorfile"
	"github.com/crimson-sun/taxon/internal/engine/vectorizer"
)

// Classifier predicts an encoded class id for a feature vector.
type Classifier interface {
	Predict(vec vectorizer.Vector) (int64, error)
}

// Linear is a one-vs-rest linear model: score = coef·x + intercept, the
// highest-scoring row wins. A single coef row is a binary model where a
// positive score selects the second class.
type Linear struct {
	coef      []float32 // row-major [rows, dim]
	intercept []float32
	classes   []int64
	rows, dim int
}

// LoadLinear reads "coef" [C, D], "intercept" [C] and optional "classes"
// [C] (or [2] for binary models) from a safetensors file. Without a
// classes tensor, row i predicts id i.
func LoadLinear(path string) (*Linear, error) {
	f, err := tensorfile.Read(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	coef, shape, err := f.Float32("coef")
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	if len(shape) != 2 || shape[0] == 0 {
		return nil, fmt.Errorf("classifier: expected 2D coef tensor, got shape %v", shape)
	}
	rows, dim := shape[0], shape[1]

	intercept := make([]float32, rows)
	if f.Has("intercept") {
		b, bshape, err := f.Float32("intercept")
		if err != nil {
			return nil, fmt.Errorf("classifier: %w", err)
		}
		if len(bshape) != 1 || bshape[0] != rows {
			return nil, fmt.Errorf("classifier: intercept shape %v doesn't match %d coef rows", bshape, rows)
		}
		intercept = b
	}

	nClasses := rows
	if rows == 1 {
		nClasses = 2
	}
	classes, err := loadClasses(f, nClasses)
	if err != nil {
		return nil, err
	}

	return &Linear{coef: coef, intercept: intercept, classes: classes, rows: rows, dim: dim}, nil
}

// NewLinear builds a Linear model from in-memory weights.
func NewLinear(coef [][]float32, intercept []float32, classes []int64) (*Linear, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("classifier: empty coef")
	}
	rows, dim := len(coef), len(coef[0])
	flat := make([]float32, 0, rows*dim)
	for i, row := range coef {
		if len(row) != dim {
			return nil, fmt.Errorf("classifier: coef row %d has %d columns, want %d", i, len(row), dim)
		}
		flat = append(flat, row...)
	}
	if intercept == nil {
		intercept = make([]float32, rows)
	}
	if len(intercept) != rows {
		return nil, fmt.Errorf("classifier: %d intercepts for %d coef rows", len(intercept), rows)
	}
	nClasses := rows
	if rows == 1 {
		nClasses = 2
	}
	if classes == nil {
		classes = identity(nClasses)
	}
	if len(classes) != nClasses {
		return nil, fmt.Errorf("classifier: %d classes, want %d", len(classes), nClasses)
	}
	return &Linear{coef: flat, intercept: intercept, classes: classes, rows: rows, dim: dim}, nil
}

// Predict returns the encoded id of the highest-scoring class. Ties go to
// the lowest row.
func (l *Linear) Predict(vec vectorizer.Vector) (int64, error) {
	if vec.Dim != l.dim {
		return 0, fmt.Errorf("classifier: vector dim %d != model dim %d", vec.Dim, l.dim)
	}

	if l.rows == 1 {
		if l.score(0, vec) > 0 {
			return l.classes[1], nil
		}
		return l.classes[0], nil
	}

	best, bestScore := 0, math.Inf(-1)
	for r := 0; r < l.rows; r++ {
		if s := l.score(r, vec); s > bestScore {
			best, bestScore = r, s
		}
	}
	return l.classes[best], nil
}

// Dim returns the feature dimensionality the model was fitted on.
func (l *Linear) Dim() int {
	return l.dim
}

func (l *Linear) score(r int, vec vectorizer.Vector) float64 {
	row := l.coef[r*l.dim : (r+1)*l.dim]
	sum := float64(l.intercept[r])
	for i, col := range vec.Indices {
		sum += float64(row[col]) * float64(vec.Values[i])
	}
	return sum
}

// Centroid is a nearest-centroid classifier scored by cosine similarity.
type Centroid struct {
	centroids [][]float32
	classes   []int64
	dim       int
}

// LoadCentroid reads "centroids" [C, D] and optional "classes" [C] from a
// safetensors file.
func LoadCentroid(path string) (*Centroid, error) {
	f, err := tensorfile.Read(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	flat, shape, err := f.Float32("centroids")
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	if len(shape) != 2 || shape[0] == 0 {
		return nil, fmt.Errorf("classifier: expected 2D centroids tensor, got shape %v", shape)
	}
	rows, dim := shape[0], shape[1]

	classes, err := loadClasses(f, rows)
	if err != nil {
		return nil, err
	}

	centroids := make([][]float32, rows)
	for r := range centroids {
		centroids[r] = flat[r*dim : (r+1)*dim]
	}
	return &Centroid{centroids: centroids, classes: classes, dim: dim}, nil
}

// Predict returns the encoded id of the most similar centroid. A zero
// vector scores 0 against every centroid and resolves to the first one.
func (c *Centroid) Predict(vec vectorizer.Vector) (int64, error) {
	if vec.Dim != c.dim {
		return 0, fmt.Errorf("classifier: vector dim %d != model dim %d", vec.Dim, c.dim)
	}
	dense := vec.Dense()

	best, bestSim := 0, math.Inf(-1)
	for r, centroid := range c.centroids {
		if sim := cosineSimilarity(dense, centroid); sim > bestSim {
			best, bestSim = r, sim
		}
	}
	return c.classes[best], nil
}

// Dim returns the feature dimensionality the model was fitted on.
func (c *Centroid) Dim() int {
	return c.dim
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func loadClasses(f *tensorfile.File, n int) ([]int64, error) {
	if !f.Has("classes") {
		return identity(n), nil
	}
	classes, shape, err := f.Int64("classes")
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	if len(shape) != 1 || shape[0] != n {
		return nil, fmt.Errorf("classifier: classes shape %v, want [%d]", shape, n)
	}
	return classes, nil
}

func identity(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i)
	}
	return ids
}
