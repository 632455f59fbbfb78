// Package vectorizer maps normalized text onto the fixed-dimension TF-IDF
// feature space of a fitted vectorizer artifact.
package vectorizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/crimson-sun/taxon/internal/engine/tensorfile"
)

// Vector is a sparse feature vector. Indices are strictly increasing.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float32
}

// Dense expands v into a []float32 of length Dim.
func (v Vector) Dense() []float32 {
	out := make([]float32, v.Dim)
	for i, col := range v.Indices {
		out[col] = v.Values[i]
	}
	return out
}

// Vectorizer transforms normalized texts into feature vectors.
type Vectorizer interface {
	Transform(texts []string) []Vector
	Dim() int
}

// Config describes how the vectorizer artifact was fitted.
type Config struct {
	VocabularyPath string
	WeightsPath    string // safetensors file holding an "idf" F32 tensor
	TokenPattern   string
	MinN, MaxN     int
	SublinearTF    bool
	Norm           string // "l2" or "none"
}

// TFIDF is a read-only TF-IDF vectorizer. Safe for concurrent use.
type TFIDF struct {
	vocab       *vocab
	idf         []float32
	analyzer    *analyzer
	sublinearTF bool
	l2          bool
}

// Load builds a TFIDF vectorizer from its vocabulary and idf weights.
func Load(cfg Config) (*TFIDF, error) {
	v, err := loadVocab(cfg.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}

	w, err := tensorfile.Read(cfg.WeightsPath)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}
	idf, shape, err := w.Float32("idf")
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}
	if len(shape) != 1 || shape[0] != v.size() {
		return nil, fmt.Errorf("vectorizer: idf shape %v doesn't match vocabulary size %d", shape, v.size())
	}

	minN, maxN := cfg.MinN, cfg.MaxN
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	an, err := newAnalyzer(cfg.TokenPattern, minN, maxN)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}

	var l2 bool
	switch cfg.Norm {
	case "", "l2":
		l2 = true
	case "none":
	default:
		return nil, fmt.Errorf("vectorizer: unsupported norm %q", cfg.Norm)
	}

	return &TFIDF{vocab: v, idf: idf, analyzer: an, sublinearTF: cfg.SublinearTF, l2: l2}, nil
}

// Dim returns the feature dimensionality (vocabulary size).
func (t *TFIDF) Dim() int {
	return t.vocab.size()
}

// Transform vectorizes each text. Terms outside the vocabulary are ignored,
// so the empty string yields a zero vector.
func (t *TFIDF) Transform(texts []string) []Vector {
	out := make([]Vector, len(texts))
	for i, text := range texts {
		out[i] = t.transformOne(text)
	}
	return out
}

func (t *TFIDF) transformOne(text string) Vector {
	counts := make(map[int]int)
	for _, term := range t.analyzer.terms(text) {
		if col, ok := t.vocab.lookup(term); ok {
			counts[col]++
		}
	}

	vec := Vector{Dim: t.vocab.size()}
	if len(counts) == 0 {
		return vec
	}

	vec.Indices = make([]int, 0, len(counts))
	for col := range counts {
		vec.Indices = append(vec.Indices, col)
	}
	sort.Ints(vec.Indices)

	vec.Values = make([]float32, len(vec.Indices))
	var sumSq float64
	for i, col := range vec.Indices {
		tf := float64(counts[col])
		if t.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * float64(t.idf[col])
		vec.Values[i] = float32(w)
		sumSq += w * w
	}

	if t.l2 && sumSq > 0 {
		inv := 1 / math.Sqrt(sumSq)
		for i := range vec.Values {
			vec.Values[i] = float32(float64(vec.Values[i]) * inv)
		}
	}
	return vec
}
