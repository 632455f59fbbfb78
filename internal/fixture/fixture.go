// Package fixture writes a tiny but complete model set to disk so that the
// loader, engine, batch runner, server and CLI can be exercised end to end.
//
// Taxonomy:
//
//	Billing    (no level-2 branch)
//	Technical  → Network Outage, Password Reset   (linear branch)
//	Account    → Profile Update, Email Change     (centroid branch)
//
// Trigger words: "mystery" makes the level-1 model emit an id outside its
// decoder; "glitch" does the same for the Technical branch. Text with no
// known word scores only the intercepts and lands on Billing.
package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimson-sun/taxon/internal/engine/tensorfile"
)

// Vocabulary is the fixture's feature space, in column order.
var Vocabulary = []string{
	"invoice", "payment", "refund",
	"network", "outage", "router", "down",
	"password", "reset", "login",
	"glitch", "mystery",
	"profile", "email",
}

// Manifest is the fixture's manifest.yaml.
const Manifest = `vectorizer:
  vocabulary: vocab.txt
  weights: tfidf.safetensors
  ngram_range: [1, 1]
  sublinear_tf: false
  norm: l2
level1:
  classifier:
    kind: linear
    path: level1.safetensors
  decoder: level1.classes
level2:
  classifiers:
    Technical:
      kind: linear
      path: level2/technical.safetensors
    Account:
      kind: centroid
      path: level2/account.safetensors
  decoders:
    Technical: level2/technical.classes
    Account: level2/account.classes
`

// Write materializes the fixture under a fresh temp dir and returns the
// manifest path.
func Write(tb testing.TB) string {
	tb.Helper()
	dir := tb.TempDir()
	if err := WriteTo(dir); err != nil {
		tb.Fatalf("fixture: %v", err)
	}
	return filepath.Join(dir, "manifest.yaml")
}

// WriteTo materializes the fixture under dir.
func WriteTo(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "level2"), 0o755); err != nil {
		return err
	}

	files := map[string]string{
		"manifest.yaml":            Manifest,
		"vocab.txt":                strings.Join(Vocabulary, "\n") + "\n",
		"level1.classes":           "Billing\nTechnical\nAccount\n",
		"level2/technical.classes": "Network Outage\nPassword Reset\n",
		"level2/account.classes":   "Profile Update\nEmail Change\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}

	dim := len(Vocabulary)
	idf := make([]float32, dim)
	for i := range idf {
		idf[i] = 1
	}
	if err := tensorfile.Write(filepath.Join(dir, "tfidf.safetensors"),
		tensorfile.Tensor{Name: "idf", Dtype: tensorfile.F32, Shape: []int{dim}, F32: idf},
	); err != nil {
		return err
	}

	level1 := [][]string{
		{"invoice", "payment", "refund"},
		{"network", "outage", "router", "down", "password", "reset", "login", "glitch"},
		{"mystery"},
		{"profile", "email"},
	}
	if err := writeLinear(filepath.Join(dir, "level1.safetensors"), level1,
		[]float32{0.1, 0, 0, 0}, []int64{0, 1, 9, 2}); err != nil {
		return err
	}

	technical := [][]string{
		{"network", "outage", "router", "down"},
		{"password", "reset", "login"},
		{"glitch"},
	}
	if err := writeLinear(filepath.Join(dir, "level2", "technical.safetensors"), technical,
		[]float32{0.1, 0, 0}, []int64{0, 1, 5}); err != nil {
		return err
	}

	account := [][]string{{"profile"}, {"email"}}
	return tensorfile.Write(filepath.Join(dir, "level2", "account.safetensors"),
		tensorfile.Tensor{Name: "centroids", Dtype: tensorfile.F32, Shape: []int{len(account), dim}, F32: rows(account)},
	)
}

func writeLinear(path string, classWords [][]string, intercept []float32, classes []int64) error {
	n := len(classWords)
	return tensorfile.Write(path,
		tensorfile.Tensor{Name: "coef", Dtype: tensorfile.F32, Shape: []int{n, len(Vocabulary)}, F32: rows(classWords)},
		tensorfile.Tensor{Name: "intercept", Dtype: tensorfile.F32, Shape: []int{n}, F32: intercept},
		tensorfile.Tensor{Name: "classes", Dtype: tensorfile.I64, Shape: []int{n}, I64: classes},
	)
}

// rows builds a flattened [len(classWords), len(Vocabulary)] matrix with a
// 1 at every (class, word) pair.
func rows(classWords [][]string) []float32 {
	col := make(map[string]int, len(Vocabulary))
	for i, w := range Vocabulary {
		col[w] = i
	}
	dim := len(Vocabulary)
	out := make([]float32, len(classWords)*dim)
	for r, words := range classWords {
		for _, w := range words {
			out[r*dim+col[w]] = 1
		}
	}
	return out
}
