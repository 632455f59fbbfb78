package vectorizer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimson-sun/taxon/internal/engine/tensorfile"
)

// writeArtifacts writes a vocabulary and matching idf weights to dir.
func writeArtifacts(t *testing.T, dir string, terms []string, idf []float32) (string, string) {
	t.Helper()
	vocabPath := filepath.Join(dir, "vocab.txt")
	if err := os.WriteFile(vocabPath, []byte(strings.Join(terms, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	weightsPath := filepath.Join(dir, "tfidf.safetensors")
	err := tensorfile.Write(weightsPath, tensorfile.Tensor{
		Name: "idf", Dtype: tensorfile.F32, Shape: []int{len(idf)}, F32: idf,
	})
	if err != nil {
		t.Fatal(err)
	}
	return vocabPath, weightsPath
}

func closeEnough(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestTransformL2(t *testing.T) {
	dir := t.TempDir()
	vp, wp := writeArtifacts(t, dir, []string{"network", "outage", "router"}, []float32{1, 2, 1})

	v, err := Load(Config{VocabularyPath: vp, WeightsPath: wp})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if v.Dim() != 3 {
		t.Fatalf("Dim() = %d, want 3", v.Dim())
	}

	vecs := v.Transform([]string{"network outage unknownword"})
	if len(vecs) != 1 {
		t.Fatalf("Transform returned %d vectors, want 1", len(vecs))
	}
	dense := vecs[0].Dense()
	// tf-idf = [1, 2, 0], l2 norm = sqrt(5)
	norm := float32(math.Sqrt(5))
	want := []float32{1 / norm, 2 / norm, 0}
	for i := range want {
		if !closeEnough(dense[i], want[i]) {
			t.Errorf("dense[%d] = %f, want %f", i, dense[i], want[i])
		}
	}
}

func TestTransformEmpty(t *testing.T) {
	dir := t.TempDir()
	vp, wp := writeArtifacts(t, dir, []string{"alpha", "beta"}, []float32{1, 1})

	v, err := Load(Config{VocabularyPath: vp, WeightsPath: wp})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	vec := v.Transform([]string{""})[0]
	if vec.Dim != 2 || len(vec.Indices) != 0 {
		t.Errorf("empty text: got %+v, want zero vector of dim 2", vec)
	}
	for _, x := range vec.Dense() {
		if x != 0 {
			t.Errorf("empty text dense = %v, want zeros", vec.Dense())
		}
	}
}

func TestTransformSublinearBigrams(t *testing.T) {
	dir := t.TempDir()
	vp, wp := writeArtifacts(t, dir, []string{"down", "router", "router down"}, []float32{1, 1, 1})

	v, err := Load(Config{VocabularyPath: vp, WeightsPath: wp, MinN: 1, MaxN: 2, SublinearTF: true, Norm: "none"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	dense := v.Transform([]string{"router down router"})[0].Dense()
	// router appears twice → 1+ln2; down once → 1; bigram "router down" once → 1
	want := []float32{1, float32(1 + math.Log(2)), 1}
	for i := range want {
		if !closeEnough(dense[i], want[i]) {
			t.Errorf("dense[%d] = %f, want %f", i, dense[i], want[i])
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	vp, wp := writeArtifacts(t, dir, []string{"a1", "b2"}, []float32{1, 1, 1})

	if _, err := Load(Config{VocabularyPath: vp, WeightsPath: wp}); err == nil {
		t.Error("expected shape mismatch error")
	}
	if _, err := Load(Config{VocabularyPath: filepath.Join(dir, "nope"), WeightsPath: wp}); err == nil {
		t.Error("expected missing vocabulary error")
	}

	dir2 := t.TempDir()
	vp2, wp2 := writeArtifacts(t, dir2, []string{"a1"}, []float32{1})
	if _, err := Load(Config{VocabularyPath: vp2, WeightsPath: wp2, Norm: "l1"}); err == nil {
		t.Error("expected unsupported norm error")
	}
	if _, err := Load(Config{VocabularyPath: vp2, WeightsPath: wp2, MinN: 2, MaxN: 1}); err == nil {
		t.Error("expected invalid ngram range error")
	}
}

func TestAnalyzerTerms(t *testing.T) {
	an, err := newAnalyzer("", 1, 2)
	if err != nil {
		t.Fatalf("newAnalyzer() error: %v", err)
	}
	got := an.terms("a café is open")
	want := []string{"café", "is", "open", "café is", "is open"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("terms = %q, want %q", got, want)
	}
}
