package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimson-sun/taxon/internal/engine"
	"github.com/crimson-sun/taxon/internal/engine/registry"
	"github.com/crimson-sun/taxon/internal/fixture"
	"github.com/crimson-sun/taxon/internal/model"
)

func TestLoadFixture(t *testing.T) {
	set, err := Load(fixture.Write(t), Options{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	defer set.Close()

	if got := set.Context.Vectorizer.Dim(); got != len(fixture.Vocabulary) {
		t.Errorf("vectorizer Dim() = %d, want %d", got, len(fixture.Vocabulary))
	}
	if got := set.Context.Registry.Labels(); strings.Join(got, ",") != "Account,Technical" {
		t.Errorf("registry labels = %v, want [Account Technical]", got)
	}

	eng, err := engine.New(set.Context)
	if err != nil {
		t.Fatalf("engine.New() error: %v", err)
	}

	tests := []struct {
		input string
		want  model.Prediction
	}{
		{"Network outage since 9am!", model.Prediction{Level1: "Technical", Level2: "Network Outage", Status: model.StatusResolved}},
		{"please RESET my password", model.Prediction{Level1: "Technical", Level2: "Password Reset", Status: model.StatusResolved}},
		{"refund the last invoice", model.Prediction{Level1: "Billing", Level2: model.NoSubCategory, Status: model.StatusNoBranch}},
		{"a mystery", model.Prediction{Level1: model.Level1Unknown, Level2: model.Level2Unknown, Status: model.StatusLevel1Unknown}},
		{"weird glitch", model.Prediction{Level1: "Technical", Level2: model.Level2Unknown, Status: model.StatusLevel2Unknown}},
		{"update my email", model.Prediction{Level1: "Account", Level2: "Email Change", Status: model.StatusResolved}},
		{"", model.Prediction{Level1: "Billing", Level2: model.NoSubCategory, Status: model.StatusNoBranch}},
	}
	for _, tt := range tests {
		if got := eng.Classify(tt.input); got != tt.want {
			t.Errorf("Classify(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

// rewrite copies the fixture and applies edit to the named file.
func rewrite(t *testing.T, name string, edit func(string) string) string {
	t.Helper()
	manifest := fixture.Write(t)
	path := filepath.Join(filepath.Dir(manifest), name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(edit(string(data))), 0o644); err != nil {
		t.Fatal(err)
	}
	return manifest
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest func(t *testing.T) string
		artifact string
	}{
		{
			name:     "missing manifest",
			manifest: func(t *testing.T) string { return filepath.Join(t.TempDir(), "manifest.yaml") },
			artifact: "manifest",
		},
		{
			name: "unknown manifest key",
			manifest: func(t *testing.T) string {
				return rewrite(t, "manifest.yaml", func(s string) string { return s + "extra: true\n" })
			},
			artifact: "manifest",
		},
		{
			name: "unknown classifier kind",
			manifest: func(t *testing.T) string {
				return rewrite(t, "manifest.yaml", func(s string) string {
					return strings.Replace(s, "kind: centroid", "kind: forest", 1)
				})
			},
			artifact: "manifest",
		},
		{
			name: "missing vocabulary",
			manifest: func(t *testing.T) string {
				m := fixture.Write(t)
				os.Remove(filepath.Join(filepath.Dir(m), "vocab.txt"))
				return m
			},
			artifact: "vectorizer",
		},
		{
			name: "missing level-1 decoder",
			manifest: func(t *testing.T) string {
				m := fixture.Write(t)
				os.Remove(filepath.Join(filepath.Dir(m), "level1.classes"))
				return m
			},
			artifact: "level1.decoder",
		},
		{
			name: "feature dimension mismatch",
			manifest: func(t *testing.T) string {
				return rewrite(t, "vocab.txt", func(s string) string { return s + "extra\n" })
			},
			artifact: "vectorizer",
		},
		{
			name: "branch for unknown level-1 label",
			manifest: func(t *testing.T) string {
				return rewrite(t, "level1.classes", func(s string) string {
					return strings.Replace(s, "Account", "Accounts", 1)
				})
			},
			artifact: "level2[Account].classifier",
		},
		{
			name: "corrupt level-2 weights",
			manifest: func(t *testing.T) string {
				return rewrite(t, "level2/technical.safetensors", func(string) string { return "xx" })
			},
			artifact: "level2[Technical].classifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Load(tt.manifest(t), Options{})
			if err == nil {
				set.Close()
				t.Fatal("Load() succeeded, want error")
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Load() error = %T %v, want *LoadError", err, err)
			}
			if le.Artifact != tt.artifact {
				t.Errorf("LoadError.Artifact = %q, want %q (%v)", le.Artifact, tt.artifact, err)
			}
		})
	}
}

func TestLoadIncompleteBranch(t *testing.T) {
	manifest := rewrite(t, "manifest.yaml", func(s string) string {
		return strings.Replace(s, "    Account: level2/account.classes\n", "", 1)
	})
	_, err := Load(manifest, Options{})
	if !errors.Is(err, registry.ErrIncompleteBranch) {
		t.Fatalf("Load() error = %v, want ErrIncompleteBranch", err)
	}
}

func TestLoadErrorMessage(t *testing.T) {
	err := &LoadError{Artifact: "level1.decoder", Path: "/m/level1.classes", Err: os.ErrNotExist}
	want := "artifact: load level1.decoder (path=/m/level1.classes): file does not exist"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is should see the wrapped cause")
	}
}
