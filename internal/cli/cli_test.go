package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimson-sun/taxon/internal/artifact"
	"github.com/crimson-sun/taxon/internal/batch"
	"github.com/crimson-sun/taxon/internal/fixture"
	"github.com/crimson-sun/taxon/internal/model"
	"github.com/crimson-sun/taxon/internal/tabular"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"TAXON_MANIFEST", "TAXON_VERBOSITY", "TAXON_PRETTY", "TAXON_LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func records(t *testing.T, out string) []model.Record {
	t.Helper()
	var recs []model.Record
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var r model.Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", line, err)
		}
		recs = append(recs, r)
	}
	return recs
}

func TestClassifyArgs(t *testing.T) {
	manifest := fixture.Write(t)
	out, err := run(t, "", "classify", "-m", manifest, "--verbosity", "full",
		"Network outage since 9am!", "refund the last invoice")
	if err != nil {
		t.Fatal(err)
	}
	recs := records(t, out)
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].Level2 != "Network Outage" || recs[0].Status != model.StatusResolved {
		t.Errorf("record 0 = %+v", recs[0])
	}
	if recs[1].Level1 != "Billing" || recs[1].Level2 != model.NoSubCategory {
		t.Errorf("record 1 = %+v", recs[1])
	}
}

func TestClassifyStdinAndTee(t *testing.T) {
	manifest := fixture.Write(t)
	tee := filepath.Join(t.TempDir(), "tee.ndjson")
	out, err := run(t, "update my email\na mystery\n", "classify", "-m", manifest, "--verbosity", "minimal", "--tee", tee)
	if err != nil {
		t.Fatal(err)
	}
	recs := records(t, out)
	if len(recs) != 2 || recs[0].Level2 != "Email Change" || recs[1].Level1 != model.Level1Unknown {
		t.Fatalf("records = %+v", recs)
	}
	if recs[0].Input != "" {
		t.Error("minimal verbosity should omit input")
	}

	data, err := os.ReadFile(tee)
	if err != nil {
		t.Fatal(err)
	}
	if teed := records(t, string(data)); len(teed) != 2 || teed[1] != recs[1] {
		t.Errorf("tee file = %s", data)
	}
}

func TestBatchDefaultOutput(t *testing.T) {
	manifest := fixture.Write(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "tickets.csv")
	os.WriteFile(in, []byte("description\nrouter down\nweird glitch\n"), 0o644)

	out, err := run(t, "", "batch", "-m", manifest, in)
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		Output string               `json:"output"`
		Rows   int                  `json:"rows"`
		Status map[model.Status]int `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid summary %q: %v", out, err)
	}
	want := filepath.Join(dir, "result_tickets.xlsx")
	if res.Output != want || res.Rows != 2 || res.Status[model.StatusLevel2Unknown] != 1 {
		t.Errorf("summary = %+v", res)
	}

	tbl, err := tabular.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	l2, _ := tbl.Column(batch.Level2Column)
	if l2[0] != "Network Outage" || l2[1] != model.Level2Unknown {
		t.Errorf("level 2 = %v", l2)
	}
}

func TestBatchExplicitOutputAndErrors(t *testing.T) {
	manifest := fixture.Write(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "tickets.ndjson")
	os.WriteFile(in, []byte(`{"description":"please reset my password"}`+"\n"), 0o644)
	outPath := filepath.Join(dir, "labels.csv")

	if _, err := run(t, "", "batch", "-m", manifest, in, "-o", outPath); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(outPath)
	if !strings.Contains(string(data), "Password Reset") {
		t.Errorf("output = %s", data)
	}

	if _, err := run(t, "", "batch", "-m", manifest, filepath.Join(dir, "notes.txt")); !errors.Is(err, tabular.ErrUnsupportedFormat) {
		t.Errorf("unsupported input err = %v", err)
	}

	bad := filepath.Join(dir, "bad.csv")
	os.WriteFile(bad, []byte("text\nhello\n"), 0o644)
	if _, err := run(t, "", "batch", "-m", manifest, bad); !errors.Is(err, tabular.ErrMissingColumn) {
		t.Errorf("missing column err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	manifest := fixture.Write(t)
	out, err := run(t, "", "validate", "-m", manifest)
	if err != nil {
		t.Fatal(err)
	}
	want := "OK: 3 level-1 classes, 2 level-2 branches, 14 features\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestValidateReportsLoadError(t *testing.T) {
	_, err := run(t, "", "validate", "-m", filepath.Join(t.TempDir(), "missing.yaml"))
	var le *artifact.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *artifact.LoadError", err)
	}
	if le.Artifact != "manifest" {
		t.Errorf("Artifact = %q", le.Artifact)
	}
}

func TestTaxonomy(t *testing.T) {
	manifest := fixture.Write(t)
	out, err := run(t, "", "taxonomy", "-m", manifest)
	if err != nil {
		t.Fatal(err)
	}
	want := "Billing\nTechnical: Network Outage, Password Reset\nAccount: Profile Update, Email Change\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	out, err = run(t, "", "taxonomy", "-m", manifest, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var cats []model.Category
	if err := json.Unmarshal([]byte(out), &cats); err != nil || len(cats) != 3 {
		t.Errorf("json taxonomy = %q (%v)", out, err)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	if _, err := run(t, "", "validate", "--log-format", "xml"); err == nil {
		t.Fatal("expected config validation error")
	}
}
