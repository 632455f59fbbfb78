package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/crimson-sun/taxon/internal/model"
	"github.com/crimson-sun/taxon/internal/output"
)

func testRecord(l1, l2 string) model.Record {
	return model.Record{Input: "raw text", Level1: l1, Level2: l2, Status: model.StatusResolved}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	out, err := New(path, output.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testRecord("Billing", model.NoSubCategory)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		var rec model.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
		if rec.Level2 != model.NoSubCategory {
			t.Errorf("line %d: level2 = %q", i, rec.Level2)
		}
		if rec.Status != "" {
			t.Errorf("line %d: status should be omitted at Standard", i)
		}
	}
}

func TestAppendAndTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	for i := 0; i < 2; i++ {
		out, err := New(path, output.Minimal)
		if err != nil {
			t.Fatal(err)
		}
		out.Write(context.Background(), testRecord("Technical", "Network Outage"))
		out.Close()
	}
	if n := len(readLines(t, path)); n != 2 {
		t.Fatalf("append: got %d lines, want 2", n)
	}

	out, err := New(path, output.Minimal, WithTruncate())
	if err != nil {
		t.Fatal(err)
	}
	out.Write(context.Background(), testRecord("Account", "Email Change"))
	out.Close()
	lines := readLines(t, path)
	if len(lines) != 1 || !strings.Contains(lines[0], "Email Change") {
		t.Fatalf("truncate: got %v", lines)
	}
}

func TestConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	out, err := New(path, output.Full, WithBufSize(128))
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Write(context.Background(), testRecord("Technical", "Password Reset"))
		}()
	}
	wg.Wait()
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("line %d interleaved: %s", i, line)
		}
	}
}

func TestOpenError(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "out.ndjson"), output.Standard)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
