package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/crimson-sun/taxon/internal/model"
	"github.com/crimson-sun/taxon/internal/output"
)

func testRecord() model.Record {
	return model.Record{
		Input:  "weird glitch <b>",
		Level1: "Technical",
		Level2: model.Level2Unknown,
		Status: model.StatusLevel2Unknown,
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(output.Standard, false)
		out.Write(context.Background(), testRecord())
	})

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["level1"] != "Technical" {
		t.Fatalf("expected level1=Technical, got %v", m["level1"])
	}
	if !strings.Contains(lines[0], "<b>") {
		t.Fatalf("HTML should not be escaped: %s", lines[0])
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Standard, true)
	out.Write(context.Background(), testRecord())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}

func TestOutputFullKeepsStatus(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Full, false)
	out.Write(context.Background(), testRecord())

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["status"] != string(model.StatusLevel2Unknown) {
		t.Fatalf("status = %v", m["status"])
	}
	if m["level2"] != model.Level2Unknown {
		t.Fatalf("level2 = %v", m["level2"])
	}
}
