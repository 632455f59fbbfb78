package tabular

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Format decodes and encodes one file type.
type Format interface {
	Read(r io.Reader) (*Table, error)
	Write(w io.Writer, t *Table) error
	ContentType() string
}

var formats = map[string]Format{}

// Register adds a format under a file extension such as ".csv".
func Register(ext string, f Format) {
	formats[strings.ToLower(ext)] = f
}

// Lookup returns the format registered for path's extension.
func Lookup(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := formats[ext]
	if !ok {
		return nil, fmt.Errorf("tabular: %w %q (supported: %s)",
			ErrUnsupportedFormat, ext, strings.Join(Extensions(), ", "))
	}
	return f, nil
}

// Extensions returns the registered extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ReadFile reads the table at path using the format of its extension.
func ReadFile(path string) (*Table, error) {
	f, err := Lookup(path)
	if err != nil {
		return nil, err
	}
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: %w", err)
	}
	defer in.Close()

	t, err := f.Read(in)
	if err != nil {
		return nil, fmt.Errorf("tabular: read %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// WriteFile writes t to path using the format of its extension.
func WriteFile(path string, t *Table) error {
	f, err := Lookup(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tabular: %w", err)
	}
	if err := f.Write(out, t); err != nil {
		out.Close()
		return fmt.Errorf("tabular: write %s: %w", filepath.Base(path), err)
	}
	return out.Close()
}
