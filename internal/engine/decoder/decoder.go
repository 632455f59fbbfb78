// Package decoder maps encoded class ids back to human-readable labels.
package decoder

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Decoder is a closed label vocabulary indexed by encoded id.
type Decoder struct {
	classes []string
}

// New builds a Decoder where classes[i] is the label of id i.
func New(classes []string) (*Decoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("decoder: no classes")
	}
	seen := make(map[string]bool, len(classes))
	for i, c := range classes {
		if c == "" {
			return nil, fmt.Errorf("decoder: empty label at id %d", i)
		}
		if seen[c] {
			return nil, fmt.Errorf("decoder: duplicate label %q", c)
		}
		seen[c] = true
	}
	cp := make([]string, len(classes))
	copy(cp, classes)
	return &Decoder{classes: cp}, nil
}

// Load reads a classes file with one label per line; the line number
// (0-indexed) is the encoded id. Trailing blank lines are ignored.
func Load(path string) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decoder: %w", err)
	}
	defer f.Close()

	var classes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		classes = append(classes, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("decoder: read error: %w", err)
	}
	for len(classes) > 0 && classes[len(classes)-1] == "" {
		classes = classes[:len(classes)-1]
	}

	d, err := New(classes)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return d, nil
}

// Decode returns the label for id. ok is false when id lies outside the
// vocabulary, which happens when a classifier and its decoder drift apart.
func (d *Decoder) Decode(id int64) (label string, ok bool) {
	if id < 0 || id >= int64(len(d.classes)) {
		return "", false
	}
	return d.classes[id], true
}

// Classes returns a copy of the vocabulary in id order.
func (d *Decoder) Classes() []string {
	out := make([]string, len(d.classes))
	copy(out, d.classes)
	return out
}

// Len returns the vocabulary size.
func (d *Decoder) Len() int {
	return len(d.classes)
}
