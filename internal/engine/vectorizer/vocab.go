package vectorizer

import (
	"bufio"
	"fmt"
	"os"
)

// vocab maps analyzer terms to feature columns. Column indices are
// determined by line number (0-indexed) in the vocabulary file.
type vocab struct {
	termToCol map[string]int
	terms     []string
}

// loadVocab reads a vocabulary file where each line is one term.
func loadVocab(path string) (*vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	v := &vocab{termToCol: make(map[string]int, 4096)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		term := scanner.Text()
		if term == "" {
			return nil, fmt.Errorf("vocab: empty term on line %d of %s", len(v.terms)+1, path)
		}
		if _, dup := v.termToCol[term]; dup {
			return nil, fmt.Errorf("vocab: duplicate term %q on line %d of %s", term, len(v.terms)+1, path)
		}
		v.termToCol[term] = len(v.terms)
		v.terms = append(v.terms, term)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read error: %w", err)
	}
	if len(v.terms) == 0 {
		return nil, fmt.Errorf("vocab: file is empty: %s", path)
	}
	return v, nil
}

// lookup returns the column for term and whether the term is known.
func (v *vocab) lookup(term string) (int, bool) {
	col, ok := v.termToCol[term]
	return col, ok
}

func (v *vocab) size() int {
	return len(v.terms)
}
