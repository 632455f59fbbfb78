package vectorizer

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTokenPattern extracts runs of two or more word characters, the
// Unicode-aware equivalent of the usual `(?u)\b\w\w+\b` word pattern.
const DefaultTokenPattern = `[\p{L}\p{M}\p{N}_]{2,}`

// analyzer turns normalized text into the terms counted by the vectorizer.
type analyzer struct {
	token      *regexp.Regexp
	minN, maxN int
}

func newAnalyzer(pattern string, minN, maxN int) (*analyzer, error) {
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("analyzer: token pattern: %w", err)
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("analyzer: invalid ngram range [%d, %d]", minN, maxN)
	}
	return &analyzer{token: re, minN: minN, maxN: maxN}, nil
}

// terms returns word n-grams of text, unigrams first, in document order.
func (a *analyzer) terms(text string) []string {
	words := a.token.FindAllString(text, -1)
	if a.minN == 1 && a.maxN == 1 {
		return words
	}

	var out []string
	for n := a.minN; n <= a.maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}
	return out
}
