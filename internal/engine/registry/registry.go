// Package registry holds the per-category Level-2 models.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/crimson-sun/taxon/internal/engine/classifier"
	"github.com/crimson-sun/taxon/internal/engine/decoder"
)

// ErrIncompleteBranch is returned when a Level-1 label has a classifier but
// no decoder, or a decoder but no classifier.
var ErrIncompleteBranch = errors.New("incomplete level-2 branch")

// Branch is the classifier/decoder pair resolving one category's Level-2
// label.
type Branch struct {
	Classifier classifier.Classifier
	Decoder    *decoder.Decoder
}

// Registry maps Level-1 labels to their Level-2 branch. It is immutable
// after New and safe for concurrent use.
type Registry struct {
	branches map[string]Branch
	labels   []string
}

// New pairs classifiers and decoders by Level-1 label. Both maps must have
// exactly the same keys.
func New(classifiers map[string]classifier.Classifier, decoders map[string]*decoder.Decoder) (*Registry, error) {
	var missing []string
	for label := range classifiers {
		if _, ok := decoders[label]; !ok {
			missing = append(missing, fmt.Sprintf("%q has no decoder", label))
		}
	}
	for label := range decoders {
		if _, ok := classifiers[label]; !ok {
			missing = append(missing, fmt.Sprintf("%q has no classifier", label))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("registry: %w: %s", ErrIncompleteBranch, strings.Join(missing, ", "))
	}

	r := &Registry{branches: make(map[string]Branch, len(classifiers))}
	for label, cls := range classifiers {
		if cls == nil || decoders[label] == nil {
			return nil, fmt.Errorf("registry: %w: %q has a nil model", ErrIncompleteBranch, label)
		}
		r.branches[label] = Branch{Classifier: cls, Decoder: decoders[label]}
		r.labels = append(r.labels, label)
	}
	sort.Strings(r.labels)
	return r, nil
}

// Lookup returns the branch registered for a Level-1 label. A miss is a
// normal state: the category has no finer taxonomy.
func (r *Registry) Lookup(level1 string) (Branch, bool) {
	b, ok := r.branches[level1]
	return b, ok
}

// Labels returns the Level-1 labels that have a branch, sorted.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Len returns the number of registered branches.
func (r *Registry) Len() int {
	return len(r.branches)
}
