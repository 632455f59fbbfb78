package output

import (
	"strings"

	"github.com/crimson-sun/taxon/internal/model"
)

// Verbosity controls which record fields are emitted.
type Verbosity int

const (
	// Minimal emits the label pair only.
	Minimal Verbosity = iota
	// Standard adds the input text.
	Standard
	// Full adds the dispatch status.
	Full
)

// ParseVerbosity maps "minimal", "standard" or "full" to a Verbosity.
// Unknown strings default to Standard.
func ParseVerbosity(s string) Verbosity {
	switch strings.ToLower(s) {
	case "minimal":
		return Minimal
	case "full":
		return Full
	default:
		return Standard
	}
}

// FormatRecord returns a copy of rec with fields stripped according to
// verbosity. Stripped fields are omitted from JSON via omitempty.
func FormatRecord(rec model.Record, v Verbosity) model.Record {
	if v < Standard {
		rec.Input = ""
	}
	if v < Full {
		rec.Status = ""
	}
	return rec
}
