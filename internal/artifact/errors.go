package artifact

import "fmt"

// LoadError reports a model artifact that could not be loaded. Any
// LoadError is fatal: the engine never runs on a partial artifact set.
type LoadError struct {
	Artifact string // e.g. "vectorizer", "level1.decoder", "level2[Technical].classifier"
	Path     string // optional
	Err      error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "artifact: load " + e.Artifact
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
