package ingest

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrLoad matches every *LoadError through errors.Is.
	ErrLoad = constError("energy dataset load failed")

	// ErrMalformed marks a payload that decodes but breaks the dataset invariants.
	ErrMalformed = constError("malformed energy dataset")

	// ErrUnsupportedSource marks a source location no Source implementation handles.
	ErrUnsupportedSource = constError("unsupported data source")
)

// LoadError reports that the dataset could not be fetched or parsed. It is fatal to
// initialization and never retried.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", ErrLoad, e.Err)
	}
	return fmt.Sprintf("%s from %s: %v", ErrLoad, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrLoad) match any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
