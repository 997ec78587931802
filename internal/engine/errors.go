package engine

// constError is an immutable error type for sentinel errors.
// It implements the error interface and provides compile-time safety.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrEmptyRange is attached to the warning logged when a year or range matches
	// no data. It is never returned: the caller gets an empty, valid result.
	ErrEmptyRange = constError("no data for the requested period")

	// ErrNotLoaded indicates an operation that needs a dataset before Load succeeded.
	ErrNotLoaded = constError("energy dataset not loaded")
)
