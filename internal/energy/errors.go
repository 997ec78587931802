package energy

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrUnknownType indicates a key outside the closed set of energy types.
const ErrUnknownType = constError("unknown energy type")
