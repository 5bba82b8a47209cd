package stateproof

import "StateProof/internal/streamobject"

// ErrorKind identifies a kind of error. It is shared with streamobject so
// errors.Is and errors.As work the same way in every package.
type ErrorKind = streamobject.ErrorKind

// ContextError wraps an ErrorKind with a description of where it happened.
type ContextError = streamobject.ContextError

// ErrInsufficientSignatures indicates that fewer than a strict majority of
// the address book's nodes produced a valid signature over the record file.
const ErrInsufficientSignatures = ErrorKind("ErrInsufficientSignatures")

// contextError creates a ContextError given a kind and a formatted description.
func contextError(kind ErrorKind, format string, args ...any) ContextError {
	return streamobject.Errorf(kind, format, args...)
}
