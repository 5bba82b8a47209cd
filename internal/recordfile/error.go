package recordfile

import "StateProof/internal/streamobject"

// ErrorKind identifies a kind of error. It is shared with streamobject so
// errors.Is and errors.As work the same way in every package.
type ErrorKind = streamobject.ErrorKind

// ContextError wraps an ErrorKind with a description of where it happened.
type ContextError = streamobject.ContextError

// These constants are used to identify a specific ErrorKind.
const (
	// ErrUnsupportedVersion indicates a variant was asked to decode input
	// it does not support.
	ErrUnsupportedVersion = ErrorKind("ErrUnsupportedVersion")

	// ErrUnsupportedRecordFileVersion indicates no variant supports the
	// input's version discriminator.
	ErrUnsupportedRecordFileVersion = ErrorKind("ErrUnsupportedRecordFileVersion")

	// ErrTransactionNotFound indicates the requested transaction is not in
	// the record file.
	ErrTransactionNotFound = ErrorKind("ErrTransactionNotFound")

	// ErrNotCompactable indicates a compact object was requested from a
	// variant without a running hash chain.
	ErrNotCompactable = ErrorKind("ErrNotCompactable")

	// ErrRunningHashMismatch indicates folding the record stream objects
	// does not reproduce the declared end running hash.
	ErrRunningHashMismatch = ErrorKind("ErrRunningHashMismatch")

	// ErrMalformedRecordFile indicates a structural marker, trailing bytes
	// or a missing section in a record file.
	ErrMalformedRecordFile = ErrorKind("ErrMalformedRecordFile")

	// ErrInvalidCompactObject indicates a compact object whose fields are
	// inconsistent with its version.
	ErrInvalidCompactObject = ErrorKind("ErrInvalidCompactObject")
)

// contextError creates a ContextError given a kind and a formatted description.
func contextError(kind ErrorKind, format string, args ...any) ContextError {
	return streamobject.Errorf(kind, format, args...)
}
