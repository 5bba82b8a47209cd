package envelope

import "StateProof/internal/streamobject"

// ErrorKind identifies a kind of error. It is shared with streamobject so
// errors.Is and errors.As work the same way in every package.
type ErrorKind = streamobject.ErrorKind

// ContextError wraps an ErrorKind with a description of where it happened.
type ContextError = streamobject.ContextError

// These constants are used to identify a specific ErrorKind.
const (
	// ErrInvalidEnvelope indicates bytes that do not decode as a proof envelope.
	ErrInvalidEnvelope = ErrorKind("ErrInvalidEnvelope")

	// ErrEnvelopeChecksum indicates an envelope whose content does not match
	// its checksum.
	ErrEnvelopeChecksum = ErrorKind("ErrEnvelopeChecksum")
)

// contextError creates a ContextError given a kind and a formatted description.
func contextError(kind ErrorKind, format string, args ...any) ContextError {
	return streamobject.Errorf(kind, format, args...)
}
