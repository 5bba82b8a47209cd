package sigfile

import "StateProof/internal/streamobject"

// ErrorKind identifies a kind of error. It is shared with streamobject so
// errors.Is and errors.As work the same way in every package.
type ErrorKind = streamobject.ErrorKind

// ContextError wraps an ErrorKind with a description of where it happened.
type ContextError = streamobject.ContextError

// These constants are used to identify a specific ErrorKind.
const (
	// ErrInvalidSignatureFile indicates an unknown format marker or a
	// structurally invalid signature file.
	ErrInvalidSignatureFile = ErrorKind("ErrInvalidSignatureFile")

	// ErrSignatureVerificationFailure indicates a signature that does not
	// verify under the node's public key.
	ErrSignatureVerificationFailure = ErrorKind("ErrSignatureVerificationFailure")
)

// contextError creates a ContextError given a kind and a formatted description.
func contextError(kind ErrorKind, format string, args ...any) ContextError {
	return streamobject.Errorf(kind, format, args...)
}
