package streamobject

import "fmt"

// ErrorKind identifies a kind of decode error. It supports errors.Is and
// errors.As so callers can check against a kind directly. The other packages
// of the module alias this type and ContextError for their own kinds.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrTruncatedInput indicates a header or a declared field length reads
	// past the end of the input.
	ErrTruncatedInput = ErrorKind("ErrTruncatedInput")

	// ErrFieldTooLarge indicates a declared field length exceeds the bound
	// for that field.
	ErrFieldTooLarge = ErrorKind("ErrFieldTooLarge")

	// ErrUnsupportedClassVersion indicates a classId/classVersion pair the
	// object type does not recognize.
	ErrUnsupportedClassVersion = ErrorKind("ErrUnsupportedClassVersion")

	// ErrUnknownSignatureType indicates a signature type code other than
	// SHA384withRSA.
	ErrUnknownSignatureType = ErrorKind("ErrUnknownSignatureType")

	// ErrUnknownDigestType indicates an unrecognized digest type code or a
	// hash length that does not match the digest type.
	ErrUnknownDigestType = ErrorKind("ErrUnknownDigestType")

	// ErrChecksumMismatch indicates the signature length checksum does not
	// match the declared length.
	ErrChecksumMismatch = ErrorKind("ErrChecksumMismatch")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// ContextError wraps an ErrorKind with a description of where it happened.
type ContextError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e ContextError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e ContextError) Unwrap() error {
	return e.Err
}

// NewError creates a ContextError of the given kind.
func NewError(kind ErrorKind, desc string) ContextError {
	return ContextError{Err: kind, Description: desc}
}

// Errorf creates a ContextError of the given kind with a formatted description.
func Errorf(kind ErrorKind, format string, args ...any) ContextError {
	return ContextError{Err: kind, Description: fmt.Sprintf(format, args...)}
}
