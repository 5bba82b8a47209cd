package addressbook

import "StateProof/internal/streamobject"

// ErrorKind identifies a kind of error. It is shared with streamobject so
// errors.Is and errors.As work the same way in every package.
type ErrorKind = streamobject.ErrorKind

// ContextError wraps an ErrorKind with a description of where it happened.
type ContextError = streamobject.ContextError

// ErrInvalidAddressBook indicates address book bytes that cannot be decoded
// or that contain no usable node.
const ErrInvalidAddressBook = ErrorKind("ErrInvalidAddressBook")

// invalid creates a ContextError of kind ErrInvalidAddressBook.
func invalid(format string, args ...any) ContextError {
	return streamobject.Errorf(ErrInvalidAddressBook, format, args...)
}
