package streamobject

import (
	"encoding/binary"
	"fmt"
)

// Reader reads big-endian fields from an untrusted buffer.
// Every read is bounds checked and fails with ErrTruncatedInput.
type Reader struct {
	buf []byte // buf is the full input
	off int    // off is the next unread position
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Rest returns the unread bytes without consuming them.
func (r *Reader) Rest() []byte {
	return r.buf[r.off:]
}

// Next consumes n bytes and returns them as a sub-slice of the input.
func (r *Reader) Next(n int, field string) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, NewError(ErrTruncatedInput,
			fmt.Sprintf("%s: need %d bytes at offset %d, have %d", field, n, r.off, r.Remaining()))
	}

	b := r.buf[r.off : r.off+n]
	r.off += n

	return b, nil
}

// Byte consumes a single byte.
func (r *Reader) Byte(field string) (byte, error) {
	b, err := r.Next(1, field)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// Int32 consumes a big-endian int32.
func (r *Reader) Int32(field string) (int32, error) {
	b, err := r.Next(4, field)
	if err != nil {
		return 0, err
	}

	return int32(binary.BigEndian.Uint32(b)), nil
}

// Int64 consumes a big-endian int64.
func (r *Reader) Int64(field string) (int64, error) {
	b, err := r.Next(8, field)
	if err != nil {
		return 0, err
	}

	return int64(binary.BigEndian.Uint64(b)), nil
}

// LengthPrefixed consumes an int32 length followed by that many bytes.
// Lengths above max fail with ErrFieldTooLarge before any bytes are read.
func (r *Reader) LengthPrefixed(max int, field string) ([]byte, error) {
	n, err := r.Int32(field + " length")
	if err != nil {
		return nil, err
	}

	if n < 0 || int(n) > max {
		return nil, NewError(ErrFieldTooLarge,
			fmt.Sprintf("%s: declared length %d exceeds limit %d", field, n, max))
	}

	return r.Next(int(n), field)
}
