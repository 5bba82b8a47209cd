// Package streamobject decodes the typed, length-prefixed objects that make up
// record streams and signature files.
//
// Every object starts with a 12-byte header (8-byte classId, 4-byte
// classVersion) followed by a type-specific body. All integers are big-endian.
package streamobject

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the size of the classId + classVersion header.
	HeaderSize = 12

	// MinLength is the smallest possible object: a header plus one 4-byte field.
	MinLength = 16
)

// Class identifiers of the known object types.
const (
	ClassIDHashObject         uint64 = 0xF422DA83A251741E
	ClassIDSignatureObject    uint64 = 0x13DC4B399B245C69
	ClassIDRecordStreamObject uint64 = 0xE370929BA5429D8B
)

// Header is the common prefix of every stream object.
type Header struct {
	ClassID      uint64 // ClassID identifies the concrete type
	ClassVersion int32  // ClassVersion is the serialization version of the type
}

// BodyDecoder decodes the body of one object type.
// It returns the number of body bytes it consumed.
type BodyDecoder interface {
	DecodeBody(h Header, body []byte) (int, error)
}

// ParseHeader decodes the header at the start of data. It requires MinLength
// bytes, since no object has an empty body.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < MinLength {
		return Header{}, NewError(ErrTruncatedInput,
			fmt.Sprintf("stream object: need at least %d bytes, have %d", MinLength, len(data)))
	}

	return Header{
		ClassID:      binary.BigEndian.Uint64(data[0:8]),
		ClassVersion: int32(binary.BigEndian.Uint32(data[8:12])),
	}, nil
}

// Parse decodes the header at the start of data and hands the remaining bytes
// to d. It returns the header and the total length consumed (header + body).
// Bytes after the object are never inspected.
func Parse(data []byte, d BodyDecoder) (Header, int, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, 0, err
	}

	n, err := d.DecodeBody(h, data[HeaderSize:])
	if err != nil {
		return Header{}, 0, err
	}

	return h, HeaderSize + n, nil
}

// PeekClassID returns the classId at the start of data, if there is room for one.
func PeekClassID(data []byte) (uint64, bool) {
	if len(data) < 8 {
		return 0, false
	}

	return binary.BigEndian.Uint64(data[0:8]), true
}

// appendHeader appends the serialized header to buf.
func appendHeader(buf []byte, h Header) []byte {
	buf = binary.BigEndian.AppendUint64(buf, h.ClassID)
	return binary.BigEndian.AppendUint32(buf, uint32(h.ClassVersion))
}

// checkClass rejects objects whose header does not match the expected type.
func checkClass(h Header, classID uint64, version int32, name string) error {
	if h.ClassID != classID || h.ClassVersion != version {
		return NewError(ErrUnsupportedClassVersion,
			fmt.Sprintf("%s: unsupported class 0x%016x version %d", name, h.ClassID, h.ClassVersion))
	}

	return nil
}

// copyBytes returns an owned copy of b.
func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)

	return out
}
