package streamobject

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
)

// DigestType identifies a hash algorithm.
type DigestType int32

const (
	// DigestSHA384 is the only digest used by record streams.
	DigestSHA384 DigestType = 0x58FF811B

	// hashObjectVersion is the only recognized HashObject class version.
	hashObjectVersion = 1

	// hashHeaderSize is classId + classVersion + digestType + length.
	hashHeaderSize = HeaderSize + 8
)

// DigestSize returns the fixed hash size for a digest type.
func DigestSize(t DigestType) (int, bool) {
	switch t {
	case DigestSHA384:
		return sha512.Size384, true
	default:
		return 0, false
	}
}

// HashObject is a typed hash value.
type HashObject struct {
	Header
	DigestType DigestType // DigestType is the algorithm that produced Hash
	Hash       []byte     // Hash is the digest value
}

// NewHashObject wraps a SHA-384 digest in a HashObject.
func NewHashObject(hash []byte) *HashObject {
	return &HashObject{
		Header:     Header{ClassID: ClassIDHashObject, ClassVersion: hashObjectVersion},
		DigestType: DigestSHA384,
		Hash:       copyBytes(hash),
	}
}

// HashOf digests data with SHA-384 and wraps the result.
func HashOf(data []byte) *HashObject {
	sum := sha512.Sum384(data)
	return NewHashObject(sum[:])
}

// ParseHashObject decodes a HashObject from the start of data.
func ParseHashObject(data []byte) (*HashObject, error) {
	o := &HashObject{}

	h, _, err := Parse(data, o)
	if err != nil {
		return nil, err
	}

	o.Header = h

	return o, nil
}

// DecodeBody implements BodyDecoder.
func (o *HashObject) DecodeBody(h Header, body []byte) (int, error) {
	if err := checkClass(h, ClassIDHashObject, hashObjectVersion, "hash object"); err != nil {
		return 0, err
	}

	r := NewReader(body)

	dt, err := r.Int32("hash object digest type")
	if err != nil {
		return 0, err
	}

	size, ok := DigestSize(DigestType(dt))
	if !ok {
		return 0, NewError(ErrUnknownDigestType, fmt.Sprintf("hash object: unknown digest type 0x%08x", uint32(dt)))
	}

	n, err := r.Int32("hash object length")
	if err != nil {
		return 0, err
	}

	if int(n) != size {
		return 0, NewError(ErrUnknownDigestType,
			fmt.Sprintf("hash object: length %d does not match digest size %d", n, size))
	}

	hash, err := r.Next(size, "hash object hash")
	if err != nil {
		return 0, err
	}

	o.DigestType = DigestType(dt)
	o.Hash = copyBytes(hash)

	return r.Offset(), nil
}

// Length returns the serialized size of the object.
func (o *HashObject) Length() int {
	return hashHeaderSize + len(o.Hash)
}

// HeaderBytes returns the 20-byte prefix preceding the hash value:
// classId, classVersion, digestType and length.
func (o *HashObject) HeaderBytes() []byte {
	buf := make([]byte, 0, hashHeaderSize)
	buf = appendHeader(buf, o.Header)
	buf = binary.BigEndian.AppendUint32(buf, uint32(o.DigestType))

	return binary.BigEndian.AppendUint32(buf, uint32(len(o.Hash)))
}

// Bytes returns the serialized object.
func (o *HashObject) Bytes() []byte {
	return append(o.HeaderBytes(), o.Hash...)
}
