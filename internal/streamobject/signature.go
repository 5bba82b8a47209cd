package streamobject

import (
	"encoding/binary"
	"fmt"
)

// SignatureType identifies a signature algorithm.
type SignatureType int32

const (
	// SignatureSHA384withRSA is the only recognized signature type.
	SignatureSHA384withRSA SignatureType = 1

	// MaxSignatureLength is the largest signature accepted (RSA-3072).
	MaxSignatureLength = 384

	// signatureObjectVersion is the only recognized SignatureObject class version.
	signatureObjectVersion = 1

	// checksumBase is the constant the length checksum is derived from.
	checksumBase = 101
)

// SignatureChecksum returns the checksum guarding a declared signature length.
func SignatureChecksum(length int32) int32 {
	return checksumBase - length
}

// SignatureObject is one node's signature over a hash value.
type SignatureObject struct {
	Header
	Type      SignatureType // Type is the signature algorithm
	Signature []byte        // Signature is the raw signature bytes
}

// NewSignatureObject wraps an RSA signature in a SignatureObject.
func NewSignatureObject(sig []byte) *SignatureObject {
	return &SignatureObject{
		Header:    Header{ClassID: ClassIDSignatureObject, ClassVersion: signatureObjectVersion},
		Type:      SignatureSHA384withRSA,
		Signature: copyBytes(sig),
	}
}

// ParseSignatureObject decodes a SignatureObject from the start of data.
func ParseSignatureObject(data []byte) (*SignatureObject, error) {
	o := &SignatureObject{}

	h, _, err := Parse(data, o)
	if err != nil {
		return nil, err
	}

	o.Header = h

	return o, nil
}

// DecodeBody implements BodyDecoder.
// The checksum is validated before the signature bytes are read.
func (o *SignatureObject) DecodeBody(h Header, body []byte) (int, error) {
	if err := checkClass(h, ClassIDSignatureObject, signatureObjectVersion, "signature object"); err != nil {
		return 0, err
	}

	r := NewReader(body)

	t, err := r.Int32("signature object type")
	if err != nil {
		return 0, err
	}

	if SignatureType(t) != SignatureSHA384withRSA {
		return 0, NewError(ErrUnknownSignatureType, fmt.Sprintf("signature object: unknown type %d", t))
	}

	length, err := r.Int32("signature object length")
	if err != nil {
		return 0, err
	}

	if length < 0 || length > MaxSignatureLength {
		return 0, NewError(ErrFieldTooLarge,
			fmt.Sprintf("signature object: length %d exceeds limit %d", length, MaxSignatureLength))
	}

	checksum, err := r.Int32("signature object checksum")
	if err != nil {
		return 0, err
	}

	if checksum != SignatureChecksum(length) {
		return 0, NewError(ErrChecksumMismatch,
			fmt.Sprintf("signature object: checksum %d, want %d", checksum, SignatureChecksum(length)))
	}

	sig, err := r.Next(int(length), "signature object signature")
	if err != nil {
		return 0, err
	}

	o.Type = SignatureType(t)
	o.Signature = copyBytes(sig)

	return r.Offset(), nil
}

// Length returns the serialized size of the object.
func (o *SignatureObject) Length() int {
	return HeaderSize + 12 + len(o.Signature)
}

// Bytes returns the serialized object.
func (o *SignatureObject) Bytes() []byte {
	n := int32(len(o.Signature))

	buf := make([]byte, 0, o.Length())
	buf = appendHeader(buf, o.Header)
	buf = binary.BigEndian.AppendUint32(buf, uint32(o.Type))
	buf = binary.BigEndian.AppendUint32(buf, uint32(n))
	buf = binary.BigEndian.AppendUint32(buf, uint32(SignatureChecksum(n)))

	return append(buf, o.Signature...)
}
