// Package sigfile decodes the per-node signature files that accompany record
// files and verifies their SHA384withRSA signatures.
package sigfile

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"StateProof/internal/hapi"
	"StateProof/internal/streamobject"
)

// Format markers, the first byte of a signature file.
const (
	markerV2Hash      = 0x04
	markerV2Signature = 0x03
	markerV5          = 0x05
	markerV6          = 0x06
)

// objectStreamSignatureVersion is the only V5 signature stream version.
const objectStreamSignatureVersion = 1

// SignatureFile protobuf field numbers.
const (
	fieldFileSignature     protowire.Number = 1
	fieldMetadataSignature protowire.Number = 2

	fieldSigType     protowire.Number = 1
	fieldSigLength   protowire.Number = 2
	fieldSigChecksum protowire.Number = 3
	fieldSigBytes    protowire.Number = 4
	fieldSigHash     protowire.Number = 5
)

// File is one node's decoded signature file.
type File struct {
	Format            int                           // Format is 2, 5 or 6
	FileHash          *streamobject.HashObject      // FileHash is the whole-file hash the node saw
	FileSignature     *streamobject.SignatureObject // FileSignature signs FileHash
	MetadataHash      *streamobject.HashObject      // MetadataHash is nil for format 2
	MetadataSignature *streamobject.SignatureObject // MetadataSignature signs MetadataHash
}

// Signed returns the hash and signature that apply to a record file of the
// given version: the metadata pair for version 5 and later, the file pair otherwise.
func (f *File) Signed(recordVersion int32) (*streamobject.HashObject, *streamobject.SignatureObject) {
	if recordVersion >= 5 && f.MetadataHash != nil {
		return f.MetadataHash, f.MetadataSignature
	}

	return f.FileHash, f.FileSignature
}

// Parse decodes a signature file of any supported format.
func Parse(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, streamobject.NewError(streamobject.ErrTruncatedInput, "signature file: empty input")
	}

	switch data[0] {
	case markerV2Hash:
		return parseV2(data)
	case markerV5:
		return parseV5(data)
	case markerV6:
		return parseV6(data)
	default:
		return nil, contextError(ErrInvalidSignatureFile, "signature file: unknown marker 0x%02x", data[0])
	}
}

// parseV2 decodes the marker-delimited hash + signature of pre-v5 signature files.
func parseV2(data []byte) (*File, error) {
	r := streamobject.NewReader(data[1:])

	hash, err := r.Next(sha512.Size384, "signature file hash")
	if err != nil {
		return nil, err
	}

	marker, err := r.Byte("signature file signature marker")
	if err != nil {
		return nil, err
	}

	if marker != markerV2Signature {
		return nil, contextError(ErrInvalidSignatureFile, "signature file: unexpected marker 0x%02x", marker)
	}

	sig, err := r.LengthPrefixed(streamobject.MaxSignatureLength, "signature file signature")
	if err != nil {
		return nil, err
	}

	if r.Remaining() != 0 {
		return nil, contextError(ErrInvalidSignatureFile, "signature file: %d trailing bytes", r.Remaining())
	}

	return &File{
		Format:        2,
		FileHash:      streamobject.NewHashObject(hash),
		FileSignature: streamobject.NewSignatureObject(sig),
	}, nil
}

// parseV5 decodes the stream-object encoded V5 signature file.
func parseV5(data []byte) (*File, error) {
	r := streamobject.NewReader(data[1:])

	version, err := r.Int32("signature file stream version")
	if err != nil {
		return nil, err
	}

	if version != objectStreamSignatureVersion {
		return nil, contextError(ErrInvalidSignatureFile, "signature file: stream version %d", version)
	}

	f := &File{Format: 5}

	if f.FileHash, err = nextHash(r); err != nil {
		return nil, err
	}

	if f.FileSignature, err = nextSignature(r); err != nil {
		return nil, err
	}

	if f.MetadataHash, err = nextHash(r); err != nil {
		return nil, err
	}

	if f.MetadataSignature, err = nextSignature(r); err != nil {
		return nil, err
	}

	if r.Remaining() != 0 {
		return nil, contextError(ErrInvalidSignatureFile, "signature file: %d trailing bytes", r.Remaining())
	}

	return f, nil
}

// nextHash decodes a HashObject at the reader position and advances past it.
func nextHash(r *streamobject.Reader) (*streamobject.HashObject, error) {
	h, err := streamobject.ParseHashObject(r.Rest())
	if err != nil {
		return nil, err
	}

	_, err = r.Next(h.Length(), "hash object")

	return h, err
}

// nextSignature decodes a SignatureObject at the reader position and advances past it.
func nextSignature(r *streamobject.Reader) (*streamobject.SignatureObject, error) {
	s, err := streamobject.ParseSignatureObject(r.Rest())
	if err != nil {
		return nil, err
	}

	_, err = r.Next(s.Length(), "signature object")

	return s, err
}

// parseV6 decodes the protobuf SignatureFile that follows the marker byte.
func parseV6(data []byte) (*File, error) {
	f := &File{Format: 6}

	err := hapi.Walk(data[1:], func(fd hapi.Field) error {
		var err error

		switch fd.Num {
		case fieldFileSignature:
			f.FileHash, f.FileSignature, err = parseSignatureProto(fd.Bytes)
		case fieldMetadataSignature:
			f.MetadataHash, f.MetadataSignature, err = parseSignatureProto(fd.Bytes)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	if f.FileSignature == nil || f.MetadataSignature == nil {
		return nil, contextError(ErrInvalidSignatureFile, "signature file: missing signature")
	}

	return f, nil
}

// parseSignatureProto decodes a protobuf SignatureObject with its embedded
// hash, applying the same type, length and checksum rules as the stream form.
func parseSignatureProto(msg []byte) (*streamobject.HashObject, *streamobject.SignatureObject, error) {
	var sigType, length, checksum int32
	var sig, hashMsg []byte

	err := hapi.Walk(msg, func(f hapi.Field) error {
		switch f.Num {
		case fieldSigType:
			sigType = f.Int32()
		case fieldSigLength:
			length = f.Int32()
		case fieldSigChecksum:
			checksum = f.Int32()
		case fieldSigBytes:
			sig = f.Bytes
		case fieldSigHash:
			hashMsg = f.Bytes
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if streamobject.SignatureType(sigType) != streamobject.SignatureSHA384withRSA {
		return nil, nil, streamobject.NewError(streamobject.ErrUnknownSignatureType,
			fmt.Sprintf("signature object: unknown type %d", sigType))
	}

	if length < 0 || length > streamobject.MaxSignatureLength {
		return nil, nil, streamobject.NewError(streamobject.ErrFieldTooLarge,
			fmt.Sprintf("signature object: length %d exceeds limit", length))
	}

	if checksum != streamobject.SignatureChecksum(length) {
		return nil, nil, streamobject.NewError(streamobject.ErrChecksumMismatch,
			fmt.Sprintf("signature object: checksum %d, want %d", checksum, streamobject.SignatureChecksum(length)))
	}

	if int(length) != len(sig) {
		return nil, nil, streamobject.NewError(streamobject.ErrTruncatedInput,
			fmt.Sprintf("signature object: declared %d bytes, have %d", length, len(sig)))
	}

	hash, err := hapi.ParseHashObject(hashMsg)
	if err != nil {
		return nil, nil, err
	}

	return hash, streamobject.NewSignatureObject(sig), nil
}

// EncodeV2 serializes a pre-v5 signature file.
func EncodeV2(fileHash, sig []byte) []byte {
	buf := []byte{markerV2Hash}
	buf = append(buf, fileHash...)
	buf = append(buf, markerV2Signature)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(sig)))

	return append(buf, sig...)
}

// EncodeV5 serializes a V5 signature file.
func EncodeV5(fileHash, fileSig, metadataHash, metadataSig []byte) []byte {
	buf := []byte{markerV5}
	buf = binary.BigEndian.AppendUint32(buf, objectStreamSignatureVersion)
	buf = append(buf, streamobject.NewHashObject(fileHash).Bytes()...)
	buf = append(buf, streamobject.NewSignatureObject(fileSig).Bytes()...)
	buf = append(buf, streamobject.NewHashObject(metadataHash).Bytes()...)

	return append(buf, streamobject.NewSignatureObject(metadataSig).Bytes()...)
}

// EncodeV6 serializes a V6 signature file.
func EncodeV6(fileHash, fileSig, metadataHash, metadataSig []byte) []byte {
	buf := []byte{markerV6}
	buf = hapi.AppendMessage(buf, fieldFileSignature, encodeSignatureProto(fileHash, fileSig))

	return hapi.AppendMessage(buf, fieldMetadataSignature, encodeSignatureProto(metadataHash, metadataSig))
}

// encodeSignatureProto builds a protobuf SignatureObject.
func encodeSignatureProto(hash, sig []byte) []byte {
	n := int32(len(sig))

	var msg []byte
	msg = hapi.AppendInt32(msg, fieldSigType, int32(streamobject.SignatureSHA384withRSA))
	msg = hapi.AppendInt32(msg, fieldSigLength, n)
	msg = hapi.AppendInt32(msg, fieldSigChecksum, streamobject.SignatureChecksum(n))
	msg = hapi.AppendBytes(msg, fieldSigBytes, sig)

	return hapi.AppendMessage(msg, fieldSigHash, hapi.EncodeHashObject(streamobject.NewHashObject(hash)))
}
