// Package envelope serializes self-contained state proofs: a compact record
// file, the signature files and the address books needed to verify one
// transaction.
//
// Wire form: zstd(FlatBuffers CompactProof), with a BLAKE3 checksum over the
// canonical content stored inside the table.
package envelope

import (
	"bytes"
	"encoding/binary"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"StateProof/internal/hapi"
	"StateProof/internal/recordfile"
	"StateProof/internal/stateproof"
	"StateProof/internal/streamobject"
	"StateProof/internal/types"
)

const (
	// envelopeVersion is the current envelope format version.
	envelopeVersion = 1

	// maxEnvelopeSize bounds the decompressed envelope.
	maxEnvelopeSize = 64 << 20
)

// Proof is everything needed to re-run a state proof offline.
type Proof struct {
	Key          hapi.TransactionKey        // Key identifies the proven transaction
	Compact      *recordfile.CompactObject  // Compact is the inclusion proof
	Signatures   []stateproof.SignatureFile // Signatures are the node signature files
	AddressBooks [][]byte                   // AddressBooks are raw NodeAddressBooks, oldest first
}

// Request returns the stateproof request for p.
func (p *Proof) Request() stateproof.Request {
	return stateproof.Request{
		RecordFile:   recordfile.FromCompact(p.Compact),
		Signatures:   p.Signatures,
		AddressBooks: p.AddressBooks,
		Key:          p.Key,
	}
}

// Encode serializes and compresses p.
func Encode(p *Proof) ([]byte, error) {
	if p.Compact == nil || p.Compact.StartRunningHash == nil || p.Compact.EndRunningHash == nil {
		return nil, contextError(ErrInvalidEnvelope, "envelope: proof has no compact record file")
	}

	data := build(p)

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create encoder:\n%w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

// build creates the FlatBuffers table with checksum.
func build(p *Proof) []byte {
	co := p.Compact
	checksum := computeChecksum(envelopeVersion, p)

	builder := flatbuffers.NewBuilder(1024)

	before := blobVector(builder, co.HashesBefore, types.CompactProofStartHashesBeforeVector)
	after := blobVector(builder, co.HashesAfter, types.CompactProofStartHashesAfterVector)
	books := blobVector(builder, p.AddressBooks, types.CompactProofStartAddressBooksVector)

	sigOffsets := make([]flatbuffers.UOffsetT, len(p.Signatures))
	for i, s := range p.Signatures {
		idOffset := builder.CreateString(s.NodeID)
		dataOffset := builder.CreateByteVector(s.Data)

		types.NodeSignatureStart(builder)
		types.NodeSignatureAddNodeId(builder, idOffset)
		types.NodeSignatureAddData(builder, dataOffset)
		sigOffsets[i] = types.NodeSignatureEnd(builder)
	}

	types.CompactProofStartSignaturesVector(builder, len(sigOffsets))
	for i := len(sigOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(sigOffsets[i])
	}
	sigs := builder.EndVector(len(sigOffsets))

	head := builder.CreateByteVector(co.Head)
	start := builder.CreateByteVector(co.StartRunningHash.Hash)
	rso := builder.CreateByteVector(co.RecordStreamObject)
	end := builder.CreateByteVector(co.EndRunningHash.Hash)
	fileHash := builder.CreateByteVector(co.FileHash)
	checksumOffset := builder.CreateByteVector(checksum[:])
	txID := builder.CreateString(p.Key.ID)

	types.CompactProofStart(builder)
	types.CompactProofAddVersion(builder, envelopeVersion)
	types.CompactProofAddRecordVersion(builder, co.Version)
	types.CompactProofAddHead(builder, head)
	types.CompactProofAddStartRunningHash(builder, start)
	types.CompactProofAddHashesBefore(builder, before)
	types.CompactProofAddRecordStreamObject(builder, rso)
	types.CompactProofAddHashesAfter(builder, after)
	types.CompactProofAddEndRunningHash(builder, end)
	types.CompactProofAddBlockNumber(builder, co.BlockNumber)
	types.CompactProofAddFileHash(builder, fileHash)
	types.CompactProofAddSignatures(builder, sigs)
	types.CompactProofAddAddressBooks(builder, books)
	types.CompactProofAddChecksum(builder, checksumOffset)
	types.CompactProofAddTransactionId(builder, txID)
	types.CompactProofAddNonce(builder, p.Key.Nonce)
	types.CompactProofAddScheduled(builder, p.Key.Scheduled)
	builder.Finish(types.CompactProofEnd(builder))

	return builder.FinishedBytes()
}

// blobVector writes a vector of Blob tables.
func blobVector(builder *flatbuffers.Builder, items [][]byte, startVector func(*flatbuffers.Builder, int) flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	offsets := make([]flatbuffers.UOffsetT, len(items))
	for i, item := range items {
		dataOffset := builder.CreateByteVector(item)

		types.BlobStart(builder)
		types.BlobAddData(builder, dataOffset)
		offsets[i] = types.BlobEnd(builder)
	}

	startVector(builder, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}

	return builder.EndVector(len(offsets))
}

// Decode decompresses and decodes an envelope, verifying its checksum.
func Decode(data []byte) (*Proof, error) {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxEnvelopeSize))
	if err != nil {
		return nil, fmt.Errorf("create decoder:\n%w", err)
	}
	defer decoder.Close()

	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress:\n%w", ErrInvalidEnvelope, err)
	}

	p, stored, err := readTable(raw)
	if err != nil {
		return nil, err
	}

	if len(stored) != 32 {
		return nil, contextError(ErrInvalidEnvelope, "envelope: invalid checksum length %d", len(stored))
	}

	computed := computeChecksum(envelopeVersion, p)
	if !bytes.Equal(computed[:], stored) {
		return nil, contextError(ErrEnvelopeChecksum, "envelope: checksum mismatch")
	}

	return p, nil
}

// readTable extracts a Proof and its stored checksum from a FlatBuffers
// buffer. Offsets in a corrupt buffer can point anywhere, so accessor panics
// are reported as ErrInvalidEnvelope.
func readTable(raw []byte) (p *Proof, checksum []byte, err error) {
	if len(raw) < 8 {
		return nil, nil, contextError(ErrInvalidEnvelope, "envelope: %d bytes is too short", len(raw))
	}

	defer func() {
		if r := recover(); r != nil {
			p, checksum, err = nil, nil, contextError(ErrInvalidEnvelope, "envelope: corrupt table: %v", r)
		}
	}()

	fb := types.GetRootAsCompactProof(raw, 0)
	if v := fb.Version(); v != envelopeVersion {
		return nil, nil, contextError(ErrInvalidEnvelope, "envelope: unsupported version %d", v)
	}

	co := &recordfile.CompactObject{
		Version:            fb.RecordVersion(),
		Head:               copyBytes(fb.HeadBytes()),
		StartRunningHash:   streamobject.NewHashObject(fb.StartRunningHashBytes()),
		RecordStreamObject: copyBytes(fb.RecordStreamObjectBytes()),
		EndRunningHash:     streamobject.NewHashObject(fb.EndRunningHashBytes()),
		BlockNumber:        fb.BlockNumber(),
		FileHash:           copyBytes(fb.FileHashBytes()),
	}

	var blob types.Blob

	for i := 0; i < fb.HashesBeforeLength(); i++ {
		fb.HashesBefore(&blob, i)
		co.HashesBefore = append(co.HashesBefore, copyBytes(blob.DataBytes()))
	}

	for i := 0; i < fb.HashesAfterLength(); i++ {
		fb.HashesAfter(&blob, i)
		co.HashesAfter = append(co.HashesAfter, copyBytes(blob.DataBytes()))
	}

	p = &Proof{
		Key: hapi.TransactionKey{
			ID:        string(fb.TransactionId()),
			Nonce:     fb.Nonce(),
			Scheduled: fb.Scheduled(),
		},
		Compact: co,
	}

	var sig types.NodeSignature

	for i := 0; i < fb.SignaturesLength(); i++ {
		fb.Signatures(&sig, i)
		p.Signatures = append(p.Signatures, stateproof.SignatureFile{
			NodeID: string(sig.NodeId()),
			Data:   copyBytes(sig.DataBytes()),
		})
	}

	for i := 0; i < fb.AddressBooksLength(); i++ {
		fb.AddressBooks(&blob, i)
		p.AddressBooks = append(p.AddressBooks, copyBytes(blob.DataBytes()))
	}

	return p, copyBytes(fb.ChecksumBytes()), nil
}

// computeChecksum computes a blake3 checksum over the canonical proof content.
// Every variable-length field is prefixed with its 4-byte length.
func computeChecksum(version uint32, p *Proof) [32]byte {
	hasher := blake3.New()
	co := p.Compact

	var buf [8]byte
	writeUint32 := func(v uint32) {
		binary.BigEndian.PutUint32(buf[:4], v)
		hasher.Write(buf[:4])
	}
	writeBytes := func(b []byte) {
		writeUint32(uint32(len(b)))
		hasher.Write(b)
	}
	writeList := func(list [][]byte) {
		writeUint32(uint32(len(list)))
		for _, b := range list {
			writeBytes(b)
		}
	}

	writeUint32(version)
	writeBytes([]byte(p.Key.ID))
	writeUint32(uint32(p.Key.Nonce))
	if p.Key.Scheduled {
		hasher.Write([]byte{1})
	} else {
		hasher.Write([]byte{0})
	}

	writeUint32(uint32(co.Version))
	writeBytes(co.Head)
	writeBytes(co.StartRunningHash.Hash)
	writeList(co.HashesBefore)
	writeBytes(co.RecordStreamObject)
	writeList(co.HashesAfter)
	writeBytes(co.EndRunningHash.Hash)

	binary.BigEndian.PutUint64(buf[:], uint64(co.BlockNumber))
	hasher.Write(buf[:])

	writeBytes(co.FileHash)

	writeUint32(uint32(len(p.Signatures)))
	for _, s := range p.Signatures {
		writeBytes([]byte(s.NodeID))
		writeBytes(s.Data)
	}

	writeList(p.AddressBooks)

	var checksum [32]byte
	hasher.Sum(checksum[:0])

	return checksum
}

// copyBytes returns an owned copy of b, since FlatBuffers accessors alias
// the decoded buffer.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out
}
