// Package recordfile decodes and encodes the record file formats produced by
// consensus nodes, one variant per wire-format generation, and dispatches
// between them by version.
//
// A record file is built once from raw bytes or from a CompactObject and is
// immutable afterwards.
package recordfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"StateProof/internal/hapi"
	"StateProof/internal/streamobject"
)

const (
	// MaxRecordFileSize bounds the uncompressed size of a record file.
	MaxRecordFileSize = 128 << 20
)

// Transaction is one transaction of a record file and its chain position.
type Transaction struct {
	Index       int    // Index is the position of the object in the file
	Record      []byte // Record is the serialized TransactionRecord
	Transaction []byte // Transaction is the serialized Transaction
}

// RecordFile is the contract every variant implements.
type RecordFile interface {
	// Version returns the record file format version.
	Version() int32

	// FileHash returns the hash of the whole file.
	FileHash() []byte

	// MetadataHash returns the hash of the header and running hashes, or nil
	// for versions that do not separate metadata from content.
	MetadataHash() []byte

	// SignedHash returns the hash nodes sign for this version.
	SignedHash() []byte

	// ContainsTransaction reports whether the identity triple is present.
	ContainsTransaction(key hapi.TransactionKey) bool

	// TransactionMap returns a copy of the transaction index.
	TransactionMap() map[hapi.TransactionKey]Transaction

	// ToCompactObject extracts the inclusion proof for one transaction.
	ToCompactObject(key hapi.TransactionKey) (*CompactObject, error)
}

// Variant decodes one wire-format generation.
type Variant interface {
	// Name identifies the variant in logs and diagnostics.
	Name() string

	// Supports reports whether src is in this variant's format.
	Supports(src Source) bool

	// CanCompact reports whether src is supported and its layout can
	// produce a CompactObject.
	CanCompact(src Source) bool

	// New decodes src.
	New(src Source) (RecordFile, error)
}

// Source is the input of a variant: either raw file bytes or a CompactObject.
type Source struct {
	Raw     []byte         // Raw is the file content, possibly gzip-compressed
	Compact *CompactObject // Compact is set when decoding an inclusion proof
}

// FromBytes returns a Source over raw file bytes.
func FromBytes(data []byte) Source {
	return Source{Raw: data}
}

// FromCompact returns a Source over a compact object.
func FromCompact(c *CompactObject) Source {
	return Source{Compact: c}
}

// Version returns the version discriminator of src without decoding it.
func (s Source) Version() (int32, bool) {
	if s.Compact != nil {
		return s.Compact.Version, true
	}

	head := s.Raw
	if isGzip(head) {
		zr, err := gzip.NewReader(bytes.NewReader(head))
		if err != nil {
			return 0, false
		}
		defer zr.Close()

		buf := make([]byte, 4)
		if _, err := io.ReadFull(zr, buf); err != nil {
			return 0, false
		}
		head = buf
	}

	if len(head) < 4 {
		return 0, false
	}

	return int32(binary.BigEndian.Uint32(head[:4])), true
}

// isGzip reports whether data starts with the gzip magic bytes.
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// inflate returns the uncompressed content of data, bounded by MaxRecordFileSize.
func inflate(data []byte) ([]byte, error) {
	if !isGzip(data) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, contextError(ErrMalformedRecordFile, "open gzip stream: %v", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, MaxRecordFileSize+1))
	if err != nil {
		return nil, contextError(ErrMalformedRecordFile, "inflate gzip stream: %v", err)
	}

	if len(out) > MaxRecordFileSize {
		return nil, contextError(ErrMalformedRecordFile, "record file exceeds %d bytes", MaxRecordFileSize)
	}

	return out, nil
}

// Item is one record stream entry handed to the encoders.
type Item struct {
	Record      []byte // Record is the serialized TransactionRecord
	Transaction []byte // Transaction is the serialized Transaction
}

// index builds the transaction map for a list of objects. The first
// occurrence of a key wins.
func index(objects []*streamobject.RecordStreamObject, offset int) (map[hapi.TransactionKey]Transaction, error) {
	txs := make(map[hapi.TransactionKey]Transaction, len(objects))

	for i, o := range objects {
		id, err := hapi.ParseRecordIdentity(o.Record)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d:\n%w", ErrMalformedRecordFile, offset+i, err)
		}

		key := id.Key()
		if _, ok := txs[key]; ok {
			continue
		}

		txs[key] = Transaction{Index: offset + i, Record: o.Record, Transaction: o.Transaction}
	}

	return txs, nil
}

// cloneMap returns a shallow copy of a transaction map.
func cloneMap(m map[hapi.TransactionKey]Transaction) map[hapi.TransactionKey]Transaction {
	out := make(map[hapi.TransactionKey]Transaction, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
