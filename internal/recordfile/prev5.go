package recordfile

import (
	"bytes"
	"crypto/sha512"

	"StateProof/internal/hapi"
	"StateProof/internal/streamobject"
)

const (
	// markerPrevHash precedes the previous file hash.
	markerPrevHash = 0x01

	// markerRecord precedes each transaction/record pair.
	markerRecord = 0x02
)

// PreV5 decodes record file versions 1 and 2. The whole file is covered by a
// single hash, so it cannot be compacted.
type PreV5 struct{}

// Name implements Variant.
func (PreV5) Name() string {
	return "pre-v5"
}

// Supports implements Variant. Only raw bytes are supported.
func (PreV5) Supports(src Source) bool {
	if src.Compact != nil {
		return false
	}

	v, ok := src.Version()

	return ok && (v == 1 || v == 2)
}

// CanCompact implements Variant.
func (PreV5) CanCompact(Source) bool {
	return false
}

// New implements Variant.
func (p PreV5) New(src Source) (RecordFile, error) {
	if !p.Supports(src) {
		return nil, contextError(ErrUnsupportedVersion, "pre-v5 record file: unsupported input")
	}

	return parsePreV5(src.Raw)
}

// preV5File is a decoded version 1 or 2 record file.
type preV5File struct {
	version      int32
	hapiVersion  int32
	previousHash []byte
	fileHash     []byte
	txs          map[hapi.TransactionKey]Transaction
}

// parsePreV5 decodes the header, the marker-delimited records and the file
// hash. Gzip wrapped input is inflated first and hashed uncompressed.
func parsePreV5(raw []byte) (*preV5File, error) {
	data, err := inflate(raw)
	if err != nil {
		return nil, err
	}

	r := streamobject.NewReader(data)

	version, err := r.Int32("pre-v5 version")
	if err != nil {
		return nil, err
	}

	hapiVersion, err := r.Int32("pre-v5 hapi version")
	if err != nil {
		return nil, err
	}

	marker, err := r.Byte("pre-v5 previous hash marker")
	if err != nil {
		return nil, err
	}

	if marker != markerPrevHash {
		return nil, contextError(ErrMalformedRecordFile, "pre-v5: unexpected marker 0x%02x before previous hash", marker)
	}

	prev, err := r.Next(sha512.Size384, "pre-v5 previous hash")
	if err != nil {
		return nil, err
	}

	headerLen := r.Offset()

	var objects []*streamobject.RecordStreamObject

	for r.Remaining() > 0 {
		marker, err := r.Byte("pre-v5 record marker")
		if err != nil {
			return nil, err
		}

		if marker != markerRecord {
			return nil, contextError(ErrMalformedRecordFile,
				"pre-v5: unexpected marker 0x%02x at offset %d", marker, r.Offset()-1)
		}

		tx, err := r.LengthPrefixed(streamobject.MaxFieldLength, "pre-v5 transaction")
		if err != nil {
			return nil, err
		}

		record, err := r.LengthPrefixed(streamobject.MaxFieldLength, "pre-v5 record")
		if err != nil {
			return nil, err
		}

		objects = append(objects, streamobject.NewRecordStreamObject(record, tx))
	}

	txs, err := index(objects, 0)
	if err != nil {
		return nil, err
	}

	return &preV5File{
		version:      version,
		hapiVersion:  hapiVersion,
		previousHash: bytes.Clone(prev),
		fileHash:     preV5FileHash(version, data, headerLen),
		txs:          txs,
	}, nil
}

// preV5FileHash computes the file hash. Version 1 hashes the whole file;
// version 2 hashes the header followed by the hash of the body.
func preV5FileHash(version int32, data []byte, headerLen int) []byte {
	if version == 1 {
		sum := sha512.Sum384(data)
		return sum[:]
	}

	content := sha512.Sum384(data[headerLen:])

	h := sha512.New384()
	h.Write(data[:headerLen])
	h.Write(content[:])

	return h.Sum(nil)
}

// Version implements RecordFile.
func (f *preV5File) Version() int32 {
	return f.version
}

// FileHash implements RecordFile.
func (f *preV5File) FileHash() []byte {
	return bytes.Clone(f.fileHash)
}

// MetadataHash implements RecordFile. Pre-v5 files have no metadata hash.
func (f *preV5File) MetadataHash() []byte {
	return nil
}

// SignedHash implements RecordFile.
func (f *preV5File) SignedHash() []byte {
	return f.FileHash()
}

// ContainsTransaction implements RecordFile.
func (f *preV5File) ContainsTransaction(key hapi.TransactionKey) bool {
	_, ok := f.txs[key]
	return ok
}

// TransactionMap implements RecordFile.
func (f *preV5File) TransactionMap() map[hapi.TransactionKey]Transaction {
	return cloneMap(f.txs)
}

// ToCompactObject implements RecordFile.
func (f *preV5File) ToCompactObject(key hapi.TransactionKey) (*CompactObject, error) {
	if _, ok := f.txs[key]; !ok {
		return nil, contextError(ErrTransactionNotFound, "transaction %s not found", key)
	}

	return nil, contextError(ErrNotCompactable, "record file version %d cannot be compacted", f.version)
}

// EncodePreV5 serializes a version 1 or 2 record file.
func EncodePreV5(version, hapiVersion int32, previousHash []byte, items []Item) []byte {
	w := newWriter()
	w.int32(version)
	w.int32(hapiVersion)
	w.byte(markerPrevHash)
	w.raw(previousHash)

	for _, it := range items {
		w.byte(markerRecord)
		w.lengthPrefixed(it.Transaction)
		w.lengthPrefixed(it.Record)
	}

	return w.bytes()
}
