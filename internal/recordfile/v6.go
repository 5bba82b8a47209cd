package recordfile

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"google.golang.org/protobuf/encoding/protowire"

	"StateProof/internal/hapi"
	"StateProof/internal/runninghash"
	"StateProof/internal/streamobject"
)

// v6HeadSize is version + hapi major/minor/patch.
const v6HeadSize = 16

// RecordStreamFile field numbers.
const (
	fieldHAPIVersion protowire.Number = 1
	fieldStartHash   protowire.Number = 2
	fieldItem        protowire.Number = 3
	fieldEndHash     protowire.Number = 4
	fieldBlockNumber protowire.Number = 5

	fieldItemTransaction protowire.Number = 1
	fieldItemRecord      protowire.Number = 2
)

// V6 decodes version 6 record files: a version int followed by a protobuf
// RecordStreamFile. Files may be gzip-compressed.
type V6 struct{}

// Name implements Variant.
func (V6) Name() string {
	return "v6"
}

// Supports implements Variant.
func (V6) Supports(src Source) bool {
	v, ok := src.Version()
	return ok && v == 6
}

// CanCompact implements Variant.
func (v V6) CanCompact(src Source) bool {
	return v.Supports(src)
}

// New implements Variant.
func (v V6) New(src Source) (RecordFile, error) {
	if !v.Supports(src) {
		return nil, contextError(ErrUnsupportedVersion, "v6 record file: unsupported input")
	}

	var c *chain
	var err error

	if src.Compact != nil {
		c, err = newChainFromCompact(src.Compact)
	} else {
		c, err = parseV6(src.Raw)
	}
	if err != nil {
		return nil, err
	}

	var block [8]byte
	binary.BigEndian.PutUint64(block[:], uint64(c.blockNumber))
	c.hashMetadata(c.head, c.start.Hash, c.end.Hash, block[:])

	return c, nil
}

// parseV6 inflates and decodes a full V6 file.
func parseV6(raw []byte) (*chain, error) {
	data, err := inflate(raw)
	if err != nil {
		return nil, err
	}

	if len(data) < 4 {
		return nil, streamobject.NewError(streamobject.ErrTruncatedInput, "v6: missing version")
	}

	var (
		hapiVersion hapi.SemanticVersion
		start, end  *streamobject.HashObject
		objects     []*streamobject.RecordStreamObject
		blockNumber int64
	)

	err = hapi.Walk(data[4:], func(f hapi.Field) error {
		var err error

		switch f.Num {
		case fieldHAPIVersion:
			hapiVersion, err = hapi.ParseSemanticVersion(f.Bytes)
		case fieldStartHash:
			start, err = hapi.ParseHashObject(f.Bytes)
		case fieldItem:
			var o *streamobject.RecordStreamObject
			o, err = parseV6Item(f.Bytes, len(objects))
			objects = append(objects, o)
		case fieldEndHash:
			end, err = hapi.ParseHashObject(f.Bytes)
		case fieldBlockNumber:
			blockNumber = f.Int64()
		}

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: v6 record stream file:\n%w", ErrMalformedRecordFile, err)
	}

	if start == nil || end == nil {
		return nil, contextError(ErrMalformedRecordFile, "v6: missing running hash")
	}

	c, err := newChain(6, v6Head(hapiVersion), start, end, objects)
	if err != nil {
		return nil, err
	}

	sum := sha512.Sum384(data)
	c.fileHash = sum[:]
	c.blockNumber = blockNumber

	return c, nil
}

// parseV6Item converts a RecordStreamItem into the equivalent record stream object.
func parseV6Item(msg []byte, pos int) (*streamobject.RecordStreamObject, error) {
	var tx, record []byte

	err := hapi.Walk(msg, func(f hapi.Field) error {
		switch f.Num {
		case fieldItemTransaction:
			tx = f.Bytes
		case fieldItemRecord:
			record = f.Bytes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(tx) > streamobject.MaxFieldLength || len(record) > streamobject.MaxFieldLength {
		return nil, streamobject.NewError(streamobject.ErrFieldTooLarge,
			"v6: record stream item exceeds field limit")
	}

	if record == nil {
		return nil, contextError(ErrMalformedRecordFile, "v6: item %d has no record", pos)
	}

	return streamobject.NewRecordStreamObject(record, tx), nil
}

// v6Head is the metadata prefix: version and hapi major/minor/patch.
func v6Head(v hapi.SemanticVersion) []byte {
	w := newWriter()
	w.int32(6)
	w.int32(v.Major)
	w.int32(v.Minor)
	w.int32(v.Patch)

	return w.bytes()
}

// EncodeV6 serializes an uncompressed version 6 record file. The end running
// hash is derived from start and the items.
func EncodeV6(hapiVersion hapi.SemanticVersion, start *streamobject.HashObject, items []Item, blockNumber int64) []byte {
	var msg []byte
	msg = hapi.AppendMessage(msg, fieldHAPIVersion, hapiVersion.Encode())
	msg = hapi.AppendMessage(msg, fieldStartHash, hapi.EncodeHashObject(start))

	leaves := make([]*streamobject.HashObject, len(items))
	for i, it := range items {
		var item []byte
		item = hapi.AppendBytes(item, fieldItemTransaction, it.Transaction)
		item = hapi.AppendMessage(item, fieldItemRecord, it.Record)
		msg = hapi.AppendMessage(msg, fieldItem, item)

		leaves[i] = streamobject.NewRecordStreamObject(it.Record, it.Transaction).Hash()
	}

	msg = hapi.AppendMessage(msg, fieldEndHash, hapi.EncodeHashObject(runninghash.Fold(start, leaves...)))
	msg = hapi.AppendVarint(msg, fieldBlockNumber, uint64(blockNumber))

	w := newWriter()
	w.int32(6)
	w.raw(msg)

	return w.bytes()
}

// Gzip compresses a record file the way V6 files are stored.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
