package recordfile

import (
	"crypto/sha512"

	"StateProof/internal/hapi"
	"StateProof/internal/runninghash"
	"StateProof/internal/streamobject"
)

const (
	// v5HeadSize is version + hapi major/minor/patch + object stream version.
	v5HeadSize = 20

	// objectStreamVersion is the only object stream version in V5 files.
	objectStreamVersion = 1
)

// V5 decodes version 5 record files: a header, a start running hash, the
// record stream objects and an end running hash.
type V5 struct{}

// Name implements Variant.
func (V5) Name() string {
	return "v5"
}

// Supports implements Variant.
func (V5) Supports(src Source) bool {
	v, ok := src.Version()
	return ok && v == 5
}

// CanCompact implements Variant.
func (v V5) CanCompact(src Source) bool {
	return v.Supports(src)
}

// New implements Variant.
func (v V5) New(src Source) (RecordFile, error) {
	if !v.Supports(src) {
		return nil, contextError(ErrUnsupportedVersion, "v5 record file: unsupported input")
	}

	var c *chain
	var err error

	if src.Compact != nil {
		c, err = newChainFromCompact(src.Compact)
	} else {
		c, err = parseV5(src.Raw)
	}
	if err != nil {
		return nil, err
	}

	c.hashMetadata(c.head, c.start.Bytes(), c.end.Bytes())

	return c, nil
}

// parseV5 decodes a full V5 file, inflating it first when it is gzip wrapped.
func parseV5(raw []byte) (*chain, error) {
	data, err := inflate(raw)
	if err != nil {
		return nil, err
	}

	r := streamobject.NewReader(data)

	head, err := r.Next(v5HeadSize, "v5 header")
	if err != nil {
		return nil, err
	}

	start, err := nextHash(r, "v5 start running hash")
	if err != nil {
		return nil, err
	}

	var objects []*streamobject.RecordStreamObject

	for {
		classID, ok := streamobject.PeekClassID(r.Rest())
		if !ok {
			return nil, contextError(ErrMalformedRecordFile, "v5: missing end running hash at offset %d", r.Offset())
		}

		if classID != streamobject.ClassIDRecordStreamObject {
			break
		}

		o, err := streamobject.ParseRecordStreamObject(r.Rest())
		if err != nil {
			return nil, err
		}

		if _, err := r.Next(o.Length(), "v5 record stream object"); err != nil {
			return nil, err
		}

		objects = append(objects, o)
	}

	end, err := nextHash(r, "v5 end running hash")
	if err != nil {
		return nil, err
	}

	if r.Remaining() != 0 {
		return nil, contextError(ErrMalformedRecordFile, "v5: %d trailing bytes", r.Remaining())
	}

	c, err := newChain(5, head, start, end, objects)
	if err != nil {
		return nil, err
	}

	sum := sha512.Sum384(data)
	c.fileHash = sum[:]

	return c, nil
}

// nextHash decodes a HashObject at the reader position and advances past it.
func nextHash(r *streamobject.Reader, field string) (*streamobject.HashObject, error) {
	h, err := streamobject.ParseHashObject(r.Rest())
	if err != nil {
		return nil, err
	}

	_, err = r.Next(h.Length(), field)

	return h, err
}

// EncodeV5 serializes a version 5 record file. The end running hash is
// derived from start and the items.
func EncodeV5(hapiVersion hapi.SemanticVersion, start *streamobject.HashObject, items []Item) []byte {
	w := newWriter()
	w.int32(5)
	w.int32(hapiVersion.Major)
	w.int32(hapiVersion.Minor)
	w.int32(hapiVersion.Patch)
	w.int32(objectStreamVersion)
	w.raw(start.Bytes())

	leaves := make([]*streamobject.HashObject, len(items))
	for i, it := range items {
		o := streamobject.NewRecordStreamObject(it.Record, it.Transaction)
		leaves[i] = o.Hash()
		w.raw(o.Bytes())
	}

	w.raw(runninghash.Fold(start, leaves...).Bytes())

	return w.bytes()
}
