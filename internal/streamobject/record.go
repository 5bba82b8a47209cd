package streamobject

import "encoding/binary"

const (
	// MaxFieldLength bounds the record and transaction fields.
	MaxFieldLength = 64 * 1024

	// recordStreamObjectVersion is the only recognized RecordStreamObject class version.
	recordStreamObjectVersion = 1
)

// RecordStreamObject is one executed transaction and its record.
type RecordStreamObject struct {
	Header
	Record      []byte // Record is the serialized TransactionRecord
	Transaction []byte // Transaction is the serialized Transaction
}

// NewRecordStreamObject builds a RecordStreamObject from its two payloads.
func NewRecordStreamObject(record, transaction []byte) *RecordStreamObject {
	return &RecordStreamObject{
		Header:      Header{ClassID: ClassIDRecordStreamObject, ClassVersion: recordStreamObjectVersion},
		Record:      copyBytes(record),
		Transaction: copyBytes(transaction),
	}
}

// ParseRecordStreamObject decodes a RecordStreamObject from the start of data.
func ParseRecordStreamObject(data []byte) (*RecordStreamObject, error) {
	o := &RecordStreamObject{}

	h, _, err := Parse(data, o)
	if err != nil {
		return nil, err
	}

	o.Header = h

	return o, nil
}

// DecodeBody implements BodyDecoder.
func (o *RecordStreamObject) DecodeBody(h Header, body []byte) (int, error) {
	if err := checkClass(h, ClassIDRecordStreamObject, recordStreamObjectVersion, "record stream object"); err != nil {
		return 0, err
	}

	r := NewReader(body)

	record, err := r.LengthPrefixed(MaxFieldLength, "record stream object record")
	if err != nil {
		return 0, err
	}

	tx, err := r.LengthPrefixed(MaxFieldLength, "record stream object transaction")
	if err != nil {
		return 0, err
	}

	o.Record = copyBytes(record)
	o.Transaction = copyBytes(tx)

	return r.Offset(), nil
}

// Length returns the serialized size of the object.
func (o *RecordStreamObject) Length() int {
	return HeaderSize + 8 + len(o.Record) + len(o.Transaction)
}

// Bytes returns the serialized object.
func (o *RecordStreamObject) Bytes() []byte {
	buf := make([]byte, 0, o.Length())
	buf = appendHeader(buf, o.Header)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(o.Record)))
	buf = append(buf, o.Record...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(o.Transaction)))

	return append(buf, o.Transaction...)
}

// Hash returns the SHA-384 HashObject of the serialized object, the leaf
// value folded into the running hash.
func (o *RecordStreamObject) Hash() *HashObject {
	return HashOf(o.Bytes())
}
