// Package hapi decodes and encodes the handful of protobuf messages the record
// stream formats embed: transaction identities, account ids, hash objects and
// semantic versions. Messages are walked field by field with protowire so
// unknown fields from newer schema versions are skipped.
package hapi

import (
	"google.golang.org/protobuf/encoding/protowire"

	"StateProof/internal/streamobject"
)

// ErrorKind identifies a kind of protobuf decode error.
type ErrorKind = streamobject.ErrorKind

// ContextError wraps an ErrorKind with a description.
type ContextError = streamobject.ContextError

// ErrMalformedMessage indicates bytes that are not a valid protobuf encoding
// of the expected message.
const ErrMalformedMessage = ErrorKind("ErrMalformedMessage")

// malformed creates a ContextError of kind ErrMalformedMessage.
func malformed(format string, args ...any) ContextError {
	return streamobject.Errorf(ErrMalformedMessage, format, args...)
}

// Field is one decoded top-level protobuf field.
type Field struct {
	Num    protowire.Number // Num is the field number
	Type   protowire.Type   // Type is the wire type
	Varint uint64           // Varint holds varint and fixed-width values
	Bytes  []byte           // Bytes holds length-delimited values (aliases the input)
}

// Int32 returns a varint field as int32.
func (f Field) Int32() int32 {
	return int32(f.Varint)
}

// Int64 returns a varint field as int64.
func (f Field) Int64() int64 {
	return int64(f.Varint)
}

// Bool returns a varint field as bool.
func (f Field) Bool() bool {
	return protowire.DecodeBool(f.Varint)
}

// Walk calls fn for each top-level field of msg in wire order.
func Walk(msg []byte, fn func(f Field) error) error {
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return malformed("read tag: %v", protowire.ParseError(n))
		}
		msg = msg[n:]

		f := Field{Num: num, Type: typ}

		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(msg)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(msg)
			f.Varint = uint64(v)
		case protowire.Fixed64Type:
			f.Varint, n = protowire.ConsumeFixed64(msg)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(msg)
		default:
			n = protowire.ConsumeFieldValue(num, typ, msg)
		}

		if n < 0 {
			return malformed("read field %d: %v", num, protowire.ParseError(n))
		}
		msg = msg[n:]

		if err := fn(f); err != nil {
			return err
		}
	}

	return nil
}

// AppendVarint appends a varint field to b. Zero values are omitted, as in proto3.
func AppendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.VarintType)

	return protowire.AppendVarint(b, v)
}

// AppendInt32 appends an int32 field to b. Zero values are omitted.
func AppendInt32(b []byte, num protowire.Number, v int32) []byte {
	return AppendVarint(b, num, uint64(int64(v)))
}

// AppendBytes appends a length-delimited field to b. Empty values are omitted.
func AppendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}

	return AppendMessage(b, num, v)
}

// AppendMessage appends an embedded message field to b, even when empty.
func AppendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendBytes(b, msg)
}
