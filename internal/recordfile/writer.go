package recordfile

import "encoding/binary"

// writer accumulates a big-endian encoding.
type writer struct {
	buf []byte
}

// newWriter creates an empty writer.
func newWriter() *writer {
	return &writer{}
}

func (w *writer) byte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *writer) int32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *writer) raw(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *writer) lengthPrefixed(b []byte) {
	w.int32(int32(len(b)))
	w.raw(b)
}

func (w *writer) bytes() []byte {
	return w.buf
}
