// Package types holds the FlatBuffers tables of proof.fbs.
package types

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// CompactProof is a self-contained state proof: the inclusion proof of one
// transaction plus the signature files and address books that attest it.
type CompactProof struct {
	_tab flatbuffers.Table
}

func GetRootAsCompactProof(buf []byte, offset flatbuffers.UOffsetT) *CompactProof {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &CompactProof{}
	x.Init(buf, n+offset)
	return x
}

func (rcv *CompactProof) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *CompactProof) Table() flatbuffers.Table {
	return rcv._tab
}

// bytesField returns the byte vector at vtable offset vt.
func (rcv *CompactProof) bytesField(vt flatbuffers.VOffsetT) []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(vt))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

// vectorLen returns the length of the vector at vtable offset vt.
func (rcv *CompactProof) vectorLen(vt flatbuffers.VOffsetT) int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(vt))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

// tableAt resolves element j of the table vector at vtable offset vt.
func (rcv *CompactProof) tableAt(vt flatbuffers.VOffsetT, j int) (flatbuffers.UOffsetT, bool) {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(vt))
	if o == 0 {
		return 0, false
	}

	x := rcv._tab.Vector(o)
	x += flatbuffers.UOffsetT(j) * 4
	return rcv._tab.Indirect(x), true
}

func (rcv *CompactProof) Version() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *CompactProof) RecordVersion() int32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.GetInt32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *CompactProof) HeadBytes() []byte {
	return rcv.bytesField(8)
}

func (rcv *CompactProof) StartRunningHashBytes() []byte {
	return rcv.bytesField(10)
}

func (rcv *CompactProof) HashesBefore(obj *Blob, j int) bool {
	x, ok := rcv.tableAt(12, j)
	if ok {
		obj.Init(rcv._tab.Bytes, x)
	}
	return ok
}

func (rcv *CompactProof) HashesBeforeLength() int {
	return rcv.vectorLen(12)
}

func (rcv *CompactProof) RecordStreamObjectBytes() []byte {
	return rcv.bytesField(14)
}

func (rcv *CompactProof) HashesAfter(obj *Blob, j int) bool {
	x, ok := rcv.tableAt(16, j)
	if ok {
		obj.Init(rcv._tab.Bytes, x)
	}
	return ok
}

func (rcv *CompactProof) HashesAfterLength() int {
	return rcv.vectorLen(16)
}

func (rcv *CompactProof) EndRunningHashBytes() []byte {
	return rcv.bytesField(18)
}

func (rcv *CompactProof) BlockNumber() int64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(20))
	if o != 0 {
		return rcv._tab.GetInt64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *CompactProof) FileHashBytes() []byte {
	return rcv.bytesField(22)
}

func (rcv *CompactProof) Signatures(obj *NodeSignature, j int) bool {
	x, ok := rcv.tableAt(24, j)
	if ok {
		obj.Init(rcv._tab.Bytes, x)
	}
	return ok
}

func (rcv *CompactProof) SignaturesLength() int {
	return rcv.vectorLen(24)
}

func (rcv *CompactProof) AddressBooks(obj *Blob, j int) bool {
	x, ok := rcv.tableAt(26, j)
	if ok {
		obj.Init(rcv._tab.Bytes, x)
	}
	return ok
}

func (rcv *CompactProof) AddressBooksLength() int {
	return rcv.vectorLen(26)
}

func (rcv *CompactProof) ChecksumBytes() []byte {
	return rcv.bytesField(28)
}

func (rcv *CompactProof) TransactionId() []byte {
	return rcv.bytesField(30)
}

func (rcv *CompactProof) Nonce() int32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(32))
	if o != 0 {
		return rcv._tab.GetInt32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *CompactProof) Scheduled() bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(34))
	if o != 0 {
		return rcv._tab.GetBool(o + rcv._tab.Pos)
	}
	return false
}

func CompactProofStart(builder *flatbuffers.Builder) {
	builder.StartObject(16)
}

func CompactProofAddVersion(builder *flatbuffers.Builder, version uint32) {
	builder.PrependUint32Slot(0, version, 0)
}

func CompactProofAddRecordVersion(builder *flatbuffers.Builder, recordVersion int32) {
	builder.PrependInt32Slot(1, recordVersion, 0)
}

func CompactProofAddHead(builder *flatbuffers.Builder, head flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(2, flatbuffers.UOffsetT(head), 0)
}

func CompactProofAddStartRunningHash(builder *flatbuffers.Builder, hash flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(3, flatbuffers.UOffsetT(hash), 0)
}

func CompactProofAddHashesBefore(builder *flatbuffers.Builder, hashes flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(4, flatbuffers.UOffsetT(hashes), 0)
}

func CompactProofStartHashesBeforeVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}

func CompactProofAddRecordStreamObject(builder *flatbuffers.Builder, rso flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(5, flatbuffers.UOffsetT(rso), 0)
}

func CompactProofAddHashesAfter(builder *flatbuffers.Builder, hashes flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(6, flatbuffers.UOffsetT(hashes), 0)
}

func CompactProofStartHashesAfterVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}

func CompactProofAddEndRunningHash(builder *flatbuffers.Builder, hash flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(7, flatbuffers.UOffsetT(hash), 0)
}

func CompactProofAddBlockNumber(builder *flatbuffers.Builder, blockNumber int64) {
	builder.PrependInt64Slot(8, blockNumber, 0)
}

func CompactProofAddFileHash(builder *flatbuffers.Builder, hash flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(9, flatbuffers.UOffsetT(hash), 0)
}

func CompactProofAddSignatures(builder *flatbuffers.Builder, sigs flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(10, flatbuffers.UOffsetT(sigs), 0)
}

func CompactProofStartSignaturesVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}

func CompactProofAddAddressBooks(builder *flatbuffers.Builder, books flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(11, flatbuffers.UOffsetT(books), 0)
}

func CompactProofStartAddressBooksVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}

func CompactProofAddChecksum(builder *flatbuffers.Builder, checksum flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(12, flatbuffers.UOffsetT(checksum), 0)
}

func CompactProofAddTransactionId(builder *flatbuffers.Builder, id flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(13, flatbuffers.UOffsetT(id), 0)
}

func CompactProofAddNonce(builder *flatbuffers.Builder, nonce int32) {
	builder.PrependInt32Slot(14, nonce, 0)
}

func CompactProofAddScheduled(builder *flatbuffers.Builder, scheduled bool) {
	builder.PrependBoolSlot(15, scheduled, false)
}

func CompactProofEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
