package types

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// Blob is a table holding one opaque byte vector.
type Blob struct {
	_tab flatbuffers.Table
}

func GetRootAsBlob(buf []byte, offset flatbuffers.UOffsetT) *Blob {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &Blob{}
	x.Init(buf, n+offset)
	return x
}

func (rcv *Blob) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *Blob) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *Blob) DataLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *Blob) DataBytes() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func BlobStart(builder *flatbuffers.Builder) {
	builder.StartObject(1)
}

func BlobAddData(builder *flatbuffers.Builder, data flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(0, flatbuffers.UOffsetT(data), 0)
}

func BlobEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}

// NodeSignature pairs a node id with that node's raw signature file.
type NodeSignature struct {
	_tab flatbuffers.Table
}

func (rcv *NodeSignature) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *NodeSignature) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *NodeSignature) NodeId() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func (rcv *NodeSignature) DataBytes() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func NodeSignatureStart(builder *flatbuffers.Builder) {
	builder.StartObject(2)
}

func NodeSignatureAddNodeId(builder *flatbuffers.Builder, nodeId flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(0, flatbuffers.UOffsetT(nodeId), 0)
}

func NodeSignatureAddData(builder *flatbuffers.Builder, data flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(1, flatbuffers.UOffsetT(data), 0)
}

func NodeSignatureEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
