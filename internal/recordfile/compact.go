package recordfile

import (
	"encoding/binary"

	"StateProof/internal/streamobject"
)

// CompactObject is the inclusion proof for one transaction of a V5 or V6
// record file: the metadata prefix, the running hashes at both ends of the
// chain, the leaf hashes on either side of the target and the target object.
type CompactObject struct {
	Version            int32                    // Version is the record file format version
	Head               []byte                   // Head is the metadata prefix of the file
	StartRunningHash   *streamobject.HashObject // StartRunningHash is the chain's first value
	HashesBefore       [][]byte                 // HashesBefore are leaf hashes preceding the target
	RecordStreamObject []byte                   // RecordStreamObject is the serialized target
	HashesAfter        [][]byte                 // HashesAfter are leaf hashes following the target
	EndRunningHash     *streamobject.HashObject // EndRunningHash is the chain's declared final value
	BlockNumber        int64                    // BlockNumber is set for V6 files
	FileHash           []byte                   // FileHash is the whole-file hash of the source file
}

// headSize returns the expected metadata prefix size for a version.
func headSize(version int32) int {
	switch version {
	case 5:
		return v5HeadSize
	case 6:
		return v6HeadSize
	default:
		return 0
	}
}

// validate checks the compact object's shape before it is trusted.
func (c *CompactObject) validate() error {
	size := headSize(c.Version)
	if size == 0 {
		return contextError(ErrInvalidCompactObject, "compact object: no compact layout for version %d", c.Version)
	}

	if len(c.Head) != size {
		return contextError(ErrInvalidCompactObject, "compact object: head is %d bytes, want %d", len(c.Head), size)
	}

	if v := int32(binary.BigEndian.Uint32(c.Head[:4])); v != c.Version {
		return contextError(ErrInvalidCompactObject, "compact object: head version %d, want %d", v, c.Version)
	}

	if c.StartRunningHash == nil || c.EndRunningHash == nil {
		return contextError(ErrInvalidCompactObject, "compact object: missing running hash")
	}

	digest, _ := streamobject.DigestSize(streamobject.DigestSHA384)
	if len(c.StartRunningHash.Hash) != digest || len(c.EndRunningHash.Hash) != digest {
		return contextError(ErrInvalidCompactObject, "compact object: running hashes must be %d bytes", digest)
	}

	for _, list := range [][][]byte{c.HashesBefore, c.HashesAfter} {
		for i, h := range list {
			if len(h) != digest {
				return contextError(ErrInvalidCompactObject, "compact object: sibling hash %d is %d bytes", i, len(h))
			}
		}
	}

	return nil
}

// hashObjects wraps raw sibling hashes as HashObjects.
func hashObjects(hashes [][]byte) []*streamobject.HashObject {
	out := make([]*streamobject.HashObject, len(hashes))
	for i, h := range hashes {
		out[i] = streamobject.NewHashObject(h)
	}

	return out
}
