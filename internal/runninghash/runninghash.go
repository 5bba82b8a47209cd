// Package runninghash folds a sequence of hash objects into the chained value
// that consensus nodes sign.
package runninghash

import (
	"crypto/sha512"

	"StateProof/internal/streamobject"
)

// Next combines the current running hash with the next object hash:
// SHA384(prev.header || prev.hash || next.header || next.hash).
func Next(prev, next *streamobject.HashObject) []byte {
	h := sha512.New384()
	h.Write(prev.HeaderBytes())
	h.Write(prev.Hash)
	h.Write(next.HeaderBytes())
	h.Write(next.Hash)

	return h.Sum(nil)
}

// Fold applies Next over hashes, starting from start, and returns the final
// running hash as a HashObject.
func Fold(start *streamobject.HashObject, hashes ...*streamobject.HashObject) *streamobject.HashObject {
	running := start

	for _, next := range hashes {
		running = streamobject.NewHashObject(Next(running, next))
	}

	return running
}
