package recordfile

import (
	"bytes"
	"crypto/sha512"

	"StateProof/internal/hapi"
	"StateProof/internal/runninghash"
	"StateProof/internal/streamobject"
)

// chain is the state shared by the variants that fold their record stream
// objects into a running hash.
type chain struct {
	version      int32
	head         []byte
	start        *streamobject.HashObject
	end          *streamobject.HashObject
	leaves       []*streamobject.HashObject
	txs          map[hapi.TransactionKey]Transaction
	fileHash     []byte
	metadataHash []byte
	blockNumber  int64
}

// newChain indexes the objects of a full file and checks the running hash.
func newChain(version int32, head []byte, start, end *streamobject.HashObject, objects []*streamobject.RecordStreamObject) (*chain, error) {
	txs, err := index(objects, 0)
	if err != nil {
		return nil, err
	}

	leaves := make([]*streamobject.HashObject, len(objects))
	for i, o := range objects {
		leaves[i] = o.Hash()
	}

	c := &chain{
		version: version,
		head:    head,
		start:   start,
		end:     end,
		leaves:  leaves,
		txs:     txs,
	}

	if err := c.verify(leaves); err != nil {
		return nil, err
	}

	return c, nil
}

// newChainFromCompact rebuilds chain state from an inclusion proof.
// Only the target transaction is indexed; sibling leaves are kept so the
// proof can be re-emitted.
func newChainFromCompact(co *CompactObject) (*chain, error) {
	if err := co.validate(); err != nil {
		return nil, err
	}

	target, err := streamobject.ParseRecordStreamObject(co.RecordStreamObject)
	if err != nil {
		return nil, err
	}

	if target.Length() != len(co.RecordStreamObject) {
		return nil, contextError(ErrInvalidCompactObject, "compact object: trailing bytes after record stream object")
	}

	txs, err := index([]*streamobject.RecordStreamObject{target}, len(co.HashesBefore))
	if err != nil {
		return nil, err
	}

	leaves := hashObjects(co.HashesBefore)
	leaves = append(leaves, target.Hash())
	leaves = append(leaves, hashObjects(co.HashesAfter)...)

	c := &chain{
		version:     co.Version,
		head:        bytes.Clone(co.Head),
		start:       co.StartRunningHash,
		end:         co.EndRunningHash,
		leaves:      leaves,
		txs:         txs,
		fileHash:    bytes.Clone(co.FileHash),
		blockNumber: co.BlockNumber,
	}

	if err := c.verify(leaves); err != nil {
		return nil, err
	}

	return c, nil
}

// verify folds the leaves from the start hash and compares with the end hash.
func (c *chain) verify(leaves []*streamobject.HashObject) error {
	got := runninghash.Fold(c.start, leaves...)
	if !bytes.Equal(got.Hash, c.end.Hash) {
		return contextError(ErrRunningHashMismatch,
			"running hash mismatch: computed %x, file declares %x", got.Hash[:8], c.end.Hash[:8])
	}

	return nil
}

// hashMetadata digests the given parts into the chain's metadata hash.
func (c *chain) hashMetadata(parts ...[]byte) {
	h := sha512.New384()
	for _, p := range parts {
		h.Write(p)
	}

	c.metadataHash = h.Sum(nil)
}

// Version implements RecordFile.
func (c *chain) Version() int32 {
	return c.version
}

// FileHash implements RecordFile.
func (c *chain) FileHash() []byte {
	return bytes.Clone(c.fileHash)
}

// MetadataHash implements RecordFile.
func (c *chain) MetadataHash() []byte {
	return bytes.Clone(c.metadataHash)
}

// SignedHash implements RecordFile. Chained versions sign the metadata hash.
func (c *chain) SignedHash() []byte {
	return c.MetadataHash()
}

// ContainsTransaction implements RecordFile.
func (c *chain) ContainsTransaction(key hapi.TransactionKey) bool {
	_, ok := c.txs[key]
	return ok
}

// TransactionMap implements RecordFile.
func (c *chain) TransactionMap() map[hapi.TransactionKey]Transaction {
	return cloneMap(c.txs)
}

// ToCompactObject implements RecordFile.
func (c *chain) ToCompactObject(key hapi.TransactionKey) (*CompactObject, error) {
	tx, ok := c.txs[key]
	if !ok {
		return nil, contextError(ErrTransactionNotFound, "transaction %s not found", key)
	}

	return &CompactObject{
		Version:            c.version,
		Head:               bytes.Clone(c.head),
		StartRunningHash:   c.start,
		HashesBefore:       rawHashes(c.leaves[:tx.Index]),
		RecordStreamObject: streamobject.NewRecordStreamObject(tx.Record, tx.Transaction).Bytes(),
		HashesAfter:        rawHashes(c.leaves[tx.Index+1:]),
		EndRunningHash:     c.end,
		BlockNumber:        c.blockNumber,
		FileHash:           bytes.Clone(c.fileHash),
	}, nil
}

// rawHashes unwraps HashObjects into their hash values.
func rawHashes(objs []*streamobject.HashObject) [][]byte {
	out := make([][]byte, len(objs))
	for i, o := range objs {
		out[i] = bytes.Clone(o.Hash)
	}

	return out
}

