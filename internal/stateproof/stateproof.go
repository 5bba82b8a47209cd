// Package stateproof verifies that a transaction is part of a record file
// signed by a strict majority of the network's nodes.
package stateproof

import (
	"fmt"
	"time"

	"StateProof/internal/addressbook"
	"StateProof/internal/hapi"
	"StateProof/internal/logger"
	"StateProof/internal/recordfile"
)

// SignatureFile is one node's raw signature file.
type SignatureFile struct {
	NodeID string // NodeID is the account id of the node that published the file
	Data   []byte // Data is the raw signature file
}

// Request holds the inputs of one evaluation.
type Request struct {
	RecordFile   recordfile.Source   // RecordFile is the full file or its compact form
	Signatures   []SignatureFile     // Signatures holds one file per witnessing node
	AddressBooks [][]byte            // AddressBooks are raw NodeAddressBooks, oldest first
	Key          hapi.TransactionKey // Key identifies the target transaction
}

// Result is the outcome of an evaluation that could be carried out.
type Result struct {
	Verified    bool        // Verified is set when the threshold is met
	State       State       // State is StateVerified or StateRejected
	Err         error       // Err is ErrInsufficientSignatures when rejected
	Diagnostics Diagnostics // Diagnostics is the per-node trail
}

// Handler evaluates state proofs. It is safe for concurrent use.
type Handler struct {
	opts      Options               // opts configures policy and parallelism
	books     *addressbook.Cache    // books memoizes decoded address books
	composite *recordfile.Composite // composite dispatches record file versions
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	size := opts.CacheSize
	if size == 0 {
		size = DefaultOptions().CacheSize
	}

	return &Handler{
		opts:      opts,
		books:     addressbook.NewCache(size),
		composite: recordfile.NewComposite(),
	}
}

// RunStateProof evaluates a proof over raw record file bytes with default
// options.
func RunStateProof(recordFile []byte, sigs []SignatureFile, addressBooks [][]byte, key hapi.TransactionKey) (*Result, error) {
	return NewHandler(DefaultOptions()).Run(Request{
		RecordFile:   recordfile.FromBytes(recordFile),
		Signatures:   sigs,
		AddressBooks: addressBooks,
		Key:          key,
	})
}

// Run evaluates req.
// An error means the proof could not be evaluated: an address book or the
// record file is malformed, or the transaction is not in the file. A proof
// that is evaluated but not sufficiently signed returns a Result with
// Verified false.
func (h *Handler) Run(req Request) (*Result, error) {
	start := time.Now()
	state := StateNotStarted
	logger.Debug("evaluating state proof", "tx", req.Key, "signatures", len(req.Signatures), "state", state)

	book, err := h.addressBook(req.AddressBooks)
	if err != nil {
		return nil, fmt.Errorf("address book:\n%w", err)
	}

	rf, err := h.composite.New(req.RecordFile)
	if err != nil {
		return nil, fmt.Errorf("record file:\n%w", err)
	}

	if !rf.ContainsTransaction(req.Key) {
		return nil, fmt.Errorf("%w: transaction %s is not in the record file",
			recordfile.ErrTransactionNotFound, req.Key)
	}
	state = StateRecordFileParsed
	logger.Debug("record file parsed", "version", rf.Version(), "state", state)

	diag := Diagnostics{
		RecordVersion: rf.Version(),
		SignedHash:    rf.SignedHash(),
		Policy:        h.opts.Policy.String(),
		Nodes:         h.evaluate(rf, book, req.Signatures),
	}
	diag.tally(book.NodeIDs())
	state = StateSignaturesEvaluated
	logger.Debug("signatures evaluated", "count", len(req.Signatures), "state", state)

	res := &Result{State: StateVerified, Verified: diag.met(), Diagnostics: diag}
	if !res.Verified {
		res.State = StateRejected
		res.Err = contextError(ErrInsufficientSignatures,
			"%d of %d nodes signed, need %d", diag.Valid, diag.NodeCount, diag.Threshold)
	}

	logger.Info("state proof evaluated",
		"tx", req.Key,
		"version", diag.RecordVersion,
		"valid", diag.Valid,
		"nodes", diag.NodeCount,
		"verified", res.Verified,
		logger.Timed(start),
	)

	return res, nil
}

// addressBook decodes each book and merges them under the configured policy.
func (h *Handler) addressBook(raw [][]byte) (*addressbook.AddressBook, error) {
	books := make([]*addressbook.AddressBook, 0, len(raw))

	for i, data := range raw {
		b, err := h.books.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("book %d:\n%w", i, err)
		}
		books = append(books, b)
	}

	return addressbook.Merge(books, h.opts.Policy)
}
