package stateproof

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"

	"StateProof/internal/addressbook"
	"StateProof/internal/logger"
	"StateProof/internal/recordfile"
	"StateProof/internal/sigfile"
)

// evaluate checks every signature file against rf in parallel. Results are
// written by input index, so the outcome does not depend on scheduling.
func (h *Handler) evaluate(rf recordfile.RecordFile, book *addressbook.AddressBook, sigs []SignatureFile) []NodeResult {
	results := make([]NodeResult, len(sigs))
	if len(sigs) == 0 {
		return results
	}

	workers := h.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(sigs) {
		workers = len(sigs)
	}

	jobs := make(chan int, len(sigs))
	for i := range sigs {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				results[i] = evaluateOne(rf, book, sigs[i])
			}
		}()
	}

	wg.Wait()

	return results
}

// evaluateOne produces the verdict for one node's signature file.
func evaluateOne(rf recordfile.RecordFile, book *addressbook.AddressBook, sig SignatureFile) NodeResult {
	res := NodeResult{NodeID: sig.NodeID}

	pub, ok := book.PublicKey(sig.NodeID)
	if !ok {
		res.Outcome = OutcomeUnknownNode
		res.Err = fmt.Errorf("node %s is not in the address book", sig.NodeID)
		return res
	}

	f, err := sigfile.Parse(sig.Data)
	if err != nil {
		res.Outcome = OutcomeMalformed
		res.Err = err
		return res
	}

	hash, signature := f.Signed(rf.Version())
	if hash == nil || signature == nil {
		res.Outcome = OutcomeMalformed
		res.Err = fmt.Errorf("signature file has no signature for version %d", rf.Version())
		return res
	}

	if !bytes.Equal(hash.Hash, rf.SignedHash()) {
		res.Outcome = OutcomeHashMismatch
		res.Err = fmt.Errorf("signed hash %s, want %s", shortHex(hash.Hash), shortHex(rf.SignedHash()))
		return res
	}

	if err := sigfile.Verify(pub, hash.Hash, signature.Signature); err != nil {
		res.Outcome = OutcomeBadSignature
		res.Err = err
		return res
	}

	res.Outcome = OutcomeValid
	logger.Debug("signature valid", "node", sig.NodeID)

	return res
}
