package stateproof

import "fmt"

// State is a step of a state proof evaluation. States only move forward.
type State int

const (
	StateNotStarted State = iota
	StateRecordFileParsed
	StateSignaturesEvaluated
	StateVerified
	StateRejected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRecordFileParsed:
		return "record-file-parsed"
	case StateSignaturesEvaluated:
		return "signatures-evaluated"
	case StateVerified:
		return "verified"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the verdict on one node's signature file.
type Outcome string

const (
	// OutcomeValid is a signature that verifies over the record file's signed hash.
	OutcomeValid Outcome = "valid"

	// OutcomeBadSignature is a signature that does not verify under the node's key.
	OutcomeBadSignature Outcome = "bad-signature"

	// OutcomeHashMismatch is a signature file whose declared hash is not the
	// record file's signed hash.
	OutcomeHashMismatch Outcome = "hash-mismatch"

	// OutcomeUnknownNode is a signature from a node absent from the address book.
	OutcomeUnknownNode Outcome = "unknown-node"

	// OutcomeMalformed is a signature file that cannot be decoded.
	OutcomeMalformed Outcome = "malformed"
)
