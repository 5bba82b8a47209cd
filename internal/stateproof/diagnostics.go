package stateproof

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// NodeResult is the evaluation of one signature file.
type NodeResult struct {
	NodeID  string  // NodeID is the node the signature file was attributed to
	Outcome Outcome // Outcome is the verdict
	Err     error   // Err explains any outcome other than OutcomeValid
}

// Diagnostics is the human-readable trail of a state proof evaluation.
type Diagnostics struct {
	RecordVersion int32        // RecordVersion is the decoded record file version
	SignedHash    []byte       // SignedHash is the hash the nodes are expected to sign
	Policy        string       // Policy is the address book policy in effect
	NodeCount     int          // NodeCount is the size of the effective node set
	Threshold     int          // Threshold is the number of valid nodes required
	Valid         int          // Valid counts distinct nodes with a valid signature
	Invalid       int          // Invalid counts bad signatures and hash mismatches
	Unknown       int          // Unknown counts signatures from nodes outside the node set
	Malformed     int          // Malformed counts undecodable signature files
	Missing       int          // Missing counts nodes that supplied no valid signature
	Nodes         []NodeResult // Nodes lists every signature file in input order
}

// tally fills the counters from Nodes against the effective node set.
func (d *Diagnostics) tally(nodeIDs []string) {
	valid := make(map[string]bool)

	for _, n := range d.Nodes {
		switch n.Outcome {
		case OutcomeValid:
			valid[n.NodeID] = true
		case OutcomeBadSignature, OutcomeHashMismatch:
			d.Invalid++
		case OutcomeUnknownNode:
			d.Unknown++
		case OutcomeMalformed:
			d.Malformed++
		}
	}

	d.NodeCount = len(nodeIDs)
	d.Threshold = len(nodeIDs)/2 + 1
	d.Valid = len(valid)
	d.Missing = d.NodeCount - d.Valid
}

// met reports whether a strict majority of the node set signed.
func (d *Diagnostics) met() bool {
	return d.NodeCount > 0 && d.Valid >= d.Threshold
}

// String renders the trail, one line per signature file.
func (d *Diagnostics) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "record file v%d, signed hash %s\n", d.RecordVersion, shortHex(d.SignedHash))
	fmt.Fprintf(&b, "address book policy %s, %d nodes, threshold %d\n", d.Policy, d.NodeCount, d.Threshold)
	fmt.Fprintf(&b, "valid %d, invalid %d, unknown %d, malformed %d, missing %d\n",
		d.Valid, d.Invalid, d.Unknown, d.Malformed, d.Missing)

	for _, n := range d.Nodes {
		if n.Err != nil {
			fmt.Fprintf(&b, "  %s %s: %v\n", n.NodeID, n.Outcome, n.Err)
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", n.NodeID, n.Outcome)
	}

	return b.String()
}

// shortHex returns the first 8 bytes of h in hex.
func shortHex(h []byte) string {
	if len(h) > 8 {
		return hex.EncodeToString(h[:8]) + "..."
	}

	return hex.EncodeToString(h)
}
