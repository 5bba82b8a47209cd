package stateproof

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"StateProof/internal/addressbook"
	"StateProof/internal/hapi"
	"StateProof/internal/recordfile"
	"StateProof/internal/sigfile"
	"StateProof/internal/streamobject"
)

var (
	keysOnce sync.Once
	testKeys []*rsa.PrivateKey
)

// keys returns five shared RSA keys: four network nodes and one stranger.
func keys(t *testing.T) []*rsa.PrivateKey {
	t.Helper()

	keysOnce.Do(func() {
		for i := 0; i < 5; i++ {
			k, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				t.Fatalf("generate key: %v", err)
			}
			testKeys = append(testKeys, k)
		}
	})

	return testKeys
}

// nodeID returns the account id of test node i.
func nodeID(i int) string {
	return fmt.Sprintf("0.0.%d", 3+i)
}

// fixture is a record file with its address book and the target transaction.
type fixture struct {
	keys   []*rsa.PrivateKey
	book   []byte
	record []byte
	rf     recordfile.RecordFile
	key    hapi.TransactionKey
	other  hapi.TransactionKey
}

// items builds n record stream items.
func items(n int) ([]recordfile.Item, []hapi.TransactionKey) {
	out := make([]recordfile.Item, n)
	ks := make([]hapi.TransactionKey, n)

	for i := 0; i < n; i++ {
		id := hapi.RecordIdentity{ID: hapi.TransactionID{
			Payer:   hapi.AccountID{Num: int64(2000 + i)},
			Seconds: 1710000000 + int64(i),
			Nanos:   int32(100 * i),
		}}

		out[i] = recordfile.Item{
			Record:      hapi.EncodeRecord(id, fmt.Sprintf("tx %d", i)),
			Transaction: bytes.Repeat([]byte{0xC0 | byte(i)}, 64),
		}
		ks[i] = id.Key()
	}

	return out, ks
}

// bookFor encodes an address book of the first n test nodes.
func bookFor(t *testing.T, n int) []byte {
	t.Helper()

	k := keys(t)
	entries := make([]addressbook.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = addressbook.Entry{
			AccountID: &hapi.AccountID{Num: int64(3 + i)},
			NodeID:    int64(i),
			PublicKey: &k[i].PublicKey,
		}
	}

	data, err := addressbook.Encode(entries)
	if err != nil {
		t.Fatalf("encode address book: %v", err)
	}

	return data
}

// newFixture builds a record file of the given version with a four-node book.
func newFixture(t *testing.T, version int32) *fixture {
	t.Helper()

	its, ks := items(5)
	hv := hapi.SemanticVersion{Minor: 47}
	start := streamobject.HashOf([]byte("previous"))

	var record []byte
	switch version {
	case 2:
		record = recordfile.EncodePreV5(2, 47, make([]byte, 48), its)
	case 5:
		record = recordfile.EncodeV5(hv, start, its)
	case 6:
		record = recordfile.EncodeV6(hv, start, its, 42)
	default:
		t.Fatalf("no fixture for version %d", version)
	}

	rf, err := recordfile.Parse(record)
	if err != nil {
		t.Fatalf("parse record file: %v", err)
	}

	return &fixture{
		keys:   keys(t),
		book:   bookFor(t, 4),
		record: record,
		rf:     rf,
		key:    ks[2],
		other:  hapi.TransactionKey{ID: "0.0.9999-1-000000001"},
	}
}

// sign returns node i's signature file over the fixture's record file.
func (f *fixture) sign(t *testing.T, i int) SignatureFile {
	t.Helper()

	return SignatureFile{NodeID: nodeID(i), Data: f.signWith(t, f.keys[i])}
}

// signWith produces a signature file in the format matching the record version.
func (f *fixture) signWith(t *testing.T, k *rsa.PrivateKey) []byte {
	t.Helper()

	fileSig, err := sigfile.Sign(k, f.rf.FileHash())
	if err != nil {
		t.Fatalf("sign file hash: %v", err)
	}

	if f.rf.Version() < 5 {
		return sigfile.EncodeV2(f.rf.FileHash(), fileSig)
	}

	metaSig, err := sigfile.Sign(k, f.rf.MetadataHash())
	if err != nil {
		t.Fatalf("sign metadata hash: %v", err)
	}

	if f.rf.Version() == 5 {
		return sigfile.EncodeV5(f.rf.FileHash(), fileSig, f.rf.MetadataHash(), metaSig)
	}

	return sigfile.EncodeV6(f.rf.FileHash(), fileSig, f.rf.MetadataHash(), metaSig)
}

// signatures returns signature files of the first n nodes.
func (f *fixture) signatures(t *testing.T, n int) []SignatureFile {
	t.Helper()

	sigs := make([]SignatureFile, n)
	for i := range sigs {
		sigs[i] = f.sign(t, i)
	}

	return sigs
}

// TestRunStateProofVerified tests a majority-signed proof across record versions.
func TestRunStateProofVerified(t *testing.T) {
	for _, version := range []int32{2, 5, 6} {
		t.Run(fmt.Sprintf("v%d", version), func(t *testing.T) {
			f := newFixture(t, version)

			res, err := RunStateProof(f.record, f.signatures(t, 3), [][]byte{f.book}, f.key)
			if err != nil {
				t.Fatalf("run: %v", err)
			}

			if !res.Verified || res.State != StateVerified {
				t.Fatalf("got verified=%t state=%s, want verified\n%s", res.Verified, res.State, res.Diagnostics.String())
			}

			d := res.Diagnostics
			if d.Valid != 3 || d.Threshold != 3 || d.NodeCount != 4 || d.Missing != 1 {
				t.Errorf("counts: valid %d threshold %d nodes %d missing %d", d.Valid, d.Threshold, d.NodeCount, d.Missing)
			}

			if d.RecordVersion != version {
				t.Errorf("version: got %d, want %d", d.RecordVersion, version)
			}
		})
	}
}

// TestRunStateProofTransactionNotFound tests that an absent transaction is an
// error rather than an unverified result.
func TestRunStateProofTransactionNotFound(t *testing.T) {
	f := newFixture(t, 6)

	res, err := RunStateProof(f.record, f.signatures(t, 4), [][]byte{f.book}, f.other)
	if !errors.Is(err, recordfile.ErrTransactionNotFound) {
		t.Fatalf("got %v, want ErrTransactionNotFound", err)
	}

	if res != nil {
		t.Error("expected no result")
	}
}

// TestRunStateProofMinority tests that half of the nodes is not enough.
func TestRunStateProofMinority(t *testing.T) {
	f := newFixture(t, 6)

	res, err := RunStateProof(f.record, f.signatures(t, 2), [][]byte{f.book}, f.key)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Verified || res.State != StateRejected {
		t.Fatalf("got verified=%t state=%s, want rejected", res.Verified, res.State)
	}

	if !errors.Is(res.Err, ErrInsufficientSignatures) {
		t.Errorf("err: got %v, want ErrInsufficientSignatures", res.Err)
	}

	if res.Diagnostics.Missing != 2 {
		t.Errorf("missing: got %d, want 2", res.Diagnostics.Missing)
	}
}

// TestRunStateProofFatal tests that malformed mandatory inputs abort.
func TestRunStateProofFatal(t *testing.T) {
	f := newFixture(t, 6)
	sigs := f.signatures(t, 3)

	tests := []struct {
		name   string
		record []byte
		books  [][]byte
		want   error
	}{
		{"bad book", f.record, [][]byte{{0xff, 0xff}}, addressbook.ErrInvalidAddressBook},
		{"no book", f.record, nil, addressbook.ErrInvalidAddressBook},
		{"bad version", []byte{0, 0, 0, 9, 1, 2, 3, 4}, [][]byte{f.book}, recordfile.ErrUnsupportedRecordFileVersion},
		{"truncated", f.record[:len(f.record)/2], [][]byte{f.book}, recordfile.ErrMalformedRecordFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunStateProof(tt.record, sigs, tt.books, f.key)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

// TestErrorShape tests that every package reports its kinds through the same
// ContextError type, so one errors.As target covers the whole pipeline.
func TestErrorShape(t *testing.T) {
	f := newFixture(t, 6)

	res, err := RunStateProof(f.record, f.signatures(t, 2), [][]byte{f.book}, f.key)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	_, recordErr := recordfile.Parse([]byte{0, 0, 0, 9, 1, 2, 3, 4})
	_, sigErr := sigfile.Parse([]byte{0x7f})

	tests := []struct {
		name string
		err  error
		kind streamobject.ErrorKind
	}{
		{"stateproof", res.Err, ErrInsufficientSignatures},
		{"recordfile", recordErr, recordfile.ErrUnsupportedRecordFileVersion},
		{"sigfile", sigErr, sigfile.ErrInvalidSignatureFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ce streamobject.ContextError
			if !errors.As(tt.err, &ce) {
				t.Fatalf("error %v (%T) is not a ContextError", tt.err, tt.err)
			}

			if ce.Err != tt.kind {
				t.Errorf("kind: got %v, want %v", ce.Err, tt.kind)
			}
		})
	}
}

// TestOutcomes tests that per-node failures are recorded, not fatal.
func TestOutcomes(t *testing.T) {
	f := newFixture(t, 6)
	stranger := f.keys[4]

	wrongHash := streamobject.HashOf([]byte("another file")).Hash
	wrongSig, err := sigfile.Sign(f.keys[1], wrongHash)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	sigs := []SignatureFile{
		f.sign(t, 0),
		{NodeID: nodeID(1), Data: sigfile.EncodeV6(wrongHash, wrongSig, wrongHash, wrongSig)},
		{NodeID: nodeID(2), Data: f.signWith(t, stranger)},
		{NodeID: nodeID(3), Data: []byte{0x09, 0x00}},
		{NodeID: "0.0.77", Data: f.signWith(t, stranger)},
		f.sign(t, 0),
	}

	res, err := RunStateProof(f.record, sigs, [][]byte{f.book}, f.key)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []Outcome{
		OutcomeValid,
		OutcomeHashMismatch,
		OutcomeBadSignature,
		OutcomeMalformed,
		OutcomeUnknownNode,
		OutcomeValid,
	}

	for i, n := range res.Diagnostics.Nodes {
		if n.Outcome != want[i] {
			t.Errorf("node %d (%s): got %s, want %s", i, n.NodeID, n.Outcome, want[i])
		}
	}

	d := res.Diagnostics
	if d.Valid != 1 || d.Invalid != 2 || d.Unknown != 1 || d.Malformed != 1 {
		t.Errorf("counts: valid %d invalid %d unknown %d malformed %d", d.Valid, d.Invalid, d.Unknown, d.Malformed)
	}

	if res.Verified {
		t.Error("duplicate signatures from one node must count once")
	}
}

// TestCompactInput tests verification from an inclusion proof.
func TestCompactInput(t *testing.T) {
	f := newFixture(t, 5)

	co, err := f.rf.ToCompactObject(f.key)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}

	h := NewHandler(DefaultOptions())
	res, err := h.Run(Request{
		RecordFile:   recordfile.FromCompact(co),
		Signatures:   f.signatures(t, 4),
		AddressBooks: [][]byte{f.book},
		Key:          f.key,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !res.Verified {
		t.Fatalf("compact proof not verified\n%s", res.Diagnostics.String())
	}

	if res.Diagnostics.Valid != 4 {
		t.Errorf("valid: got %d, want 4", res.Diagnostics.Valid)
	}
}

// TestPolicy tests both address book combination policies.
func TestPolicy(t *testing.T) {
	f := newFixture(t, 6)
	books := [][]byte{bookFor(t, 4), bookFor(t, 2)}
	sigs := f.signatures(t, 2)

	tests := []struct {
		policy   addressbook.Policy
		nodes    int
		verified bool
	}{
		{addressbook.PolicyLatest, 2, true},
		{addressbook.PolicyUnion, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Policy = tt.policy

			res, err := NewHandler(opts).Run(Request{
				RecordFile:   recordfile.FromBytes(f.record),
				Signatures:   sigs,
				AddressBooks: books,
				Key:          f.key,
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}

			if res.Diagnostics.NodeCount != tt.nodes {
				t.Errorf("nodes: got %d, want %d", res.Diagnostics.NodeCount, tt.nodes)
			}

			if res.Verified != tt.verified {
				t.Errorf("verified: got %t, want %t", res.Verified, tt.verified)
			}
		})
	}
}

// TestWorkersDeterministic tests that parallelism does not change the trail.
func TestWorkersDeterministic(t *testing.T) {
	f := newFixture(t, 6)
	sigs := append(f.signatures(t, 4), SignatureFile{NodeID: "0.0.77", Data: []byte{0x06}})

	var trails [][]NodeResult
	for _, workers := range []int{1, 3, 16} {
		opts := DefaultOptions()
		opts.Workers = workers

		res, err := NewHandler(opts).Run(Request{
			RecordFile:   recordfile.FromBytes(f.record),
			Signatures:   sigs,
			AddressBooks: [][]byte{f.book},
			Key:          f.key,
		})
		if err != nil {
			t.Fatalf("run with %d workers: %v", workers, err)
		}

		trails = append(trails, res.Diagnostics.Nodes)
	}

	for i := 1; i < len(trails); i++ {
		if !reflect.DeepEqual(trails[0], trails[i]) {
			t.Errorf("trail %d differs from trail 0", i)
		}
	}
}

// TestDiagnosticsString tests the rendered trail.
func TestDiagnosticsString(t *testing.T) {
	f := newFixture(t, 6)

	res, err := RunStateProof(f.record, f.signatures(t, 3), [][]byte{f.book}, f.key)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	out := res.Diagnostics.String()
	for _, want := range []string{"record file v6", "threshold 3", "valid 3", nodeID(0) + " valid"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}
