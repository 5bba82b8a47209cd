package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	"StateProof/internal/hapi"
)

// newTestArchive creates a temporary archive for testing.
func newTestArchive(t *testing.T) *Archive {
	t.Helper()

	a, err := Open(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}

	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	return a
}

// txKey returns a key for transaction id with the given nonce.
func txKey(id string, nonce int32) hapi.TransactionKey {
	return hapi.TransactionKey{ID: id, Nonce: nonce}
}

// TestPutAndGet tests storing and loading one proof.
func TestPutAndGet(t *testing.T) {
	a := newTestArchive(t)
	key := txKey("0.0.1001-1700000000-000000001", 0)

	if err := a.Put(key, []byte("envelope")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := a.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !bytes.Equal(got, []byte("envelope")) {
		t.Errorf("Get returned %q, want %q", got, "envelope")
	}
}

// TestGetMissing tests that an unknown key returns nil without error.
func TestGetMissing(t *testing.T) {
	a := newTestArchive(t)

	got, err := a.Get(txKey("0.0.1-1-000000000", 0))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got != nil {
		t.Errorf("Get returned %q, want nil", got)
	}
}

// TestOverwriteAndDelete tests replacement and removal.
func TestOverwriteAndDelete(t *testing.T) {
	a := newTestArchive(t)
	key := txKey("0.0.5-10-000000000", 1)

	for _, v := range []string{"first", "second"} {
		if err := a.Put(key, []byte(v)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	got, _ := a.Get(key)
	if string(got) != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}

	if err := a.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got, _ := a.Get(key); got != nil {
		t.Errorf("got %q after delete, want nil", got)
	}
}

// TestList tests listing by transaction id.
func TestList(t *testing.T) {
	a := newTestArchive(t)

	const id = "0.0.7-100-000000001"
	sched := hapi.TransactionKey{ID: id, Scheduled: true}

	entries := []Entry{
		{Key: txKey(id, 0), Envelope: []byte("a")},
		{Key: txKey(id, 1), Envelope: []byte("b")},
		{Key: sched, Envelope: []byte("c")},
		{Key: txKey(id+"0", 0), Envelope: []byte("d")},
		{Key: txKey("0.0.8-100-000000001", 0), Envelope: []byte("e")},
	}

	if err := a.PutBatch(entries); err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	got, err := a.List(id)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(got))
	}

	for _, e := range got {
		if e.Key.ID != id {
			t.Errorf("unexpected entry %v", e.Key)
		}
	}

	// p:<id>:0:0 < p:<id>:0:1 < p:<id>:1:0
	if !got[1].Key.Scheduled || string(got[1].Envelope) != "c" {
		t.Errorf("second entry: got %v %q, want scheduled \"c\"", got[1].Key, got[1].Envelope)
	}

	all, err := a.List("")
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}

	if len(all) != len(entries) {
		t.Errorf("List all returned %d entries, want %d", len(all), len(entries))
	}
}

// TestProofKeyRoundTrip tests key encoding in both directions.
func TestProofKeyRoundTrip(t *testing.T) {
	keys := []hapi.TransactionKey{
		txKey("0.0.1-1-000000001", 0),
		txKey("0.0.1-1-000000001", -3),
		{ID: "1.2.3-4-000000005", Nonce: 7, Scheduled: true},
	}

	for _, k := range keys {
		got, err := parseProofKey(proofKey(k))
		if err != nil {
			t.Fatalf("parse %v: %v", k, err)
		}

		if got != k {
			t.Errorf("got %v, want %v", got, k)
		}
	}

	if _, err := parseProofKey([]byte("p:nope")); err == nil {
		t.Error("expected error for malformed key")
	}
}

// TestPrefixUpperBound tests the exclusive bound of prefix scans.
func TestPrefixUpperBound(t *testing.T) {
	tests := []struct {
		prefix []byte
		want   []byte
	}{
		{[]byte("p:"), []byte("p;")},
		{[]byte{'a', 0xff}, []byte("b")},
		{[]byte{0xff, 0xff}, nil},
	}

	for _, tt := range tests {
		if got := prefixUpperBound(tt.prefix); !bytes.Equal(got, tt.want) {
			t.Errorf("prefixUpperBound(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}
