package hapi

import (
	"bytes"
	"errors"
	"testing"

	"StateProof/internal/streamobject"
)

// TestRecordIdentityRoundTrip tests identity extraction from an encoded record.
func TestRecordIdentityRoundTrip(t *testing.T) {
	want := RecordIdentity{
		ID: TransactionID{
			Payer:   AccountID{Shard: 0, Realm: 0, Num: 1001},
			Seconds: 1650000000,
			Nanos:   123,
		},
		Nonce:     2,
		Scheduled: true,
	}

	got, err := ParseRecordIdentity(EncodeRecord(want, "memo"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got != want {
		t.Errorf("identity: got %+v, want %+v", got, want)
	}

	if key := got.Key(); key.ID != "0.0.1001-1650000000-000000123" {
		t.Errorf("key id: got %s", key.ID)
	}
}

// TestRecordIdentityMissing tests a record without a transaction id.
func TestRecordIdentityMissing(t *testing.T) {
	_, err := ParseRecordIdentity(AppendBytes(nil, 5, []byte("memo only")))
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("error: got %v, want %v", err, ErrMalformedMessage)
	}
}

// TestWalkMalformed tests rejection of truncated protobuf input.
func TestWalkMalformed(t *testing.T) {
	msg := AppendBytes(nil, 1, []byte("hello"))

	err := Walk(msg[:len(msg)-2], func(Field) error { return nil })
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("error: got %v, want %v", err, ErrMalformedMessage)
	}
}

// TestParseTransactionIDString tests both accepted textual forms.
func TestParseTransactionIDString(t *testing.T) {
	want := TransactionID{Payer: AccountID{Num: 98}, Seconds: 1600000000, Nanos: 5}

	for _, s := range []string{"0.0.98-1600000000-000000005", "0.0.98@1600000000.5"} {
		got, err := ParseTransactionIDString(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}

		if got != want {
			t.Errorf("parse %q: got %+v, want %+v", s, got, want)
		}
	}

	for _, s := range []string{"", "0.0-1-2", "0.0.98-x-1", "0.0.98@1600000000"} {
		if _, err := ParseTransactionIDString(s); err == nil {
			t.Errorf("parse %q: expected error", s)
		}
	}
}

// TestHashObjectProto tests the protobuf HashObject codec.
func TestHashObjectProto(t *testing.T) {
	h := streamobject.HashOf([]byte("content"))

	got, err := ParseHashObject(EncodeHashObject(h))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !bytes.Equal(got.Bytes(), h.Bytes()) {
		t.Error("hash object mismatch")
	}

	bad := AppendInt32(nil, 1, 7)
	if _, err := ParseHashObject(bad); !errors.Is(err, streamobject.ErrUnknownDigestType) {
		t.Errorf("algorithm: got %v, want %v", err, streamobject.ErrUnknownDigestType)
	}
}

// TestSemanticVersion tests the SemanticVersion codec.
func TestSemanticVersion(t *testing.T) {
	want := SemanticVersion{Major: 0, Minor: 47, Patch: 1}

	got, err := ParseSemanticVersion(want.Encode())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got != want {
		t.Errorf("version: got %+v, want %+v", got, want)
	}
}
