package addressbook

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"

	"StateProof/internal/hapi"
)

var (
	keysOnce sync.Once
	testKeys []*rsa.PrivateKey
)

// keys returns three shared RSA keys for the package tests.
func keys(t *testing.T) []*rsa.PrivateKey {
	t.Helper()

	keysOnce.Do(func() {
		for i := 0; i < 3; i++ {
			k, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				t.Fatalf("generate key: %v", err)
			}
			testKeys = append(testKeys, k)
		}
	})

	return testKeys
}

// account returns the account id 0.0.n.
func account(n int64) *hapi.AccountID {
	return &hapi.AccountID{Num: n}
}

// mustEncode encodes entries or fails the test.
func mustEncode(t *testing.T, entries []Entry) []byte {
	t.Helper()

	data, err := Encode(entries)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	return data
}

// TestParse tests decoding node ids and keys.
func TestParse(t *testing.T) {
	k := keys(t)
	data := mustEncode(t, []Entry{
		{AccountID: account(3), NodeID: 0, PublicKey: &k[0].PublicKey},
		{Memo: "0.0.4", NodeID: 1, PublicKey: &k[1].PublicKey},
		{AccountID: account(5), NodeID: 2},
	})

	book, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if book.Len() != 2 {
		t.Fatalf("len: got %d, want 2", book.Len())
	}

	ids := book.NodeIDs()
	if ids[0] != "0.0.3" || ids[1] != "0.0.4" {
		t.Errorf("node ids: got %v", ids)
	}

	pub, ok := book.PublicKey("0.0.4")
	if !ok || !pub.Equal(&k[1].PublicKey) {
		t.Error("0.0.4 key mismatch")
	}

	if _, ok := book.PublicKey("0.0.5"); ok {
		t.Error("node without key should be skipped")
	}
}

// TestParseDuplicate tests that a repeated node keeps its last key.
func TestParseDuplicate(t *testing.T) {
	k := keys(t)
	data := mustEncode(t, []Entry{
		{AccountID: account(3), PublicKey: &k[0].PublicKey},
		{AccountID: account(3), PublicKey: &k[1].PublicKey},
	})

	book, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if book.Len() != 1 {
		t.Fatalf("len: got %d, want 1", book.Len())
	}

	pub, _ := book.PublicKey("0.0.3")
	if !pub.Equal(&k[1].PublicKey) {
		t.Error("duplicate should keep the last key")
	}
}

// TestParseInvalid tests rejection of unusable books.
func TestParseInvalid(t *testing.T) {
	k := keys(t)

	badKey := hapi.AppendMessage(nil, fieldNodeAddress,
		hapi.AppendBytes(hapi.AppendBytes(nil, fieldMemo, []byte("0.0.3")), fieldPublicKey, []byte("zz")))

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xff, 0xff, 0xff}},
		{"no keys", mustEncode(t, []Entry{{AccountID: account(3)}})},
		{"bad key", badKey},
		{"no id", mustEncode(t, []Entry{{PublicKey: &k[0].PublicKey}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrInvalidAddressBook) {
				t.Fatalf("got %v, want ErrInvalidAddressBook", err)
			}
		})
	}
}

// TestMerge tests both address book policies.
func TestMerge(t *testing.T) {
	k := keys(t)
	older := New([]Node{
		{ID: "0.0.3", PublicKey: &k[0].PublicKey},
		{ID: "0.0.4", PublicKey: &k[1].PublicKey},
	})
	newer := New([]Node{
		{ID: "0.0.4", PublicKey: &k[2].PublicKey},
	})

	latest, err := Merge([]*AddressBook{older, newer}, PolicyLatest)
	if err != nil {
		t.Fatalf("merge latest: %v", err)
	}
	if latest.Len() != 1 {
		t.Errorf("latest len: got %d, want 1", latest.Len())
	}

	union, err := Merge([]*AddressBook{older, newer}, PolicyUnion)
	if err != nil {
		t.Fatalf("merge union: %v", err)
	}
	if union.Len() != 2 {
		t.Errorf("union len: got %d, want 2", union.Len())
	}

	pub, _ := union.PublicKey("0.0.4")
	if !pub.Equal(&k[2].PublicKey) {
		t.Error("union should prefer the later book")
	}

	if _, err := Merge(nil, PolicyLatest); !errors.Is(err, ErrInvalidAddressBook) {
		t.Errorf("empty merge: got %v", err)
	}
}

// TestParsePolicy tests policy name parsing.
func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{PolicyLatest, PolicyUnion} {
		got, err := ParsePolicy(p.String())
		if err != nil || got != p {
			t.Errorf("round trip %v: got %v, %v", p, got, err)
		}
	}

	if _, err := ParsePolicy("newest"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

// TestCache tests that identical bytes decode once.
func TestCache(t *testing.T) {
	k := keys(t)
	data := mustEncode(t, []Entry{{AccountID: account(3), PublicKey: &k[0].PublicKey}})

	c := NewCache(4)

	first, err := c.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	second, err := c.Parse(append([]byte(nil), data...))
	if err != nil {
		t.Fatalf("parse again: %v", err)
	}

	if first != second {
		t.Error("expected cached book")
	}

	if _, err := c.Parse([]byte{0xff}); err == nil {
		t.Error("expected error for garbage")
	}

	if c.Len() != 1 {
		t.Errorf("len: got %d, want 1", c.Len())
	}
}
