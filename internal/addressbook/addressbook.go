// Package addressbook decodes node address books into the node id to public
// key directory used for signature verification.
package addressbook

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"StateProof/internal/hapi"
)

// NodeAddressBook and NodeAddress field numbers.
const (
	fieldNodeAddress protowire.Number = 1

	fieldMemo      protowire.Number = 3
	fieldPublicKey protowire.Number = 4
	fieldNodeID    protowire.Number = 5
	fieldAccountID protowire.Number = 6
)

// Node is one entry of an address book.
type Node struct {
	ID        string         // ID is the node account id, shard.realm.num
	PublicKey *rsa.PublicKey // PublicKey verifies the node's signatures
}

// AddressBook maps node ids to public keys, keeping first-seen order.
type AddressBook struct {
	order []string
	keys  map[string]*rsa.PublicKey
}

// New builds an address book from nodes. Later duplicates replace earlier keys.
func New(nodes []Node) *AddressBook {
	b := &AddressBook{keys: make(map[string]*rsa.PublicKey, len(nodes))}
	for _, n := range nodes {
		b.set(n.ID, n.PublicKey)
	}

	return b
}

// set inserts or replaces a node.
func (b *AddressBook) set(id string, key *rsa.PublicKey) {
	if _, ok := b.keys[id]; !ok {
		b.order = append(b.order, id)
	}

	b.keys[id] = key
}

// PublicKey returns the key of a node.
func (b *AddressBook) PublicKey(id string) (*rsa.PublicKey, bool) {
	k, ok := b.keys[id]
	return k, ok
}

// NodeIDs returns the node ids in first-seen order.
func (b *AddressBook) NodeIDs() []string {
	return append([]string(nil), b.order...)
}

// Len returns the number of distinct nodes.
func (b *AddressBook) Len() int {
	return len(b.order)
}

// Parse decodes a protobuf NodeAddressBook. Entries without a public key are
// skipped; a node listed more than once (one entry per endpoint in later
// schemas) keeps its last key.
func Parse(data []byte) (*AddressBook, error) {
	var nodes []Node

	err := hapi.Walk(data, func(f hapi.Field) error {
		if f.Num != fieldNodeAddress || f.Type != protowire.BytesType {
			return nil
		}

		n, ok, err := parseNode(f.Bytes)
		if err != nil {
			return err
		}

		if ok {
			nodes = append(nodes, n)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddressBook, err)
	}

	if len(nodes) == 0 {
		return nil, invalid("address book has no node with a public key")
	}

	return New(nodes), nil
}

// parseNode decodes one NodeAddress. It reports false for entries that carry
// no public key.
func parseNode(msg []byte) (Node, bool, error) {
	var (
		memo      []byte
		keyHex    string
		accountID *hapi.AccountID
	)

	err := hapi.Walk(msg, func(f hapi.Field) error {
		switch f.Num {
		case fieldMemo:
			memo = f.Bytes
		case fieldPublicKey:
			keyHex = string(f.Bytes)
		case fieldAccountID:
			a, err := hapi.ParseAccountID(f.Bytes)
			if err != nil {
				return err
			}
			accountID = &a
		}
		return nil
	})
	if err != nil {
		return Node{}, false, err
	}

	if keyHex == "" {
		return Node{}, false, nil
	}

	id, err := nodeID(accountID, memo)
	if err != nil {
		return Node{}, false, err
	}

	key, err := parsePublicKey(keyHex)
	if err != nil {
		return Node{}, false, fmt.Errorf("node %s:\n%w", id, err)
	}

	return Node{ID: id, PublicKey: key}, true, nil
}

// nodeID prefers the explicit account id and falls back to the memo, which
// older schemas used to carry the account id as text.
func nodeID(accountID *hapi.AccountID, memo []byte) (string, error) {
	if accountID != nil && *accountID != (hapi.AccountID{}) {
		return accountID.String(), nil
	}

	if !utf8.Valid(memo) {
		return "", invalid("node memo is not valid UTF-8")
	}

	id := strings.TrimSpace(string(memo))
	if id == "" {
		return "", invalid("node has neither an account id nor a memo")
	}

	return id, nil
}

// parsePublicKey decodes a hex DER SubjectPublicKeyInfo holding an RSA key.
func parsePublicKey(keyHex string) (*rsa.PublicKey, error) {
	der, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(keyHex), "0x"))
	if err != nil {
		return nil, invalid("public key is not hex: %v", err)
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, invalid("public key is not a DER public key: %v", err)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, invalid("public key is %T, want RSA", pub)
	}

	return rsaKey, nil
}

// Entry is one node handed to Encode.
type Entry struct {
	AccountID *hapi.AccountID // AccountID is written to nodeAccountId when set
	Memo      string          // Memo is written to the memo field when set
	NodeID    int64           // NodeID is the numeric node id
	PublicKey *rsa.PublicKey  // PublicKey is written as hex DER
}

// Encode serializes a NodeAddressBook.
func Encode(entries []Entry) ([]byte, error) {
	var book []byte

	for _, e := range entries {
		var node []byte
		node = hapi.AppendBytes(node, fieldMemo, []byte(e.Memo))

		if e.PublicKey != nil {
			der, err := x509.MarshalPKIXPublicKey(e.PublicKey)
			if err != nil {
				return nil, fmt.Errorf("marshal public key:\n%w", err)
			}
			node = hapi.AppendBytes(node, fieldPublicKey, []byte(hex.EncodeToString(der)))
		}

		node = hapi.AppendVarint(node, fieldNodeID, uint64(e.NodeID))

		if e.AccountID != nil {
			node = hapi.AppendMessage(node, fieldAccountID, e.AccountID.Encode())
		}

		book = hapi.AppendMessage(book, fieldNodeAddress, node)
	}

	return book, nil
}
