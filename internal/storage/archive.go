// Package storage keeps encoded proof envelopes in a Pebble database, keyed
// by the identity of the transaction they prove.
package storage

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"StateProof/internal/hapi"
)

const (
	// defaultSyncInterval is the default interval between WAL syncs.
	defaultSyncInterval = 100 * time.Millisecond
)

// prefixProof prefixes every proof key: p:<transactionId>:<nonce>:<scheduled>.
var prefixProof = []byte("p:")

// Entry is one archived proof.
type Entry struct {
	Key      hapi.TransactionKey // Key identifies the proven transaction
	Envelope []byte              // Envelope is the encoded proof
}

// Archive stores proof envelopes backed by Pebble.
// Writes are non-blocking (NoSync) and a background goroutine
// periodically syncs the WAL to disk for durability.
type Archive struct {
	db       *pebble.DB    // db is the underlying Pebble database
	stopSync chan struct{} // stopSync signals the sync goroutine to stop
	wg       sync.WaitGroup
}

// Open opens or creates an archive at path.
// It starts a background goroutine that syncs the WAL periodically.
func Open(path string) (*Archive, error) {
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(8 << 20), // 8 MB cache
		MemTableSize:                4 << 20,                  // 4 MB memtable
		MemTableStopWritesThreshold: 2,
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s:\n%w", path, err)
	}

	a := &Archive{
		db:       db,
		stopSync: make(chan struct{}),
	}

	a.startSyncLoop()

	return a, nil
}

// Put stores the envelope for key, replacing any previous one.
func (a *Archive) Put(key hapi.TransactionKey, envelope []byte) error {
	return a.db.Set(proofKey(key), envelope, pebble.NoSync)
}

// PutBatch atomically stores several proofs.
// Either all entries are written or none.
func (a *Archive) PutBatch(entries []Entry) error {
	batch := a.db.NewBatch()
	defer batch.Close()

	for _, e := range entries {
		if err := batch.Set(proofKey(e.Key), e.Envelope, nil); err != nil {
			return err
		}
	}

	return batch.Commit(pebble.NoSync)
}

// Get returns the envelope stored for key.
// Returns nil if there is none.
func (a *Archive) Get(key hapi.TransactionKey) ([]byte, error) {
	value, closer, err := a.db.Get(proofKey(key))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// Copy the value since it's invalid after closer.Close()
	result := make([]byte, len(value))
	copy(result, value)

	return result, nil
}

// Delete removes the proof stored for key.
func (a *Archive) Delete(key hapi.TransactionKey) error {
	return a.db.Delete(proofKey(key), pebble.NoSync)
}

// List returns the proofs of one transaction id (every nonce and schedule
// flag), or of all transactions when txID is empty. Entries are in key order.
func (a *Archive) List(txID string) ([]Entry, error) {
	prefix := prefixProof
	if txID != "" {
		prefix = append(append([]byte(nil), prefixProof...), txID+":"...)
	}

	var entries []Entry

	err := a.iteratePrefix(prefix, func(key, value []byte) error {
		k, err := parseProofKey(key)
		if err != nil {
			return err
		}

		entries = append(entries, Entry{Key: k, Envelope: bytes.Clone(value)})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list proofs:\n%w", err)
	}

	return entries, nil
}

// iteratePrefix calls fn for each key-value pair with the given prefix.
// Uses Pebble's iterator bounds for efficient prefix scanning.
func (a *Archive) iteratePrefix(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		value, err := iter.ValueAndErr()
		if err != nil {
			return err
		}

		if err := fn(iter.Key(), value); err != nil {
			return err
		}
	}

	return iter.Error()
}

// proofKey builds the storage key of a transaction.
func proofKey(k hapi.TransactionKey) []byte {
	sched := "0"
	if k.Scheduled {
		sched = "1"
	}

	key := append([]byte(nil), prefixProof...)
	return fmt.Appendf(key, "%s:%d:%s", k.ID, k.Nonce, sched)
}

// parseProofKey reverses proofKey.
func parseProofKey(key []byte) (hapi.TransactionKey, error) {
	parts := strings.Split(string(bytes.TrimPrefix(key, prefixProof)), ":")
	if len(parts) != 3 {
		return hapi.TransactionKey{}, fmt.Errorf("malformed proof key %q", key)
	}

	nonce, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return hapi.TransactionKey{}, fmt.Errorf("proof key %q nonce:\n%w", key, err)
	}

	return hapi.TransactionKey{ID: parts[0], Nonce: int32(nonce), Scheduled: parts[2] == "1"}, nil
}

// prefixUpperBound computes the exclusive upper bound for a prefix scan.
// Increments the last byte; returns nil if prefix is all 0xFF (full range).
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)

	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}

	return nil
}

// Close stops the sync goroutine and closes the database.
// It performs a final sync before closing to ensure durability.
func (a *Archive) Close() error {
	close(a.stopSync)
	a.wg.Wait()

	if err := a.sync(); err != nil {
		return err
	}

	return a.db.Close()
}

// startSyncLoop starts the background goroutine that periodically syncs the WAL.
func (a *Archive) startSyncLoop() {
	a.wg.Add(1)

	go func() {
		defer a.wg.Done()

		ticker := time.NewTicker(defaultSyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = a.sync()
			case <-a.stopSync:
				return
			}
		}
	}()
}

// sync forces a WAL sync to disk.
func (a *Archive) sync() error {
	return a.db.LogData(nil, pebble.Sync)
}
