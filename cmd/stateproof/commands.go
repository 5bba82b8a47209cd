package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"StateProof/internal/envelope"
	"StateProof/internal/logger"
	"StateProof/internal/recordfile"
	"StateProof/internal/stateproof"
	"StateProof/internal/storage"
)

// commands maps command names to their implementation.
var commands = map[string]func(*Config) error{
	"verify":  runVerify,
	"compact": runCompact,
	"archive": runArchive,
	"show":    runShow,
}

// runVerify evaluates a proof from an envelope, the archive or raw files.
func runVerify(c *Config) error {
	opts, err := c.options()
	if err != nil {
		return err
	}

	req, err := verifyRequest(c)
	if err != nil {
		return err
	}

	res, err := stateproof.NewHandler(opts).Run(req)
	if err != nil {
		return fmt.Errorf("evaluate proof:\n%w", err)
	}

	fmt.Print(res.Diagnostics.String())
	fmt.Println(res.State)

	if !res.Verified {
		return fmt.Errorf("%w: %v", errRejected, res.Err)
	}

	return nil
}

// verifyRequest picks the proof source: -proof, then -archive without
// -record, then raw files.
func verifyRequest(c *Config) (stateproof.Request, error) {
	switch {
	case c.ProofPath != "":
		data, err := os.ReadFile(c.ProofPath)
		if err != nil {
			return stateproof.Request{}, fmt.Errorf("read proof:\n%w", err)
		}
		p, err := envelope.Decode(data)
		if err != nil {
			return stateproof.Request{}, fmt.Errorf("decode proof:\n%w", err)
		}
		return p.Request(), nil

	case c.ArchivePath != "" && c.RecordPath == "":
		p, err := loadArchived(c)
		if err != nil {
			return stateproof.Request{}, err
		}
		return p.Request(), nil

	default:
		return fileRequest(c)
	}
}

// fileRequest reads the record, signature and address book files.
func fileRequest(c *Config) (stateproof.Request, error) {
	key, err := c.transactionKey()
	if err != nil {
		return stateproof.Request{}, err
	}

	record, err := readRecord(c)
	if err != nil {
		return stateproof.Request{}, err
	}

	sigs, err := readSignatures(c)
	if err != nil {
		return stateproof.Request{}, err
	}

	books, err := readAddressBooks(c)
	if err != nil {
		return stateproof.Request{}, err
	}

	return stateproof.Request{
		RecordFile:   recordfile.FromBytes(record),
		Signatures:   sigs,
		AddressBooks: books,
		Key:          key,
	}, nil
}

// buildProof compacts the record file around the target transaction.
func buildProof(c *Config) (*envelope.Proof, error) {
	req, err := fileRequest(c)
	if err != nil {
		return nil, err
	}

	rf, err := recordfile.NewComposite().New(req.RecordFile)
	if err != nil {
		return nil, fmt.Errorf("decode record file:\n%w", err)
	}

	co, err := rf.ToCompactObject(req.Key)
	if err != nil {
		return nil, fmt.Errorf("compact record file:\n%w", err)
	}

	return &envelope.Proof{
		Key:          req.Key,
		Compact:      co,
		Signatures:   req.Signatures,
		AddressBooks: req.AddressBooks,
	}, nil
}

// runCompact writes the envelope of a transaction to -proof.
func runCompact(c *Config) error {
	if c.ProofPath == "" {
		return fmt.Errorf("-proof is required")
	}

	p, err := buildProof(c)
	if err != nil {
		return err
	}

	data, err := envelope.Encode(p)
	if err != nil {
		return fmt.Errorf("encode proof:\n%w", err)
	}

	if err := os.WriteFile(c.ProofPath, data, 0644); err != nil {
		return fmt.Errorf("write proof:\n%w", err)
	}

	logger.Info("proof written", "tx", p.Key, "path", c.ProofPath, "bytes", len(data))

	return nil
}

// runArchive stores an envelope in the archive, reading it from -proof or
// building it from raw files.
func runArchive(c *Config) error {
	if c.ArchivePath == "" {
		return fmt.Errorf("-archive is required")
	}

	var p *envelope.Proof
	var data []byte
	var err error

	if c.ProofPath != "" {
		if data, err = os.ReadFile(c.ProofPath); err != nil {
			return fmt.Errorf("read proof:\n%w", err)
		}
		if p, err = envelope.Decode(data); err != nil {
			return fmt.Errorf("decode proof:\n%w", err)
		}
	} else {
		if p, err = buildProof(c); err != nil {
			return err
		}
		if data, err = envelope.Encode(p); err != nil {
			return fmt.Errorf("encode proof:\n%w", err)
		}
	}

	a, err := storage.Open(c.ArchivePath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Put(p.Key, data); err != nil {
		return fmt.Errorf("archive proof:\n%w", err)
	}

	logger.Info("proof archived", "tx", p.Key, "archive", c.ArchivePath)

	return nil
}

// loadArchived reads the proof of the -tx key from the archive.
func loadArchived(c *Config) (*envelope.Proof, error) {
	key, err := c.transactionKey()
	if err != nil {
		return nil, err
	}

	a, err := storage.Open(c.ArchivePath)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	data, err := a.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load proof:\n%w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("no archived proof for %s", key)
	}

	p, err := envelope.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode proof:\n%w", err)
	}

	return p, nil
}

// runShow prints the version, hashes and transactions of a record file.
func runShow(c *Config) error {
	data, err := readRecord(c)
	if err != nil {
		return err
	}

	rf, err := recordfile.Parse(data)
	if err != nil {
		return fmt.Errorf("decode record file:\n%w", err)
	}

	fmt.Printf("version        %d\n", rf.Version())
	fmt.Printf("file hash      %s\n", hex.EncodeToString(rf.FileHash()))
	if h := rf.MetadataHash(); h != nil {
		fmt.Printf("metadata hash  %s\n", hex.EncodeToString(h))
	}

	type row struct {
		key string
		tx  recordfile.Transaction
	}

	var rows []row
	for k, tx := range rf.TransactionMap() {
		rows = append(rows, row{key: k.String(), tx: tx})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].tx.Index < rows[j].tx.Index })

	fmt.Printf("transactions   %d\n", len(rows))
	for _, r := range rows {
		fmt.Printf("  %4d %s\n", r.tx.Index, r.key)
	}

	return nil
}
