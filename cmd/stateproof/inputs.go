package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"StateProof/internal/stateproof"
)

// sigSuffixes are the extensions of signature files.
var sigSuffixes = []string{".rcd_sig", "_sig"}

// readRecord reads the -record file.
func readRecord(c *Config) ([]byte, error) {
	if c.RecordPath == "" {
		return nil, fmt.Errorf("-record is required")
	}

	data, err := os.ReadFile(c.RecordPath)
	if err != nil {
		return nil, fmt.Errorf("read record file:\n%w", err)
	}

	return data, nil
}

// readAddressBooks reads every -addressbook file in order.
func readAddressBooks(c *Config) ([][]byte, error) {
	if len(c.AddressBooks) == 0 {
		return nil, fmt.Errorf("at least one -addressbook is required")
	}

	books := make([][]byte, len(c.AddressBooks))
	for i, path := range c.AddressBooks {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read address book:\n%w", err)
		}
		books[i] = data
	}

	return books, nil
}

// readSignatures loads the signature files under -sigs, sorted by path.
func readSignatures(c *Config) ([]stateproof.SignatureFile, error) {
	if c.SigsDir == "" {
		return nil, fmt.Errorf("-sigs is required")
	}

	var paths []string

	err := filepath.WalkDir(c.SigsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && sigNodeID(c.SigsDir, path) != "" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan signatures:\n%w", err)
	}

	sort.Strings(paths)

	sigs := make([]stateproof.SignatureFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read signature file:\n%w", err)
		}
		sigs = append(sigs, stateproof.SignatureFile{NodeID: sigNodeID(c.SigsDir, path), Data: data})
	}

	if len(sigs) == 0 {
		return nil, fmt.Errorf("no signature files in %s", c.SigsDir)
	}

	return sigs, nil
}

// sigNodeID derives the node id of a signature file: the record<nodeId>
// parent directory when there is one, else the file name without its
// extension. It returns "" for files that are not signature files.
func sigNodeID(root, path string) string {
	base := filepath.Base(path)

	var stem string
	for _, suffix := range sigSuffixes {
		if strings.HasSuffix(base, suffix) {
			stem = strings.TrimSuffix(base, suffix)
			break
		}
	}
	if stem == "" {
		return ""
	}

	dir := filepath.Dir(path)
	if filepath.Clean(dir) != filepath.Clean(root) {
		if parent := filepath.Base(dir); strings.HasPrefix(parent, "record") && len(parent) > len("record") {
			return strings.TrimPrefix(parent, "record")
		}
	}

	return strings.TrimSuffix(stem, ".rcd")
}
