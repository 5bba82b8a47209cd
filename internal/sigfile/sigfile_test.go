package sigfile

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"

	"StateProof/internal/streamobject"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

// key returns a shared RSA key for the package tests.
func key(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		testKey = k
	})

	return testKey
}

// TestSignVerify tests SHA384withRSA signing and verification.
func TestSignVerify(t *testing.T) {
	k := key(t)
	hash := streamobject.HashOf([]byte("record file")).Hash

	sig, err := Sign(k, hash)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := Verify(&k.PublicKey, hash, sig); err != nil {
		t.Errorf("valid signature should verify: %v", err)
	}

	other := streamobject.HashOf([]byte("other")).Hash
	if err := Verify(&k.PublicKey, other, sig); !errors.Is(err, ErrSignatureVerificationFailure) {
		t.Errorf("wrong hash: got %v, want %v", err, ErrSignatureVerificationFailure)
	}
}

// TestParseFormats tests decoding of each signature file format.
func TestParseFormats(t *testing.T) {
	fileHash := streamobject.HashOf([]byte("file")).Hash
	metaHash := streamobject.HashOf([]byte("meta")).Hash
	fileSig := bytes.Repeat([]byte{0x11}, 256)
	metaSig := bytes.Repeat([]byte{0x22}, 256)

	tests := []struct {
		name   string
		data   []byte
		format int
	}{
		{"v2", EncodeV2(fileHash, fileSig), 2},
		{"v5", EncodeV5(fileHash, fileSig, metaHash, metaSig), 5},
		{"v6", EncodeV6(fileHash, fileSig, metaHash, metaSig), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.data)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			if f.Format != tt.format {
				t.Errorf("format: got %d, want %d", f.Format, tt.format)
			}

			if !bytes.Equal(f.FileHash.Hash, fileHash) || !bytes.Equal(f.FileSignature.Signature, fileSig) {
				t.Error("file hash/signature mismatch")
			}

			hash, sig := f.Signed(5)
			if tt.format == 2 {
				if hash != f.FileHash {
					t.Error("format 2 should fall back to the file signature")
				}
				return
			}

			if !bytes.Equal(hash.Hash, metaHash) || !bytes.Equal(sig.Signature, metaSig) {
				t.Error("metadata hash/signature mismatch")
			}

			if h, _ := f.Signed(2); h != f.FileHash {
				t.Error("pre-v5 records should select the file signature")
			}
		})
	}
}

// TestParseInvalid tests rejection of malformed signature files.
func TestParseInvalid(t *testing.T) {
	hash := streamobject.HashOf([]byte("file")).Hash
	sig := bytes.Repeat([]byte{0x11}, 256)

	v5 := EncodeV5(hash, sig, hash, sig)
	corrupt := bytes.Clone(v5)
	// First signature object checksum: marker + version + hash object + 20.
	corrupt[1+4+68+20] ^= 0x01

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, streamobject.ErrTruncatedInput},
		{"marker", []byte{0x09, 1, 2}, ErrInvalidSignatureFile},
		{"v2 truncated", EncodeV2(hash, sig)[:100], streamobject.ErrTruncatedInput},
		{"v2 trailing", append(EncodeV2(hash, sig), 0), ErrInvalidSignatureFile},
		{"v5 truncated", v5[:len(v5)-5], streamobject.ErrTruncatedInput},
		{"v5 checksum", corrupt, streamobject.ErrChecksumMismatch},
		{"v6 missing", []byte{markerV6}, ErrInvalidSignatureFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
		})
	}
}
