package sigfile

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
)

// Verify checks a SHA384withRSA signature over a hash value. The signed
// message is the raw hash bytes, which are digested again before the
// PKCS #1 v1.5 check.
func Verify(pub *rsa.PublicKey, hash, sig []byte) error {
	digest := sha512.Sum384(hash)

	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA384, digest[:], sig); err != nil {
		return contextError(ErrSignatureVerificationFailure, "signature does not verify: %v", err)
	}

	return nil
}

// Sign produces the SHA384withRSA signature a node would publish for hash.
func Sign(priv *rsa.PrivateKey, hash []byte) ([]byte, error) {
	digest := sha512.Sum384(hash)

	return rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA384, digest[:])
}
