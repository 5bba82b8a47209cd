package stateproof

import "StateProof/internal/addressbook"

// Options configures a Handler.
type Options struct {
	Policy    addressbook.Policy // Policy combines several address books into one node set
	Workers   int                // Workers bounds parallel signature checks (0 = GOMAXPROCS)
	CacheSize uint32             // CacheSize is the number of decoded address books kept
}

// DefaultOptions returns the options used by RunStateProof.
func DefaultOptions() Options {
	return Options{
		Policy:    addressbook.PolicyLatest,
		Workers:   0,
		CacheSize: 16,
	}
}
