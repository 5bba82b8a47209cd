package addressbook

import "fmt"

// Policy selects how several address books combine into one directory.
type Policy int

const (
	// PolicyLatest uses only the last supplied book: its node set defines
	// the threshold and its keys are authoritative.
	PolicyLatest Policy = iota

	// PolicyUnion merges all books in order. Later books replace the keys of
	// nodes they share with earlier ones, and the node set is the union.
	PolicyUnion
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyLatest:
		return "latest"
	case PolicyUnion:
		return "union"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "latest":
		return PolicyLatest, nil
	case "union":
		return PolicyUnion, nil
	default:
		return 0, fmt.Errorf("unknown address book policy %q", s)
	}
}

// Merge combines books, ordered oldest first, according to p.
func Merge(books []*AddressBook, p Policy) (*AddressBook, error) {
	if len(books) == 0 {
		return nil, invalid("no address book supplied")
	}

	switch p {
	case PolicyLatest:
		return books[len(books)-1], nil
	case PolicyUnion:
		merged := New(nil)
		for _, b := range books {
			for _, id := range b.order {
				merged.set(id, b.keys[id])
			}
		}
		return merged, nil
	default:
		return nil, fmt.Errorf("merge address books: unknown policy %d", int(p))
	}
}
