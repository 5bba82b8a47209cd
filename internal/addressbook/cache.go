package addressbook

import (
	"github.com/decred/dcrd/container/lru"
	"github.com/zeebo/blake3"
)

// Cache memoizes decoded address books by the BLAKE3 digest of their bytes.
// The same historical book is typically supplied with every verification.
type Cache struct {
	books *lru.Map[[32]byte, *AddressBook] // books holds decoded books by content digest
}

// NewCache creates a cache holding up to limit books.
func NewCache(limit uint32) *Cache {
	return &Cache{books: lru.NewMap[[32]byte, *AddressBook](limit)}
}

// Parse returns the decoded book for data, decoding on a miss.
// Decode failures are not cached.
func (c *Cache) Parse(data []byte) (*AddressBook, error) {
	key := blake3.Sum256(data)

	if b, ok := c.books.Get(key); ok {
		return b, nil
	}

	b, err := Parse(data)
	if err != nil {
		return nil, err
	}

	c.books.Put(key, b)

	return b, nil
}

// Len returns the number of cached books.
func (c *Cache) Len() uint32 {
	return c.books.Len()
}
