package recordfile

import "StateProof/internal/logger"

// Composite dispatches to the first variant that supports an input.
type Composite struct {
	variants []Variant
}

// NewComposite creates a dispatcher over the known variants, oldest first.
func NewComposite() *Composite {
	return &Composite{variants: []Variant{PreV5{}, V5{}, V6{}}}
}

// Supports reports whether any variant supports src.
func (c *Composite) Supports(src Source) bool {
	return c.find(src) != nil
}

// CanCompact reports whether any variant can produce a compact object for src.
func (c *Composite) CanCompact(src Source) bool {
	for _, v := range c.variants {
		if v.CanCompact(src) {
			return true
		}
	}

	return false
}

// New decodes src with the first supporting variant.
func (c *Composite) New(src Source) (RecordFile, error) {
	v := c.find(src)
	if v == nil {
		version, _ := src.Version()
		return nil, contextError(ErrUnsupportedRecordFileVersion, "unsupported record file version %d", version)
	}

	logger.Debug("decoding record file", "variant", v.Name(), "compact", src.Compact != nil)

	return v.New(src)
}

// find returns the first variant supporting src, or nil.
func (c *Composite) find(src Source) Variant {
	for _, v := range c.variants {
		if v.Supports(src) {
			return v
		}
	}

	return nil
}

// Parse decodes a full record file of any supported version.
func Parse(data []byte) (RecordFile, error) {
	return NewComposite().New(FromBytes(data))
}

// FromCompactObject rebuilds a record file from an inclusion proof.
func FromCompactObject(co *CompactObject) (RecordFile, error) {
	return NewComposite().New(FromCompact(co))
}
