package dnsmsg

// CompressionDict is the per-message compression dictionary described in
// original_source/src/dns/compression.rs (Compressed.add/query). One
// dictionary is created per outgoing message and discarded with it; it is
// never shared across goroutines, so unlike the Rust original's
// RwLock<HashMap<...>> this needs no internal locking (spec.md §4.2).
type CompressionDict struct {
	offsets map[string]int
}

// NewCompressionDict returns an empty dictionary ready for a fresh message.
func NewCompressionDict() *CompressionDict {
	return &CompressionDict{offsets: make(map[string]int)}
}

// dictKey builds a collision-free key for a label slice: length-prefixed
// concatenation, the same shape the labels take on the wire, so two names
// whose labels happen to contain literal dots never collide the way a
// "."-joined string key would.
func dictKey(n Name) string {
	total := 0
	for _, l := range n {
		total += 1 + len(l)
	}
	buf := make([]byte, 0, total)
	for _, l := range n {
		buf = append(buf, byte(len(l)))
		buf = append(buf, l...)
	}
	return string(buf)
}

// Add records that the full name n begins at byte offset offset in the
// message being built. offset must already be adjusted for the 2-byte TCP
// length prefix by the caller (EncodeCtx.offset does this).
func (d *CompressionDict) Add(n Name, offset int) {
	d.offsets[dictKey(n)] = offset
}

// Query looks up the suffix n[start:] and returns the offset at which an
// identical full name was previously written, if any.
func (d *CompressionDict) Query(n Name, start int) (int, bool) {
	off, ok := d.offsets[dictKey(n[start:])]
	return off, ok
}

// Clear empties the dictionary in place. Used when a response must be
// fully re-serialized after truncation (spec.md §4.7.6): the compression
// state from the oversized first pass must not leak into the re-encode.
func (d *CompressionDict) Clear() {
	d.offsets = make(map[string]int)
}
