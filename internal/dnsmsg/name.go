package dnsmsg

import (
	"encoding/binary"
	"fmt"
)

const (
	maxLabelLength  = 63
	maxNameLength   = 255
	maxPointerHops  = 10
	pointerTagMask  = 0xC0
	pointerOffsetMaskHi = 0x3F
)

// Name is a domain name as a label vector, leftmost label first,
// matching wire order (e.g. {"www", "example", "com"}
// for www.example.com). The root name is the empty slice.
//
// Grounded on original_source/src/dns/name.rs's DNSName(Vec<String>); each
// label is kept as a raw Go string used purely as a byte container (label
// bytes are not guaranteed valid UTF-8 and must never be treated as such
// beyond this).
type Name []string

// NameFromString splits a presentation-format name ("www.example.com" or
// "www.example.com.") into labels. A bare "." or "" yields the root name.
func NameFromString(s string) Name {
	if s == "" || s == "." {
		return Name{}
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "" {
		return Name{}
	}
	var labels []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			labels = append(labels, s[start:i])
			start = i + 1
		}
	}
	return Name(labels)
}

// String renders the name in presentation format: labels joined by dots,
// with no trailing dot. The root name renders as ".".
func (n Name) String() string {
	if len(n) == 0 {
		return "."
	}
	out := n[0]
	for _, l := range n[1:] {
		out += "." + l
	}
	return out
}

// Equal reports whether two names have identical label sequences.
func (n Name) Equal(o Name) bool {
	if len(n) != len(o) {
		return false
	}
	for i := range n {
		if n[i] != o[i] {
			return false
		}
	}
	return true
}

// Relation is the result of comparing two names right-to-left (TLD first),
// per original_source/src/nameserver/records.rs and name.rs's cmp tests.
type Relation int

const (
	// Different means the two names share no common suffix at all (or
	// share one but diverge before either is exhausted).
	Different Relation = iota
	// Equal means identical label sequences.
	Equal
	// Subdomain means the receiver is a proper suffix of the argument:
	// fewer labels, but every one of them matches the argument's tail.
	Subdomain
	// Superdomain is the converse of Subdomain.
	Superdomain
)

// Cmp classifies the relationship of a to b by comparing labels from the
// end of each slice backwards (the TLD first), matching
// original_source/src/dns/name.rs's NameCmp.
func Cmp(a, b Name) Relation {
	la, lb := len(a), len(b)
	n := la
	if lb < n {
		n = lb
	}
	i := 0
	for i < n && a[la-1-i] == b[lb-1-i] {
		i++
	}
	if i < n {
		return Different
	}
	switch {
	case la == lb:
		return Equal
	case la < lb:
		return Subdomain
	default:
		return Superdomain
	}
}

// EncodeCtx carries the state threaded through a single message's
// encoding pass: the output buffer, the compression dictionary, and
// whether the buffer is prefixed with the 2-byte TCP length field (which
// shifts every pointer offset by 2, per original_source/src/dns/header.rs's
// message_len_offset and compression.rs's Compressed.add).
type EncodeCtx struct {
	Buf                []byte
	Dict                *CompressionDict
	TCP                 bool
	CompressionDisabled bool
}

func (c *EncodeCtx) offset() int {
	o := len(c.Buf)
	if c.TCP {
		o -= 2
	}
	return o
}

// EncodeName writes n to the context's buffer, using rtype to decide
// compression eligibility, per spec.md §4.1:
//
//  1. For each label index i, if compression is enabled for rtype and the
//     suffix n[i:] is already in the dictionary, emit a 2-byte pointer to
//     its offset and stop.
//  2. Otherwise emit the label as a length-prefixed literal and continue.
//  3. If the loop runs out without emitting a pointer, emit a terminating
//     zero byte.
//  4. If compression is enabled for rtype and no pointer was used, record
//     the full name at the offset where this call began — matching
//     original_source/src/dns/name.rs's write(), which skips the Add call
//     entirely when a pointer ends the name early.
func EncodeName(ctx *EncodeCtx, n Name, rtype RType) error {
	if len(n) > maxNameLength {
		return ErrNameTooLong
	}
	compress := !ctx.CompressionDisabled && SupportsCompression(rtype)
	startOffset := ctx.offset()

	for i := 0; i < len(n); i++ {
		if compress {
			if off, ok := ctx.Dict.Query(n, i); ok {
				var ptr [2]byte
				binary.BigEndian.PutUint16(ptr[:], uint16(0xC000|off))
				ctx.Buf = append(ctx.Buf, ptr[:]...)
				return nil
			}
		}
		label := n[i]
		if len(label) == 0 || len(label) > maxLabelLength {
			return fmt.Errorf("%w: label %q", ErrNameTooLong, label)
		}
		ctx.Buf = append(ctx.Buf, byte(len(label)))
		ctx.Buf = append(ctx.Buf, label...)
	}
	ctx.Buf = append(ctx.Buf, 0)

	if compress {
		ctx.Dict.Add(n, startOffset)
	}
	return nil
}

// DecodeName reads a name starting at offset in msg, returning the name,
// the offset of the first byte past it in the caller's original stream
// (i.e. past the terminating zero byte or the 2-byte pointer, never past
// a jump target), and an error.
//
// Pointer chases are bounded at 10 hops (maxPointerHops) and every
// pointer target must land strictly before the offset at which this name
// started — matching original_source/src/dns/name.rs's
// pointer_chase_limit and straticus1-dnsscienced's internal/packet/
// parser.go's back-reference-only bounds check. Both properties together
// make an infinite or exponential-blowup loop impossible.
func DecodeName(msg []byte, offset int) (Name, int, error) {
	origOffset := offset
	pos := offset
	nextOffset := -1
	hops := 0
	var labels []string

	for {
		if pos >= len(msg) {
			return nil, 0, ErrMessageTooShort
		}
		lengthByte := msg[pos]
		switch lengthByte & pointerTagMask {
		case 0xC0:
			if pos+1 >= len(msg) {
				return nil, 0, ErrMalformed
			}
			if hops >= maxPointerHops {
				return nil, 0, ErrCompressionBomb
			}
			ptr := int(binary.BigEndian.Uint16(msg[pos:pos+2]) & 0x3FFF)
			if nextOffset == -1 {
				nextOffset = pos + 2
			}
			if ptr >= origOffset {
				return nil, 0, ErrMalformed
			}
			pos = ptr
			hops++

		case 0x00:
			if lengthByte == 0 {
				if nextOffset == -1 {
					nextOffset = pos + 1
				}
				n := Name(labels)
				if len(n) > maxNameLength {
					return nil, 0, ErrNameTooLong
				}
				return n, nextOffset, nil
			}
			l := int(lengthByte)
			if pos+1+l > len(msg) {
				return nil, 0, ErrMalformed
			}
			labels = append(labels, string(msg[pos+1:pos+1+l]))
			pos += 1 + l

		default:
			return nil, 0, ErrMalformed
		}
	}
}
