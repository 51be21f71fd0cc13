package dnsmsg

import "encoding/binary"

const headerSize = 12

// Header is the 12-byte DNS message header (RFC 1035 §4.1.1), bit-packed
// exactly as described in spec.md's data model and
// original_source/src/dns/header.rs's DNSHeader.
type Header struct {
	ID      uint16
	QR      bool
	Opcode  uint8 // 4 bits
	AA      bool
	TC      bool
	RD      bool
	RA      bool
	Z       uint8 // 3 bits, always 0 on output
	Rcode   Rcode // 4 bits

	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// ResponseHeader builds the header this server always sends: QR=1 (it is
// a response), Opcode=0 (standard query), AA=1 (authoritative), every
// other flag clear, matching original_source/src/dns/header.rs's
// response_header().
func ResponseHeader(id uint16) Header {
	return Header{ID: id, QR: true, AA: true}
}

// Encode appends the 12-byte wire form of h to buf and returns the
// extended slice.
func (h Header) Encode(buf []byte) []byte {
	var flags uint16
	if h.QR {
		flags |= 1 << 15
	}
	flags |= uint16(h.Opcode&0x0F) << 11
	if h.AA {
		flags |= 1 << 10
	}
	if h.TC {
		flags |= 1 << 9
	}
	if h.RD {
		flags |= 1 << 8
	}
	if h.RA {
		flags |= 1 << 7
	}
	flags |= uint16(h.Z&0x07) << 4
	flags |= uint16(h.Rcode) & 0x0F

	var tmp [headerSize]byte
	binary.BigEndian.PutUint16(tmp[0:2], h.ID)
	binary.BigEndian.PutUint16(tmp[2:4], flags)
	binary.BigEndian.PutUint16(tmp[4:6], h.QDCount)
	binary.BigEndian.PutUint16(tmp[6:8], h.ANCount)
	binary.BigEndian.PutUint16(tmp[8:10], h.NSCount)
	binary.BigEndian.PutUint16(tmp[10:12], h.ARCount)
	return append(buf, tmp[:]...)
}

// DecodeHeader parses the first 12 bytes of msg.
func DecodeHeader(msg []byte) (Header, error) {
	if len(msg) < headerSize {
		return Header{}, ErrMessageTooShort
	}
	flags := binary.BigEndian.Uint16(msg[2:4])
	h := Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		QR:      flags&(1<<15) != 0,
		Opcode:  uint8(flags>>11) & 0x0F,
		AA:      flags&(1<<10) != 0,
		TC:      flags&(1<<9) != 0,
		RD:      flags&(1<<8) != 0,
		RA:      flags&(1<<7) != 0,
		Z:       uint8(flags>>4) & 0x07,
		Rcode:   Rcode(flags & 0x0F),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}
	return h, nil
}

// messageLenOffset is the number of leading bytes that precede the DNS
// message proper and are therefore excluded from name-compression offset
// arithmetic: 2 for TCP's length prefix, 0 for UDP. Grounded on
// original_source/src/dns/header.rs's message_len_offset().
func messageLenOffset(tcp bool) int {
	if tcp {
		return 2
	}
	return 0
}

// MessageLenOffset exposes messageLenOffset for callers (internal/resolver)
// that need to compute a message's true length excluding any TCP prefix.
func MessageLenOffset(tcp bool) int {
	return messageLenOffset(tcp)
}

const maxUDPPayload = 512

// UpdateFromTotalLen applies spec.md §4.7.6's truncation/length-fixup
// rule given the total encoded length (excluding any TCP length prefix)
// of a just-serialized response. It returns whether the header's TC bit or
// the framing length changed, in which case the caller must take the
// action spec.md describes (TCP: patch the 2-byte prefix in place and,
// if the header changed otherwise, re-splice it; UDP: if TC was just
// set, clear the compression dictionary, zero the answer/authority/
// additional counts, and fully re-serialize).
//
// Grounded verbatim on original_source/src/dns/header.rs's
// update_from_total_msg_len.
func (h *Header) UpdateFromTotalLen(totalMsgLen int, tcp bool) (changed bool) {
	if !tcp && totalMsgLen > maxUDPPayload && !h.TC {
		h.TC = true
		changed = true
	}
	if tcp {
		changed = true
	}
	return changed
}
