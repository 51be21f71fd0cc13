package dnsmsg

import "encoding/binary"

// Record is one resource record: owner name, type, class, TTL, and
// rdata. Grounded on original_source/src/dns/record.rs's DNSRecord.
type Record struct {
	Name  Name
	Type  RType
	Class Class
	TTL   uint32
	RData RData
}

// EncodeRecord appends rec's wire form to ctx.Buf. The owner name's
// compression eligibility, like the question name's, is governed by
// rec.Type (SupportsCompression(rec.Type)) — not a per-field flag —
// matching the single ctx.3 rtype threaded through
// original_source/src/dns/record.rs's DekuWrite impl for both the name
// and any name-shaped rdata.
//
// rdlength is computed with the standard two-pass trick: reserve 2
// bytes, encode rdata, then patch the reserved bytes with the observed
// length.
func EncodeRecord(ctx *EncodeCtx, rec Record) error {
	if err := EncodeName(ctx, rec.Name, rec.Type); err != nil {
		return err
	}
	ctx.Buf = appendUint16(ctx.Buf, uint16(rec.Type))
	ctx.Buf = appendUint16(ctx.Buf, uint16(rec.Class))
	ctx.Buf = appendUint32(ctx.Buf, rec.TTL)

	rdlenPos := len(ctx.Buf)
	ctx.Buf = appendUint16(ctx.Buf, 0)
	rdataStart := len(ctx.Buf)

	if err := rec.RData.encode(ctx, rec.Type); err != nil {
		return err
	}
	rdlen := len(ctx.Buf) - rdataStart
	binary.BigEndian.PutUint16(ctx.Buf[rdlenPos:rdlenPos+2], uint16(rdlen))
	return nil
}

// DecodeRecord parses one resource record starting at offset in msg,
// returning it and the offset of the first byte past it.
func DecodeRecord(msg []byte, offset int) (Record, int, error) {
	name, offset, err := DecodeName(msg, offset)
	if err != nil {
		return Record{}, 0, err
	}
	if offset+10 > len(msg) {
		return Record{}, 0, ErrMalformed
	}
	rtype := RType(binary.BigEndian.Uint16(msg[offset : offset+2]))
	class := Class(binary.BigEndian.Uint16(msg[offset+2 : offset+4]))
	ttl := binary.BigEndian.Uint32(msg[offset+4 : offset+8])
	rdlen := int(binary.BigEndian.Uint16(msg[offset+8 : offset+10]))
	offset += 10

	rdata, err := DecodeRData(msg, offset, rdlen, rtype)
	if err != nil {
		return Record{}, 0, err
	}
	offset += rdlen

	return Record{Name: name, Type: rtype, Class: class, TTL: ttl, RData: rdata}, offset, nil
}

func appendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
