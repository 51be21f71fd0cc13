package dnsmsg

import "bytes"

const maxCharStringLength = 255

// RData is record-specific data. This server only ever produces three
// shapes, matching original_source/src/dns/data.rs's RData enum
// (Vec/Name) plus dns/text.rs's chunked TXT encoding:
//
//   - OpaqueRData: raw bytes written as-is (A, AAAA, and any record type
//     this server only stores and replays, e.g. OPT/DS/CAA/HTTPS rdata
//     loaded verbatim from a zone file).
//   - NameRData: a domain name (CNAME target, NS target), subject to
//     compression per SupportsCompression(rtype).
//   - TextRData: a TXT value split into length-prefixed chunks of at most
//     255 bytes each (RFC 1035 character-strings), never compressed.
type RData interface {
	encode(ctx *EncodeCtx, rtype RType) error
}

// OpaqueRData is rdata copied to the wire verbatim.
type OpaqueRData []byte

func (r OpaqueRData) encode(ctx *EncodeCtx, _ RType) error {
	ctx.Buf = append(ctx.Buf, r...)
	return nil
}

// NameRData is rdata consisting of a single domain name (CNAME, NS).
type NameRData struct {
	Name Name
}

func (r NameRData) encode(ctx *EncodeCtx, rtype RType) error {
	return EncodeName(ctx, r.Name, rtype)
}

// TextRData is TXT rdata: one or more character-strings, each at most
// 255 bytes, concatenated on the wire with no separators.
type TextRData struct {
	Chunks [][]byte
}

// NewTextRData splits raw TXT content into 255-byte chunks, matching
// original_source/src/dns/text.rs's DNSText chunking (it reuses the
// DNSName label-chunking machinery at the u8::MAX boundary; this does
// the same split without routing through Name, since TXT chunks are not
// name labels and are never compressed).
func NewTextRData(value []byte) TextRData {
	if len(value) == 0 {
		return TextRData{Chunks: [][]byte{{}}}
	}
	var chunks [][]byte
	for len(value) > maxCharStringLength {
		chunks = append(chunks, value[:maxCharStringLength])
		value = value[maxCharStringLength:]
	}
	chunks = append(chunks, value)
	return TextRData{Chunks: chunks}
}

func (r TextRData) encode(ctx *EncodeCtx, _ RType) error {
	for _, c := range r.Chunks {
		if len(c) > maxCharStringLength {
			return ErrNameTooLong
		}
		ctx.Buf = append(ctx.Buf, byte(len(c)))
		ctx.Buf = append(ctx.Buf, c...)
	}
	return nil
}

// Bytes concatenates the chunks back into one value, stripping the
// length-prefix framing.
func (r TextRData) Bytes() []byte {
	var buf bytes.Buffer
	for _, c := range r.Chunks {
		buf.Write(c)
	}
	return buf.Bytes()
}

// DecodeRData interprets the rdlen bytes of rdata starting at offset in
// msg according to rtype. Name-valued rdata is decoded against the full
// message (not just the rdata slice) since it may carry a compression
// pointer back into earlier message content.
func DecodeRData(msg []byte, offset, rdlen int, rtype RType) (RData, error) {
	if offset+rdlen > len(msg) {
		return nil, ErrMalformed
	}
	raw := msg[offset : offset+rdlen]

	switch rtype {
	case RTypeCNAME, RTypeNS:
		name, _, err := DecodeName(msg, offset)
		if err != nil {
			return nil, err
		}
		return NameRData{Name: name}, nil

	case RTypeTXT:
		var chunks [][]byte
		pos := 0
		for pos < len(raw) {
			l := int(raw[pos])
			pos++
			if pos+l > len(raw) {
				return nil, ErrMalformed
			}
			chunks = append(chunks, raw[pos:pos+l])
			pos += l
		}
		if len(chunks) == 0 {
			chunks = [][]byte{{}}
		}
		return TextRData{Chunks: chunks}, nil

	default:
		cp := make([]byte, len(raw))
		copy(cp, raw)
		return OpaqueRData(cp), nil
	}
}
