package dnsmsg

import "encoding/binary"

// Question is the single query entry a message carries. This server
// never answers multi-question messages (spec.md §4.6/§4.7 and every
// original_source server only ever reads question[0]).
type Question struct {
	Name  Name
	Type  RType
	Class Class
}

// Message is a full DNS message: header, one question, and three record
// sections. Grounded on original_source/src/dns/question.rs's Question
// and dns/response.rs's Response, merged into one type since this
// implementation's codec builds both queries and responses through the
// same structure.
type Message struct {
	Header     Header
	Question   Question
	Answer     []Record
	Authority  []Record
	Additional []Record
}

const maxRRCount = 4096

// Parse decodes msg (the DNS message proper — a TCP length prefix, if
// any, must already be stripped by the caller) into a Message.
func Parse(msg []byte) (*Message, error) {
	header, err := DecodeHeader(msg)
	if err != nil {
		return nil, err
	}
	if header.QDCount > 1 {
		return nil, ErrMalformed
	}

	offset := headerSize
	m := &Message{Header: header}

	if header.QDCount == 1 {
		q, next, err := decodeQuestion(msg, offset)
		if err != nil {
			return nil, err
		}
		m.Question = q
		offset = next
	}

	for _, n := range []struct {
		count uint16
		dst   *[]Record
	}{
		{header.ANCount, &m.Answer},
		{header.NSCount, &m.Authority},
		{header.ARCount, &m.Additional},
	} {
		if int(n.count) > maxRRCount {
			return nil, ErrTooManyRecords
		}
		records := make([]Record, 0, n.count)
		for i := uint16(0); i < n.count; i++ {
			rec, next, err := DecodeRecord(msg, offset)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
			offset = next
		}
		*n.dst = records
	}

	return m, nil
}

func decodeQuestion(msg []byte, offset int) (Question, int, error) {
	name, offset, err := DecodeName(msg, offset)
	if err != nil {
		return Question{}, 0, err
	}
	if offset+4 > len(msg) {
		return Question{}, 0, ErrMalformed
	}
	qtype := RType(binary.BigEndian.Uint16(msg[offset : offset+2]))
	qclass := Class(binary.BigEndian.Uint16(msg[offset+2 : offset+4]))
	return Question{Name: name, Type: qtype, Class: qclass}, offset + 4, nil
}

// Encode serializes m to wire format. When tcp is true, a 2-byte length
// prefix is written and patched with the final message length (spec.md
// §4.7.6 / original_source/src/dns/header.rs's TcpHeaderField). dict is
// the message's compression dictionary; pass a fresh one (NewCompressionDict)
// for a from-scratch encode, or a cleared one when re-serializing after
// truncation (spec.md requires a cleared dictionary on the truncated
// re-encode so stale offsets from the oversized first pass can't leak in).
func Encode(m *Message, tcp bool, dict *CompressionDict) ([]byte, error) {
	m.Header.QDCount = 0
	if m.Question.Name != nil || m.Question.Type != 0 || m.Question.Class != 0 {
		m.Header.QDCount = 1
	}
	m.Header.ANCount = uint16(len(m.Answer))
	m.Header.NSCount = uint16(len(m.Authority))
	m.Header.ARCount = uint16(len(m.Additional))

	ctx := &EncodeCtx{Dict: dict, TCP: tcp}
	if tcp {
		ctx.Buf = append(ctx.Buf, 0, 0)
	}
	ctx.Buf = m.Header.Encode(ctx.Buf)

	if m.Header.QDCount == 1 {
		if err := EncodeName(ctx, m.Question.Name, m.Question.Type); err != nil {
			return nil, err
		}
		ctx.Buf = appendUint16(ctx.Buf, uint16(m.Question.Type))
		ctx.Buf = appendUint16(ctx.Buf, uint16(m.Question.Class))
	}

	for _, section := range [][]Record{m.Answer, m.Authority, m.Additional} {
		for _, rec := range section {
			if err := EncodeRecord(ctx, rec); err != nil {
				return nil, err
			}
		}
	}

	if tcp {
		binary.BigEndian.PutUint16(ctx.Buf[0:2], uint16(len(ctx.Buf)-2))
	}
	return ctx.Buf, nil
}
