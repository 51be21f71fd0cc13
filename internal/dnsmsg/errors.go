package dnsmsg

import "errors"

// Sentinel errors returned by the codec. The response assembler
// (internal/resolver) drops a query whose decode fails (no response is
// sent) and answers ServFail when encoding its response fails; none of
// them ever reach the wire directly.
var (
	// ErrMessageTooShort means fewer than headerSize bytes were available.
	ErrMessageTooShort = errors.New("dnsmsg: message shorter than header")

	// ErrMalformed covers any structurally invalid field: a label length
	// byte with reserved top bits, an rdlength that runs past the message,
	// a truncated question/record.
	ErrMalformed = errors.New("dnsmsg: malformed message")

	// ErrCompressionBomb means a name's pointer chase exceeded the
	// 10-hop bound.
	ErrCompressionBomb = errors.New("dnsmsg: compression pointer chase exceeded limit")

	// ErrNameTooLong means a name has more than 255 labels, or a label
	// is empty or longer than 63 octets.
	ErrNameTooLong = errors.New("dnsmsg: name or label too long")

	// ErrTooManyRecords guards against a header count that doesn't match
	// a sane per-section bound during decode.
	ErrTooManyRecords = errors.New("dnsmsg: too many records in section")
)
