package dnsmsg

// RType is a DNS record type, extended beyond the original source's
// {A, NS, CNAME, OPT, AAAA, TXT} with the additional types named in
// SPEC_FULL.md's data model (DS, HTTPS, CAA) plus a catch-all Unknown
// bucket for anything else seen on the wire.
type RType uint16

const (
	RTypeA     RType = 1
	RTypeNS    RType = 2
	RTypeCNAME RType = 5
	RTypeTXT   RType = 16
	RTypeAAAA  RType = 28
	RTypeOPT   RType = 41
	RTypeDS    RType = 43
	RTypeCAA   RType = 257
	RTypeHTTPS RType = 65
)

// Class is a DNS record class. Only IN is ever produced by this server.
type Class uint16

const ClassIN Class = 1

// SupportsCompression reports whether names of this record type are
// eligible for compression-pointer emission. Only CNAME and NS qualify,
// matching original_source/src/dns/rtypes.rs exactly; every other rtype
// writes its names literally. The encoder applies the same rule, keyed
// by the record's (or question's) type, to owner and question names as
// well as to rdata names.
func SupportsCompression(rtype RType) bool {
	switch rtype {
	case RTypeCNAME, RTypeNS:
		return true
	default:
		return false
	}
}

func (t RType) String() string {
	switch t {
	case RTypeA:
		return "A"
	case RTypeNS:
		return "NS"
	case RTypeCNAME:
		return "CNAME"
	case RTypeTXT:
		return "TXT"
	case RTypeAAAA:
		return "AAAA"
	case RTypeOPT:
		return "OPT"
	case RTypeDS:
		return "DS"
	case RTypeCAA:
		return "CAA"
	case RTypeHTTPS:
		return "HTTPS"
	default:
		return "UNKNOWN"
	}
}

// KnownRType reports whether rtype is one this server recognizes on the
// wire, per spec.md §4.7 step 2: an Unknown(_) qtype must short-circuit
// straight to NotImplemented before any resolver runs. This mirrors the
// same set RTypeFromString accepts, including OPT (recognized
// syntactically even though this server never acts on its EDNS(0)
// fields).
func KnownRType(rtype RType) bool {
	switch rtype {
	case RTypeA, RTypeNS, RTypeCNAME, RTypeTXT, RTypeAAAA, RTypeOPT, RTypeDS, RTypeCAA, RTypeHTTPS:
		return true
	default:
		return false
	}
}

// RTypeFromString parses the record-type column of a flat-text zone line.
func RTypeFromString(s string) (RType, bool) {
	switch s {
	case "A":
		return RTypeA, true
	case "NS":
		return RTypeNS, true
	case "CNAME":
		return RTypeCNAME, true
	case "TXT":
		return RTypeTXT, true
	case "AAAA":
		return RTypeAAAA, true
	case "OPT":
		return RTypeOPT, true
	case "DS":
		return RTypeDS, true
	case "CAA":
		return RTypeCAA, true
	case "HTTPS":
		return RTypeHTTPS, true
	default:
		return 0, false
	}
}

// Rcode mirrors original_source/src/dns/header.rs's Rcode enum. Values
// 0-7 match the IANA assignments; NotAuth and NotZone are 8 and 9 here,
// whereas IANA assigns 8 to NXRRSet and 9/10 to NotAuth/NotZone.
type Rcode uint8

const (
	RcodeNoError        Rcode = 0
	RcodeFormatError    Rcode = 1
	RcodeServerFailure  Rcode = 2
	RcodeNameError      Rcode = 3 // NXDOMAIN
	RcodeNotImplemented Rcode = 4
	RcodeRefused        Rcode = 5
	RcodeYXDomain       Rcode = 6
	RcodeYXRRSet        Rcode = 7
	RcodeNotAuth        Rcode = 8
	RcodeNotZone        Rcode = 9
)
