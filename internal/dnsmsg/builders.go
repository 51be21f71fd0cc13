package dnsmsg

import "net"

// DefaultTTL is used by record constructors below when the caller has no
// more specific TTL in mind (the zone loader's default, spec.md §6).
const DefaultTTL = 60

// NewARecord builds an A record. ip must be a 4-byte (IPv4) address.
func NewARecord(owner Name, ip net.IP, ttl uint32) Record {
	v4 := ip.To4()
	return Record{Name: owner, Type: RTypeA, Class: ClassIN, TTL: ttl, RData: OpaqueRData(append([]byte(nil), v4...))}
}

// NewAAAARecord builds an AAAA record. ip must be a 16-byte address.
func NewAAAARecord(owner Name, ip net.IP, ttl uint32) Record {
	v6 := ip.To16()
	return Record{Name: owner, Type: RTypeAAAA, Class: ClassIN, TTL: ttl, RData: OpaqueRData(append([]byte(nil), v6...))}
}

// NewCNAMERecord builds a CNAME record pointing at target.
func NewCNAMERecord(owner Name, target Name, ttl uint32) Record {
	return Record{Name: owner, Type: RTypeCNAME, Class: ClassIN, TTL: ttl, RData: NameRData{Name: target}}
}

// NewNSRecord builds an NS delegation record.
func NewNSRecord(owner Name, target Name, ttl uint32) Record {
	return Record{Name: owner, Type: RTypeNS, Class: ClassIN, TTL: ttl, RData: NameRData{Name: target}}
}

// NewTXTRecord builds a TXT record from raw text, chunked per RFC 1035.
func NewTXTRecord(owner Name, value []byte, ttl uint32) Record {
	return Record{Name: owner, Type: RTypeTXT, Class: ClassIN, TTL: ttl, RData: NewTextRData(value)}
}
