// Package zone implements the authoritative record store and matcher
// (component C7) plus its two zone-file loaders.
package zone

import "github.com/dnsscience/authdnsd/internal/dnsmsg"

// Zone is an unindexed collection of resource records, matched by linear
// scan per spec.md §4.4 — the corpus-grounded original (records.rs) is
// itself a flat Vec<DNSRecord> scanned in full on every query, and zone
// sizes in scope here (a handful to a few thousand records) never justify
// a trie.
type Zone struct {
	records []dnsmsg.Record
}

// New returns an empty zone.
func New() *Zone {
	return &Zone{}
}

// Add appends a record to the zone.
func (z *Zone) Add(r dnsmsg.Record) {
	z.records = append(z.records, r)
}

// Records returns the zone's records in insertion order.
func (z *Zone) Records() []dnsmsg.Record {
	return z.records
}

// Len reports the number of records currently held.
func (z *Zone) Len() int {
	return len(z.records)
}

// DefaultRecords returns the seed zone used when no zone file is
// configured, grounded verbatim on
// original_source/src/nameserver/default_records.rs: an apex A record, a
// delegated subtree with NS+glue, a CNAME chain, and one deliberately
// oversized TXT record (used by the truncation scenario, spec.md S7).
func DefaultRecords() *Zone {
	lines := []string{
		"henryn.xyz A 127.0.0.5",
		"a.henryn.xyz A 127.0.0.3",
		"b.henryn.xyz A 127.0.0.4",
		"www1.henryn.xyz NS ns1.henryn.xyz",
		"www2.henryn.xyz NS ns2.henryn.xyz",
		"a.www1.henryn.xyz A 127.0.0.6",
		"a.www2.henryn.xyz A 127.0.1.6",
		"b.www2.henryn.xyz CNAME c.www2.henryn.xyz",
		"c.www2.henryn.xyz CNAME httpbin.org",
		"ns1.henryn.xyz A 127.0.0.2",
		"ns2.henryn.xyz A 127.0.0.3",
		"largetext.www2.henryn.xyz CNAME b.henryn.xyz",
		"bc.www2.henryn.xyz CNAME cb.www2.henryn.xyz",
		"cb.www2.henryn.xyz CNAME c.www2.henryn.xyz",
	}

	z := New()
	for _, line := range lines {
		rec, err := ParseLine(line, dnsmsg.DefaultTTL)
		if err != nil {
			// These lines are static and covered by this package's own
			// tests; a parse failure here is a programming error, not a
			// runtime condition a caller can act on.
			panic("zone: bad built-in record: " + err.Error())
		}
		z.Add(rec)
	}

	// One oversized TXT record at the same owner the original uses, big
	// enough on its own to push a UDP response over 512 bytes.
	big := make([]byte, 900)
	for i := range big {
		big[i] = byte('A' + i%26)
	}
	z.Add(dnsmsg.NewTXTRecord(dnsmsg.NameFromString("acme.www2.henryn.xyz"), big, dnsmsg.DefaultTTL))

	return z
}
