package zone

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/dnsscience/authdnsd/internal/dnsmsg"
)

// ErrUnsupportedRType is returned by ParseLine/buildRecord for a record
// type the flat-text/YAML loaders don't know how to build rdata for.
// Grounded on original_source/src/dns/record.rs's From<&str>, which
// panics "Unsupported record type" for the same condition; this loader
// returns an error instead, since a malformed zone file is caller input,
// not a programming bug.
var ErrUnsupportedRType = fmt.Errorf("zone: unsupported record type in zone file")

// ParseLine parses one flat-text zone-file line: "<name> <rtype> <rdata>",
// per spec.md §6/§7. defaultTTL is used since this format carries no
// per-record TTL. Blank lines and lines starting with '#' are the
// caller's concern (LoadFile skips them before calling ParseLine).
func ParseLine(line string, defaultTTL uint32) (dnsmsg.Record, error) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(fields) < 3 {
		return dnsmsg.Record{}, fmt.Errorf("zone: malformed line %q: want \"name rtype rdata\"", line)
	}
	ownerStr, rtypeStr, rdata := fields[0], fields[1], strings.TrimSpace(fields[2])

	rtype, ok := dnsmsg.RTypeFromString(rtypeStr)
	if !ok {
		return dnsmsg.Record{}, fmt.Errorf("zone: unknown record type %q in line %q", rtypeStr, line)
	}

	return buildRecord(dnsmsg.NameFromString(ownerStr), rtype, rdata, defaultTTL)
}

// buildRecord constructs a Record from a parsed owner/type/value triple,
// shared between the flat-text loader and the .dnszone YAML loader.
func buildRecord(owner dnsmsg.Name, rtype dnsmsg.RType, value string, ttl uint32) (dnsmsg.Record, error) {
	switch rtype {
	case dnsmsg.RTypeA:
		ip := net.ParseIP(value).To4()
		if ip == nil {
			return dnsmsg.Record{}, fmt.Errorf("zone: invalid IPv4 address %q for %s", value, owner)
		}
		return dnsmsg.NewARecord(owner, ip, ttl), nil

	case dnsmsg.RTypeAAAA:
		ip := net.ParseIP(value)
		if ip == nil || ip.To4() != nil {
			return dnsmsg.Record{}, fmt.Errorf("zone: invalid IPv6 address %q for %s", value, owner)
		}
		return dnsmsg.NewAAAARecord(owner, ip, ttl), nil

	case dnsmsg.RTypeCNAME:
		return dnsmsg.NewCNAMERecord(owner, dnsmsg.NameFromString(value), ttl), nil

	case dnsmsg.RTypeNS:
		return dnsmsg.NewNSRecord(owner, dnsmsg.NameFromString(value), ttl), nil

	case dnsmsg.RTypeTXT:
		return dnsmsg.NewTXTRecord(owner, []byte(value), ttl), nil

	default:
		return dnsmsg.Record{}, fmt.Errorf("%w: %s", ErrUnsupportedRType, rtype)
	}
}

// LoadFile reads a flat-text zone file: one record per line, blank lines
// and '#'-prefixed comments skipped, per spec.md §6/§7.
func LoadFile(path string, defaultTTL uint32) (*Zone, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	z := New()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseLine(line, defaultTTL)
		if err != nil {
			return nil, fmt.Errorf("zone: %s:%d: %w", path, lineNo, err)
		}
		z.Add(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return z, nil
}
