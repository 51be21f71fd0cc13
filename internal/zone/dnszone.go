package zone

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dnsscience/authdnsd/internal/dnsmsg"
)

// dnsZoneFile is a reduced dialect of the teacher's parser_dnszone.go
// format: a zone name, a default TTL, and a flat list of records. The
// teacher's richer dialect (SOA section, templates, apply blocks, DNSSEC
// section) is dropped wholesale — this system never answers SOA queries
// and has no zone-transfer or DNSSEC surface (spec.md Non-goals), so
// those sections would parse into fields nothing ever reads.
type dnsZoneFile struct {
	Zone    string            `yaml:"zone"`
	TTL     uint32            `yaml:"ttl,omitempty"`
	Records []dnsZoneRecord   `yaml:"records"`
}

type dnsZoneRecord struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
	TTL   uint32 `yaml:"ttl,omitempty"`
}

// LoadYAMLFile reads a .dnszone YAML file built from the shape above.
func LoadYAMLFile(path string, defaultTTL uint32) (*Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc dnsZoneFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("zone: %s: %w", path, err)
	}

	ttl := defaultTTL
	if doc.TTL != 0 {
		ttl = doc.TTL
	}

	z := New()
	for i, r := range doc.Records {
		rtype, ok := dnsmsg.RTypeFromString(r.Type)
		if !ok {
			return nil, fmt.Errorf("zone: %s: record[%d]: unknown type %q", path, i, r.Type)
		}
		recTTL := ttl
		if r.TTL != 0 {
			recTTL = r.TTL
		}
		rec, err := buildRecord(dnsmsg.NameFromString(r.Name), rtype, r.Value, recTTL)
		if err != nil {
			return nil, fmt.Errorf("zone: %s: record[%d]: %w", path, i, err)
		}
		z.Add(rec)
	}

	return z, nil
}
