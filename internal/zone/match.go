package zone

import "github.com/dnsscience/authdnsd/internal/dnsmsg"

// Section identifies which part of a response a matched record belongs in.
type Section int

const (
	SectionAnswer Section = iota
	SectionAuthority
	SectionAdditional
)

// Item pairs a record with the section it was classified into.
type Item struct {
	Record  dnsmsg.Record
	Section Section
}

// Query classifies every record in the zone against name and qtype,
// grounded verbatim on original_source/src/nameserver/records.rs's
// Records::query:
//
//   - A record whose owner is Equal, Subdomain, or Superdomain of name and
//     whose type is NS is always classified Authority (a delegation can be
//     met from either side of the boundary).
//   - Otherwise, at Equal: if qtype matches the record's type, or the
//     record is a CNAME, it goes to Answer; any other type at an exact
//     name match goes to Additional — "everything else is fun" in the
//     original's own comment, preserved here as the classification rule,
//     not the comment.
//   - Subdomain/Superdomain matches that aren't NS are dropped.
func (z *Zone) Query(name dnsmsg.Name, qtype dnsmsg.RType) []Item {
	var items []Item
	for _, rec := range z.records {
		rel := dnsmsg.Cmp(rec.Name, name)
		switch rel {
		case dnsmsg.Equal, dnsmsg.Subdomain, dnsmsg.Superdomain:
			if rec.Type == dnsmsg.RTypeNS {
				items = append(items, Item{Record: rec, Section: SectionAuthority})
				continue
			}
			if rel != dnsmsg.Equal {
				continue
			}
			if qtype == rec.Type || rec.Type == dnsmsg.RTypeCNAME {
				items = append(items, Item{Record: rec, Section: SectionAnswer})
			} else {
				items = append(items, Item{Record: rec, Section: SectionAdditional})
			}
		}
	}
	return items
}

// AdditionalSection returns the A records at an exact match on addlName,
// used to glue an NS delegation's target to an address. Grounded on
// Records::additional_section.
func (z *Zone) AdditionalSection(addlName dnsmsg.Name) []dnsmsg.Record {
	var out []dnsmsg.Record
	for _, rec := range z.records {
		if rec.Type == dnsmsg.RTypeA && dnsmsg.Cmp(rec.Name, addlName) == dnsmsg.Equal {
			out = append(out, rec)
		}
	}
	return out
}

// BuildSections assembles the full answer/authority/additional record
// lists for one question, including the NS-glue second pass: every
// Authority (NS) record's target gets its A-record glue appended to
// Additional, matching original_source/src/dns/response.rs's
// build_from_record_iter.
func (z *Zone) BuildSections(name dnsmsg.Name, qtype dnsmsg.RType) (answer, authority, additional []dnsmsg.Record) {
	for _, item := range z.Query(name, qtype) {
		switch item.Section {
		case SectionAnswer:
			answer = append(answer, item.Record)
		case SectionAuthority:
			authority = append(authority, item.Record)
		case SectionAdditional:
			additional = append(additional, item.Record)
		}
	}

	for _, auth := range authority {
		nsTarget, ok := auth.RData.(dnsmsg.NameRData)
		if !ok {
			continue
		}
		additional = append(additional, z.AdditionalSection(nsTarget.Name)...)
	}

	return answer, authority, additional
}
