// Package resolver assembles a complete DNS response for one query,
// dispatching to the zone matcher, the IP router, or the KV store
// depending on server mode, and handling the UDP truncation/TCP framing
// rules from the wire codec. Grounded on
// original_source/src/servers/shared.rs's handle_dns_packet1 and
// original_source/src/dns/response.rs's build_from_record_iter /
// OwnedRecordItem::build_response.
package resolver

import (
	"github.com/dnsscience/authdnsd/internal/dnsmsg"
	"github.com/dnsscience/authdnsd/internal/kv"
	"github.com/dnsscience/authdnsd/internal/metrics"
	"github.com/dnsscience/authdnsd/internal/router"
	"github.com/dnsscience/authdnsd/internal/zone"
)

// Mode selects which backend answers a query.
type Mode int

const (
	// ModeZone answers from a loaded Zone, with the IP router consulted
	// first for any name under its configured suffix.
	ModeZone Mode = iota
	// ModeKV answers from a mutable key/value store addressed by query
	// name, per spec.md §4.6.
	ModeKV
)

// Config wires an Assembler to its backend(s).
type Config struct {
	Mode Mode

	// Zone and Router are used when Mode == ModeZone. Router is optional;
	// a nil Router disables IP-routing and every query falls through to
	// Zone.
	Zone   *zone.Zone
	Router *router.Router

	// KV is used when Mode == ModeKV.
	KV *kv.Resolver

	// Metrics is optional; when set, every Handle call records the
	// query's transport and the response's rcode/size.
	Metrics *metrics.Metrics
}

// Assembler turns raw wire bytes into a raw wire response.
type Assembler struct {
	cfg Config
}

// New builds an Assembler from cfg.
func New(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Handle parses raw (the DNS message proper — any TCP length prefix must
// already be stripped by the caller), builds a response, and serializes
// it back to wire format honoring tcp's framing and truncation rules. A
// malformed query produces no response at all (nil), matching
// handle_dns_packet1's silent-drop behavior on a parse failure — there is
// no well-formed header to copy an ID from.
func (a *Assembler) Handle(raw []byte, tcp bool) []byte {
	transport := "udp"
	if tcp {
		transport = "tcp"
	}
	if a.cfg.Metrics != nil {
		a.cfg.Metrics.ObserveQuery(transport)
	}

	req, err := dnsmsg.Parse(raw)
	if err != nil {
		return nil
	}

	resp := a.build(req)
	out := a.serialize(resp, tcp)

	if a.cfg.Metrics != nil {
		a.cfg.Metrics.ObserveResponse(rcodeLabel(resp.Header.Rcode), len(out))
	}
	return out
}

func rcodeLabel(rc dnsmsg.Rcode) string {
	switch rc {
	case dnsmsg.RcodeNoError:
		return "noerror"
	case dnsmsg.RcodeFormatError:
		return "formerr"
	case dnsmsg.RcodeServerFailure:
		return "servfail"
	case dnsmsg.RcodeNameError:
		return "nxdomain"
	case dnsmsg.RcodeNotImplemented:
		return "notimp"
	case dnsmsg.RcodeRefused:
		return "refused"
	default:
		return "other"
	}
}

// build dispatches req to the configured backend and returns a fully
// populated response message (header flags set, Rcode set, sections
// filled). Rcode semantics are backend-specific and deliberately not
// unified:
//
//   - Any mode: an Unknown(_) qtype short-circuits to NotImplemented
//     with no records before any resolver runs, per spec.md §4.7 step 2
//     and the §7 error taxonomy's own NotImp row.
//   - ModeZone: the IP router, when configured, is tried first for any
//     name under its zone suffix; its own rcode (NoError or Refused) is
//     used verbatim. Otherwise the zone matcher runs; NXDOMAIN when
//     every section comes back empty, NoError otherwise — matching
//     spec.md §7's "zone+resolvers returned zero records -> NXDomain"
//     row and S3's literal rcode=3 expectation.
//   - ModeKV: NXDOMAIN when the resolver returns no records, ServFail
//     when it returns ErrInvalidQuery, matching
//     OwnedRecordItem::build_response's unwrap_or_else path.
func (a *Assembler) build(req *dnsmsg.Message) *dnsmsg.Message {
	resp := &dnsmsg.Message{
		Header:   dnsmsg.ResponseHeader(req.Header.ID),
		Question: req.Question,
	}

	if !dnsmsg.KnownRType(req.Question.Type) {
		resp.Header.Rcode = dnsmsg.RcodeNotImplemented
		return resp
	}

	switch a.cfg.Mode {
	case ModeKV:
		records, err := a.cfg.KV.Resolve(req.Question.Name, req.Question.Type)
		switch {
		case err != nil:
			resp.Header.Rcode = dnsmsg.RcodeServerFailure
		case len(records) == 0:
			resp.Header.Rcode = dnsmsg.RcodeNameError
		default:
			resp.Header.Rcode = dnsmsg.RcodeNoError
			resp.Answer = records
		}

	default: // ModeZone
		if a.cfg.Router != nil {
			if handled, answer, rcode := a.cfg.Router.Resolve(req.Question.Name); handled {
				resp.Header.Rcode = rcode
				resp.Answer = answer
				break
			}
		}
		resp.Answer, resp.Authority, resp.Additional = a.cfg.Zone.BuildSections(req.Question.Name, req.Question.Type)
		if len(resp.Answer) == 0 && len(resp.Authority) == 0 && len(resp.Additional) == 0 {
			resp.Header.Rcode = dnsmsg.RcodeNameError
		} else {
			resp.Header.Rcode = dnsmsg.RcodeNoError
		}
	}

	return resp
}

// serialize encodes resp and applies spec.md §4.7.6's truncation rule.
// In Go's append-buffer encoding model the original's two-pass
// serialize/splice-back collapses to exactly one re-encode path: a UDP
// response whose first encoding exceeds 512 bytes is re-encoded with TC
// set, a cleared compression dictionary (so no stale offset from the
// oversized first pass can leak into the shorter second one), and every
// section emptied. TCP framing's 2-byte length prefix is already correct
// from the single Encode call — dnsmsg.Encode patches it in place — so
// there is no second TCP pass to perform.
func (a *Assembler) serialize(resp *dnsmsg.Message, tcp bool) []byte {
	dict := dnsmsg.NewCompressionDict()
	out, err := dnsmsg.Encode(resp, tcp, dict)
	if err != nil {
		resp.Header.Rcode = dnsmsg.RcodeServerFailure
		resp.Answer, resp.Authority, resp.Additional = nil, nil, nil
		out, err = dnsmsg.Encode(resp, tcp, dnsmsg.NewCompressionDict())
		if err != nil {
			return nil
		}
	}

	totalLen := len(out) - dnsmsg.MessageLenOffset(tcp)
	if resp.Header.UpdateFromTotalLen(totalLen, tcp) && !tcp {
		resp.Answer, resp.Authority, resp.Additional = nil, nil, nil
		out, err = dnsmsg.Encode(resp, tcp, dnsmsg.NewCompressionDict())
		if err != nil {
			return nil
		}
	}

	return out
}
