// Package router implements the IP-router resolver (component C8): a
// synthetic zone under ip.<zone> that turns names of the form
// "o1.o2.o3.o4.ip.<zone>" into synthesized A records, grounded on
// original_source/src/kv/ip.rs's IPRouter::build_response.
package router

import (
	"net"
	"strconv"

	"github.com/dnsscience/authdnsd/internal/dnsmsg"
)

// Config configures the router's zone suffix and default address.
type Config struct {
	// Zone is the suffix every routed name must end with (e.g.
	// ip.henryn.ca). A query whose name doesn't end with this suffix is
	// not handled by the router at all.
	Zone dnsmsg.Name

	// DefaultIP is returned for a bare suffix match (just "ip.henryn.ca"
	// itself), matching the original's BASE_DOMAIN_IP constant.
	DefaultIP net.IP
}

// DefaultConfig matches original_source/src/kv/ip.rs's hardcoded values.
func DefaultConfig() Config {
	return Config{
		Zone:      dnsmsg.NameFromString("ip.henryn.ca"),
		DefaultIP: net.IPv4(10, 0, 0, 1),
	}
}

// Router answers queries under Config.Zone.
type Router struct {
	cfg Config
}

// New returns a Router with the given configuration.
func New(cfg Config) *Router {
	return &Router{cfg: cfg}
}

// Resolve reports whether qname falls under the router's zone and, if
// so, the A-record answer (or Refused) to return. handled is false when
// qname doesn't end with Config.Zone at all — the caller should treat
// the query as not belonging to this resolver rather than as Refused.
//
// Three cases, grounded on IPRouter::build_response:
//   - qname == Zone exactly (3 labels in the original's fixed
//     ip.henryn.ca case): answer with DefaultIP.
//   - qname has exactly 4 labels in front of Zone: parse each as a
//     decimal octet (0-255) and synthesize an A record; any label that
//     isn't a valid octet makes the whole query Refused.
//   - anything else under the suffix: Refused.
func (r *Router) Resolve(qname dnsmsg.Name) (handled bool, answer []dnsmsg.Record, rcode dnsmsg.Rcode) {
	zl := len(r.cfg.Zone)
	if len(qname) < zl {
		return false, nil, dnsmsg.RcodeNoError
	}
	suffix := dnsmsg.Name(qname[len(qname)-zl:])
	if !suffix.Equal(r.cfg.Zone) {
		return false, nil, dnsmsg.RcodeNoError
	}

	switch {
	case len(qname) == zl:
		return true, []dnsmsg.Record{dnsmsg.NewARecord(qname, r.cfg.DefaultIP, 0)}, dnsmsg.RcodeNoError

	case len(qname) == zl+4:
		octets := make(net.IP, 4)
		for i := 0; i < 4; i++ {
			v, ok := parseOctet(qname[i])
			if !ok {
				return true, nil, dnsmsg.RcodeRefused
			}
			octets[i] = byte(v)
		}
		return true, []dnsmsg.Record{dnsmsg.NewARecord(qname, octets, 0)}, dnsmsg.RcodeNoError

	default:
		return true, nil, dnsmsg.RcodeRefused
	}
}

// parseOctet parses s as a plain decimal byte string (digits only, no
// sign, no leading-'+' looseness strconv.Atoi would otherwise accept)
// in [0, 255], matching a wire octet label rather than a general
// integer literal.
func parseOctet(s string) (int, bool) {
	if s == "" || len(s) > 3 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v > 255 {
		return 0, false
	}
	return v, true
}
