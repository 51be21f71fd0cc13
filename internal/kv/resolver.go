package kv

import (
	"errors"

	"github.com/dnsscience/authdnsd/internal/dnsmsg"
)

// ErrInvalidQuery is returned when a query name has neither one label
// (get) nor two labels (put), matching original_source/src/kv/mod.rs's
// build_response_internal, which rejects any other label count before
// it ever reaches query_get/query_put.
var ErrInvalidQuery = errors.New("kv: query name must have exactly 1 or 2 labels")

// Resolver dispatches a KV-mode query to the underlying Store by label
// count, per spec.md §4.6.
type Resolver struct {
	store *Store
}

// NewResolver wraps store for query dispatch.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve answers one query. qtype gates both get and put to A/TXT,
// matching query_get/query_put's "_ => {}" fallthrough (any other qtype
// yields an empty answer, i.e. NXDOMAIN from the assembler). A query
// name with any other label count is a caller error mapped to
// ErrInvalidQuery, which the assembler turns into ServFail — matching
// the original's anyhow::Error path through build_response's
// unwrap_or_else.
func (r *Resolver) Resolve(qname dnsmsg.Name, qtype dnsmsg.RType) ([]dnsmsg.Record, error) {
	switch len(qname) {
	case 1:
		return r.get(qname[0], qtype), nil
	case 2:
		return r.put(qname[0], qname[1], qtype), nil
	default:
		return nil, ErrInvalidQuery
	}
}

func (r *Resolver) get(key string, qtype dnsmsg.RType) []dnsmsg.Record {
	if qtype != dnsmsg.RTypeTXT && qtype != dnsmsg.RTypeA {
		return nil
	}
	value, ok := r.store.Get(key)
	if !ok {
		return nil
	}
	return []dnsmsg.Record{dnsmsg.NewTXTRecord(dnsmsg.Name{key}, []byte(value), 0)}
}

func (r *Resolver) put(key, value string, qtype dnsmsg.RType) []dnsmsg.Record {
	if qtype != dnsmsg.RTypeTXT && qtype != dnsmsg.RTypeA {
		return nil
	}
	r.store.Put(key, value)
	return r.get(key, dnsmsg.RTypeTXT)
}
