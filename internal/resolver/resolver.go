// Package resolver implements the authoritative resolution algorithm:
// a worklist-driven walk over the zone tree that turns a decoded query
// into a complete response, chasing CNAMEs and additional-section
// hints (NS glue, MX/SRV targets) as it goes.
package resolver

import (
	"github.com/jthorne/dnsauthd/internal/dns"
	"github.com/jthorne/dnsauthd/internal/edns"
	"github.com/jthorne/dnsauthd/internal/zone"
)

// Resolver answers queries authoritatively from a zone tree.
type Resolver struct {
	Tree   *zone.Tree
	EDNS   edns.Config
	MaxUDP uint16
}

// New returns a Resolver backed by tree.
func New(tree *zone.Tree, ednsCfg edns.Config, maxUDP uint16) *Resolver {
	return &Resolver{Tree: tree, EDNS: ednsCfg, MaxUDP: maxUDP}
}

// workItem is one pending lookup in the worklist: a question and the
// reason it's being looked up (the original query, a CNAME alias of
// it, or a server-initiated additional-section hint).
type workItem struct {
	Question dns.Question
	Kind     dns.ResolutionKind
}

// Resolve answers req, returning a complete response message. conn
// carries the per-connection EDNS keepalive state; now is the current
// time as a Unix timestamp, used for cookie validation.
func (r *Resolver) Resolve(conn *edns.ConnState, now uint32, req *dns.Message) *dns.Message {
	resp := dns.NewResponseBase(req)
	resp.Questions = req.Questions

	if req.Opcode != dns.OpcodeQuery {
		resp.SetRCode(dns.RCodeNotImp)
		return resp
	}

	if req.EDNS != nil {
		resp.EDNS = &dns.EDNSState{Version: 0, UDPSize: r.MaxUDP}
		if req.EDNS.Version > 0 {
			resp.SetRCode(dns.RCodeBadVers)
			return resp
		}
		respOpts, rc, shortCircuit := edns.Run(r.EDNS, conn, now, req.EDNS.Options)
		resp.EDNS.Options = respOpts
		if shortCircuit {
			resp.SetRCode(rc)
			return resp
		}
	}

	worklist := make([]workItem, 0, len(req.Questions))
	for _, q := range req.Questions {
		worklist = append(worklist, workItem{Question: q, Kind: dns.KindQuestion})
	}
	type questionKey struct {
		name  string
		class dns.RecordClass
		qtype dns.RecordType
	}
	resolved := map[questionKey]bool{}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		key := questionKey{name: item.Question.Name.Key(), class: item.Question.Class, qtype: item.Question.Type}
		if resolved[key] {
			continue
		}
		resolved[key] = true

		if r.resolveOne(resp, item, &worklist) == abortQuery {
			return resp
		}
	}

	return resp
}

type outcome int

const (
	continueQuery outcome = iota
	abortQuery
)

// resolveOne processes a single worklist item against the zone tree,
// appending to resp's sections and enqueuing follow-up lookups onto
// worklist. It returns abortQuery once resp's RCODE has been set to a
// terminal value (Refused or NXDomain) and no further work is useful.
func (r *Resolver) resolveOne(resp *dns.Message, item workItem, worklist *[]workItem) outcome {
	q := item.Question
	path := r.Tree.Walk(q.Name)
	node, matched := zone.Matched(q.Name, path)
	authorities := zone.ClosestAuthority(path, q.Class)

	if len(authorities) == 0 {
		if item.Kind == dns.KindQuestion {
			resp.SetRCode(dns.RCodeRefused)
			return abortQuery
		}
		return continueQuery
	}

	if !matched {
		resp.Authorities = append(resp.Authorities, authorities...)
		enqueueHints(worklist, authorities)
		if item.Kind == dns.KindQuestion && hasType(authorities, dns.TypeSOA) {
			resp.SetRCode(dns.RCodeNXDomain)
			return abortQuery
		}
		return continueQuery
	}

	var answers []dns.Record
	if cnames := node.CNAME(q.Class); len(cnames) > 0 {
		answers = cnames
		if q.Type != dns.TypeCNAME {
			for _, c := range cnames {
				target := c.(*dns.NameRecord).Target
				*worklist = append(*worklist, workItem{
					Question: dns.Question{Name: target, Class: q.Class, Type: q.Type},
					Kind:     dns.KindAlias,
				})
			}
		}
	} else {
		answers = node.Lookup(q.Class, q.Type)
	}

	switch item.Kind {
	case dns.KindAdditional:
		resp.Additionals = append(resp.Additionals, answers...)
	default:
		resp.Answers = append(resp.Answers, answers...)
	}
	enqueueHints(worklist, answers)
	return continueQuery
}

func enqueueHints(worklist *[]workItem, records []dns.Record) {
	for _, rr := range records {
		for _, hint := range rr.Additionals() {
			*worklist = append(*worklist, workItem{
				Question: dns.Question{Name: hint.Name, Class: hint.Class, Type: hint.Type},
				Kind:     hint.Kind,
			})
		}
	}
}

func hasType(records []dns.Record, t dns.RecordType) bool {
	for _, rr := range records {
		if rr.Type() == t {
			return true
		}
	}
	return false
}
