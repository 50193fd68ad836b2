// Package edns runs the per-option handler pipeline over a query's
// EDNS(0) options: cookie validation/generation, NSID substitution,
// TCP-keepalive negotiation, padding echo, and verbatim passthrough for
// anything else. The resolver invokes this after setting up the
// response's EDNS state but before the main resolution step.
package edns

import (
	"encoding/binary"
	"net"
	"sync"

	"github.com/jthorne/dnsauthd/internal/cookie"
	"github.com/jthorne/dnsauthd/internal/dns"
)

// Config is the server-wide EDNS policy the pipeline consults.
type Config struct {
	CookieSecret    cookie.Secret
	CookieStrategy  cookie.Strategy
	IdentityEnabled bool
	Identity        []byte
}

// ConnState is the per-connection mutable state a handler may read or
// write: the peer address and the negotiated keepalive interval. TCP
// connections keep one ConnState for their lifetime; datagram transport
// creates a fresh ConnState (zero keepalive) per packet.
type ConnState struct {
	mu        sync.Mutex
	Peer      net.IP // set once at connection setup
	keepalive uint16 // units of 100ms (RFC 7828 TIMEOUT); 0 = unset
}

// NewConnState creates connection state for peer's address.
func NewConnState(peer net.IP) *ConnState {
	return &ConnState{Peer: peer}
}

func (c *ConnState) Keepalive() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keepalive
}

func (c *ConnState) SetKeepalive(v uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keepalive = v
}

// Run processes every option in queryOpts against conn and cfg,
// returning the options to attach to the response, an RCODE override
// (zero if none), and whether processing short-circuited (the resolver
// should skip its main resolution step and return the override RCODE
// immediately). The connection's current keepalive is always echoed in
// the response, regardless of whether the query included one.
func Run(cfg Config, conn *ConnState, now uint32, queryOpts []dns.EDNSOption) (respOpts []dns.EDNSOption, rcode dns.RCode, shortCircuit bool) {
	for _, opt := range queryOpts {
		switch opt.Code {
		case dns.OptCodeCookie:
			respOpt, rc, sc := handleCookie(cfg, conn, now, opt)
			respOpts = append(respOpts, respOpt)
			if sc {
				return respOpts, rc, true
			}
		case dns.OptCodeNSID:
			if cfg.IdentityEnabled {
				respOpts = append(respOpts, dns.EDNSOption{Code: dns.OptCodeNSID, Data: cfg.Identity})
			}
		case dns.OptCodeKeepalive:
			if len(opt.Data) == 2 {
				conn.SetKeepalive(binary.BigEndian.Uint16(opt.Data))
			}
		case dns.OptCodePadding:
			respOpts = append(respOpts, dns.EDNSOption{Code: dns.OptCodePadding, Data: opt.Data})
		default:
			respOpts = append(respOpts, opt)
		}
	}
	respOpts = append(respOpts, keepaliveOption(conn))
	return respOpts, 0, false
}

func keepaliveOption(conn *ConnState) dns.EDNSOption {
	data := make([]byte, 2)
	binary.BigEndian.PutUint16(data, conn.Keepalive())
	return dns.EDNSOption{Code: dns.OptCodeKeepalive, Data: data}
}

// handleCookie echoes the option verbatim under the Off strategy and
// when the option data is malformed (malformed data under Enforce also
// sets BadCookie and short-circuits). Otherwise it responds with a fresh
// server cookie (client echo + newly generated server half) regardless
// of validation outcome, then, under the Enforce strategy only, an
// invalid cookie sets BadCookie and short-circuits further processing.
func handleCookie(cfg Config, conn *ConnState, now uint32, opt dns.EDNSOption) (respOpt dns.EDNSOption, rcode dns.RCode, shortCircuit bool) {
	if cfg.CookieStrategy == cookie.StrategyOff {
		return opt, 0, false
	}

	client, server, err := cookie.ParseOption(opt.Data)
	if err != nil {
		if cfg.CookieStrategy == cookie.StrategyEnforce {
			return opt, dns.RCodeBadCookie, true
		}
		return opt, 0, false
	}

	valid := len(server) > 0 && cookie.Valid(cfg.CookieSecret, server, client, conn.Peer, now)
	fresh := cookie.Generate(cfg.CookieSecret, client, conn.Peer, now)
	data := make([]byte, 0, cookie.ClientCookieSize+cookie.ServerCookieSize)
	data = append(data, client[:]...)
	data = append(data, fresh...)
	respOpt = dns.EDNSOption{Code: dns.OptCodeCookie, Data: data}

	if cfg.CookieStrategy == cookie.StrategyEnforce && !valid {
		return respOpt, dns.RCodeBadCookie, true
	}
	return respOpt, 0, false
}
