// Package server implements the DNS protocol transports: UDP and TCP.
//
// Goroutine Model:
//
// The server spawns multiple goroutines for handling incoming queries:
//   - UDPServer: 1 receiver + N workers per CPU core
//   - TCPServer: 1 listener per CPU core + 1 handler per active connection
//
// All goroutines are coordinated through a shared context:
//   - Context is cancelled on shutdown signal (SIGINT/SIGTERM)
//   - All goroutines check context regularly and exit cleanly
//   - No long-lived blocking operations without context awareness
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/jthorne/dnsauthd/internal/dns"
	"github.com/jthorne/dnsauthd/internal/edns"
	"github.com/jthorne/dnsauthd/internal/resolver"
)

// QueryHandler processes DNS queries through the resolver, enforcing a
// per-query timeout and mapping failures to SERVFAIL/FORMERR responses.
type QueryHandler struct {
	Logger   *slog.Logger
	Resolver *resolver.Resolver
	Stats    *DNSStats
	Timeout  time.Duration // default: 4s
}

// HandleResult is the outcome of processing one raw request. Response
// is nil only when reqBytes couldn't be decoded at all, in which case
// RawFallback holds the minimal wire-format FormErr reply.
type HandleResult struct {
	Response    *dns.Message
	RawFallback []byte
}

// Handle decodes reqBytes, resolves the query (bounded by Timeout) and
// logs the exchange at debug level. It does not encode or truncate the
// response — transports apply their own size policy before marshaling.
// transport is "udp" or "tcp"; conn carries per-connection EDNS state
// (a fresh ConnState per packet for UDP, one per connection for TCP).
func (h *QueryHandler) Handle(ctx context.Context, transport string, peer net.IP, conn *edns.ConnState, reqBytes []byte) HandleResult {
	if h.Stats != nil {
		h.Stats.RecordQuery(transport)
	}
	start := time.Now()
	defer func() {
		if h.Stats != nil {
			h.Stats.RecordLatency(time.Since(start).Nanoseconds())
		}
	}()

	req, err := dns.DecodeMessage(reqBytes)
	if err != nil {
		if h.Stats != nil {
			h.Stats.RecordError()
		}
		return HandleResult{RawFallback: dns.BuildFormatErrorResponse(reqBytes)}
	}

	resp := h.resolveWithTimeout(ctx, conn, req)
	h.logExchange(ctx, transport, peer, req, resp)

	if h.Stats != nil {
		switch resp.RCodeLow {
		case dns.RCodeNXDomain:
			h.Stats.RecordNXDOMAIN()
		case dns.RCodeServFail, dns.RCodeFormErr:
			h.Stats.RecordError()
		}
	}
	return HandleResult{Response: resp}
}

// resolveWithTimeout runs the resolver in a goroutine so a stuck or
// slow lookup can't block the caller's worker past Timeout; the zone
// tree lookups the resolver performs are themselves synchronous and
// unbounded, so this is the one place that enforces the deadline.
func (h *QueryHandler) resolveWithTimeout(ctx context.Context, conn *edns.ConnState, req *dns.Message) *dns.Message {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}

	resCh := make(chan *dns.Message, 1)
	go func() {
		resCh <- h.Resolver.Resolve(conn, uint32(time.Now().Unix()), req)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return serverFailureMessage(req)
	case <-timer.C:
		return serverFailureMessage(req)
	case resp := <-resCh:
		return resp
	}
}

func serverFailureMessage(req *dns.Message) *dns.Message {
	resp := dns.NewResponseBase(req)
	resp.SetRCode(dns.RCodeServFail)
	return resp
}

func (h *QueryHandler) logExchange(ctx context.Context, transport string, peer net.IP, req, resp *dns.Message) {
	if h.Logger == nil || !h.Logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	qname, qtype := "<no-question>", -1
	if len(req.Questions) > 0 {
		qname = req.Questions[0].Name.String()
		qtype = int(req.Questions[0].Type)
	}
	h.Logger.DebugContext(ctx, "dns query",
		"transport", transport,
		"src", peer.String(),
		"id", int(req.ID),
		"qname", qname,
		"qtype", qtype,
		"rcode", int(resp.RCode()),
	)
}
