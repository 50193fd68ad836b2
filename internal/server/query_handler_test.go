package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jthorne/dnsauthd/internal/dns"
	"github.com/jthorne/dnsauthd/internal/edns"
	"github.com/jthorne/dnsauthd/internal/resolver"
	"github.com/jthorne/dnsauthd/internal/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestZone = `
$ORIGIN example.com.
$TTL 3600
@    IN  SOA  ns1.example.com. admin.example.com. 1 3600 900 604800 86400
@    IN  NS   ns1.example.com.
ns1  IN  A    192.0.2.53
www  IN  A    192.0.2.1
`

func newTestHandler(t *testing.T) *QueryHandler {
	t.Helper()
	z, err := zone.ParseText(handlerTestZone)
	require.NoError(t, err)
	res := resolver.New(z.Tree, edns.Config{}, 4096)
	return &QueryHandler{Resolver: res, Stats: NewDNSStats()}
}

func encodeQuery(t *testing.T, name string, qtype dns.RecordType) []byte {
	t.Helper()
	n, err := dns.ParseName(name, dns.Root)
	require.NoError(t, err)
	msg := &dns.Message{
		ID:        42,
		Opcode:    dns.OpcodeQuery,
		RD:        true,
		Questions: []dns.Question{{Name: n, Type: qtype, Class: dns.ClassIN}},
	}
	b, err := msg.Marshal()
	require.NoError(t, err)
	return b
}

func TestHandle_SuccessfulLookup(t *testing.T) {
	h := newTestHandler(t)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	res := h.Handle(context.Background(), "udp", net.ParseIP("198.51.100.1"), conn, encodeQuery(t, "www.example.com.", dns.TypeA))

	require.NotNil(t, res.Response)
	assert.Equal(t, dns.RCodeNoError, res.Response.RCodeLow)
	require.Len(t, res.Response.Answers, 1)
}

func TestHandle_MalformedRequestReturnsRawFallback(t *testing.T) {
	h := newTestHandler(t)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	res := h.Handle(context.Background(), "udp", net.ParseIP("198.51.100.1"), conn, []byte{0x00, 0x01})

	assert.Nil(t, res.Response)
	assert.NotEmpty(t, res.RawFallback)
}

func TestHandle_ResolverTimeoutReturnsServFail(t *testing.T) {
	z, err := zone.ParseText(handlerTestZone)
	require.NoError(t, err)
	res := resolver.New(z.Tree, edns.Config{}, 4096)
	h := &QueryHandler{Resolver: res, Stats: NewDNSStats(), Timeout: time.Nanosecond}
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	out := h.Handle(context.Background(), "udp", net.ParseIP("198.51.100.1"), conn, encodeQuery(t, "www.example.com.", dns.TypeA))

	require.NotNil(t, out.Response)
	assert.Equal(t, dns.RCodeServFail, out.Response.RCodeLow)
}

func TestHandle_ContextCancelledReturnsServFail(t *testing.T) {
	h := newTestHandler(t)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := h.Handle(ctx, "udp", net.ParseIP("198.51.100.1"), conn, encodeQuery(t, "www.example.com.", dns.TypeA))

	require.NotNil(t, out.Response)
	assert.Equal(t, dns.RCodeServFail, out.Response.RCodeLow)
}

func TestHandle_StatsRecordQueryAndNXDOMAIN(t *testing.T) {
	h := newTestHandler(t)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	h.Handle(context.Background(), "udp", net.ParseIP("198.51.100.1"), conn, encodeQuery(t, "nonexistent.example.com.", dns.TypeA))

	snap := h.Stats.Snapshot()
	assert.Equal(t, uint64(1), snap.QueriesTotal)
	assert.Equal(t, uint64(1), snap.ResponsesNX)
}
