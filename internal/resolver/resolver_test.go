package resolver

import (
	"net"
	"testing"

	"github.com/jthorne/dnsauthd/internal/dns"
	"github.com/jthorne/dnsauthd/internal/edns"
	"github.com/jthorne/dnsauthd/internal/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustZone(t *testing.T, text string) *zone.Zone {
	t.Helper()
	z, err := zone.ParseText(text)
	require.NoError(t, err)
	return z
}

func mustQName(t *testing.T, text string) dns.Name {
	t.Helper()
	n, err := dns.ParseName(text, dns.Root)
	require.NoError(t, err)
	return n
}

func newTestResolver(t *testing.T, zoneText string) *Resolver {
	t.Helper()
	z := mustZone(t, zoneText)
	return New(z.Tree, edns.Config{}, 4096)
}

func query(name dns.Name, t dns.RecordType) *dns.Message {
	return &dns.Message{
		ID:        1234,
		Opcode:    dns.OpcodeQuery,
		RD:        true,
		Questions: []dns.Question{{Name: name, Type: t, Class: dns.ClassIN}},
	}
}

const testZone = `
$ORIGIN example.com.
$TTL 3600
@     IN  SOA  ns1.example.com. admin.example.com. 1 3600 900 604800 86400
@     IN  NS   ns1.example.com.
ns1   IN  A    192.0.2.53
www   IN  A    192.0.2.1
www   IN  A    192.0.2.2
alias IN  CNAME www.example.com.
mail  IN  MX   10 mail.example.com.
mail  IN  A    192.0.2.9
`

func TestResolve_DirectAnswer(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	resp := r.Resolve(conn, 0, query(mustQName(t, "www.example.com."), dns.TypeA))

	assert.Equal(t, dns.RCodeNoError, resp.RCodeLow)
	assert.True(t, resp.AA)
	assert.False(t, resp.RA)
	require.Len(t, resp.Answers, 2)
}

func TestResolve_CNAMEChase(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	resp := r.Resolve(conn, 0, query(mustQName(t, "alias.example.com."), dns.TypeA))

	require.Len(t, resp.Answers, 3)
	cname, ok := resp.Answers[0].(*dns.NameRecord)
	require.True(t, ok)
	assert.Equal(t, dns.TypeCNAME, cname.Type())

	var sawA int
	for _, rr := range resp.Answers[1:] {
		if rr.Type() == dns.TypeA {
			sawA++
		}
	}
	assert.Equal(t, 2, sawA)
}

func TestResolve_CNAMEQueryItselfDoesNotChase(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	resp := r.Resolve(conn, 0, query(mustQName(t, "alias.example.com."), dns.TypeCNAME))

	require.Len(t, resp.Answers, 1)
	assert.Equal(t, dns.TypeCNAME, resp.Answers[0].Type())
}

func TestResolve_MXAdditionalGlue(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	resp := r.Resolve(conn, 0, query(mustQName(t, "mail.example.com."), dns.TypeMX))

	require.Len(t, resp.Answers, 1)
	require.Len(t, resp.Additionals, 1)
	assert.Equal(t, dns.TypeA, resp.Additionals[0].Type())
}

func TestResolve_NXDomainCarriesSOA(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	resp := r.Resolve(conn, 0, query(mustQName(t, "nonexistent.example.com."), dns.TypeA))

	assert.Equal(t, dns.RCodeNXDomain, resp.RCodeLow)
	require.Len(t, resp.Authorities, 1)
	assert.Equal(t, dns.TypeSOA, resp.Authorities[0].Type())
}

func TestResolve_NoDataReturnsNoErrorWithSOA(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	resp := r.Resolve(conn, 0, query(mustQName(t, "www.example.com."), dns.TypeAAAA))

	assert.Equal(t, dns.RCodeNoError, resp.RCodeLow)
	assert.Empty(t, resp.Answers)
}

func TestResolve_OutsideZoneIsRefused(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	resp := r.Resolve(conn, 0, query(mustQName(t, "www.other.test."), dns.TypeA))

	assert.Equal(t, dns.RCodeRefused, resp.RCodeLow)
}

func TestResolve_NonQueryOpcodeIsNotImplemented(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	req := query(mustQName(t, "www.example.com."), dns.TypeA)
	req.Opcode = dns.OpcodeStatus

	resp := r.Resolve(conn, 0, req)
	assert.Equal(t, dns.RCodeNotImp, resp.RCodeLow)
}

func TestResolve_EDNSVersionMismatchIsBadVers(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	req := query(mustQName(t, "www.example.com."), dns.TypeA)
	req.EDNS = &dns.EDNSState{Version: 1, UDPSize: 1232}

	resp := r.Resolve(conn, 0, req)
	assert.Equal(t, dns.RCodeBadVers, resp.RCode())
	require.NotNil(t, resp.EDNS)
	assert.Equal(t, uint8(0), resp.EDNS.Version)
	assert.Equal(t, r.MaxUDP, resp.EDNS.UDPSize)
}

func TestResolve_EDNSEchoesKeepalive(t *testing.T) {
	r := newTestResolver(t, testZone)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	req := query(mustQName(t, "www.example.com."), dns.TypeA)
	req.EDNS = &dns.EDNSState{Version: 0, UDPSize: 1232}

	resp := r.Resolve(conn, 0, req)
	require.NotNil(t, resp.EDNS)
	var sawKeepalive bool
	for _, opt := range resp.EDNS.Options {
		if opt.Code == dns.OptCodeKeepalive {
			sawKeepalive = true
		}
	}
	assert.True(t, sawKeepalive)
}

func TestResolve_DelegationWithoutSOAIsNotNXDomain(t *testing.T) {
	r := newTestResolver(t, `
$ORIGIN example.com.
$TTL 3600
@           IN  SOA  ns1.example.com. admin.example.com. 1 3600 900 604800 86400
@           IN  NS   ns1.example.com.
ns1         IN  A    192.0.2.53
sub         IN  NS   ns1.sub.example.com.
ns1.sub     IN  A    192.0.2.200
`)
	conn := edns.NewConnState(net.ParseIP("198.51.100.1"))

	resp := r.Resolve(conn, 0, query(mustQName(t, "host.sub.example.com."), dns.TypeA))

	assert.Equal(t, dns.RCodeNoError, resp.RCodeLow)
	require.Len(t, resp.Authorities, 1)
	assert.Equal(t, dns.TypeNS, resp.Authorities[0].Type())
}
